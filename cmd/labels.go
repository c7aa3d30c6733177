package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/viant/vecmatch/vector"
)

func newLabelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List gallery labels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, db, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			labels, err := store.Labels(ctx)
			if err != nil {
				return err
			}
			if labels == nil {
				labels = []vector.Label{}
			}
			return writeJSON(cmd.OutOrStdout(), labels)
		},
	}
}

func newRemoveCmd(opts *options) *cobra.Command {
	var label int
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove every sample of a label",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, db, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			removed, err := store.RemoveLabel(ctx, vector.Label(label))
			if err != nil {
				return err
			}
			slog.Info("label removed", slog.Int("label", label), slog.Int64("samples", removed))
			return writeJSON(cmd.OutOrStdout(), map[string]any{"label": label, "removed": removed})
		},
	}
	cmd.Flags().IntVarP(&label, "label", "l", 0, "label to remove")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}
