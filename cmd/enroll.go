package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/vecmatch/gallery"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

func newEnrollCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Add labeled embeddings to the gallery",
		Long: `Add labeled embeddings to the gallery from a JSON Lines file, one sample per
line:

  {"label": 3, "vector": [0.12, -0.48, ...]}

Use --file - to read from stdin. All samples are added in one transaction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			samples, err := readSamples(in)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, db, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Add(ctx, samples); err != nil {
				return err
			}
			rev, err := store.Revision(ctx)
			if err != nil {
				return err
			}
			slog.Info("samples enrolled", slog.Int("count", len(samples)), slog.Int64("revision", rev))
			return writeJSON(cmd.OutOrStdout(), map[string]any{"added": len(samples), "revision": rev})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON Lines file of samples, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readSamples(r io.Reader) ([]gallery.Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var samples []gallery.Sample
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var s gallery.Sample
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(s.Vector) == 0 {
			return nil, fmt.Errorf("line %d: missing vector", line)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
