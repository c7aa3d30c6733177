package cmd

import (
	"github.com/spf13/cobra"
	"github.com/viant/vecmatch/stats"
	"github.com/viant/vecmatch/vector"
	"gonum.org/v1/gonum/mat"
)

type labelStatsView struct {
	Label      vector.Label `json:"label"`
	Count      int          `json:"count"`
	Mean       []float64    `json:"mean"`
	Covariance [][]float64  `json:"covariance"`
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print per-label mean and covariance",
		Long: `Print the mean and population covariance (divisor N) of every label in the
gallery, in the order labels were first enrolled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, db, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			ds, err := store.Dataset(ctx)
			if err != nil {
				return err
			}
			ls, err := stats.Aggregate(ds)
			if err != nil {
				return err
			}
			views := make([]labelStatsView, 0, ls.Len())
			for _, label := range ls.Labels() {
				views = append(views, labelStatsView{
					Label:      label,
					Count:      ls.Count(label),
					Mean:       mat.Col(nil, 0, ls.Means[label]),
					Covariance: rows(ls.Covariances[label]),
				})
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
}

func rows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
