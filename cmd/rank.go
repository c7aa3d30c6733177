package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/vecmatch/classify"
	"github.com/viant/vecmatch/index"
	"github.com/viant/vecmatch/index/gaussian"
	"github.com/viant/vecmatch/vector"
)

type rankResult struct {
	Metric  classify.Metric `json:"metric"`
	Matches []index.Match   `json:"matches"`
	Skipped []vector.Label  `json:"skipped,omitempty"`
}

func newRankCmd(opts *options) *cobra.Command {
	var (
		query  string
		metric string
		k      int
		useSQL bool
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank gallery labels against a query vector",
		Long: `Rank gallery labels against a query vector.

  euclidean    distance from the query to each label's nearest sample
  mahalanobis  distance from the query to each label's Gaussian, using the
               regularized population covariance

Labels whose covariance is singular even after regularization are listed under
"skipped" and never ranked.

Examples:
  vecmatch rank --query 0.1,0.4,-0.2 --k 3
  vecmatch rank --query 0.1,0.4,-0.2 --metric mahalanobis
  vecmatch rank --query 0.1,0.4,-0.2 --sql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := parseVector(query)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("metric") {
				metric = opts.cfg.Ranking.Metric
			}
			m, err := classify.ParseMetric(metric)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("k") {
				k = opts.cfg.Ranking.K
			}

			ctx := cmd.Context()
			store, db, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			result := rankResult{Metric: m}
			if useSQL {
				if m != classify.Euclidean {
					return fmt.Errorf("--sql supports only the %s metric", classify.Euclidean)
				}
				if result.Matches, err = store.Nearest(ctx, q, k); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			}

			ds, err := store.Dataset(ctx)
			if err != nil {
				return err
			}
			c, err := classify.New(ds, gaussian.WithRegularization(opts.cfg.Ranking.Regularization))
			if err != nil {
				return err
			}
			if result.Matches, err = c.Rank(q, m, k); err != nil {
				return err
			}
			if m == classify.Mahalanobis {
				result.Skipped = c.Skipped()
			}
			slog.Debug("ranked", slog.String("metric", string(m)), slog.Int("k", k), slog.Int("matches", len(result.Matches)))
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&query, "query", "q", "", "comma-separated query vector")
	flags.StringVarP(&metric, "metric", "m", string(classify.Euclidean), "ranking metric: euclidean or mahalanobis")
	flags.IntVar(&k, "k", 5, "number of labels to return")
	flags.BoolVar(&useSQL, "sql", false, "rank inside SQLite with vec_l2 (euclidean only)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func parseVector(s string) (vector.Vector, error) {
	parts := strings.Split(s, ",")
	out := make(vector.Vector, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("query component %d: %w", i, err)
		}
		out = append(out, float32(f))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	return out, nil
}
