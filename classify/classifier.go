// Package classify binds a labeled dataset to both rankers: a Euclidean
// nearest-sample ranker over the raw vectors and a Mahalanobis ranker over
// per-label statistics.
package classify

import (
	"fmt"
	"strings"

	"github.com/viant/vecmatch/index"
	"github.com/viant/vecmatch/index/bruteforce"
	"github.com/viant/vecmatch/index/gaussian"
	"github.com/viant/vecmatch/stats"
	"github.com/viant/vecmatch/vector"
)

// Metric names a ranking metric.
type Metric string

const (
	// Euclidean ranks labels by their nearest sample.
	Euclidean Metric = "euclidean"
	// Mahalanobis ranks labels by distance to their fitted Gaussian.
	Mahalanobis Metric = "mahalanobis"
)

// ParseMetric resolves a metric name, case-insensitively.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(name))); m {
	case Euclidean, Mahalanobis:
		return m, nil
	default:
		return "", fmt.Errorf("classify: unknown metric %q (want %s or %s)", name, Euclidean, Mahalanobis)
	}
}

// Classifier ranks labels of a fixed dataset. It is read-only after New and
// safe for concurrent use.
type Classifier struct {
	euclidean   *bruteforce.Index
	mahalanobis *gaussian.Index
	stats       *stats.LabelStats
}

// New validates ds, aggregates its per-label statistics and builds both
// rankers. The dataset must not change afterwards; build a new Classifier
// instead.
func New(ds vector.Dataset, opts ...gaussian.Option) (*Classifier, error) {
	if _, err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	euclidean := &bruteforce.Index{}
	if err := euclidean.Build(ds.Labels, ds.Vectors); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	ls, err := stats.Aggregate(ds)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	mahalanobis := gaussian.New(opts...)
	if err := mahalanobis.Build(ls.Means, ls.Covariances); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return &Classifier{euclidean: euclidean, mahalanobis: mahalanobis, stats: ls}, nil
}

// Stats returns the per-label statistics behind the Mahalanobis ranker.
func (c *Classifier) Stats() *stats.LabelStats { return c.stats }

// Skipped returns labels excluded from Mahalanobis ranking because their
// regularized covariance was singular.
func (c *Classifier) Skipped() []vector.Label { return c.mahalanobis.Skipped() }

// Ranker returns the ranker for metric.
func (c *Classifier) Ranker(metric Metric) (index.Ranker, error) {
	switch metric {
	case Euclidean:
		return c.euclidean, nil
	case Mahalanobis:
		return c.mahalanobis, nil
	default:
		return nil, fmt.Errorf("classify: unknown metric %q", metric)
	}
}

// Rank returns the k best labels for query under metric.
func (c *Classifier) Rank(query vector.Vector, metric Metric, k int) ([]index.Match, error) {
	ranker, err := c.Ranker(metric)
	if err != nil {
		return nil, err
	}
	return ranker.Query(query, k)
}
