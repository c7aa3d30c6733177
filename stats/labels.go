package stats

import (
	"fmt"

	"github.com/viant/vecmatch/vector"
	"gonum.org/v1/gonum/mat"
)

// LabelStats holds per-label Gaussian parameters derived from a Dataset. It
// is built in one pass by Aggregate and is read-only afterwards, so it may be
// shared by concurrent queries.
type LabelStats struct {
	labels      []vector.Label
	counts      map[vector.Label]int
	Means       map[vector.Label]*mat.VecDense
	Covariances map[vector.Label]*mat.SymDense
}

// Labels returns the labels in the order they were first seen in the dataset.
func (s *LabelStats) Labels() []vector.Label {
	return append([]vector.Label(nil), s.labels...)
}

// Count returns the number of samples behind the label's estimate.
func (s *LabelStats) Count(label vector.Label) int { return s.counts[label] }

// Len returns the number of labels.
func (s *LabelStats) Len() int { return len(s.labels) }

// Aggregate groups the dataset by label and estimates the mean and
// covariance of each group. Every call is a full recomputation; the caller
// receives a new LabelStats and nothing is updated incrementally.
//
// When labels and vectors disagree in length the call fails with
// vector.ErrSizeMismatch and no statistics are returned.
func Aggregate(ds vector.Dataset) (*LabelStats, error) {
	if _, err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("stats: aggregate: %w", err)
	}
	order, groups := ds.Group()
	out := &LabelStats{
		labels:      order,
		counts:      make(map[vector.Label]int, len(order)),
		Means:       make(map[vector.Label]*mat.VecDense, len(order)),
		Covariances: make(map[vector.Label]*mat.SymDense, len(order)),
	}
	for _, label := range order {
		normal, err := Estimate(groups[label])
		if err != nil {
			return nil, fmt.Errorf("stats: label %d: %w", label, err)
		}
		out.counts[label] = normal.N
		out.Means[label] = normal.Mean
		out.Covariances[label] = normal.Covariance
	}
	return out, nil
}
