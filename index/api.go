package index

import (
	"sort"

	"github.com/viant/vecmatch/vector"
)

// Match pairs a label with its distance to a query. Distances are
// non-negative and only comparable within a single metric.
type Match struct {
	Label    vector.Label `json:"label"`
	Distance float64      `json:"distance"`
}

// Ranker answers top-k label queries against a fixed gallery.
type Ranker interface {
	// Query returns up to k matches ordered by ascending distance. k larger
	// than the number of candidate labels is truncated; k <= 0 yields no
	// matches.
	Query(query vector.Vector, k int) ([]Match, error)
}

// Sort orders matches by ascending distance. Equal distances keep their
// relative order.
func Sort(matches []Match) {
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Distance < matches[b].Distance })
}

// TopK sorts matches and returns the k closest. k is clamped to
// [0, len(matches)].
func TopK(matches []Match, k int) []Match {
	if k <= 0 || len(matches) == 0 {
		return []Match{}
	}
	Sort(matches)
	if k > len(matches) {
		k = len(matches)
	}
	out := make([]Match, k)
	copy(out, matches[:k])
	return out
}
