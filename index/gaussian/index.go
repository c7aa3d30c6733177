package gaussian

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/viant/vecmatch/index"
	"github.com/viant/vecmatch/vector"
	"gonum.org/v1/gonum/mat"
)

// Index is a Mahalanobis label ranker over per-label statistics. It is
// read-only after Build and safe for concurrent queries.
type Index struct {
	epsilon    float64
	dim        int
	components []component
	skipped    []vector.Label
}

type component struct {
	label vector.Label
	mean  *mat.VecDense
	lu    *mat.LU
}

// New creates an empty Index.
func New(opts ...Option) *Index {
	i := &Index{epsilon: DefaultRegularization}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Rank builds an Index from means and covariances and returns the k labels
// closest to query. It fails with vector.ErrSizeMismatch when the two maps
// do not describe the same labels.
func Rank(query vector.Vector, means map[vector.Label]*mat.VecDense, covariances map[vector.Label]*mat.SymDense, k int, opts ...Option) ([]index.Match, error) {
	i := New(opts...)
	if err := i.Build(means, covariances); err != nil {
		return nil, err
	}
	return i.Query(query, k)
}

// Regularization returns the epsilon added to covariance diagonals.
func (i *Index) Regularization() float64 { return i.epsilon }

// Dim returns the dimension of the statistics, 0 when empty.
func (i *Index) Dim() int { return i.dim }

// Len returns the number of labels available for ranking.
func (i *Index) Len() int { return len(i.components) }

// Skipped returns the labels whose covariance stayed singular after
// regularization, in ascending order. They never appear in query results.
func (i *Index) Skipped() []vector.Label {
	return append([]vector.Label(nil), i.skipped...)
}

// Build regularizes and factorizes every label's covariance. Labels are
// processed in ascending order so that results are deterministic.
func (i *Index) Build(means map[vector.Label]*mat.VecDense, covariances map[vector.Label]*mat.SymDense) error {
	if len(means) != len(covariances) {
		return fmt.Errorf("gaussian: %d means for %d covariances: %w", len(means), len(covariances), vector.ErrSizeMismatch)
	}
	labels := make([]vector.Label, 0, len(means))
	for label := range means {
		if _, ok := covariances[label]; !ok {
			return fmt.Errorf("gaussian: label %d has no covariance: %w", label, vector.ErrSizeMismatch)
		}
		labels = append(labels, label)
	}
	sort.Slice(labels, func(a, b int) bool { return labels[a] < labels[b] })

	dim := 0
	components := make([]component, 0, len(labels))
	var skipped []vector.Label
	for _, label := range labels {
		mean, cov := means[label], covariances[label]
		if mean == nil || cov == nil {
			return fmt.Errorf("gaussian: label %d has nil statistics", label)
		}
		if dim == 0 {
			dim = mean.Len()
		}
		if mean.Len() != dim || cov.SymmetricDim() != dim {
			return fmt.Errorf("gaussian: label %d: mean %d, covariance %d, want %d: %w",
				label, mean.Len(), cov.SymmetricDim(), dim, vector.ErrDimensionMismatch)
		}
		lu, ok := factorize(cov, i.epsilon)
		if !ok {
			slog.Warn("covariance singular after regularization, skipping label",
				slog.Int("label", int(label)),
				slog.Float64("regularization", i.epsilon),
				slog.Float64("condition", lu.Cond()))
			skipped = append(skipped, label)
			continue
		}
		components = append(components, component{label: label, mean: mean, lu: lu})
	}
	i.dim = dim
	i.components = components
	i.skipped = skipped
	return nil
}

// factorize returns the LU decomposition of cov + epsilon*I and whether it is
// usable for solving.
func factorize(cov *mat.SymDense, epsilon float64) (*mat.LU, bool) {
	n := cov.SymmetricDim()
	reg := mat.NewSymDense(n, nil)
	reg.CopySym(cov)
	for d := 0; d < n; d++ {
		reg.SetSym(d, d, reg.At(d, d)+epsilon)
	}
	var lu mat.LU
	lu.Factorize(reg)
	return &lu, !singular(&lu)
}

func singular(lu *mat.LU) bool {
	cond := lu.Cond()
	return math.IsNaN(cond) || math.IsInf(cond, 1) || cond > mat.ConditionTolerance
}

// Query returns the k labels with the smallest Mahalanobis distance
//
//	d = sqrt(rᵗ·y), where S'·y = r and r = query - mean
//
// S' being the regularized covariance. The system is solved through the LU
// factors; S' is never inverted.
func (i *Index) Query(query vector.Vector, k int) ([]index.Match, error) {
	if len(i.components) == 0 || k <= 0 {
		return []index.Match{}, nil
	}
	if err := vector.CheckDimension(query, i.dim); err != nil {
		return nil, fmt.Errorf("gaussian: query: %w", err)
	}
	if err := vector.CheckFinite(query); err != nil {
		return nil, fmt.Errorf("gaussian: query: %w", err)
	}
	q := mat.NewVecDense(i.dim, vector.Float64s(query))
	r := mat.NewVecDense(i.dim, nil)
	y := mat.NewVecDense(i.dim, nil)
	matches := make([]index.Match, 0, len(i.components))
	for _, c := range i.components {
		r.SubVec(q, c.mean)
		if err := c.lu.SolveVecTo(y, false, r); err != nil {
			slog.Warn("mahalanobis solve failed, skipping label",
				slog.Int("label", int(c.label)),
				slog.String("error", err.Error()))
			continue
		}
		d2 := mat.Dot(r, y)
		if math.IsNaN(d2) {
			// non-finite statistics
			slog.Warn("undefined squared mahalanobis distance, skipping label",
				slog.Int("label", int(c.label)))
			continue
		}
		if d2 < 0 {
			// Only an indefinite covariance can produce this.
			slog.Warn("negative squared mahalanobis distance, skipping label",
				slog.Int("label", int(c.label)),
				slog.Float64("squared_distance", d2))
			continue
		}
		matches = append(matches, index.Match{Label: c.label, Distance: math.Sqrt(d2)})
	}
	return index.TopK(matches, k), nil
}

var _ index.Ranker = (*Index)(nil)
