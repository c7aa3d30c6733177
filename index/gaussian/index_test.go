package gaussian

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vecmatch/stats"
	"github.com/viant/vecmatch/vector"
	"gonum.org/v1/gonum/mat"
)

func exampleStats(t *testing.T) *stats.LabelStats {
	t.Helper()
	ls, err := stats.Aggregate(vector.Dataset{
		Vectors: []vector.Vector{{0, 0}, {2, 0}, {0, 2}},
		Labels:  []vector.Label{0, 0, 1},
	})
	require.NoError(t, err)
	return ls
}

func TestRank(t *testing.T) {
	ls := exampleStats(t)
	matches, err := Rank(vector.Vector{1, 0}, ls.Means, ls.Covariances, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, vector.Label(0), matches[0].Label)
	assert.InDelta(t, 0, matches[0].Distance, 1e-12)

	// Label 1 has a single sample, so S' = εI and d = |r|/sqrt(ε).
	assert.Equal(t, vector.Label(1), matches[1].Label)
	assert.InEpsilon(t, math.Sqrt(5/DefaultRegularization), matches[1].Distance, 1e-9)
}

func TestRank_ZeroK(t *testing.T) {
	ls := exampleStats(t)
	matches, err := Rank(vector.Vector{1, 0}, ls.Means, ls.Covariances, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRank_KExceedsLabels(t *testing.T) {
	ls := exampleStats(t)
	matches, err := Rank(vector.Vector{1, 0}, ls.Means, ls.Covariances, 7)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestRank_SizeMismatch(t *testing.T) {
	ls := exampleStats(t)
	means := map[vector.Label]*mat.VecDense{0: ls.Means[0], 1: ls.Means[1]}
	covs := map[vector.Label]*mat.SymDense{0: ls.Covariances[0]}

	matches, err := Rank(vector.Vector{1, 0}, means, covs, 2)
	assert.ErrorIs(t, err, vector.ErrSizeMismatch)
	assert.Nil(t, matches)

	// Same sizes, different labels.
	covs = map[vector.Label]*mat.SymDense{0: ls.Covariances[0], 5: ls.Covariances[1]}
	_, err = Rank(vector.Vector{1, 0}, means, covs, 2)
	assert.ErrorIs(t, err, vector.ErrSizeMismatch)
}

func TestIndex_SkipsSingular(t *testing.T) {
	means := map[vector.Label]*mat.VecDense{
		1: mat.NewVecDense(2, []float64{0, 0}),
		2: mat.NewVecDense(2, []float64{3, 3}),
	}
	covs := map[vector.Label]*mat.SymDense{
		// -ε on the diagonal cancels the regularization exactly.
		1: mat.NewSymDense(2, []float64{-DefaultRegularization, 0, 0, 1}),
		2: mat.NewSymDense(2, []float64{1, 0, 0, 1}),
	}
	idx := New()
	require.NoError(t, idx.Build(means, covs))

	assert.Equal(t, []vector.Label{1}, idx.Skipped())
	assert.Equal(t, 1, idx.Len())

	matches, err := idx.Query(vector.Vector{0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, vector.Label(2), matches[0].Label)
	assert.InDelta(t, math.Sqrt(18), matches[0].Distance, 1e-6)
}

func TestIndex_ScalesByCovariance(t *testing.T) {
	// Both labels are at Euclidean distance 2 from the query, but label 1
	// spreads along x and label 2 is tight, so label 1 is closer.
	means := map[vector.Label]*mat.VecDense{
		1: mat.NewVecDense(2, []float64{2, 0}),
		2: mat.NewVecDense(2, []float64{-2, 0}),
	}
	covs := map[vector.Label]*mat.SymDense{
		1: mat.NewSymDense(2, []float64{4, 0, 0, 1}),
		2: mat.NewSymDense(2, []float64{0.25, 0, 0, 1}),
	}
	matches, err := Rank(vector.Vector{0, 0}, means, covs, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, vector.Label(1), matches[0].Label)
	assert.InDelta(t, 1.0, matches[0].Distance, 1e-6)
	assert.Equal(t, vector.Label(2), matches[1].Label)
	assert.InDelta(t, 4.0, matches[1].Distance, 1e-6)
}

func TestIndex_CorrelatedCovariance(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{2, 1, 1, 2})
	means := map[vector.Label]*mat.VecDense{7: mat.NewVecDense(2, []float64{0, 0})}
	covs := map[vector.Label]*mat.SymDense{7: cov}

	matches, err := Rank(vector.Vector{1, 1}, means, covs, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// S⁻¹ = 1/3 [[2,-1],[-1,2]], so rᵗS⁻¹r = 2/3 for r = [1,1].
	assert.InDelta(t, math.Sqrt(2.0/3), matches[0].Distance, 1e-6)
}

func TestIndex_WithRegularization(t *testing.T) {
	ls := exampleStats(t)
	idx := New(WithRegularization(1e-2))
	assert.Equal(t, 1e-2, idx.Regularization())
	require.NoError(t, idx.Build(ls.Means, ls.Covariances))

	matches, err := idx.Query(vector.Vector{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.InEpsilon(t, math.Sqrt(5/1e-2), matches[1].Distance, 1e-9)

	assert.Equal(t, DefaultRegularization, New(WithRegularization(-1)).Regularization())
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ls := exampleStats(t)
	idx := New()
	require.NoError(t, idx.Build(ls.Means, ls.Covariances))
	_, err := idx.Query(vector.Vector{1, 0, 0}, 1)
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)

	means := map[vector.Label]*mat.VecDense{0: mat.NewVecDense(2, nil)}
	covs := map[vector.Label]*mat.SymDense{0: mat.NewSymDense(3, nil)}
	assert.ErrorIs(t, New().Build(means, covs), vector.ErrDimensionMismatch)
}

func TestIndex_Empty(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(nil, nil))
	matches, err := idx.Query(vector.Vector{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndex_ConcurrentQueries(t *testing.T) {
	ls := exampleStats(t)
	idx := New()
	require.NoError(t, idx.Build(ls.Means, ls.Covariances))

	want, err := idx.Query(vector.Vector{0.5, 0.5}, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan []float64, 8)
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := idx.Query(vector.Vector{0.5, 0.5}, 2)
			if err != nil {
				results <- nil
				return
			}
			results <- []float64{got[0].Distance, got[1].Distance}
		}()
	}
	wg.Wait()
	close(results)
	for got := range results {
		assert.Equal(t, []float64{want[0].Distance, want[1].Distance}, got)
	}
}

func TestIndex_SingularityDependsOnScale(t *testing.T) {
	// diag(1e9, 0) + 1e-8·I has condition number 1e17, past
	// mat.ConditionTolerance; a larger epsilon brings it back in range.
	means := map[vector.Label]*mat.VecDense{1: mat.NewVecDense(2, []float64{0, 0})}
	covs := map[vector.Label]*mat.SymDense{1: mat.NewSymDense(2, []float64{1e9, 0, 0, 0})}

	idx := New()
	require.NoError(t, idx.Build(means, covs))
	assert.Equal(t, []vector.Label{1}, idx.Skipped())

	idx = New(WithRegularization(1))
	require.NoError(t, idx.Build(means, covs))
	assert.Empty(t, idx.Skipped())
	matches, err := idx.Query(vector.Vector{0, 2}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 2, matches[0].Distance, 1e-9)
}

func TestIndex_NonFiniteMeanSkippedAtQuery(t *testing.T) {
	means := map[vector.Label]*mat.VecDense{
		1: mat.NewVecDense(1, []float64{math.NaN()}),
		2: mat.NewVecDense(1, []float64{3}),
	}
	covs := map[vector.Label]*mat.SymDense{
		1: mat.NewSymDense(1, []float64{1}),
		2: mat.NewSymDense(1, []float64{1}),
	}
	matches, err := Rank(vector.Vector{0}, means, covs, 2)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, vector.Label(2), matches[0].Label)
}

func TestIndex_QueryNonFinite(t *testing.T) {
	ls := exampleStats(t)
	idx := New()
	require.NoError(t, idx.Build(ls.Means, ls.Covariances))

	_, err := idx.Query(vector.Vector{float32(math.NaN()), 0}, 2)
	assert.ErrorIs(t, err, vector.ErrInvalidVector)
}
