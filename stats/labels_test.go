package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vecmatch/vector"
	"gonum.org/v1/gonum/mat"
)

func exampleDataset() vector.Dataset {
	return vector.Dataset{
		Vectors: []vector.Vector{{0, 0}, {2, 0}, {0, 2}},
		Labels:  []vector.Label{0, 0, 1},
	}
}

func TestAggregate(t *testing.T) {
	got, err := Aggregate(exampleDataset())
	require.NoError(t, err)

	assert.Equal(t, []vector.Label{0, 1}, got.Labels())
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, 2, got.Count(0))
	assert.Equal(t, 1, got.Count(1))

	assert.Equal(t, []float64{1, 0}, got.Means[0].RawVector().Data)
	assert.True(t, mat.EqualApprox(got.Covariances[0], mat.NewSymDense(2, []float64{1, 0, 0, 0}), 1e-12))

	assert.Equal(t, []float64{0, 2}, got.Means[1].RawVector().Data)
	assert.True(t, mat.Equal(got.Covariances[1], mat.NewSymDense(2, nil)))
}

func TestAggregate_SizeMismatch(t *testing.T) {
	got, err := Aggregate(vector.Dataset{
		Vectors: []vector.Vector{{1, 1}},
		Labels:  []vector.Label{0, 1},
	})
	assert.ErrorIs(t, err, vector.ErrSizeMismatch)
	assert.Nil(t, got)
}

func TestAggregate_Idempotent(t *testing.T) {
	ds := exampleDataset()
	first, err := Aggregate(ds)
	require.NoError(t, err)
	second, err := Aggregate(ds)
	require.NoError(t, err)

	require.Equal(t, first.Labels(), second.Labels())
	for _, label := range first.Labels() {
		assert.True(t, mat.Equal(first.Means[label], second.Means[label]), "mean of label %d", label)
		assert.True(t, mat.Equal(first.Covariances[label], second.Covariances[label]), "covariance of label %d", label)
	}
}

func TestAggregate_FirstSeenOrder(t *testing.T) {
	got, err := Aggregate(vector.Dataset{
		Vectors: []vector.Vector{{1}, {2}, {3}, {4}},
		Labels:  []vector.Label{9, 4, 9, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []vector.Label{9, 4, 1}, got.Labels())
	assert.InDelta(t, 2.0, got.Means[9].AtVec(0), 1e-12)
}

func TestAggregate_Empty(t *testing.T) {
	got, err := Aggregate(vector.Dataset{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}
