package stats

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/vecmatch/vector"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyInput is returned by Estimate when there are no vectors. It is a
// soft condition: there is nothing to estimate and no result is produced.
var ErrEmptyInput = errors.New("stats: nothing to estimate")

// Normal holds the estimated parameters of a set of vectors.
type Normal struct {
	// Mean is the per-component arithmetic mean (length D).
	Mean *mat.VecDense
	// Covariance is the D×D population covariance.
	Covariance *mat.SymDense
	// N is the number of vectors the estimate is based on.
	N int
}

// Dim returns the dimension of the estimate.
func (n *Normal) Dim() int { return n.Mean.Len() }

// Estimate computes the mean and population covariance of vectors:
//
//	Mean       = (1/N) Σ vᵢ
//	Covariance = (1/N) Σ (vᵢ-Mean)(vᵢ-Mean)ᵗ
//
// Divisor N (not N-1) is used so that downstream Mahalanobis distances match
// the maximum-likelihood Gaussian of each label. All vectors must share one
// dimension. An empty input yields ErrEmptyInput and a nil Normal.
func Estimate(vectors []vector.Vector) (*Normal, error) {
	if len(vectors) == 0 {
		slog.Debug("nothing to estimate")
		return nil, ErrEmptyInput
	}
	n := len(vectors)
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("stats: zero-dimension vectors: %w", vector.ErrDimensionMismatch)
	}

	// rows of centered holds vᵢ as float64 first, then vᵢ-Mean.
	centered := mat.NewDense(n, dim, nil)
	mean := make([]float64, dim)
	for i, v := range vectors {
		if err := vector.CheckDimension(v, dim); err != nil {
			return nil, fmt.Errorf("stats: vector %d: %w", i, err)
		}
		if err := vector.CheckFinite(v); err != nil {
			return nil, fmt.Errorf("stats: vector %d: %w", i, err)
		}
		row := centered.RawRowView(i)
		for j, x := range v {
			row[j] = float64(x)
		}
		floats.Add(mean, row)
	}
	floats.Scale(1/float64(n), mean)
	for i := 0; i < n; i++ {
		floats.Sub(centered.RawRowView(i), mean)
	}

	cov := mat.NewSymDense(dim, nil)
	cov.SymOuterK(1/float64(n), centered.T())

	return &Normal{
		Mean:       mat.NewVecDense(dim, mean),
		Covariance: cov,
		N:          n,
	}, nil
}
