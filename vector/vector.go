package vector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSizeMismatch reports that two collections which must pair up 1:1
	// (labels and vectors, means and covariances) have different lengths.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrDimensionMismatch reports vectors of differing dimension within a
	// dataset, or a query whose dimension differs from the dataset.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidVector reports a vector holding a NaN or infinite component.
	ErrInvalidVector = errors.New("invalid vector")
)

// Vector is a fixed-dimension embedding produced by an external model.
// Vectors are treated as immutable once handed to this module.
type Vector []float32

// Label identifies an identity or class. Multiple vectors may share a label.
type Label int

// Dataset is an ordered collection of (Vector, Label) pairs. Vectors[i] is
// labeled Labels[i].
type Dataset struct {
	Vectors []Vector
	Labels  []Label
}

// Validate checks that labels and vectors pair up and that every vector has
// the same non-zero dimension and only finite components. It returns that
// dimension, or 0 for an empty dataset.
func (d Dataset) Validate() (int, error) {
	if len(d.Labels) != len(d.Vectors) {
		return 0, fmt.Errorf("vector: %d labels for %d vectors: %w", len(d.Labels), len(d.Vectors), ErrSizeMismatch)
	}
	if len(d.Vectors) == 0 {
		return 0, nil
	}
	dim := len(d.Vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("vector: zero-dimension vectors: %w", ErrDimensionMismatch)
	}
	for i, v := range d.Vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("vector: vector %d has dimension %d, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		if err := CheckFinite(v); err != nil {
			return 0, fmt.Errorf("vector: vector %d: %w", i, err)
		}
	}
	return dim, nil
}

// Group partitions the dataset by label. The returned order lists each label
// once, in the order it was first seen. The caller must have validated the
// dataset.
func (d Dataset) Group() (order []Label, groups map[Label][]Vector) {
	groups = make(map[Label][]Vector)
	for i, label := range d.Labels {
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], d.Vectors[i])
	}
	return order, groups
}

// CheckDimension returns ErrDimensionMismatch when v does not have dimension dim.
func CheckDimension(v Vector, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("vector: dimension %d, want %d: %w", len(v), dim, ErrDimensionMismatch)
	}
	return nil
}

// CheckFinite returns ErrInvalidVector when v has a NaN or infinite component.
func CheckFinite(v Vector) error {
	for i, x := range v {
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("vector: component %d is %v: %w", i, x, ErrInvalidVector)
		}
	}
	return nil
}
