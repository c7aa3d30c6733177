package bruteforce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/viant/vecmatch/index"
	"github.com/viant/vecmatch/vector"
)

// Index is a brute-force Euclidean label ranker. It is read-only after Build
// and safe for concurrent queries.
type Index struct {
	labels []vector.Label
	vecs   []vector.Vector
	dim    int
}

// Rank ranks the labels of ds by their nearest vector to query and returns
// the k closest. It fails with vector.ErrSizeMismatch when labels and
// vectors disagree in length.
func Rank(query vector.Vector, ds vector.Dataset, k int) ([]index.Match, error) {
	var i Index
	if err := i.Build(ds.Labels, ds.Vectors); err != nil {
		return nil, err
	}
	return i.Query(query, k)
}

// Build loads labels and vectors. Both must have the same length and all
// vectors the same non-zero dimension with finite components.
func (i *Index) Build(labels []vector.Label, vectors []vector.Vector) error {
	ds := vector.Dataset{Vectors: vectors, Labels: labels}
	dim, err := ds.Validate()
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	if len(labels) == 0 {
		i.labels, i.vecs, i.dim = nil, nil, 0
		return nil
	}
	i.labels = append([]vector.Label(nil), labels...)
	i.vecs = append([]vector.Vector(nil), vectors...)
	i.dim = dim
	return nil
}

// Len returns the number of stored vectors.
func (i *Index) Len() int { return len(i.vecs) }

// Dim returns the dimension of stored vectors, 0 when empty.
func (i *Index) Dim() int { return i.dim }

// Query returns the k labels whose nearest stored vector is closest to query.
func (i *Index) Query(query vector.Vector, k int) ([]index.Match, error) {
	if len(i.vecs) == 0 || k <= 0 {
		return []index.Match{}, nil
	}
	if err := vector.CheckDimension(query, i.dim); err != nil {
		return nil, fmt.Errorf("bruteforce: query: %w", err)
	}
	if err := vector.CheckFinite(query); err != nil {
		return nil, fmt.Errorf("bruteforce: query: %w", err)
	}
	// position of each label's entry in nearest
	pos := make(map[vector.Label]int)
	nearest := make([]index.Match, 0)
	for j, v := range i.vecs {
		d, err := vector.L2Distance(query, v)
		if err != nil {
			return nil, fmt.Errorf("bruteforce: vector %d: %w", j, err)
		}
		label := i.labels[j]
		if p, ok := pos[label]; ok {
			if d < nearest[p].Distance {
				nearest[p].Distance = d
			}
			continue
		}
		pos[label] = len(nearest)
		nearest = append(nearest, index.Match{Label: label, Distance: d})
	}
	return index.TopK(nearest, k), nil
}

// MarshalBinary stores: dim(uint32), n(uint32), then for each item:
// label(int64), vec(float32[dim]).
func (i *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8, 8+len(i.vecs)*(8+4*i.dim))
	binary.LittleEndian.PutUint32(out[0:4], uint32(i.dim))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(i.vecs)))
	for idx, label := range i.labels {
		out = binary.LittleEndian.AppendUint64(out, uint64(int64(label)))
		for _, v := range i.vecs[idx] {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return errors.New("bruteforce: invalid data")
	}
	dim64 := uint64(binary.LittleEndian.Uint32(data[0:4]))
	n64 := uint64(binary.LittleEndian.Uint32(data[4:8]))
	item := 8 + 4*dim64
	body := uint64(len(data) - 8)
	if body%item != 0 || body/item != n64 {
		return fmt.Errorf("bruteforce: truncated data: %d bytes for %d items of dimension %d", len(data), n64, dim64)
	}
	dim, n := int(dim64), int(n64)
	off := 8
	labels := make([]vector.Label, n)
	vecs := make([]vector.Vector, n)
	for idx := 0; idx < n; idx++ {
		labels[idx] = vector.Label(int64(binary.LittleEndian.Uint64(data[off:])))
		off += 8
		vec := make(vector.Vector, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vecs[idx] = vec
	}
	return i.Build(labels, vecs)
}

var _ index.Ranker = (*Index)(nil)
