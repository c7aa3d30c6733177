package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// embeddingWidth is the byte width of one stored component.
const embeddingWidth = 4

// EncodeEmbedding packs vec into the gallery BLOB layout: dim little-endian
// float32 words, no header. A nil or empty vector encodes to nil.
func EncodeEmbedding(vec Vector) []byte {
	if len(vec) == 0 {
		return nil
	}
	blob := make([]byte, 0, len(vec)*embeddingWidth)
	for _, x := range vec {
		blob = binary.LittleEndian.AppendUint32(blob, math.Float32bits(x))
	}
	return blob
}

// DecodeEmbedding unpacks a BLOB written by EncodeEmbedding. The dimension is
// len(blob)/4; a length that is not a whole number of words is rejected.
func DecodeEmbedding(blob []byte) (Vector, error) {
	if rem := len(blob) % embeddingWidth; rem != 0 {
		return nil, fmt.Errorf("vector: embedding blob of %d bytes has %d trailing bytes", len(blob), rem)
	}
	if len(blob) == 0 {
		return nil, nil
	}
	vec := make(Vector, 0, len(blob)/embeddingWidth)
	for off := 0; off < len(blob); off += embeddingWidth {
		vec = append(vec, math.Float32frombits(binary.LittleEndian.Uint32(blob[off:off+embeddingWidth])))
	}
	return vec, nil
}
