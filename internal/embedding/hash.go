package embedding

import (
	"context"
	"unicode/utf16"

	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/pkg/utils"
)

// DefaultHashDimensions is the width of fallback vectors.
const DefaultHashDimensions = 384

// HashEmbedder is a deterministic bag-of-tokens embedder. Each token adds one
// to the bucket HashToken(token) mod dimensions, and the vector is L2-normalized.
// It never fails and is used when the embedding service is unavailable.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a hash embedder of the given width (DefaultHashDimensions if <= 0).
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the fallback vector for text. Text without tokens yields an all-zero vector.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.Vector(text), nil
}

// Vector is Embed without the context and error.
func (e *HashEmbedder) Vector(text string) []float32 {
	emb := make([]float32, e.dimensions)
	for _, tok := range keyword.Tokenize(text) {
		h := int64(HashToken(tok))
		if h < 0 {
			h = -h
		}
		emb[h%int64(e.dimensions)]++
	}
	utils.NormalizeL2(emb)
	return emb
}

// Dimensions returns the embedding width.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *HashEmbedder) Close() error {
	return nil
}

// HashToken is the polynomial rolling hash h = h*31 + c over the UTF-16 code
// units of s, wrapping at 32 bits.
func HashToken(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}
