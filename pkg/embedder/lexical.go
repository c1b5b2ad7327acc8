package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultLexicalDimensions is used when no dimension is configured.
const DefaultLexicalDimensions = 256

// LexicalEmbedder hashes lowercase word tokens into a fixed number of
// buckets and L2-normalizes the counts. It needs no model server, so it is
// the offline backend.
type LexicalEmbedder struct {
	dimensions int
}

func NewLexicalEmbedder(dimensions int) *LexicalEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultLexicalDimensions
	}
	return &LexicalEmbedder{dimensions: dimensions}
}

func (e *LexicalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *LexicalEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dimensions)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[h.Sum32()%uint32(e.dimensions)]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

func (e *LexicalEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *LexicalEmbedder) Model() string {
	return "lexical"
}
