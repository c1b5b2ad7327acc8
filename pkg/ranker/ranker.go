// Package ranker picks the sentences closest to the document centroid.
package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultSections is the summary length used when none is configured.
const DefaultSections = 3

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Centroid returns the arithmetic mean of vectors.
func Centroid(vectors [][]float32) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, nil
	}
	dim := len(vectors[0])
	centroid := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			centroid[j] += float64(x)
		}
	}
	for j := range centroid {
		centroid[j] /= float64(len(vectors))
	}
	return centroid, nil
}

// CosineSim returns the cosine similarity of a and b in [-1, 1].
// A zero vector on either side scores 0.
func CosineSim(a []float32, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		dot += x * b[i]
		normA += x * x
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}

type scored struct {
	index int
	score float64
}

// Rank orders sentences by similarity of their vector to the centroid,
// highest first, and returns at most n of them. Ties keep input order.
func Rank(sentences []string, vectors [][]float32, n int) ([]string, error) {
	if len(sentences) != len(vectors) {
		return nil, fmt.Errorf("got %d vectors for %d sentences", len(vectors), len(sentences))
	}
	if len(sentences) == 0 || n <= 0 {
		return []string{}, nil
	}

	centroid, err := Centroid(vectors)
	if err != nil {
		return nil, err
	}

	results := make([]scored, len(vectors))
	for i, v := range vectors {
		sim, err := CosineSim(v, centroid)
		if err != nil {
			return nil, fmt.Errorf("failed to score sentence %d: %w", i, err)
		}
		results[i] = scored{index: i, score: sim}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if n > len(results) {
		n = len(results)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = sentences[results[i].index]
	}
	return top, nil
}
