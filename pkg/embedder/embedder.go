// Package embedder maps sentences to fixed-length vectors.
package embedder

import (
	"context"
	"fmt"

	"github.com/dtnitsch/docmeta/models"
)

// Embedder must be deterministic: the same text always yields the same vector.
type Embedder interface {
	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}

// New builds the embedder selected by cfg.Backend.
func New(cfg models.EmbedderConfig) (Embedder, error) {
	switch cfg.Backend {
	case "", "ollama":
		return NewOllamaEmbedder(OllamaConfig{
			BaseURL: cfg.URL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case "lexical":
		return NewLexicalEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedder backend %q", cfg.Backend)
	}
}
