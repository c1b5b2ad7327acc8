// Package pipelinetest provides lightweight model services for tests of
// code that drives a pipeline.
package pipelinetest

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/embedder"
	"github.com/dtnitsch/docmeta/pkg/entities"
	"github.com/dtnitsch/docmeta/pkg/extractor"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
)

// LineSegmenter returns every trimmed line longer than 20 characters.
type LineSegmenter struct{}

func (LineSegmenter) Segment(ctx context.Context, text string) ([]string, error) {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); len(line) > 20 {
			out = append(out, line)
		}
	}
	return out, nil
}

// CapitalizedEntities labels every capitalized word after the first word
// of a line as a PERSON.
type CapitalizedEntities struct{}

func (CapitalizedEntities) Recognize(ctx context.Context, text string) ([]entities.Entity, error) {
	var out []entities.Entity
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		for i := 1; i < len(words); i++ {
			w := strings.Trim(words[i], ".,;:!?")
			if w != "" && w[0] >= 'A' && w[0] <= 'Z' {
				out = append(out, entities.Entity{Label: "PERSON", Text: w})
			}
		}
	}
	return out, nil
}

// EnglishOnly reports "en" for any non-empty text.
type EnglishOnly struct{}

func (EnglishOnly) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", models.NewError(models.KindLanguage, "detect language", errors.New("no text"))
	}
	return "en", nil
}

// CountingExtractor wraps a text extractor and counts calls.
type CountingExtractor struct {
	Next  pipeline.TextExtractor
	calls atomic.Int64
}

func (c *CountingExtractor) Extract(ctx context.Context, doc models.Document) (extractor.Result, error) {
	c.calls.Add(1)
	return c.Next.Extract(ctx, doc)
}

func (c *CountingExtractor) Calls() int {
	return int(c.calls.Load())
}

// Services returns offline services: the real text extractor without OCR,
// the lexical embedder and the fakes above.
func Services() pipeline.Services {
	return pipeline.Services{
		Extractor: extractor.New(extractor.Options{}),
		Segmenter: LineSegmenter{},
		Embedder:  embedder.NewLexicalEmbedder(64),
		Entities:  CapitalizedEntities{},
		Language:  EnglishOnly{},
	}
}

// New builds a pipeline over Services with the given options.
func New(t testing.TB, opts pipeline.Options) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(Services(), opts, nil)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	return p
}
