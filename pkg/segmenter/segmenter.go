// Package segmenter splits extracted text into candidate summary sentences.
package segmenter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// DefaultMinChars is the trimmed length a sentence must exceed to be kept.
const DefaultMinChars = 20

// Segmenter runs the punkt sentence tokenizer over blank-line separated
// paragraphs. Single newlines inside a paragraph are hard wraps (or OCR
// line breaks) and are folded into spaces before tokenizing.
type Segmenter struct {
	minChars int

	mu        sync.Mutex
	tokenizer *sentences.DefaultSentenceTokenizer
}

// New loads the English punkt model once; the Segmenter is reused for
// every document.
func New(minChars int) (*Segmenter, error) {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence model: %w", err)
	}
	return &Segmenter{minChars: minChars, tokenizer: tokenizer}, nil
}

// Segment returns the trimmed sentences longer than the minimum, in text order.
func (s *Segmenter) Segment(ctx context.Context, text string) ([]string, error) {
	var out []string
	for _, para := range Paragraphs(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(para) <= s.minChars {
			continue
		}

		s.mu.Lock()
		sents := s.tokenizer.Tokenize(para)
		s.mu.Unlock()

		for _, sent := range sents {
			trimmed := strings.TrimSpace(sent.Text)
			if utf8.RuneCountInString(trimmed) > s.minChars {
				out = append(out, trimmed)
			}
		}
	}
	return out, nil
}

// Paragraphs splits text on blank lines and collapses the whitespace
// inside each paragraph, line breaks included, to single spaces.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paras []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paras = append(paras, strings.Join(strings.Fields(strings.Join(current, " ")), " "))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paras
}
