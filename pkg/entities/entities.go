// Package entities finds named entities and summarizes them by label.
package entities

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dtnitsch/docmeta/models"
	"github.com/jdkato/prose/v2"
)

// DefaultWindow is how many leading characters of a document are scanned.
const DefaultWindow = 1000

type Entity struct {
	Label string
	Text  string
}

type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// ProseRecognizer runs the prose named-entity model.
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (r *ProseRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tag entities: %w", err)
	}

	found := doc.Entities()
	out := make([]Entity, 0, len(found))
	for _, ent := range found {
		out = append(out, Entity{Label: ent.Label, Text: ent.Text})
	}
	return out, nil
}

// Window returns the first n characters of text and whether anything was cut.
func Window(text string, n int) (string, bool) {
	if n <= 0 {
		n = DefaultWindow
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i], true
		}
		count++
	}
	return text, false
}

// Group maps each label to its distinct values in ascending order.
func Group(ents []Entity) map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, e := range ents {
		value := strings.TrimSpace(e.Text)
		if e.Label == "" || value == "" {
			continue
		}
		if seen[e.Label] == nil {
			seen[e.Label] = make(map[string]struct{})
		}
		seen[e.Label][value] = struct{}{}
	}

	grouped := make(map[string][]string, len(seen))
	for label, values := range seen {
		list := make([]string, 0, len(values))
		for v := range values {
			list = append(list, v)
		}
		sort.Strings(list)
		grouped[label] = list
	}
	return grouped
}

// Dominant returns the label with the most distinct values. Ties go to the
// label that sorts first; an empty group yields models.NoEntityType.
func Dominant(grouped map[string][]string) string {
	labels := Labels(grouped)
	best := models.NoEntityType
	bestCount := 0
	for _, label := range labels {
		if n := len(grouped[label]); n > bestCount {
			best, bestCount = label, n
		}
	}
	return best
}

// Labels returns the labels of grouped in ascending order.
func Labels(grouped map[string][]string) []string {
	labels := make([]string, 0, len(grouped))
	for label := range grouped {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
