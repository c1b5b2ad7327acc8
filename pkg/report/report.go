// Package report renders metadata reports and error payloads and writes
// them as sidecar files.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/entities"
	"github.com/dtnitsch/docmeta/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// DefaultMaxSectionChars bounds each summary section in the text report.
const DefaultMaxSectionChars = 200

const ellipsis = "..."

// Truncate shortens s to at most max characters plus an ellipsis. The cut
// falls on the last whitespace at or before max; a single word longer than
// max is cut hard.
func Truncate(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxSectionChars
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	// byte offset just past the first max characters
	end, count := len(s), 0
	for i := range s {
		if count == max {
			end = i
			break
		}
		count++
	}

	cut := end
	// s[end] starting with whitespace means the word before it is complete.
	if r, _ := utf8.DecodeRuneInString(s[end:]); !unicode.IsSpace(r) {
		if i := strings.LastIndexFunc(s[:end], unicode.IsSpace); i > 0 {
			cut = i
		}
	}

	head := strings.TrimRightFunc(s[:cut], unicode.IsSpace)
	if head == "" {
		head = s[:end]
	}
	return head + ellipsis
}

// RenderText renders r as the plain-text report.
func RenderText(r *models.MetadataReport, maxSectionChars int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Filename: %s\n", r.Filename)
	fmt.Fprintf(&b, "Extracted On: %s\n", r.ExtractedOn)
	fmt.Fprintf(&b, "Length (chars): %d\n", r.LengthChars)
	fmt.Fprintf(&b, "Word Count: %d\n", r.WordCount)
	fmt.Fprintf(&b, "Reading Time (min): %d\n", r.ReadingTimeMin)
	fmt.Fprintf(&b, "Paragraph Count: %d\n", r.ParagraphCount)
	fmt.Fprintf(&b, "Detected Language: %s\n", r.Language)
	dominant := r.DominantEntityType
	if dominant == "" {
		dominant = models.NoEntityType
	}
	fmt.Fprintf(&b, "Dominant Entity Type: %s\n", dominant)

	b.WriteString("\nSummary Sections:\n")
	for i, section := range r.SummarySections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, Truncate(section, maxSectionChars))
	}

	b.WriteString("\nNamed Entities:\n")
	for _, label := range entities.Labels(r.Entities) {
		fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(r.Entities[label], ", "))
	}

	return b.String()
}

// FormatErrorText renders the text variant of an error payload.
func FormatErrorText(e *models.ErrorReport) string {
	return fmt.Sprintf("Error processing %s:\n%s", e.Filename, e.Error)
}

// Encode serializes a report or error payload in the given format.
func Encode(v any, format string, maxSectionChars int) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return data, nil
	case FormatText:
		switch r := v.(type) {
		case *models.MetadataReport:
			return []byte(RenderText(r, maxSectionChars)), nil
		case *models.ErrorReport:
			return []byte(FormatErrorText(r) + "\n"), nil
		default:
			return nil, fmt.Errorf("cannot render %T as text", v)
		}
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// SidecarName returns the artifact file name for a source stem.
func SidecarName(stem, format string) string {
	switch format {
	case FormatYAML:
		return stem + "_meta.yaml"
	case FormatText:
		return stem + "_metadata.txt"
	default:
		return stem + "_meta.json"
	}
}

// SidecarPath places the sidecar in outputDir, or next to the source when
// outputDir is empty.
func SidecarPath(sourcePath, stem, outputDir, format string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	return filepath.Join(dir, SidecarName(stem, format))
}

// Writer encodes reports and saves them through storage.
type Writer struct {
	Storage         *storage.Storage
	Format          string
	OutputDir       string
	MaxSectionChars int
}

// Write saves r next to doc (or in OutputDir) and returns the sidecar path.
func (w *Writer) Write(doc models.Document, r *models.MetadataReport) (string, error) {
	data, err := Encode(r, w.Format, w.MaxSectionChars)
	if err != nil {
		return "", err
	}
	path := SidecarPath(doc.Path, doc.Stem, w.OutputDir, w.Format)
	if err := w.Storage.SaveFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
