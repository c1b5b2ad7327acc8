package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/storage"
	"gopkg.in/yaml.v3"
)

func sampleReport() *models.MetadataReport {
	return &models.MetadataReport{
		Filename:           "memo.txt",
		ExtractedOn:        "2026-01-02T03:04:05.000000Z",
		LengthChars:        120,
		WordCount:          20,
		ReadingTimeMin:     1,
		ParagraphCount:     3,
		Language:           "en",
		DominantEntityType: "PERSON",
		ExtractionMethod:   "text",
		SummarySections:    []string{"First summary sentence.", "Second summary sentence."},
		Entities: map[string][]string{
			"PERSON": {"Ann", "Bob"},
			"GPE":    {"Oslo"},
		},
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("word ", 60) // 300 chars

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "hello world", 200, "hello world"},
		{"exact length unchanged", strings.Repeat("a", 200), 200, strings.Repeat("a", 200)},
		{"cut at whitespace", "alpha beta gamma", 12, "alpha beta..."},
		{"cut falls on space", "alpha beta gamma", 10, "alpha beta..."},
		{"single long word hard cut", strings.Repeat("x", 30), 10, strings.Repeat("x", 10) + "..."},
		{"multibyte", "ééé ééé ééé", 6, "ééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}

	got := Truncate(long, 200)
	body := strings.TrimSuffix(got, "...")
	if !strings.HasSuffix(got, "...") || utf8.RuneCountInString(body) > 200 {
		t.Fatalf("Truncate() = %q, want at most 200 chars plus ellipsis", got)
	}
	if !strings.HasSuffix(body, "word") {
		t.Errorf("cut mid-word: %q", body)
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText(sampleReport(), 200)
	want := `Filename: memo.txt
Extracted On: 2026-01-02T03:04:05.000000Z
Length (chars): 120
Word Count: 20
Reading Time (min): 1
Paragraph Count: 3
Detected Language: en
Dominant Entity Type: PERSON

Summary Sections:
1. First summary sentence.
2. Second summary sentence.

Named Entities:
GPE: Oslo
PERSON: Ann, Bob
`
	if got != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderText_NoEntities(t *testing.T) {
	r := sampleReport()
	r.Entities = map[string][]string{}
	r.DominantEntityType = ""
	r.SummarySections = nil

	got := RenderText(r, 200)
	if !strings.Contains(got, "Dominant Entity Type: N/A\n") {
		t.Errorf("missing N/A dominant type:\n%s", got)
	}
	if !strings.HasSuffix(got, "\nSummary Sections:\n\nNamed Entities:\n") {
		t.Errorf("expected empty summary and entity blocks:\n%s", got)
	}
}

func TestEncode(t *testing.T) {
	r := sampleReport()

	data, err := Encode(r, FormatJSON, 200)
	if err != nil {
		t.Fatalf("Encode(json) failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"filename\": \"memo.txt\"") {
		t.Errorf("json not 2-space indented:\n%s", data)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := decoded["keywords"]; ok {
		t.Error("keywords should be omitted when empty")
	}

	data, err = Encode(r, FormatYAML, 200)
	if err != nil {
		t.Fatalf("Encode(yaml) failed: %v", err)
	}
	var back models.MetadataReport
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if back.Language != "en" || len(back.Entities["PERSON"]) != 2 {
		t.Errorf("yaml lost fields: %+v", back)
	}

	if _, err := Encode(r, "xml", 200); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestEncode_ErrorPayload(t *testing.T) {
	e := &models.ErrorReport{Filename: "archive.xyz", Error: `unsupported file type: "xyz"`, ErrorType: "unsupported_format"}

	tests := []struct {
		format string
		want   string
	}{
		{FormatText, "Error processing archive.xyz:\nunsupported file type: \"xyz\"\n"},
		{FormatJSON, "{\n  \"filename\": \"archive.xyz\",\n  \"error\": \"unsupported file type: \\\"xyz\\\"\",\n  \"error_type\": \"unsupported_format\"\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Encode(e, tt.format, 200)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_ErrorPayloadYAML(t *testing.T) {
	e := &models.ErrorReport{Filename: "archive.xyz", Error: "unsupported file type", ErrorType: "unsupported_format"}
	got, err := Encode(e, FormatYAML, 200)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	want := "filename: archive.xyz\nerror: unsupported file type\nerror_type: unsupported_format\n"
	if string(got) != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		format    string
		outputDir string
		want      string
	}{
		{FormatJSON, "", filepath.Join("docs", "memo_meta.json")},
		{FormatYAML, "", filepath.Join("docs", "memo_meta.yaml")},
		{FormatText, "", filepath.Join("docs", "memo_metadata.txt")},
		{FormatJSON, "out", filepath.Join("out", "memo_meta.json")},
	}
	for _, tt := range tests {
		got := SidecarPath(filepath.Join("docs", "memo.docx"), "memo", tt.outputDir, tt.format)
		if got != tt.want {
			t.Errorf("SidecarPath(%s, %q) = %q, want %q", tt.format, tt.outputDir, got, tt.want)
		}
	}
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "sidecars")
	doc := models.NewDocument(filepath.Join(dir, "memo.txt"), []byte("hello"))

	w := &Writer{Storage: &storage.Storage{}, Format: FormatJSON, OutputDir: outDir}
	path, err := w.Write(doc, sampleReport())
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if path != filepath.Join(outDir, "memo_meta.json") {
		t.Errorf("path = %q, want memo_meta.json in output dir", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	if !strings.Contains(string(data), `"dominant_entity_type": "PERSON"`) {
		t.Errorf("unexpected sidecar content:\n%s", data)
	}
}
