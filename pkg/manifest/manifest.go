package manifest

// BatchManifest gives an overview of one generate run: per-file status,
// sidecar paths and the keywords aggregated over every successful file.
type BatchManifest struct {
	GeneratedAt       string        `json:"generated_at" yaml:"generated_at"`
	TotalFiles        int           `json:"total_files" yaml:"total_files"`
	Successful        int           `json:"successful" yaml:"successful"`
	Failed            int           `json:"failed" yaml:"failed"`
	AggregateKeywords []string      `json:"aggregate_keywords" yaml:"aggregate_keywords"`
	Results           []FileSummary `json:"results" yaml:"results"`
}

// FileSummary is the manifest entry for a single input file.
type FileSummary struct {
	Filename         string   `json:"filename" yaml:"filename"`
	SidecarPath      string   `json:"sidecar_path,omitempty" yaml:"sidecar_path,omitempty"`
	Status           string   `json:"status" yaml:"status"` // "success" or "error"
	ErrorType        string   `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage     string   `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	SizeBytes        int64    `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	WordCount        int      `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	Language         string   `json:"language,omitempty" yaml:"language,omitempty"`
	ExtractionMethod string   `json:"extraction_method,omitempty" yaml:"extraction_method,omitempty"`
	DurationMs       int64    `json:"duration_ms" yaml:"duration_ms"`
	TopKeywords      []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}
