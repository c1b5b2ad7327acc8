package generate

import "github.com/dtnitsch/docmeta/pkg/pipeline"

// ResultOutput is the stdout entry for one input file.
type ResultOutput struct {
	Filename    string `json:"filename" yaml:"filename"`
	SidecarPath string `json:"sidecar_path,omitempty" yaml:"sidecar_path,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType   string `json:"error_type,omitempty" yaml:"error_type,omitempty"`

	outcome pipeline.Outcome
}

// FinalOutput is printed once the whole batch is done.
type FinalOutput struct {
	Status       string         `json:"status" yaml:"status"`
	Results      []ResultOutput `json:"results" yaml:"results"`
	Stats        Stats          `json:"stats" yaml:"stats"`
	ManifestPath string         `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
}

type Stats struct {
	TotalFiles       int      `json:"total_files" yaml:"total_files"`
	Successful       int      `json:"successful" yaml:"successful"`
	Failed           int      `json:"failed" yaml:"failed"`
	TotalTimeSeconds float64  `json:"total_time_seconds" yaml:"total_time_seconds"`
	TopKeywords      []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}
