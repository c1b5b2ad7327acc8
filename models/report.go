package models

import "time"

// NoEntityType is reported as the dominant entity type when no entities were found.
const NoEntityType = "N/A"

// MetadataReport is the terminal result of one pipeline run.
type MetadataReport struct {
	Filename           string              `json:"filename" yaml:"filename"`
	ExtractedOn        string              `json:"extracted_on" yaml:"extracted_on"`
	LengthChars        int                 `json:"length_chars" yaml:"length_chars"`
	WordCount          int                 `json:"word_count" yaml:"word_count"`
	ReadingTimeMin     int                 `json:"reading_time_min" yaml:"reading_time_min"`
	ParagraphCount     int                 `json:"paragraph_count" yaml:"paragraph_count"`
	Language           string              `json:"language" yaml:"language"`
	DominantEntityType string              `json:"dominant_entity_type" yaml:"dominant_entity_type"`
	ExtractionMethod   string              `json:"extraction_method" yaml:"extraction_method"`
	SummarySections    []string            `json:"summary_sections" yaml:"summary_sections"`
	Keywords           []string            `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Entities           map[string][]string `json:"entities" yaml:"entities"`
	EntitiesPartial    bool                `json:"entities_partial" yaml:"entities_partial"`
}

// ErrorReport is the uniform payload returned when any stage fails.
type ErrorReport struct {
	Filename  string `json:"filename" yaml:"filename"`
	Error     string `json:"error" yaml:"error"`
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// Timestamp formats t as an ISO-8601 UTC timestamp with a trailing Z.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
