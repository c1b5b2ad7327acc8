// Package models defines data structures for configuration, documents and reports.
package models

import (
	"path/filepath"
	"strings"
)

// Format is the declared document format derived from the file extension.
type Format string

const (
	FormatUnknown Format = ""
	FormatText    Format = "text"
	FormatWord    Format = "word-processor"
	FormatPDF     Format = "pdf"
	FormatHTML    Format = "html"
)

// FormatForExt maps a lowercase extension (without the dot) to a Format.
func FormatForExt(ext string) Format {
	switch ext {
	case "txt":
		return FormatText
	case "docx":
		return FormatWord
	case "pdf":
		return FormatPDF
	case "html", "htm":
		return FormatHTML
	default:
		return FormatUnknown
	}
}

// SupportedExtensions lists the extensions the extractor understands.
func SupportedExtensions() []string {
	return []string{"txt", "docx", "pdf", "html", "htm"}
}

// Document is a single loaded input file. It is not modified after loading.
type Document struct {
	Path    string
	Name    string // base name, e.g. "report.pdf"
	Stem    string // base name without extension, e.g. "report"
	Ext     string // lowercase extension without the dot, e.g. "pdf"
	Format  Format
	Content []byte
}

// NewDocument builds a Document from a path and its bytes.
func NewDocument(path string, content []byte) Document {
	name := filepath.Base(path)
	ext := ExtOf(name)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	return Document{
		Path:    path,
		Name:    name,
		Stem:    stem,
		Ext:     ext,
		Format:  FormatForExt(ext),
		Content: content,
	}
}

// ExtOf returns the lowercase extension of a file name without the leading dot.
func ExtOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
