package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		path       string
		wantName   string
		wantStem   string
		wantExt    string
		wantFormat Format
	}{
		{"/tmp/report.pdf", "report.pdf", "report", "pdf", FormatPDF},
		{"notes.TXT", "notes.TXT", "notes", "txt", FormatText},
		{"a/b/Contract.final.docx", "Contract.final.docx", "Contract.final", "docx", FormatWord},
		{"page.htm", "page.htm", "page", "htm", FormatHTML},
		{"data.xyz", "data.xyz", "data", "xyz", FormatUnknown},
		{"README", "README", "README", "", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc := NewDocument(tt.path, nil)
			if doc.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", doc.Name, tt.wantName)
			}
			if doc.Stem != tt.wantStem {
				t.Errorf("Stem = %q, want %q", doc.Stem, tt.wantStem)
			}
			if doc.Ext != tt.wantExt {
				t.Errorf("Ext = %q, want %q", doc.Ext, tt.wantExt)
			}
			if doc.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", doc.Format, tt.wantFormat)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("stage failed: %w", NewError(KindModel, "embed sentences", cause))

	if !errors.Is(err, ErrModel) {
		t.Error("errors.Is(err, ErrModel) = false, want true")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("errors.Is(err, ErrDecode) = true, want false")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause should stay reachable")
	}
	if got := KindOf(err, KindIO); got != KindModel {
		t.Errorf("KindOf() = %q, want %q", got, KindModel)
	}
	if got := KindOf(cause, KindIO); got != KindIO {
		t.Errorf("KindOf(unclassified) = %q, want fallback %q", got, KindIO)
	}
	if got := err.Error(); got != "stage failed: embed sentences: boom" {
		t.Errorf("Error() = %q", got)
	}
}
