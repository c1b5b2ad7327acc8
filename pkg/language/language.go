// Package language identifies the language of extracted text.
package language

import (
	"errors"
	"strings"

	"github.com/dtnitsch/docmeta/models"
	"github.com/pemistahl/lingua-go"
)

// Unknown is reported when text is present but no language is reliable.
const Unknown = "unknown"

var errEmptyText = errors.New("no text to detect a language from")

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over the given languages, or all supported
// languages when none are given.
func New(languages ...lingua.Language) *Detector {
	builder := lingua.NewLanguageDetectorBuilder()
	var b lingua.LanguageDetectorBuilder
	if len(languages) == 0 {
		b = builder.FromAllLanguages()
	} else {
		b = builder.FromLanguages(languages...)
	}
	return &Detector{detector: b.Build()}
}

// Detect returns the lowercase ISO 639-1 code of text. Empty or
// whitespace-only text is a language detection error.
func (d *Detector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", models.NewError(models.KindLanguage, "detect language", errEmptyText)
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown, nil
	}
	code := strings.ToLower(lang.IsoCode639_1().String())
	if code == "" {
		return Unknown, nil
	}
	return code, nil
}
