// Package extractor converts a loaded document into a single plain-text string.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/docmeta/models"
)

// Extraction methods recorded on a Result.
const (
	MethodText    = "text"
	MethodDocx    = "docx"
	MethodHTML    = "html"
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"
)

// DefaultMinPDFTextChars is the trimmed length below which a PDF is treated as scanned.
const DefaultMinPDFTextChars = 50

// Result is the extracted text of one document.
type Result struct {
	Text   string
	Method string
	Pages  int
}

// Stage produces text for a document.
type Stage interface {
	Extract(ctx context.Context, doc models.Document) (Result, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(ctx context.Context, doc models.Document) (Result, error)

func (f StageFunc) Extract(ctx context.Context, doc models.Document) (Result, error) {
	return f(ctx, doc)
}

var errNoFallback = errors.New("embedded text is too short and no OCR backend is configured")

// Fallback runs Primary and, when NeedsFallback reports its text as
// insufficient, discards that result and returns Secondary's instead.
// Secondary is never called when the primary text passes.
type Fallback struct {
	Primary       Stage
	Secondary     Stage
	NeedsFallback func(text string) bool
	Logger        *slog.Logger
}

func (f *Fallback) Extract(ctx context.Context, doc models.Document) (Result, error) {
	res, err := f.Primary.Extract(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	if f.NeedsFallback == nil || !f.NeedsFallback(res.Text) {
		return res, nil
	}

	if f.Logger != nil {
		f.Logger.Info("Embedded text below threshold, falling back", "file", doc.Name, "chars", utf8.RuneCountInString(strings.TrimSpace(res.Text)))
	}
	if f.Secondary == nil {
		return Result{}, models.NewError(models.KindModel, "ocr fallback", errNoFallback)
	}
	return f.Secondary.Extract(ctx, doc)
}

// MinTextPredicate reports true when the trimmed text has fewer than min characters.
func MinTextPredicate(min int) func(string) bool {
	return func(text string) bool {
		return utf8.RuneCountInString(strings.TrimSpace(text)) < min
	}
}

// Options configures an Extractor.
type Options struct {
	// PDFText extracts embedded PDF text. Defaults to the built-in reader.
	PDFText Stage
	// OCR handles scanned PDFs. Nil means scanned PDFs fail with a model error.
	OCR Stage
	// MinPDFTextChars defaults to DefaultMinPDFTextChars.
	MinPDFTextChars int
	Logger          *slog.Logger
}

// Extractor dispatches on the document format.
type Extractor struct {
	pdf    Stage
	logger *slog.Logger
}

func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	primary := opts.PDFText
	if primary == nil {
		primary = StageFunc(extractPDFText)
	}
	minChars := opts.MinPDFTextChars
	if minChars <= 0 {
		minChars = DefaultMinPDFTextChars
	}

	return &Extractor{
		pdf: &Fallback{
			Primary:       primary,
			Secondary:     opts.OCR,
			NeedsFallback: MinTextPredicate(minChars),
			Logger:        logger,
		},
		logger: logger,
	}
}

// Extract returns the document text or a classified *models.Error.
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (Result, error) {
	e.logger.Debug("Extracting text", "file", doc.Name, "format", doc.Format)

	switch doc.Format {
	case models.FormatText:
		return extractText(doc)
	case models.FormatWord:
		return extractDocx(doc)
	case models.FormatPDF:
		return e.pdf.Extract(ctx, doc)
	case models.FormatHTML:
		return extractHTML(doc)
	default:
		return Result{}, models.NewError(models.KindUnsupportedFormat, "extract text", fmt.Errorf("unsupported file type: %q", doc.Ext))
	}
}
