// Package ocr recovers text from scanned PDFs by rasterizing each page and
// running optical character recognition on the images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/extractor"
)

// DefaultScale renders pages at 144 DPI.
const DefaultScale = 2.0

// Rasterizer renders every page of a PDF to an RGB image, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte, scale float64) ([]image.Image, error)
}

// Recognizer returns the text line groups (paragraphs) found in one image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]string, error)
}

// Stage is an extractor.Stage that reads text out of page images.
type Stage struct {
	rasterizer Rasterizer
	recognizer Recognizer
	scale      float64
	logger     *slog.Logger
}

func NewStage(r Rasterizer, rec Recognizer, scale float64, logger *slog.Logger) *Stage {
	if scale <= 0 {
		scale = DefaultScale
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Stage{rasterizer: r, recognizer: rec, scale: scale, logger: logger}
}

var _ extractor.Stage = (*Stage)(nil)

// Extract joins line groups with a newline and pages with a blank line.
// Any failure is reported once as a model failure; nothing is retried.
func (s *Stage) Extract(ctx context.Context, doc models.Document) (extractor.Result, error) {
	if s.rasterizer == nil || s.recognizer == nil {
		return extractor.Result{}, models.NewError(models.KindModel, "ocr", errors.New("ocr backend not configured"))
	}

	pages, err := s.rasterizer.Rasterize(ctx, doc.Content, s.scale)
	if err != nil {
		return extractor.Result{}, models.NewError(models.KindModel, "rasterize pdf", err)
	}
	s.logger.Info("Running OCR", "file", doc.Name, "pages", len(pages), "scale", s.scale)

	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return extractor.Result{}, models.NewError(models.KindModel, "ocr", err)
		}
		groups, err := s.recognizer.Recognize(ctx, page)
		if err != nil {
			return extractor.Result{}, models.NewError(models.KindModel, fmt.Sprintf("ocr page %d", i+1), err)
		}
		texts = append(texts, strings.Join(groups, "\n"))
	}

	return extractor.Result{
		Text:   strings.Join(texts, "\n\n"),
		Method: extractor.MethodPDFOCR,
		Pages:  len(pages),
	}, nil
}
