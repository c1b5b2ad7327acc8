// Package mupdf renders PDF pages to images with MuPDF.
package mupdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// baseDPI is the PDF user-space resolution; scale multiplies it.
const baseDPI = 72.0

type Rasterizer struct{}

func New() *Rasterizer {
	return &Rasterizer{}
}

// Rasterize renders every page at baseDPI*scale.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte, scale float64) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	dpi := baseDPI * scale
	pages := make([]image.Image, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
