package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/docmeta/models"
	"github.com/ledongthuc/pdf"
)

// extractPDFText reads the embedded text layer page by page.
func extractPDFText(ctx context.Context, doc models.Document) (res Result, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = models.NewError(models.KindModel, "read pdf", fmt.Errorf("malformed pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return Result{}, models.NewError(models.KindModel, "read pdf", err)
	}

	var sb strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Result{}, models.NewError(models.KindModel, fmt.Sprintf("read pdf page %d", i), err)
		}
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteString("\n")
		}
	}

	return Result{Text: sb.String(), Method: MethodPDFText, Pages: pageCount}, nil
}
