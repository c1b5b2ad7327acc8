package extractor

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/dtnitsch/docmeta/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractText returns the whole file as UTF-8 text.
func extractText(doc models.Document) (Result, error) {
	content := bytes.TrimPrefix(doc.Content, utf8BOM)
	if !utf8.Valid(content) {
		return Result{}, models.NewError(models.KindDecode, "decode text", fmt.Errorf("%s is not valid UTF-8", doc.Name))
	}
	return Result{Text: string(content), Method: MethodText}, nil
}
