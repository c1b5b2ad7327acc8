package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/docmeta/models"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDocx concatenates paragraph texts of word/document.xml, one per line.
func extractDocx(doc models.Document) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return Result{}, models.NewError(models.KindModel, "open docx", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return Result{}, models.NewError(models.KindModel, "open docx", errors.New("word/document.xml not found"))
	}

	rc, err := body.Open()
	if err != nil {
		return Result{}, models.NewError(models.KindModel, "open docx", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return Result{}, models.NewError(models.KindModel, "parse docx", err)
	}
	return Result{Text: strings.Join(paragraphs, "\n"), Method: MethodDocx}, nil
}

// docxParagraphs streams w:p elements in document order. Paragraphs nested in
// text boxes are emitted before the paragraph that contains them.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if len(open) > 0 {
					open[len(open)-1].WriteByte('\t')
				}
			case "br", "cr":
				if len(open) > 0 {
					open[len(open)-1].WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(open) == 0 {
					continue
				}
				paragraphs = append(paragraphs, open[len(open)-1].String())
				open = open[:len(open)-1]
			}
		case xml.CharData:
			if inText && len(open) > 0 {
				open[len(open)-1].Write(t)
			}
		}
	}

	return paragraphs, nil
}
