package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/docmeta/models"
	"github.com/go-shiori/go-readability"
)

const blockSelector = "h1,h2,h3,h4,h5,h6,p,li,pre,blockquote,td,th"

// extractHTML keeps the main article content (readability) and flattens it
// to one text block per line, title first.
func extractHTML(doc models.Document) (Result, error) {
	pageURL := &url.URL{Scheme: "file", Path: doc.Path}

	content := string(doc.Content)
	var title string
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(doc.Content), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		content = article.Content
		title = normalizeText(article.Title)
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return Result{}, models.NewError(models.KindModel, "parse html", err)
	}
	if title == "" {
		title = normalizeText(gq.Find("title").First().Text())
	}

	var lines []string
	if title != "" {
		lines = append(lines, title)
	}
	gq.Find(blockSelector).Each(func(i int, s *goquery.Selection) {
		// Nested blocks (p inside li, etc.) are covered by their outermost block.
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		text := normalizeText(s.Text())
		if text != "" && text != title {
			lines = append(lines, text)
		}
	})

	return Result{Text: strings.Join(lines, "\n"), Method: MethodHTML}, nil
}

// normalizeText trims each line and joins the non-empty ones with single spaces.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return b.String()
}
