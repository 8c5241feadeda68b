package converter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter/sanitizer"
)

// htmlConverter imports HTML files. The document title comes from <title>
// and only the body is kept, sanitized.
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
}

// NewHTMLConverter creates a new HTML converter.
func NewHTMLConverter() docsysSvc.ContentConverter {
	return &htmlConverter{sanitizer: sanitizer.NewContentSanitizer()}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (*docsysSvc.ConvertedContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	body, err := doc.Find("body").First().Html()
	if err != nil {
		return nil, fmt.Errorf("read html body: %w", err)
	}

	return &docsysSvc.ConvertedContent{
		HTML:  c.sanitizer.Sanitize(body),
		Title: optional(title),
	}, nil
}

// SupportedExtensions returns HTML file extensions.
func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

// Name returns the converter name for logging.
func (c *htmlConverter) Name() string {
	return "html"
}
