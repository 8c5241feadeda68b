package converter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter/sanitizer"
)

// markdownConverter renders GitHub-flavored markdown to HTML. A leading YAML
// frontmatter block supplies title, icon and cover image.
type markdownConverter struct {
	md        goldmark.Markdown
	sanitizer *sanitizer.HTMLSanitizer
}

// NewMarkdownConverter creates a new markdown converter.
func NewMarkdownConverter() docsysSvc.ContentConverter {
	return &markdownConverter{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: sanitizer.NewContentSanitizer(),
	}
}

func (c *markdownConverter) Convert(ctx context.Context, input []byte) (*docsysSvc.ConvertedContent, error) {
	fm, body, err := SplitFrontmatter(input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	return &docsysSvc.ConvertedContent{
		HTML:       c.sanitizer.Sanitize(buf.String()),
		Title:      optional(fm.Title),
		Icon:       optional(fm.Icon),
		CoverImage: optional(fm.CoverImage),
	}, nil
}

// SupportedExtensions returns markdown file extensions.
func (c *markdownConverter) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Name returns the converter name for logging.
func (c *markdownConverter) Name() string {
	return "markdown"
}
