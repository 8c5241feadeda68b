package converter

import (
	"context"
	"html"
	"regexp"
	"strings"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n+`)

// textConverter turns plain text into paragraphs. Blank lines separate
// paragraphs and single newlines become hard breaks.
type textConverter struct{}

// NewTextConverter creates a new text converter.
func NewTextConverter() docsysSvc.ContentConverter {
	return &textConverter{}
}

func (c *textConverter) Convert(ctx context.Context, input []byte) (*docsysSvc.ConvertedContent, error) {
	text := strings.ReplaceAll(string(input), "\r\n", "\n")
	var b strings.Builder
	for _, para := range blankLines.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return &docsysSvc.ConvertedContent{HTML: b.String()}, nil
}

// SupportedExtensions returns text file extensions.
func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

// Name returns the converter name for logging.
func (c *textConverter) Name() string {
	return "plaintext"
}
