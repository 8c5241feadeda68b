// Package export renders documents as standalone HTML, Markdown with YAML
// frontmatter, or PDF.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// Format is an export output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts a format name; "md" is short for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", domain.NewValidation("unsupported export format %q (supported: html, markdown, pdf)", s)
}

// Result is an export ready to download.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// PDFRenderer prints an HTML page to PDF.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Exporter renders documents.
type Exporter struct {
	pdf    PDFRenderer
	logger *slog.Logger
}

// NewExporter creates an exporter. pdf may be nil, which makes PDF export
// unavailable.
func NewExporter(pdf PDFRenderer, logger *slog.Logger) *Exporter {
	return &Exporter{pdf: pdf, logger: logger}
}

// PDFEnabled reports whether a PDF renderer is configured.
func (e *Exporter) PDFEnabled() bool { return e.pdf != nil }

// Export renders doc in format.
func (e *Exporter) Export(ctx context.Context, doc *models.Document, format Format) (*Result, error) {
	start := time.Now()
	name := Filename(doc.Title)

	var res *Result
	switch format {
	case FormatHTML:
		page, err := HTML(doc)
		if err != nil {
			return nil, err
		}
		res = &Result{Data: []byte(page), Filename: name + ".html", MimeType: "text/html; charset=utf-8"}
	case FormatMarkdown:
		text, err := Markdown(doc)
		if err != nil {
			return nil, err
		}
		res = &Result{Data: []byte(text), Filename: name + ".md", MimeType: "text/markdown; charset=utf-8"}
	case FormatPDF:
		if e.pdf == nil {
			return nil, ErrPDFUnavailable
		}
		page, err := HTML(doc)
		if err != nil {
			return nil, err
		}
		data, err := e.pdf.Render(ctx, page)
		if err != nil {
			return nil, err
		}
		res = &Result{Data: data, Filename: name + ".pdf", MimeType: "application/pdf"}
	default:
		return nil, domain.NewValidation("unsupported export format %q", format)
	}

	e.logger.Debug("document exported",
		"document_id", doc.ID,
		"format", format,
		"bytes", len(res.Data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// canonical re-serializes stored content so exports see the same tree the
// editor does.
func canonical(content string) string {
	return node.Serialize(node.Parse(content))
}

// Filename makes a safe file name from a title.
func Filename(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	name := b.String()
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		return "document"
	}
	return name
}

func errorf(format string, args ...any) error {
	return fmt.Errorf("export: "+format, args...)
}
