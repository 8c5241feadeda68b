package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

func sample() *models.Document {
	icon := "📐"
	return &models.Document{
		ID:        "doc-1",
		Title:     "Physics notes",
		Icon:      &icon,
		Content:   `<h1>Physics notes</h1><p>Energy <span data-type="inline-math" data-latex="E = mc^2"></span> and <strong>mass</strong></p><div data-type="block-math" data-latex="\int_0^1 x\,dx"></div><ul data-type="taskList"><li data-type="taskItem" data-checked="true"><p>read</p></li><li data-type="taskItem" data-checked="false"><p>write</p></li></ul>`,
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakePDF struct{ html string }

func (f *fakePDF) Render(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.4"), nil
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatHTML, "HTML": FormatHTML, "md": FormatMarkdown, "markdown": FormatMarkdown, "pdf": FormatPDF}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("docx: err = %v", err)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sample())
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{
		"<title>Physics notes</title>",
		`<div class="icon">📐</div>`,
		`<span class="katex-source" data-latex="E = mc^2">E = mc^2</span>`,
		`class="katex-source katex-display"`,
		"<strong>mass</strong>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(out, `data-type="inline-math"`) {
		t.Error("math node not rendered")
	}
}

func TestHTMLEscapesTitle(t *testing.T) {
	doc := sample()
	doc.Title = "<script>x</script>"
	out, err := HTML(doc)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<title><script>") {
		t.Error("title not escaped")
	}
}

func TestHTMLAnnotatesInvalidMath(t *testing.T) {
	doc := sample()
	doc.Content = `<p><span data-type="inline-math" data-latex="\frac{1"></span></p>`
	out, err := HTML(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(Invalid LaTeX)") {
		t.Error("invalid math not annotated")
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown(sample())
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}

	fm, body, err := converter.SplitFrontmatter([]byte(out))
	if err != nil {
		t.Fatalf("frontmatter: %v", err)
	}
	if fm.Title != "Physics notes" || fm.Icon != "📐" || fm.UpdatedAt == nil {
		t.Errorf("frontmatter = %+v", fm)
	}
	for _, want := range []string{
		"# Physics notes",
		"$E = mc^2$",
		"$$\n\\int_0^1 x\\,dx\n$$",
		"**mass**",
		"[x] read",
		"[ ] write",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func TestExport(t *testing.T) {
	pdf := &fakePDF{}
	e := NewExporter(pdf, discard())
	ctx := context.Background()

	tests := []struct {
		format   Format
		filename string
		mime     string
	}{
		{FormatHTML, "Physics-notes.html", "text/html; charset=utf-8"},
		{FormatMarkdown, "Physics-notes.md", "text/markdown; charset=utf-8"},
		{FormatPDF, "Physics-notes.pdf", "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			res, err := e.Export(ctx, sample(), tt.format)
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			if res.Filename != tt.filename || res.MimeType != tt.mime || len(res.Data) == 0 {
				t.Errorf("result = %s %s %d bytes", res.Filename, res.MimeType, len(res.Data))
			}
		})
	}
	if !strings.Contains(pdf.html, "<title>Physics notes</title>") {
		t.Error("pdf renderer did not receive the html page")
	}

	if _, err := NewExporter(nil, discard()).Export(ctx, sample(), FormatPDF); !errors.Is(err, ErrPDFUnavailable) {
		t.Errorf("no renderer: err = %v", err)
	}
}

func TestNewChromePDFMissingBinary(t *testing.T) {
	_, err := NewChromePDF("/nonexistent/chrome")
	if !errors.Is(err, ErrPDFUnavailable) || !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"Physics notes":         "Physics-notes",
		"  ":                    "document",
		"Q&A: 2024/05":          "QA-202405",
		strings.Repeat("a", 80): strings.Repeat("a", 50),
	}
	for in, want := range tests {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDataURL(t *testing.T) {
	u := dataURL("<p>a b+c</p>")
	if !strings.HasPrefix(u, "data:text/html;charset=utf-8,") || strings.Contains(u, "+") {
		t.Fatalf("url = %s", u)
	}
	decoded, err := url.PathUnescape(strings.TrimPrefix(u, "data:text/html;charset=utf-8,"))
	if err != nil || decoded != "<p>a b+c</p>" {
		t.Errorf("decoded = %q, %v", decoded, err)
	}
}
