package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/nodeview"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css">
<style>
body { font-family: ui-sans-serif, system-ui, -apple-system, "Segoe UI", sans-serif; max-width: 720px; margin: 0 auto; padding: 48px 24px; color: #37352f; line-height: 1.6; }
.cover { width: 100%; max-height: 280px; object-fit: cover; border-radius: 4px; margin-bottom: 24px; }
.icon { font-size: 64px; line-height: 1; }
pre { background: #f7f6f3; padding: 16px; border-radius: 4px; overflow-x: auto; }
blockquote { border-left: 3px solid currentColor; margin: 0; padding-left: 14px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #e9e9e7; padding: 6px 8px; }
ul[data-type="taskList"] { list-style: none; padding-left: 4px; }
li[data-type="taskItem"][data-checked="true"] > p { text-decoration: line-through; color: #9b9a97; }
.math-error { color: #eb5757; font-size: 0.85em; margin-left: 4px; }
iframe { width: 100%; aspect-ratio: 16 / 9; border: 0; }
img { max-width: 100%; }
</style>
</head>
<body>
{{- if .Cover}}
<img class="cover" src="{{.Cover}}" alt="">
{{- end}}
{{- if .Icon}}
<div class="icon">{{.Icon}}</div>
{{- end}}
<article>
{{.Content}}
</article>
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"></script>
<script>
window.addEventListener("load", function () {
  if (!window.katex) return;
  document.querySelectorAll(".katex-source").forEach(function (el) {
    try {
      katex.render(el.dataset.latex, el, { displayMode: el.classList.contains("katex-display"), throwOnError: true });
    } catch (e) {}
  });
});
</script>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	Title   string
	Icon    string
	Cover   string
	Content template.HTML
}

// HTML renders doc as a standalone page. Math nodes become typesetting
// markup.
func HTML(doc *models.Document) (string, error) {
	content, err := renderMath(canonical(doc.Content))
	if err != nil {
		return "", err
	}
	data := pageData{
		Title:   doc.Title,
		Content: template.HTML(content),
	}
	if doc.Icon != nil {
		data.Icon = *doc.Icon
	}
	if doc.CoverImage != nil {
		data.Cover = *doc.CoverImage
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", errorf("render page: %w", err)
	}
	return buf.String(), nil
}

func renderMath(content string) (string, error) {
	if !strings.Contains(content, "-math") {
		return content, nil
	}
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", errorf("parse content: %w", err)
	}
	replace := func(sel string, display bool) {
		dom.Find(sel).Each(func(_ int, s *goquery.Selection) {
			latex, _ := s.Attr("data-latex")
			// Malformed math still exports with its annotation.
			markup, _ := nodeview.RenderMath(latex, display)
			s.ReplaceWithHtml(markup)
		})
	}
	replace(`span[data-type="inline-math"]`, false)
	replace(`div[data-type="block-math"]`, true)

	out, err := dom.Find("body").Html()
	if err != nil {
		return "", errorf("serialize content: %w", err)
	}
	return out, nil
}
