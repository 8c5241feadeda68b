package export

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

func newMarkdownConverter() *md.Converter {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		BulletListMarker: "-",
	})
	conv.Use(plugin.GitHubFlavored())
	conv.AddRules(
		md.Rule{
			Filter: []string{"span"},
			Replacement: func(content string, s *goquery.Selection, _ *md.Options) *string {
				if s.AttrOr("data-type", "") != "inline-math" {
					return nil
				}
				return md.String("$" + s.AttrOr("data-latex", "") + "$")
			},
		},
		md.Rule{
			Filter: []string{"div"},
			Replacement: func(content string, s *goquery.Selection, _ *md.Options) *string {
				switch {
				case s.AttrOr("data-type", "") == "block-math":
					return md.String("\n\n$$\n" + s.AttrOr("data-latex", "") + "\n$$\n\n")
				case s.Is("[data-youtube-video]"):
					src := s.Find("iframe").AttrOr("src", "")
					if src == "" {
						return md.String("")
					}
					return md.String("\n\n[YouTube video](" + src + ")\n\n")
				}
				return nil
			},
		},
	)
	return conv
}

// Markdown renders doc as GitHub-flavored markdown preceded by YAML
// frontmatter. Math becomes $...$ and $$...$$.
func Markdown(doc *models.Document) (string, error) {
	fm := &converter.Frontmatter{
		Title:     doc.Title,
		CreatedAt: &doc.CreatedAt,
		UpdatedAt: &doc.UpdatedAt,
	}
	if doc.Icon != nil {
		fm.Icon = *doc.Icon
	}
	if doc.CoverImage != nil {
		fm.CoverImage = *doc.CoverImage
	}
	header, err := fm.Marshal()
	if err != nil {
		return "", errorf("%w", err)
	}

	body, err := newMarkdownConverter().ConvertString(taskCheckboxes(canonical(doc.Content)))
	if err != nil {
		return "", errorf("convert to markdown: %w", err)
	}
	return string(header) + "\n" + strings.TrimSpace(body) + "\n", nil
}

// taskCheckboxes adds the checkbox inputs the task list rule expects.
func taskCheckboxes(content string) string {
	if !strings.Contains(content, "taskItem") {
		return content
	}
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	dom.Find(`li[data-type="taskItem"]`).Each(func(_ int, s *goquery.Selection) {
		box := `<input type="checkbox">`
		if s.AttrOr("data-checked", "") == "true" {
			box = `<input type="checkbox" checked>`
		}
		// The task list rule only reads a checkbox that is a direct child
		// of the li, so the leading paragraph is unwrapped.
		if first := s.Children().First(); first.Is("p") {
			first.Contents().Unwrap()
		}
		s.PrependHtml(box)
	})
	out, err := dom.Find("body").Html()
	if err != nil {
		return content
	}
	return out
}
