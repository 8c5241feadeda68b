package node

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Serialize renders a document tree as the HTML string stored in a document's content.
// Output is deterministic: attributes are written in a fixed order and marks
// nest in schema order.
func Serialize(doc *Node) string {
	var b strings.Builder
	if doc.Type == TypeDoc {
		for _, c := range doc.Content {
			writeNode(&b, c)
		}
	} else {
		writeNode(&b, doc)
	}
	return b.String()
}

// SerializeNodes renders a sequence of sibling nodes.
func SerializeNodes(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case TypeText:
		writeText(b, n)
	case TypeParagraph:
		wrap(b, "p", nil, n.Content)
	case TypeHeading:
		level := n.Int("level")
		if level < 1 || level > 6 {
			level = 1
		}
		wrap(b, "h"+strconv.Itoa(level), nil, n.Content)
	case TypeBulletList:
		wrap(b, "ul", nil, n.Content)
	case TypeOrderedList:
		var attrs [][2]string
		if _, ok := n.Attrs["start"]; ok && n.Int("start") != 1 {
			attrs = append(attrs, [2]string{"start", strconv.Itoa(n.Int("start"))})
		}
		wrap(b, "ol", attrs, n.Content)
	case TypeListItem:
		wrap(b, "li", nil, n.Content)
	case TypeTaskList:
		wrap(b, "ul", [][2]string{{"data-type", "taskList"}}, n.Content)
	case TypeTaskItem:
		wrap(b, "li", [][2]string{{"data-type", "taskItem"}, {"data-checked", strconv.FormatBool(n.Bool("checked"))}}, n.Content)
	case TypeBlockquote:
		wrap(b, "blockquote", nil, n.Content)
	case TypeCodeBlock:
		b.WriteString("<pre>")
		var attrs [][2]string
		if lang := n.String("language"); lang != "" {
			attrs = append(attrs, [2]string{"class", "language-" + lang})
		}
		openTag(b, "code", attrs)
		for _, c := range n.Content {
			b.WriteString(html.EscapeString(c.Text))
		}
		b.WriteString("</code></pre>")
	case TypeHorizontalRule:
		b.WriteString("<hr>")
	case TypeTable:
		b.WriteString("<table><tbody>")
		for _, c := range n.Content {
			writeNode(b, c)
		}
		b.WriteString("</tbody></table>")
	case TypeTableRow:
		wrap(b, "tr", nil, n.Content)
	case TypeTableCell, TypeTableHeader:
		tag := "td"
		if n.Type == TypeTableHeader {
			tag = "th"
		}
		wrap(b, tag, [][2]string{
			{"colspan", strconv.Itoa(maxInt(n.Int("colspan"), 1))},
			{"rowspan", strconv.Itoa(maxInt(n.Int("rowspan"), 1))},
		}, n.Content)
	case TypeImage:
		attrs := [][2]string{{"src", n.String("src")}}
		if alt := n.String("alt"); alt != "" {
			attrs = append(attrs, [2]string{"alt", alt})
		}
		if title := n.String("title"); title != "" {
			attrs = append(attrs, [2]string{"title", title})
		}
		openTag(b, "img", attrs)
	case TypeInlineMath:
		openTag(b, "span", [][2]string{{"data-type", "inline-math"}, {"data-latex", n.String("latex")}})
		b.WriteString("</span>")
	case TypeBlockMath:
		openTag(b, "div", [][2]string{{"data-type", "block-math"}, {"data-latex", n.String("latex")}})
		b.WriteString("</div>")
	case TypeMention:
		label := n.String("label")
		openTag(b, "span", [][2]string{{"data-type", "mention"}, {"data-id", n.String("id")}, {"data-label", label}})
		b.WriteString(html.EscapeString("@" + label))
		b.WriteString("</span>")
	case TypeEmoji:
		code := n.String("shortcode")
		openTag(b, "span", [][2]string{{"data-type", "emoji"}, {"data-name", code}})
		b.WriteString(html.EscapeString(":" + code + ":"))
		b.WriteString("</span>")
	case TypeYoutube:
		b.WriteString(`<div data-youtube-video="">`)
		openTag(b, "iframe", [][2]string{{"src", n.String("src")}})
		b.WriteString("</iframe></div>")
	case TypeHardBreak:
		b.WriteString("<br>")
	default:
		// Unknown nodes keep their text so nothing typed is lost.
		b.WriteString(html.EscapeString(n.TextContent()))
	}
}

func wrap(b *strings.Builder, tag string, attrs [][2]string, children []*Node) {
	openTag(b, tag, attrs)
	for _, c := range children {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func openTag(b *strings.Builder, tag string, attrs [][2]string) {
	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a[0])
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a[1]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func writeText(b *strings.Builder, n *Node) {
	for _, m := range n.Marks {
		tag, attrs := markTag(m)
		openTag(b, tag, attrs)
	}
	b.WriteString(html.EscapeString(n.Text))
	for i := len(n.Marks) - 1; i >= 0; i-- {
		tag, _ := markTag(n.Marks[i])
		b.WriteString("</")
		b.WriteString(tag)
		b.WriteByte('>')
	}
}

func markTag(m Mark) (string, [][2]string) {
	switch m.Type {
	case MarkLink:
		return "a", [][2]string{{"href", m.attr("href")}}
	case MarkBold:
		return "strong", nil
	case MarkItalic:
		return "em", nil
	case MarkUnderline:
		return "u", nil
	case MarkStrike:
		return "s", nil
	case MarkCode:
		return "code", nil
	case MarkColor:
		return "span", [][2]string{{"style", "color: " + m.attr("color")}}
	case MarkHighlight:
		if c := m.attr("color"); c != "" {
			return "mark", [][2]string{{"data-color", c}}
		}
		return "mark", nil
	}
	return "span", nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
