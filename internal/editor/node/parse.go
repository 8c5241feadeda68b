package node

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Parse turns persisted content back into a document tree. It never fails:
// empty content yields a document with one empty paragraph, and content that
// is not markup (or does not produce a valid tree) yields a single paragraph
// wrapping the raw text.
func Parse(content string) *Node {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Doc(Paragraph())
	}
	if !strings.HasPrefix(trimmed, "<") {
		return fallback(content)
	}

	blocks, err := ParseFragment(content)
	if err != nil || len(blocks) == 0 {
		return fallback(content)
	}
	doc := Doc(blocks...)
	if err := Check(doc); err != nil {
		return fallback(content)
	}
	return doc
}

func fallback(raw string) *Node {
	if raw == "" {
		return Doc(Paragraph())
	}
	return Doc(Paragraph(Text(raw)))
}

// ParseFragment parses HTML into a normalized list of block nodes. Unknown
// wrapper elements are unwrapped and loose inline content is wrapped in paragraphs.
func ParseFragment(content string) ([]*Node, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	body := findElement(root, "body")
	if body == nil {
		return nil, nil
	}
	blocks := parseFlow(body)
	for _, b := range blocks {
		Normalize(b)
	}
	return blocks, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "head": true, "template": true, "noscript": true,
	"input": true, "label": true, "button": true, "svg": true, "form": true, "select": true,
	"textarea": true, "nav": true,
}

var unwrapTags = map[string]bool{
	"div": true, "section": true, "article": true, "main": true, "header": true,
	"footer": true, "aside": true, "figure": true, "figcaption": true, "center": true,
	"body": true, "html": true, "li": true, "thead": true, "tbody": true, "tfoot": true,
	"dl": true, "dt": true, "dd": true, "details": true, "summary": true,
}

// parseFlow converts the children of a block container into block nodes.
func parseFlow(parent *html.Node) []*Node {
	var (
		blocks  []*Node
		pending []*Node
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if !blankInline(pending) {
			blocks = append(blocks, Paragraph(pending...))
		}
		pending = nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if len(pending) == 0 && strings.TrimSpace(c.Data) == "" {
				continue
			}
			pending = append(pending, Text(c.Data))
		case html.ElementNode:
			if skippedTags[c.Data] {
				continue
			}
			if block, ok := parseBlock(c); ok {
				flush()
				blocks = append(blocks, block...)
				continue
			}
			if unwrapTags[c.Data] {
				flush()
				blocks = append(blocks, parseFlow(c)...)
				continue
			}
			var hoisted []*Node
			parseInline(c, nil, &pending, &hoisted)
			if len(hoisted) > 0 {
				flush()
				blocks = append(blocks, hoisted...)
			}
		}
	}
	flush()
	return blocks
}

// parseBlock handles elements that map onto block nodes.
func parseBlock(el *html.Node) ([]*Node, bool) {
	switch el.Data {
	case "p":
		return textblock(Paragraph(), el), true
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return textblock(Heading(int(el.Data[1]-'0')), el), true
	case "ul":
		if attr(el, "data-type") == "taskList" || isChecklist(el) {
			return nonEmpty(listNode(TypeTaskList, nil, el)), true
		}
		return nonEmpty(listNode(TypeBulletList, nil, el)), true
	case "ol":
		attrs := Attrs{}
		if start, err := strconv.Atoi(attr(el, "start")); err == nil {
			attrs["start"] = start
		}
		return nonEmpty(listNode(TypeOrderedList, attrs, el)), true
	case "blockquote":
		return []*Node{New(TypeBlockquote, nil, ensureBlocks(parseFlow(el))...)}, true
	case "pre":
		return []*Node{codeBlock(el)}, true
	case "hr":
		return []*Node{New(TypeHorizontalRule, nil)}, true
	case "table":
		return nonEmpty(table(el)), true
	case "img":
		return []*Node{image(el)}, true
	case "iframe":
		if src := attr(el, "src"); isYoutube(src) {
			return []*Node{New(TypeYoutube, Attrs{"src": src})}, true
		}
		return nil, true
	case "div":
		if attr(el, "data-type") == "block-math" {
			return []*Node{New(TypeBlockMath, Attrs{"latex": attr(el, "data-latex")})}, true
		}
		if hasAttr(el, "data-youtube-video") {
			if frame := findElement(el, "iframe"); frame != nil {
				return []*Node{New(TypeYoutube, Attrs{"src": attr(frame, "src")})}, true
			}
			return nil, true
		}
	}
	return nil, false
}

func textblock(block *Node, el *html.Node) []*Node {
	var (
		inline  []*Node
		hoisted []*Node
	)
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		parseInline(c, nil, &inline, &hoisted)
	}
	if len(hoisted) > 0 && blankInline(inline) {
		return hoisted
	}
	block.Content = inline
	return append([]*Node{block}, hoisted...)
}

// parseInline appends inline nodes for n, accumulating marks from ancestors.
// Images found in inline context are hoisted out as blocks.
func parseInline(n *html.Node, marks []Mark, out, hoisted *[]*Node) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			*out = append(*out, Text(n.Data, copyMarks(marks)...))
		}
		return
	case html.ElementNode:
	default:
		return
	}
	if skippedTags[n.Data] {
		return
	}

	switch n.Data {
	case "br":
		*out = append(*out, New(TypeHardBreak, nil))
		return
	case "img":
		*hoisted = append(*hoisted, image(n))
		return
	case "span":
		switch attr(n, "data-type") {
		case "inline-math":
			*out = append(*out, New(TypeInlineMath, Attrs{"latex": attr(n, "data-latex")}))
			return
		case "mention":
			*out = append(*out, New(TypeMention, Attrs{"id": attr(n, "data-id"), "label": attr(n, "data-label")}))
			return
		case "emoji":
			*out = append(*out, New(TypeEmoji, Attrs{"shortcode": attr(n, "data-name")}))
			return
		}
		if color := styleColor(attr(n, "style")); color != "" {
			marks = AddMark(marks, Mark{Type: MarkColor, Attrs: map[string]string{"color": color}})
		}
	case "strong", "b":
		marks = AddMark(marks, Mark{Type: MarkBold})
	case "em", "i":
		marks = AddMark(marks, Mark{Type: MarkItalic})
	case "u":
		marks = AddMark(marks, Mark{Type: MarkUnderline})
	case "s", "strike", "del":
		marks = AddMark(marks, Mark{Type: MarkStrike})
	case "code":
		marks = AddMark(marks, Mark{Type: MarkCode})
	case "a":
		marks = AddMark(marks, Mark{Type: MarkLink, Attrs: map[string]string{"href": attr(n, "href")}})
	case "mark":
		marks = AddMark(marks, Mark{Type: MarkHighlight, Attrs: map[string]string{"color": attr(n, "data-color")}})
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parseInline(c, marks, out, hoisted)
	}
}

func listNode(t Type, attrs Attrs, el *html.Node) *Node {
	list := New(t, attrs)
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data != "li" {
			if skippedTags[c.Data] {
				continue
			}
			// Stray content between items becomes an item of its own.
			holder := &html.Node{Type: html.ElementNode, Data: "div"}
			blocks := parseFlow(wrapSingle(holder, c))
			if len(blocks) > 0 {
				list.Content = append(list.Content, listItem(t, false, blocks))
			}
			continue
		}
		checked := attr(c, "data-checked") == "true"
		if box := checkbox(c); box != nil && hasAttr(box, "checked") {
			checked = true
		}
		list.Content = append(list.Content, listItem(t, checked, ensureBlocks(parseFlow(c))))
	}
	if len(list.Content) == 0 {
		return nil
	}
	return list
}

func listItem(listType Type, checked bool, blocks []*Node) *Node {
	if listType == TypeTaskList {
		return New(TypeTaskItem, Attrs{"checked": checked}, blocks...)
	}
	return New(TypeListItem, nil, blocks...)
}

// wrapSingle returns holder with a detached copy of n as its only child so n's
// siblings are not visited.
func wrapSingle(holder, n *html.Node) *html.Node {
	clone := &html.Node{Type: n.Type, Data: n.Data, Attr: n.Attr, FirstChild: n.FirstChild, LastChild: n.LastChild}
	holder.FirstChild, holder.LastChild = clone, clone
	return holder
}

// isChecklist detects GitHub-style task lists: every item starts with a checkbox.
func isChecklist(ul *html.Node) bool {
	items := 0
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		items++
		if checkbox(c) == nil {
			return false
		}
	}
	return items > 0
}

func checkbox(li *html.Node) *html.Node {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.Type != html.ElementNode {
			return nil
		}
		if c.Data == "input" && attr(c, "type") == "checkbox" {
			return c
		}
		if c.Data == "label" || c.Data == "p" {
			return checkbox(c)
		}
		return nil
	}
	return nil
}

func codeBlock(pre *html.Node) *Node {
	lang := ""
	var text strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			text.WriteByte('\n')
		}
		if n.Type == html.ElementNode && n.Data == "code" && lang == "" {
			for _, class := range strings.Fields(attr(n, "class")) {
				if l, ok := strings.CutPrefix(class, "language-"); ok {
					lang = l
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(pre)
	block := New(TypeCodeBlock, Attrs{"language": lang})
	if text.Len() > 0 {
		block.Content = []*Node{Text(text.String())}
	}
	return block
}

func table(el *html.Node) *Node {
	t := New(TypeTable, nil)
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				if row := tableRow(c); row != nil {
					t.Content = append(t.Content, row)
				}
			}
		}
	}
	rows(el)
	if len(t.Content) == 0 {
		return nil
	}
	return t
}

func tableRow(tr *html.Node) *Node {
	row := New(TypeTableRow, nil)
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cellType := TypeTableCell
		if c.Data == "th" {
			cellType = TypeTableHeader
		}
		attrs := Attrs{}
		if n, err := strconv.Atoi(attr(c, "colspan")); err == nil && n > 0 {
			attrs["colspan"] = n
		}
		if n, err := strconv.Atoi(attr(c, "rowspan")); err == nil && n > 0 {
			attrs["rowspan"] = n
		}
		row.Content = append(row.Content, New(cellType, attrs, ensureBlocks(parseFlow(c))...))
	}
	if len(row.Content) == 0 {
		return nil
	}
	return row
}

func image(el *html.Node) *Node {
	return New(TypeImage, Attrs{"src": attr(el, "src"), "alt": attr(el, "alt"), "title": attr(el, "title")})
}

func isYoutube(src string) bool {
	return strings.Contains(src, "youtube.com/") || strings.Contains(src, "youtube-nocookie.com/") || strings.Contains(src, "youtu.be/")
}

func ensureBlocks(blocks []*Node) []*Node {
	if len(blocks) == 0 {
		return []*Node{DefaultBlock()}
	}
	return blocks
}

func nonEmpty(n *Node) []*Node {
	if n == nil {
		return nil
	}
	return []*Node{n}
}

func blankInline(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.IsText() || strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

func copyMarks(marks []Mark) []Mark {
	out := make([]Mark, len(marks))
	for i, m := range marks {
		out[i] = m.clone()
	}
	return out
}

func styleColor(style string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(strings.ToLower(name)) == "color" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
