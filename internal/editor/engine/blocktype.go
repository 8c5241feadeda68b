package engine

import (
	"fmt"
	"strings"

	"github.com/Priya-753/notion-clone/internal/editor/node"
)

func isList(t node.Type) bool {
	return t == node.TypeBulletList || t == node.TypeOrderedList || t == node.TypeTaskList
}

func isWrapper(t node.Type) bool {
	return isList(t) || t == node.TypeBlockquote
}

// SetBlockType converts the blocks touching r to type t.
//
// Textblock targets (paragraph, heading, code block) retype every textblock in
// the range and keep its inline content; text entering a code block loses its
// marks and inline atoms become their text form. List and quote targets wrap
// the touched sibling blocks. When the range already sits in a wrapper of the
// same type the wrapper is lifted instead, and a list of another kind is
// converted in place. Any other target type is a schema violation.
func (e *Engine) SetBlockType(t node.Type, attrs node.Attrs, r Range) error {
	spec, ok := node.Lookup(t)
	if !ok || !(spec.Textblock || isWrapper(t)) {
		return fmt.Errorf("set block type %s: not a block type: %w", t, ErrSchemaViolation)
	}
	r = r.ordered()

	return e.apply("set block type "+string(t), func(w *tx) error {
		from, err := textblockAt(w.doc, r.From)
		if err != nil {
			return err
		}
		to, err := textblockAt(w.doc, r.To)
		if err != nil {
			return err
		}
		fromID, toID := from.ID(), to.ID()

		if spec.Textblock {
			retypeTextblocks(w.doc, r, t, attrs)
		} else if err := wrapBlocks(w.doc, r, t, attrs); err != nil {
			return err
		}

		w.sel = Selection{Anchor: remap(w.doc, fromID, r.From), Head: remap(w.doc, toID, r.To)}
		return nil
	})
}

// remap finds the textblock with identity id and keeps the offset within it.
func remap(doc *node.Node, id uint64, p Position) Position {
	if id == 0 {
		return p
	}
	if path, ok := node.Find(doc, id); ok {
		return Position{Path: path, Offset: p.Offset}
	}
	return p
}

func retypeTextblocks(doc *node.Node, r Range, t node.Type, attrs node.Attrs) {
	for _, p := range node.Textblocks(doc) {
		if node.ComparePaths(p, r.From.Path) < 0 || node.ComparePaths(p, r.To.Path) > 0 {
			continue
		}
		tb, _ := doc.At(p)
		parent, _ := doc.At(p.Parent())
		content := tb.Content
		switch {
		case t == node.TypeCodeBlock && tb.Type != node.TypeCodeBlock:
			content = plainText(content)
		case t != node.TypeCodeBlock && tb.Type == node.TypeCodeBlock:
			content = lineBreaks(content)
		}
		converted := tb.Retype(t, attrs)
		converted.Content = content
		parent.Content[p.Last()] = converted
	}
}

// lineBreaks turns newlines in code text into hard breaks.
func lineBreaks(content []*node.Node) []*node.Node {
	var out []*node.Node
	for _, c := range content {
		if !c.IsText() || !strings.Contains(c.Text, "\n") {
			out = append(out, c)
			continue
		}
		for i, line := range strings.Split(c.Text, "\n") {
			if i > 0 {
				out = append(out, node.New(node.TypeHardBreak, nil))
			}
			if line != "" {
				out = append(out, node.Text(line, c.Marks...))
			}
		}
	}
	return out
}

func wrapBlocks(doc *node.Node, r Range, t node.Type, attrs node.Attrs) error {
	common := commonAncestor(r.From.Path.Parent(), r.To.Path.Parent())

	// Innermost wrapper enclosing the whole range.
	for p := common; ; p = p.Parent() {
		n, _ := doc.At(p)
		switch {
		case isList(n.Type) && isList(t):
			if n.Type == t {
				return liftItems(doc, p, r)
			}
			return convertList(doc, p, t, attrs)
		case n.Type == node.TypeBlockquote && t == node.TypeBlockquote:
			return unwrap(doc, p)
		case isList(n.Type):
			// Quote a whole list rather than some of its items.
			return wrapSiblings(doc, p.Parent(), p.Last(), p.Last(), t, attrs)
		}
		if len(p) == 0 {
			break
		}
	}

	d := len(common)
	return wrapSiblings(doc, common, r.From.Path[d], r.To.Path[d], t, attrs)
}

func commonAncestor(a, b node.Path) node.Path {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n].Copy()
}

// wrapSiblings wraps children first..last of the container at path.
func wrapSiblings(doc *node.Node, path node.Path, first, last int, t node.Type, attrs node.Attrs) error {
	parent, _ := doc.At(path)
	if parent.IsTextblock() || !parent.Spec().Allows(t) {
		return fmt.Errorf("%s not allowed in %s: %w", t, parent.Type, ErrSchemaViolation)
	}
	blocks := append([]*node.Node(nil), parent.Content[first:last+1]...)

	var wrapper *node.Node
	if isList(t) {
		item := node.TypeListItem
		if t == node.TypeTaskList {
			item = node.TypeTaskItem
		}
		items := make([]*node.Node, 0, len(blocks))
		for _, b := range blocks {
			items = append(items, node.New(item, nil, b))
		}
		wrapper = node.New(t, attrs, items...)
	} else {
		wrapper = node.New(t, attrs, blocks...)
	}
	parent.Content = splice(parent.Content, first, last-first+1, wrapper)
	return nil
}

// liftItems replaces the items of the list at path that the range touches
// with their contents, splitting the list around them.
func liftItems(doc *node.Node, path node.Path, r Range) error {
	list, _ := doc.At(path)
	parent, _ := doc.At(path.Parent())
	d := len(path)
	first, last := r.From.Path[d], r.To.Path[d]

	var replacement []*node.Node
	if first > 0 {
		before := list.Retype(list.Type, list.Attrs)
		before.Content = list.Content[:first]
		replacement = append(replacement, before)
	}
	for _, item := range list.Content[first : last+1] {
		replacement = append(replacement, item.Content...)
	}
	if last+1 < len(list.Content) {
		replacement = append(replacement, node.New(list.Type, list.Attrs, list.Content[last+1:]...))
	}
	parent.Content = splice(parent.Content, path.Last(), 1, replacement...)
	return nil
}

// convertList changes the kind of the list at path, converting its items.
func convertList(doc *node.Node, path node.Path, t node.Type, attrs node.Attrs) error {
	list, _ := doc.At(path)
	parent, _ := doc.At(path.Parent())
	item := node.TypeListItem
	if t == node.TypeTaskList {
		item = node.TypeTaskItem
	}
	converted := list.Retype(t, attrs)
	converted.Content = make([]*node.Node, 0, len(list.Content))
	for _, it := range list.Content {
		if it.Type == item {
			converted.Content = append(converted.Content, it)
			continue
		}
		c := it.Retype(item, nil)
		c.Content = it.Content
		converted.Content = append(converted.Content, c)
	}
	parent.Content[path.Last()] = converted
	return nil
}

// unwrap replaces the container at path with its children.
func unwrap(doc *node.Node, path node.Path) error {
	n, _ := doc.At(path)
	parent, _ := doc.At(path.Parent())
	parent.Content = splice(parent.Content, path.Last(), 1, n.Content...)
	return nil
}
