package engine

import (
	"fmt"
	"unicode/utf8"

	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// InsertText inserts text at a textblock position. The new text takes the
// marks of the text immediately before it; code blocks never carry marks.
func (e *Engine) InsertText(text string, at Position) error {
	if text == "" {
		return nil
	}
	return e.apply("insert text", func(t *tx) error {
		tb, err := textblockAt(t.doc, at)
		if err != nil {
			return err
		}
		var marks []node.Mark
		if tb.Spec().Marks && at.Offset > 0 {
			before := node.SliceInline(tb.Content, at.Offset-1, at.Offset)
			if len(before) == 1 && before[0].IsText() {
				marks = before[0].Marks
			}
		}
		left, right := node.SplitInline(tb.Content, at.Offset)
		tb.Content = append(append(left, node.Text(text, marks...)), right...)
		t.sel = Cursor(Position{Path: at.Path.Copy(), Offset: at.Offset + utf8.RuneCountInString(text)})
		return nil
	})
}

// InsertNode splices n into the tree at a position. Inline nodes go into the
// textblock at the position. Block nodes inserted at a textblock position
// split it (or replace it when it is empty). At a container position the node
// becomes the child at that gap. After an atomic node the cursor sits
// immediately after it; otherwise it moves to the end of the first textblock
// inside the new node.
func (e *Engine) InsertNode(n *node.Node, at Position) error {
	if n == nil {
		return fmt.Errorf("insert node: nil node: %w", ErrSchemaViolation)
	}
	return e.insert("insert "+string(n.Type), []*node.Node{n}, at)
}

// InsertContent splices a sequence of nodes at a position as one change. The
// nodes must be all inline or all block. The cursor ends after the last node.
func (e *Engine) InsertContent(nodes []*node.Node, at Position) error {
	if len(nodes) == 0 {
		return nil
	}
	return e.insert("insert content", nodes, at)
}

func (e *Engine) insert(op string, nodes []*node.Node, at Position) error {
	prepared := make([]*node.Node, 0, len(nodes))
	inline := 0
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("%s: nil node: %w", op, ErrSchemaViolation)
		}
		n = n.Clone()
		node.ClearIDs(n)
		node.Normalize(n)
		if err := node.Check(n); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if n.Type == node.TypeDoc {
			return fmt.Errorf("%s: cannot insert a doc: %w", op, ErrSchemaViolation)
		}
		if n.IsInline() || n.IsText() {
			inline++
		}
		prepared = append(prepared, n)
	}
	if inline != 0 && inline != len(prepared) {
		return fmt.Errorf("%s: mixed inline and block content: %w", op, ErrSchemaViolation)
	}

	return e.apply(op, func(t *tx) error {
		target, err := resolve(t.doc, at)
		if err != nil {
			return err
		}

		if target.IsTextblock() && inline > 0 {
			size := 0
			for _, n := range prepared {
				if !target.Spec().Allows(n.Type) {
					return fmt.Errorf("%s not allowed in %s: %w", n.Type, target.Type, ErrSchemaViolation)
				}
				size += n.Size()
			}
			left, right := node.SplitInline(target.Content, at.Offset)
			target.Content = append(append(left, prepared...), right...)
			t.sel = Cursor(Position{Path: at.Path.Copy(), Offset: at.Offset + size})
			return nil
		}

		parentPath, index := at.Path, at.Offset
		if target.IsTextblock() {
			parentPath = at.Path.Parent()
			parent, _ := t.doc.At(parentPath)
			index = at.Path.Last()
			switch {
			case target.InlineLen() == 0:
				parent.Content = splice(parent.Content, index, 1)
			case at.Offset == 0:
			case at.Offset == target.InlineLen():
				index++
			default:
				left, right := node.SplitInline(target.Content, at.Offset)
				target.Content = left
				tail := node.New(target.Type, target.Attrs, right...)
				parent.Content = splice(parent.Content, index+1, 0, tail)
				index++
			}
		}

		parent, _ := t.doc.At(parentPath)
		for _, n := range prepared {
			if parent.IsTextblock() || !parent.Spec().Allows(n.Type) {
				return fmt.Errorf("%s not allowed in %s: %w", n.Type, parent.Type, ErrSchemaViolation)
			}
		}
		parent.Content = splice(parent.Content, index, 0, prepared...)

		after := Cursor(Position{Path: parentPath.Copy(), Offset: index + len(prepared)})
		last := prepared[len(prepared)-1]
		switch {
		case last.IsAtom():
			t.sel = after
		case len(prepared) == 1:
			if end, ok := endOfFirstTextblock(t.doc, parentPath.Child(index)); ok {
				t.sel = Cursor(end)
			} else {
				t.sel = after
			}
		default:
			if end, ok := endOfLastTextblock(t.doc, parentPath.Child(index+len(prepared)-1)); ok {
				t.sel = Cursor(end)
			} else {
				t.sel = after
			}
		}
		return nil
	})
}

// DeleteNode removes the node at path. Containers left without required
// children are removed as well; the document and table cells are refilled
// with an empty paragraph instead.
func (e *Engine) DeleteNode(path node.Path) error {
	return e.apply("delete node", func(t *tx) error {
		if len(path) == 0 {
			return fmt.Errorf("cannot delete the root: %w", ErrInvalidPosition)
		}
		target, ok := t.doc.At(path)
		if !ok {
			return fmt.Errorf("no node at %s: %w", path, ErrInvalidPosition)
		}

		parentPath := path.Parent()
		parent, _ := t.doc.At(parentPath)
		var cursor Position
		if parent.IsTextblock() {
			offset := 0
			for _, c := range parent.Content[:path.Last()] {
				offset += c.Size()
			}
			cursor = Position{Path: parentPath.Copy(), Offset: offset}
		}

		removeNodes(t.doc, map[*node.Node]bool{target: true})

		if parent.IsTextblock() {
			if _, ok := t.doc.At(parentPath); ok {
				t.sel = Cursor(cursor)
				return nil
			}
		}
		t.sel = Cursor(startOf(t.doc, path))
		return nil
	})
}

// UpdateNodeAttrs merges attrs into the attributes of the node at path.
func (e *Engine) UpdateNodeAttrs(path node.Path, attrs node.Attrs) error {
	return e.apply("update attrs", func(t *tx) error {
		target, ok := t.doc.At(path)
		if !ok {
			return fmt.Errorf("no node at %s: %w", path, ErrInvalidPosition)
		}
		if target.IsText() {
			return fmt.Errorf("text nodes have no attributes: %w", ErrSchemaViolation)
		}
		merged, err := target.Spec().ValidateAttrs(target.Attrs, attrs)
		if err != nil {
			return err
		}
		target.Attrs = merged
		return nil
	})
}

// ToggleMark adds mark to every text in the range, or removes it when all the
// text already carries it. An empty range is a no-op.
func (e *Engine) ToggleMark(mark node.Mark, r Range) error {
	if !node.KnownMark(mark.Type) {
		return fmt.Errorf("toggle mark: unknown mark %q: %w", mark.Type, ErrSchemaViolation)
	}
	if r.Empty() {
		return nil
	}
	r = r.ordered()

	return e.apply("toggle "+string(mark.Type), func(t *tx) error {
		segments, err := textSegments(t.doc, r)
		if err != nil {
			return err
		}

		all, found := true, false
		for _, s := range segments {
			if !s.block.Spec().Marks {
				continue
			}
			for _, c := range node.SliceInline(s.block.Content, s.from, s.to) {
				if !c.IsText() {
					continue
				}
				found = true
				if !node.HasMark(c.Marks, mark.Type) {
					all = false
				}
			}
		}
		if !found {
			return nil
		}

		for _, s := range segments {
			if !s.block.Spec().Marks {
				continue
			}
			head, rest := node.SplitInline(s.block.Content, s.from)
			mid, tail := node.SplitInline(rest, s.to-s.from)
			for _, c := range mid {
				if !c.IsText() {
					continue
				}
				if all {
					c.Marks = node.RemoveMark(c.Marks, mark.Type)
				} else {
					c.Marks = node.AddMark(c.Marks, mark)
				}
			}
			s.block.Content = append(append(head, mid...), tail...)
		}
		t.sel = Selection{Anchor: r.From, Head: r.To}
		return nil
	})
}

// DeleteRange removes everything between two textblock positions. When the
// ends lie in different textblocks, the remainder of the last one is joined
// onto the first and the nodes in between are removed.
func (e *Engine) DeleteRange(r Range) error {
	if r.Empty() {
		return nil
	}
	r = r.ordered()

	return e.apply("delete range", func(t *tx) error {
		from, err := textblockAt(t.doc, r.From)
		if err != nil {
			return err
		}
		to, err := textblockAt(t.doc, r.To)
		if err != nil {
			return err
		}

		head, _ := node.SplitInline(from.Content, r.From.Offset)
		_, tail := node.SplitInline(to.Content, r.To.Offset)
		if from == to {
			from.Content = append(head, tail...)
			t.sel = Cursor(r.From)
			return nil
		}

		if from.Type == node.TypeCodeBlock {
			tail = plainText(tail)
		}
		from.Content = append(head, tail...)

		drop := map[*node.Node]bool{to: true}
		node.Walk(t.doc, func(n *node.Node, p node.Path) bool {
			if len(p) == 0 {
				return true
			}
			if p.HasPrefix(r.From.Path) || p.HasPrefix(r.To.Path) {
				return false
			}
			if r.From.Path.HasPrefix(p) || r.To.Path.HasPrefix(p) {
				return true
			}
			if node.ComparePaths(p, r.From.Path) > 0 && node.ComparePaths(p, r.To.Path) < 0 {
				drop[n] = true
			}
			return false
		})
		removeNodes(t.doc, drop)
		t.sel = Cursor(r.From)
		return nil
	})
}

type segment struct {
	block    *node.Node
	from, to int
}

// textSegments lists the textblock slices covered by an ordered range.
func textSegments(doc *node.Node, r Range) ([]segment, error) {
	if _, err := textblockAt(doc, r.From); err != nil {
		return nil, err
	}
	if _, err := textblockAt(doc, r.To); err != nil {
		return nil, err
	}
	var out []segment
	for _, p := range node.Textblocks(doc) {
		if node.ComparePaths(p, r.From.Path) < 0 || node.ComparePaths(p, r.To.Path) > 0 {
			continue
		}
		tb, _ := doc.At(p)
		s := segment{block: tb, from: 0, to: tb.InlineLen()}
		if p.Equal(r.From.Path) {
			s.from = r.From.Offset
		}
		if p.Equal(r.To.Path) {
			s.to = r.To.Offset
		}
		out = append(out, s)
	}
	return out, nil
}

// removeNodes drops the given nodes and prunes containers they leave empty.
func removeNodes(doc *node.Node, drop map[*node.Node]bool) {
	doc.Content = filterChildren(doc.Content, drop)
	if len(doc.Content) == 0 {
		doc.Content = []*node.Node{node.DefaultBlock()}
	}
}

func filterChildren(children []*node.Node, drop map[*node.Node]bool) []*node.Node {
	out := make([]*node.Node, 0, len(children))
	for _, c := range children {
		if drop[c] {
			continue
		}
		if len(c.Content) > 0 {
			c.Content = filterChildren(c.Content, drop)
			if len(c.Content) == 0 {
				c.Content = nil
				if spec := c.Spec(); spec != nil && spec.Content.Min > 0 {
					if c.Type != node.TypeTableCell && c.Type != node.TypeTableHeader {
						continue
					}
					c.Content = []*node.Node{node.DefaultBlock()}
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// plainText converts inline content to unmarked text for code blocks.
func plainText(content []*node.Node) []*node.Node {
	var out []*node.Node
	for _, c := range content {
		switch c.Type {
		case node.TypeText:
			out = append(out, node.Text(c.Text))
		case node.TypeHardBreak:
			out = append(out, node.Text("\n"))
		case node.TypeMention:
			out = append(out, node.Text("@"+c.String("label")))
		case node.TypeEmoji:
			out = append(out, node.Text(":"+c.String("shortcode")+":"))
		case node.TypeInlineMath:
			if latex := c.String("latex"); latex != "" {
				out = append(out, node.Text("$"+latex+"$"))
			}
		}
	}
	return out
}

// splice removes count children at index and inserts nodes in their place.
func splice(children []*node.Node, index, count int, nodes ...*node.Node) []*node.Node {
	out := make([]*node.Node, 0, len(children)-count+len(nodes))
	out = append(out, children[:index]...)
	out = append(out, nodes...)
	return append(out, children[index+count:]...)
}
