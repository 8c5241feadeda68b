package engine

import (
	"fmt"

	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// Position points into the tree. When Path names a textblock, Offset counts
// inline positions (one per rune of text, one per inline atom). When Path
// names any other container, Offset is a gap between children.
type Position struct {
	Path   node.Path `json:"path"`
	Offset int       `json:"offset"`
}

// Pos is shorthand for building a Position.
func Pos(offset int, path ...int) Position {
	return Position{Path: node.Path(path), Offset: offset}
}

func (p Position) String() string { return fmt.Sprintf("%s@%d", p.Path, p.Offset) }

// Equal reports whether two positions are identical.
func (p Position) Equal(o Position) bool {
	return p.Path.Equal(o.Path) && p.Offset == o.Offset
}

// Compare orders positions in document order.
func Compare(a, b Position) int {
	if c := node.ComparePaths(a.Path, b.Path); c != 0 {
		return c
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

// Range is a span between two positions. Operations order the ends themselves.
type Range struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Empty reports whether the range covers nothing.
func (r Range) Empty() bool { return r.From.Equal(r.To) }

func (r Range) ordered() Range {
	if Compare(r.From, r.To) > 0 {
		return Range{From: r.To, To: r.From}
	}
	return r
}

// Selection is the user's selection: Anchor stays put while Head moves.
type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

// Cursor is a collapsed selection.
func Cursor(p Position) Selection { return Selection{Anchor: p, Head: p} }

// Empty reports whether the selection is a bare cursor.
func (s Selection) Empty() bool { return s.Anchor.Equal(s.Head) }

// Range returns the selection as a range.
func (s Selection) Range() Range { return Range{From: s.Anchor, To: s.Head}.ordered() }

// resolve validates p against doc and returns the node it points into.
func resolve(doc *node.Node, p Position) (*node.Node, error) {
	n, ok := doc.At(p.Path)
	if !ok {
		return nil, fmt.Errorf("no node at %s: %w", p.Path, ErrInvalidPosition)
	}
	limit := 0
	switch {
	case n.IsTextblock():
		limit = n.InlineLen()
	case n.IsText(), n.Spec() == nil || n.Spec().Leaf():
		return nil, fmt.Errorf("%s at %s has no positions: %w", n.Type, p.Path, ErrInvalidPosition)
	default:
		limit = len(n.Content)
	}
	if p.Offset < 0 || p.Offset > limit {
		return nil, fmt.Errorf("offset %d outside [0,%d] at %s: %w", p.Offset, limit, p.Path, ErrInvalidPosition)
	}
	return n, nil
}

// textblockAt resolves p and requires it to point into a textblock.
func textblockAt(doc *node.Node, p Position) (*node.Node, error) {
	n, err := resolve(doc, p)
	if err != nil {
		return nil, err
	}
	if !n.IsTextblock() {
		return nil, fmt.Errorf("%s at %s is not a textblock: %w", n.Type, p.Path, ErrInvalidPosition)
	}
	return n, nil
}

// startOf returns the first position in the first textblock at or after path,
// falling back to the last textblock before it.
func startOf(doc *node.Node, path node.Path) Position {
	blocks := node.Textblocks(doc)
	for _, b := range blocks {
		if node.ComparePaths(b, path) >= 0 {
			return Position{Path: b}
		}
	}
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		n, _ := doc.At(last)
		return Position{Path: last, Offset: n.InlineLen()}
	}
	return Position{Path: node.Path{}}
}

// endOfFirstTextblock returns the end of the first textblock inside the node at path.
func endOfFirstTextblock(doc *node.Node, path node.Path) (Position, bool) {
	n, ok := doc.At(path)
	if !ok {
		return Position{}, false
	}
	if n.IsTextblock() {
		return Position{Path: path.Copy(), Offset: n.InlineLen()}, true
	}
	for _, rel := range node.Textblocks(n) {
		if len(rel) == 0 {
			continue
		}
		abs := append(path.Copy(), rel...)
		tb, _ := doc.At(abs)
		return Position{Path: abs, Offset: tb.InlineLen()}, true
	}
	return Position{}, false
}

// endOfLastTextblock returns the end of the last textblock inside the node at path.
func endOfLastTextblock(doc *node.Node, path node.Path) (Position, bool) {
	n, ok := doc.At(path)
	if !ok {
		return Position{}, false
	}
	if n.IsTextblock() {
		return Position{Path: path.Copy(), Offset: n.InlineLen()}, true
	}
	blocks := node.Textblocks(n)
	if len(blocks) == 0 || len(blocks[len(blocks)-1]) == 0 {
		return Position{}, false
	}
	abs := append(path.Copy(), blocks[len(blocks)-1]...)
	tb, _ := doc.At(abs)
	return Position{Path: abs, Offset: tb.InlineLen()}, true
}
