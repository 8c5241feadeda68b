// Package node defines the document content tree: the typed node schema,
// tree helpers used by the editing engine, and the HTML codec used to persist
// a tree as the document's content string.
package node

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Type identifies a node variant.
type Type string

const (
	TypeDoc            Type = "doc"
	TypeText           Type = "text"
	TypeParagraph      Type = "paragraph"
	TypeHeading        Type = "heading"
	TypeBulletList     Type = "bulletList"
	TypeOrderedList    Type = "orderedList"
	TypeListItem       Type = "listItem"
	TypeTaskList       Type = "taskList"
	TypeTaskItem       Type = "taskItem"
	TypeBlockquote     Type = "blockquote"
	TypeCodeBlock      Type = "codeBlock"
	TypeHorizontalRule Type = "horizontalRule"
	TypeTable          Type = "table"
	TypeTableRow       Type = "tableRow"
	TypeTableCell      Type = "tableCell"
	TypeTableHeader    Type = "tableHeader"
	TypeImage          Type = "image"
	TypeInlineMath     Type = "inlineMath"
	TypeBlockMath      Type = "blockMath"
	TypeMention        Type = "mention"
	TypeEmoji          Type = "emoji"
	TypeYoutube        Type = "youtube"
	TypeHardBreak      Type = "hardBreak"
)

// ObjectReplacement stands in for inline atoms when a textblock is read as text.
const ObjectReplacement = '￼'

// Attrs holds node attributes. After normalization every declared attribute
// is present and holds a string, int or bool.
type Attrs map[string]any

// Node is one element of the content tree. Text nodes carry Text and Marks;
// every other node owns an ordered list of children in Content.
type Node struct {
	Type    Type    `json:"type"`
	Attrs   Attrs   `json:"attrs,omitempty"`
	Content []*Node `json:"content,omitempty"`
	Text    string  `json:"text,omitempty"`
	Marks   []Mark  `json:"marks,omitempty"`

	// id is assigned by the editing engine and never serialized.
	id uint64
}

// New creates a node of type t with its attributes filled from the schema
// defaults. Attribute values that cannot be coerced are kept as given so
// that Check can report them.
func New(t Type, attrs Attrs, children ...*Node) *Node {
	n := &Node{Type: t, Content: children}
	if spec, ok := Lookup(t); ok {
		if normalized, err := spec.normalizeAttrs(attrs); err == nil {
			n.Attrs = normalized
		} else {
			n.Attrs = attrs
		}
	} else {
		n.Attrs = attrs
	}
	return n
}

// Text creates a text node.
func Text(s string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: s, Marks: sortMarks(marks)}
}

func Doc(blocks ...*Node) *Node       { return New(TypeDoc, nil, blocks...) }
func Paragraph(inline ...*Node) *Node { return New(TypeParagraph, nil, inline...) }

func Heading(level int, inline ...*Node) *Node {
	return New(TypeHeading, Attrs{"level": level}, inline...)
}

// ID returns the engine-assigned identity, or 0 when unassigned.
func (n *Node) ID() uint64 { return n.id }

// AssignIDs gives every node under root without an identity a fresh one from next.
func AssignIDs(root *Node, next func() uint64) {
	Walk(root, func(n *Node, _ Path) bool {
		if n.id == 0 {
			n.id = next()
		}
		return true
	})
}

// Retype returns a shallow copy of n with a new type and attributes. The copy
// keeps n's identity and children.
func (n *Node) Retype(t Type, attrs Attrs) *Node {
	c := New(t, attrs, n.Content...)
	c.id = n.id
	return c
}

// ClearIDs strips identities, used when a subtree is copied into a new position.
func ClearIDs(root *Node) {
	Walk(root, func(n *Node, _ Path) bool {
		n.id = 0
		return true
	})
}

// Spec returns the schema entry for the node, or nil for unknown types.
func (n *Node) Spec() *Spec {
	s, _ := Lookup(n.Type)
	return s
}

func (n *Node) IsText() bool { return n.Type == TypeText }

// IsTextblock reports whether the node holds inline content directly.
func (n *Node) IsTextblock() bool {
	s := n.Spec()
	return s != nil && s.Textblock
}

// IsAtom reports whether the node is a leaf without editable content.
func (n *Node) IsAtom() bool {
	s := n.Spec()
	return s != nil && s.Atom
}

// IsInline reports whether the node lives inside textblocks.
func (n *Node) IsInline() bool {
	s := n.Spec()
	return s != nil && s.Group == GroupInline
}

// IsBlock reports whether the node belongs to the block group.
func (n *Node) IsBlock() bool {
	s := n.Spec()
	return s != nil && s.Group == GroupBlock
}

// String attribute accessor; returns "" when absent.
func (n *Node) String(name string) string {
	v, _ := n.Attrs[name].(string)
	return v
}

// Int attribute accessor; returns 0 when absent.
func (n *Node) Int(name string) int {
	switch v := n.Attrs[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool attribute accessor; returns false when absent.
func (n *Node) Bool(name string) bool {
	v, _ := n.Attrs[name].(bool)
	return v
}

// Clone returns a deep copy that keeps node identities.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Text: n.Text, id: n.id}
	if n.Attrs != nil {
		c.Attrs = make(Attrs, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if len(n.Marks) > 0 {
		c.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			c.Marks[i] = m.clone()
		}
	}
	if len(n.Content) > 0 {
		c.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = child.Clone()
		}
	}
	return c
}

// TextContent concatenates the text of every text node below n.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	Walk(n, func(d *Node, _ Path) bool {
		if d.IsText() {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// Size is the width of a node inside a textblock: runes for text, 1 for atoms.
func (n *Node) Size() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	return 1
}

// InlineLen is the number of positions inside a textblock.
func (n *Node) InlineLen() int {
	total := 0
	for _, c := range n.Content {
		total += c.Size()
	}
	return total
}

// Equal reports structural equality, ignoring engine identities.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Text != b.Text {
		return false
	}
	if !attrsEqual(a.Attrs, b.Attrs) || !marksEqual(a.Marks, b.Marks) {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || fmt.Sprint(av) != fmt.Sprint(bv) {
			return false
		}
	}
	return true
}

// Path addresses a node by child indices from the root.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return "/" + strings.Join(parts, "/")
}

// Parent returns the path of the enclosing node. The root's parent is nil.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last is the index of the node within its parent.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns a new path one level deeper.
func (p Path) Child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Copy returns an independent copy of p.
func (p Path) Copy() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}

func (p Path) Equal(o Path) bool { return ComparePaths(p, o) == 0 && len(p) == len(o) }

// HasPrefix reports whether p lies inside (or is) the node at prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ComparePaths orders paths in document order. An ancestor sorts before its descendants.
func ComparePaths(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// At resolves a path against root.
func (n *Node) At(p Path) (*Node, bool) {
	cur := n
	for _, idx := range p {
		if idx < 0 || idx >= len(cur.Content) {
			return nil, false
		}
		cur = cur.Content[idx]
	}
	return cur, true
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(n *Node, p Path) bool) {
	walk(n, nil, fn)
}

func walk(n *Node, p Path, fn func(*Node, Path) bool) {
	if !fn(n, p) {
		return
	}
	for i, c := range n.Content {
		walk(c, p.Child(i), fn)
	}
}

// Find returns the path of the node with the given identity.
func Find(root *Node, id uint64) (Path, bool) {
	var found Path
	ok := false
	Walk(root, func(n *Node, p Path) bool {
		if ok {
			return false
		}
		if n.id == id {
			found, ok = p.Copy(), true
			return false
		}
		return true
	})
	return found, ok
}

// Textblocks lists the paths of all textblocks in document order.
func Textblocks(root *Node) []Path {
	var out []Path
	Walk(root, func(n *Node, p Path) bool {
		if n.IsTextblock() {
			out = append(out, p.Copy())
			return false
		}
		return true
	})
	return out
}

// Normalize brings a tree into canonical form in place: schema defaults
// filled in, marks sorted, empty text dropped and adjacent text nodes with
// equal marks merged.
func Normalize(n *Node) {
	if n.IsText() {
		n.Marks = sortMarks(n.Marks)
		return
	}
	if spec, ok := Lookup(n.Type); ok {
		if attrs, err := spec.normalizeAttrs(n.Attrs); err == nil {
			n.Attrs = attrs
		}
	}
	for _, c := range n.Content {
		Normalize(c)
	}
	n.Content = mergeText(n.Content)
}

func mergeText(children []*Node) []*Node {
	out := children[:0]
	for _, c := range children {
		if c.IsText() && c.Text == "" {
			continue
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.IsText() && c.IsText() && marksEqual(prev.Marks, c.Marks) {
				prev.Text += c.Text
				continue
			}
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitInline divides inline content at a position, splitting a text node when needed.
func SplitInline(content []*Node, offset int) (left, right []*Node) {
	pos := 0
	for i, c := range content {
		size := c.Size()
		switch {
		case offset <= pos:
			return cloneAll(content[:i]), cloneAll(content[i:])
		case offset < pos+size:
			// Only text nodes are wider than one position.
			runes := []rune(c.Text)
			cut := offset - pos
			l := c.Clone()
			l.Text = string(runes[:cut])
			r := c.Clone()
			r.Text = string(runes[cut:])
			r.id = 0
			left = append(cloneAll(content[:i]), l)
			right = append([]*Node{r}, cloneAll(content[i+1:])...)
			return left, right
		}
		pos += size
	}
	return cloneAll(content), nil
}

// SliceInline returns the inline content between two positions.
func SliceInline(content []*Node, from, to int) []*Node {
	_, tail := SplitInline(content, from)
	mid, _ := SplitInline(tail, to-from)
	return mid
}

// InlineText renders inline content as text, with inline atoms as ObjectReplacement.
func InlineText(content []*Node) string {
	var b strings.Builder
	for _, c := range content {
		if c.IsText() {
			b.WriteString(c.Text)
		} else {
			b.WriteRune(ObjectReplacement)
		}
	}
	return b.String()
}

func cloneAll(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Mark is a formatting attribute applied to a text node.
type Mark struct {
	Type  MarkType          `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// MarkType identifies a mark. The declaration order of markRank is also the
// nesting order used when serializing.
type MarkType string

const (
	MarkLink      MarkType = "link"
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkColor     MarkType = "color"
	MarkHighlight MarkType = "highlight"
)

var markRank = map[MarkType]int{
	MarkLink:      0,
	MarkBold:      1,
	MarkItalic:    2,
	MarkUnderline: 3,
	MarkStrike:    4,
	MarkCode:      5,
	MarkColor:     6,
	MarkHighlight: 7,
}

// KnownMark reports whether t is part of the schema.
func KnownMark(t MarkType) bool {
	_, ok := markRank[t]
	return ok
}

func (m Mark) clone() Mark {
	if m.Attrs == nil {
		return Mark{Type: m.Type}
	}
	attrs := make(map[string]string, len(m.Attrs))
	for k, v := range m.Attrs {
		attrs[k] = v
	}
	return Mark{Type: m.Type, Attrs: attrs}
}

func (m Mark) attr(name string) string { return m.Attrs[name] }

func (m Mark) equal(o Mark) bool {
	if m.Type != o.Type || len(m.Attrs) != len(o.Attrs) {
		return false
	}
	for k, v := range m.Attrs {
		if o.Attrs[k] != v {
			return false
		}
	}
	return true
}

// HasMark reports whether marks contains a mark of type t.
func HasMark(marks []Mark, t MarkType) bool {
	for _, m := range marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// AddMark returns marks with m added, replacing any mark of the same type.
func AddMark(marks []Mark, m Mark) []Mark {
	out := RemoveMark(marks, m.Type)
	return sortMarks(append(out, m.clone()))
}

// RemoveMark returns marks without any mark of type t.
func RemoveMark(marks []Mark, t MarkType) []Mark {
	var out []Mark
	for _, existing := range marks {
		if existing.Type != t {
			out = append(out, existing.clone())
		}
	}
	return out
}

// sortMarks orders marks canonically and drops empty attribute values.
func sortMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	for i := range marks {
		for k, v := range marks[i].Attrs {
			if v == "" {
				delete(marks[i].Attrs, k)
			}
		}
		if len(marks[i].Attrs) == 0 {
			marks[i].Attrs = nil
		}
	}
	sort.SliceStable(marks, func(i, j int) bool {
		return markRank[marks[i].Type] < markRank[marks[j].Type]
	})
	return marks
}

func marksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}
