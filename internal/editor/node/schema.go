package node

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSchemaViolation is returned when a tree or attribute set breaks the nesting rules.
var ErrSchemaViolation = errors.New("schema violation")

// Group classifies nodes for content rules.
type Group string

const (
	GroupBlock  Group = "block"
	GroupInline Group = "inline"
	// GroupNone marks structural nodes that are only valid inside one specific parent.
	GroupNone Group = ""
)

// AttrKind is the value type of an attribute.
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrInt
	AttrBool
)

// AttrSpec declares one attribute of a node type.
type AttrSpec struct {
	Name    string
	Kind    AttrKind
	Default any
	Min     int // inclusive bounds for AttrInt, ignored when Min == Max == 0
	Max     int
}

// ContentRule lists which children a node accepts and how many it needs.
type ContentRule struct {
	Types  []Type
	Groups []Group
	Min    int
}

// Spec is the static description of one node type.
type Spec struct {
	Type      Type
	Group     Group
	Content   ContentRule
	Textblock bool // children are inline content
	Atom      bool // no children, no editable content
	Marks     bool // text children may carry marks
	Attrs     []AttrSpec
}

var specs = []Spec{
	{Type: TypeDoc, Content: ContentRule{Groups: []Group{GroupBlock}, Min: 1}},
	{Type: TypeText, Group: GroupInline},
	{Type: TypeParagraph, Group: GroupBlock, Textblock: true, Marks: true,
		Content: ContentRule{Groups: []Group{GroupInline}}},
	{Type: TypeHeading, Group: GroupBlock, Textblock: true, Marks: true,
		Content: ContentRule{Groups: []Group{GroupInline}},
		Attrs:   []AttrSpec{{Name: "level", Kind: AttrInt, Default: 1, Min: 1, Max: 6}}},
	{Type: TypeBulletList, Group: GroupBlock,
		Content: ContentRule{Types: []Type{TypeListItem}, Min: 1}},
	{Type: TypeOrderedList, Group: GroupBlock,
		Content: ContentRule{Types: []Type{TypeListItem}, Min: 1},
		Attrs:   []AttrSpec{{Name: "start", Kind: AttrInt, Default: 1, Min: 0, Max: 1 << 30}}},
	{Type: TypeListItem, Content: ContentRule{Groups: []Group{GroupBlock}, Min: 1}},
	{Type: TypeTaskList, Group: GroupBlock,
		Content: ContentRule{Types: []Type{TypeTaskItem}, Min: 1}},
	{Type: TypeTaskItem, Content: ContentRule{Groups: []Group{GroupBlock}, Min: 1},
		Attrs: []AttrSpec{{Name: "checked", Kind: AttrBool, Default: false}}},
	{Type: TypeBlockquote, Group: GroupBlock, Content: ContentRule{Groups: []Group{GroupBlock}, Min: 1}},
	{Type: TypeCodeBlock, Group: GroupBlock, Textblock: true,
		Content: ContentRule{Types: []Type{TypeText}},
		Attrs:   []AttrSpec{{Name: "language", Kind: AttrString, Default: ""}}},
	{Type: TypeHorizontalRule, Group: GroupBlock, Atom: true},
	{Type: TypeTable, Group: GroupBlock, Content: ContentRule{Types: []Type{TypeTableRow}, Min: 1}},
	{Type: TypeTableRow, Content: ContentRule{Types: []Type{TypeTableCell, TypeTableHeader}, Min: 1}},
	{Type: TypeTableCell, Content: ContentRule{Groups: []Group{GroupBlock}, Min: 1}, Attrs: cellAttrs},
	{Type: TypeTableHeader, Content: ContentRule{Groups: []Group{GroupBlock}, Min: 1}, Attrs: cellAttrs},
	{Type: TypeImage, Group: GroupBlock, Atom: true, Attrs: []AttrSpec{
		{Name: "src", Kind: AttrString, Default: ""},
		{Name: "alt", Kind: AttrString, Default: ""},
		{Name: "title", Kind: AttrString, Default: ""},
	}},
	{Type: TypeInlineMath, Group: GroupInline, Atom: true,
		Attrs: []AttrSpec{{Name: "latex", Kind: AttrString, Default: ""}}},
	{Type: TypeBlockMath, Group: GroupBlock, Atom: true,
		Attrs: []AttrSpec{{Name: "latex", Kind: AttrString, Default: ""}}},
	{Type: TypeMention, Group: GroupInline, Atom: true, Attrs: []AttrSpec{
		{Name: "id", Kind: AttrString, Default: ""},
		{Name: "label", Kind: AttrString, Default: ""},
	}},
	{Type: TypeEmoji, Group: GroupInline, Atom: true,
		Attrs: []AttrSpec{{Name: "shortcode", Kind: AttrString, Default: ""}}},
	{Type: TypeYoutube, Group: GroupBlock, Atom: true,
		Attrs: []AttrSpec{{Name: "src", Kind: AttrString, Default: ""}}},
	{Type: TypeHardBreak, Group: GroupInline, Atom: true},
}

var cellAttrs = []AttrSpec{
	{Name: "colspan", Kind: AttrInt, Default: 1, Min: 1, Max: 1000},
	{Name: "rowspan", Kind: AttrInt, Default: 1, Min: 1, Max: 1000},
}

var registry = func() map[Type]*Spec {
	m := make(map[Type]*Spec, len(specs))
	for i := range specs {
		m[specs[i].Type] = &specs[i]
	}
	return m
}()

// Lookup returns the schema entry for t.
func Lookup(t Type) (*Spec, bool) {
	s, ok := registry[t]
	return s, ok
}

// Allows reports whether a node of type child may appear in a node of this type.
func (s *Spec) Allows(child Type) bool {
	for _, t := range s.Content.Types {
		if t == child {
			return true
		}
	}
	cs, ok := Lookup(child)
	if !ok {
		return false
	}
	for _, g := range s.Content.Groups {
		if g == cs.Group && g != GroupNone {
			return true
		}
	}
	return false
}

// Leaf reports whether the type never has children.
func (s *Spec) Leaf() bool {
	return len(s.Content.Types) == 0 && len(s.Content.Groups) == 0
}

// ValidateAttrs merges update into current and returns the normalized result.
// Unknown attribute names and out-of-range values are schema violations.
func (s *Spec) ValidateAttrs(current, update Attrs) (Attrs, error) {
	merged := make(Attrs, len(current)+len(update))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range update {
		if s.attr(k) == nil {
			return nil, fmt.Errorf("%s has no attribute %q: %w", s.Type, k, ErrSchemaViolation)
		}
		merged[k] = v
	}
	return s.normalizeAttrs(merged)
}

func (s *Spec) attr(name string) *AttrSpec {
	for i := range s.Attrs {
		if s.Attrs[i].Name == name {
			return &s.Attrs[i]
		}
	}
	return nil
}

func (s *Spec) normalizeAttrs(in Attrs) (Attrs, error) {
	if len(s.Attrs) == 0 {
		if len(in) > 0 {
			for k := range in {
				return nil, fmt.Errorf("%s has no attribute %q: %w", s.Type, k, ErrSchemaViolation)
			}
		}
		return nil, nil
	}
	out := make(Attrs, len(s.Attrs))
	for _, a := range s.Attrs {
		raw, ok := in[a.Name]
		if !ok || raw == nil {
			out[a.Name] = a.Default
			continue
		}
		v, err := a.coerce(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v: %w", s.Type, a.Name, err, ErrSchemaViolation)
		}
		out[a.Name] = v
	}
	for k := range in {
		if s.attr(k) == nil {
			return nil, fmt.Errorf("%s has no attribute %q: %w", s.Type, k, ErrSchemaViolation)
		}
	}
	return out, nil
}

func (a AttrSpec) coerce(raw any) (any, error) {
	switch a.Kind {
	case AttrString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
		return nil, fmt.Errorf("want string, got %T", raw)
	case AttrBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("want bool, got %q", v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("want bool, got %T", raw)
	case AttrInt:
		var n int
		switch v := raw.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("want integer, got %v", v)
			}
			n = int(v)
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("want integer, got %q", v)
			}
			n = parsed
		default:
			return nil, fmt.Errorf("want integer, got %T", raw)
		}
		if (a.Min != 0 || a.Max != 0) && (n < a.Min || n > a.Max) {
			return nil, fmt.Errorf("%d outside [%d,%d]", n, a.Min, a.Max)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unknown attribute kind %d", a.Kind)
}

// Check validates a whole subtree against the schema.
func Check(n *Node) error {
	return check(n, nil)
}

func check(n *Node, p Path) error {
	spec, ok := Lookup(n.Type)
	if !ok {
		return fmt.Errorf("unknown node type %q at %s: %w", n.Type, p, ErrSchemaViolation)
	}
	if n.IsText() {
		if n.Text == "" {
			return fmt.Errorf("empty text node at %s: %w", p, ErrSchemaViolation)
		}
		for _, m := range n.Marks {
			if !KnownMark(m.Type) {
				return fmt.Errorf("unknown mark %q at %s: %w", m.Type, p, ErrSchemaViolation)
			}
		}
		return nil
	}
	if _, err := spec.normalizeAttrs(n.Attrs); err != nil {
		return fmt.Errorf("at %s: %w", p, err)
	}
	if spec.Leaf() && len(n.Content) > 0 {
		return fmt.Errorf("%s at %s cannot have children: %w", n.Type, p, ErrSchemaViolation)
	}
	if len(n.Content) < spec.Content.Min {
		return fmt.Errorf("%s at %s needs at least %d children: %w", n.Type, p, spec.Content.Min, ErrSchemaViolation)
	}
	for i, c := range n.Content {
		if !spec.Allows(c.Type) {
			return fmt.Errorf("%s not allowed in %s at %s: %w", c.Type, n.Type, p.Child(i), ErrSchemaViolation)
		}
		if c.IsText() && len(c.Marks) > 0 && !spec.Marks {
			return fmt.Errorf("marks not allowed in %s at %s: %w", n.Type, p, ErrSchemaViolation)
		}
		if err := check(c, p.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

// DefaultBlock is the block created to fill containers that must not be empty.
func DefaultBlock() *Node { return Paragraph() }
