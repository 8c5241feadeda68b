// Package engine owns the live content tree of one open document and applies
// editing operations to it atomically.
//
// Every mutation runs against a private copy of the tree. The copy replaces
// the current tree only after it passes schema validation, so a failed
// operation leaves the document exactly as it was. Trees handed out by Doc and
// carried in events are never mutated afterwards and may be kept as snapshots.
//
// An Engine is not safe for concurrent use; callers serialize access (see the
// session package).
package engine

import (
	"errors"
	"fmt"

	"github.com/Priya-753/notion-clone/internal/editor/node"
)

var (
	// ErrInvalidPosition is returned when an operation targets a position
	// outside the tree. The tree is left unchanged.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrSchemaViolation is returned when an operation would produce a tree
	// that breaks the nesting rules. The tree is left unchanged.
	ErrSchemaViolation = node.ErrSchemaViolation
)

// DefaultHistoryDepth bounds the undo stack when no depth is configured.
const DefaultHistoryDepth = 100

// EventKind distinguishes notifications.
type EventKind int

const (
	ContentChanged EventKind = iota
	SelectionChanged
)

func (k EventKind) String() string {
	if k == ContentChanged {
		return "content_changed"
	}
	return "selection_changed"
}

// Event is delivered synchronously to subscribers after each change.
type Event struct {
	Kind EventKind
	// Content is the serialized tree; set for ContentChanged.
	Content string
	// Doc is the tree after the change. It must not be modified.
	Doc       *node.Node
	Selection Selection
	// Version counts content changes, including undo and redo.
	Version uint64
}

type snapshot struct {
	doc *node.Node
	sel Selection
}

type subscriber struct {
	id int
	fn func(Event)
}

// Engine holds the authoritative tree of one document.
type Engine struct {
	doc     *node.Node
	sel     Selection
	version uint64

	depth int
	undo  []snapshot
	redo  []snapshot

	subs   []subscriber
	nextID int
	seq    uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryDepth bounds the number of undoable steps.
func WithHistoryDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.depth = depth
		}
	}
}

// New creates an engine over doc, which must be a valid document tree.
// The cursor starts at the beginning of the first textblock.
func New(doc *node.Node, opts ...Option) (*Engine, error) {
	if doc == nil || doc.Type != node.TypeDoc {
		return nil, fmt.Errorf("root must be a doc node: %w", ErrSchemaViolation)
	}
	doc = doc.Clone()
	node.Normalize(doc)
	if err := node.Check(doc); err != nil {
		return nil, err
	}

	e := &Engine{depth: DefaultHistoryDepth}
	for _, opt := range opts {
		opt(e)
	}
	node.AssignIDs(doc, e.nextNodeID)
	e.doc = doc
	e.sel = Cursor(startOf(doc, node.Path{}))
	return e, nil
}

// NewFromContent parses persisted content and creates an engine over it.
func NewFromContent(content string, opts ...Option) (*Engine, error) {
	return New(node.Parse(content), opts...)
}

func (e *Engine) nextNodeID() uint64 {
	e.seq++
	return e.seq
}

// Doc returns the current tree. It must not be modified.
func (e *Engine) Doc() *node.Node { return e.doc }

// Content returns the serialized current tree.
func (e *Engine) Content() string { return node.Serialize(e.doc) }

// Selection returns the current selection.
func (e *Engine) Selection() Selection { return e.sel }

// Version counts content changes since the engine was created.
func (e *Engine) Version() uint64 { return e.version }

func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Find returns the current path of the node with the given identity.
func (e *Engine) Find(id uint64) (node.Path, bool) { return node.Find(e.doc, id) }

// NodeAt returns the node at path.
func (e *Engine) NodeAt(path node.Path) (*node.Node, error) {
	n, ok := e.doc.At(path)
	if !ok {
		return nil, fmt.Errorf("no node at %s: %w", path, ErrInvalidPosition)
	}
	return n, nil
}

// TextBefore returns the text of the textblock at p up to p. Inline atoms
// read as node.ObjectReplacement.
func (e *Engine) TextBefore(p Position) (string, error) {
	tb, err := textblockAt(e.doc, p)
	if err != nil {
		return "", err
	}
	return node.InlineText(node.SliceInline(tb.Content, 0, p.Offset)), nil
}

// Start is the first position of the first textblock.
func (e *Engine) Start() Position { return startOf(e.doc, node.Path{}) }

// End is the last position of the last textblock.
func (e *Engine) End() Position {
	blocks := node.Textblocks(e.doc)
	if len(blocks) == 0 {
		return Position{Path: node.Path{}, Offset: len(e.doc.Content)}
	}
	last := blocks[len(blocks)-1]
	tb, _ := e.doc.At(last)
	return Position{Path: last, Offset: tb.InlineLen()}
}

// Subscribe registers fn for every event. The returned function removes it.
// Listeners run synchronously, in registration order, and must not mutate
// the engine from inside the callback.
func (e *Engine) Subscribe(fn func(Event)) (cancel func()) {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) emit(ev Event) {
	subs := make([]subscriber, len(e.subs))
	copy(subs, e.subs)
	for _, s := range subs {
		s.fn(ev)
	}
}

func (e *Engine) emitContent() {
	e.emit(Event{Kind: ContentChanged, Content: node.Serialize(e.doc), Doc: e.doc, Selection: e.sel, Version: e.version})
	e.emit(Event{Kind: SelectionChanged, Doc: e.doc, Selection: e.sel, Version: e.version})
}

// SetSelection moves the selection. Both ends must be valid positions.
func (e *Engine) SetSelection(sel Selection) error {
	if _, err := resolve(e.doc, sel.Anchor); err != nil {
		return err
	}
	if _, err := resolve(e.doc, sel.Head); err != nil {
		return err
	}
	sel.Anchor.Path = sel.Anchor.Path.Copy()
	sel.Head.Path = sel.Head.Path.Copy()
	e.sel = sel
	e.emit(Event{Kind: SelectionChanged, Doc: e.doc, Selection: e.sel, Version: e.version})
	return nil
}

// tx is the working state of one operation.
type tx struct {
	doc *node.Node
	sel Selection
}

// apply runs fn against a copy of the tree and commits the result if it is
// valid and differs from the current tree.
func (e *Engine) apply(op string, fn func(t *tx) error) error {
	t := &tx{doc: e.doc.Clone(), sel: e.sel}
	if err := fn(t); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	node.Normalize(t.doc)
	if err := node.Check(t.doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if node.Equal(t.doc, e.doc) {
		return nil
	}
	node.AssignIDs(t.doc, e.nextNodeID)

	e.undo = append(e.undo, snapshot{doc: e.doc, sel: e.sel})
	if len(e.undo) > e.depth {
		e.undo = e.undo[len(e.undo)-e.depth:]
	}
	e.redo = nil

	e.doc = t.doc
	e.sel = clampSelection(t.doc, t.sel)
	e.version++
	e.emitContent()
	return nil
}

// Undo restores the tree before the last change. It reports false at the
// bottom of the history.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, snapshot{doc: e.doc, sel: e.sel})
	e.doc, e.sel = prev.doc, prev.sel
	e.version++
	e.emitContent()
	return true
}

// Redo re-applies the last undone change. It reports false at the top of the history.
func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, snapshot{doc: e.doc, sel: e.sel})
	e.doc, e.sel = next.doc, next.sel
	e.version++
	e.emitContent()
	return true
}

func clampSelection(doc *node.Node, sel Selection) Selection {
	return Selection{Anchor: clamp(doc, sel.Anchor), Head: clamp(doc, sel.Head)}
}

func clamp(doc *node.Node, p Position) Position {
	if _, err := resolve(doc, p); err == nil {
		return p
	}
	n, ok := doc.At(p.Path)
	if ok && n.IsTextblock() {
		return Position{Path: p.Path, Offset: n.InlineLen()}
	}
	return startOf(doc, p.Path)
}
