// Package nodeview implements the editors of atomic nodes that are authored
// in place: inline math, block math and images.
//
// Each editor is either Editing, holding a draft, or Rendered, showing the
// committed attributes. A node created without content starts in Editing.
// Cancelling an edit of a node that never had content deletes the node.
package nodeview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/keys"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

var (
	// ErrUnsupported is returned when opening an editor for a node type that
	// has none.
	ErrUnsupported = errors.New("node has no editor")
	// ErrGone is returned once the edited node no longer exists.
	ErrGone = errors.New("node no longer exists")
	// ErrState is returned for an action the current state does not accept.
	ErrState = errors.New("action not allowed in this state")
	// ErrNoUploader is returned by Upload when no uploader is configured.
	ErrNoUploader = errors.New("image upload is not configured")
)

// State of a node editor.
type State string

const (
	Editing  State = "editing"
	Rendered State = "rendered"
	Deleted  State = "deleted"
)

// Uploader stores image bytes and returns the URL to embed.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, data io.Reader) (string, error)
}

// Editor edits one atomic node of an engine. It finds its node by identity,
// so unrelated edits that move the node do not affect it.
type Editor struct {
	eng      *engine.Engine
	id       uint64
	typ      node.Type
	uploader Uploader

	state State
	draft node.Attrs
	// committed holds the attributes at the time editing started.
	committed node.Attrs
	renderErr error
}

// View is the renderable state of an editor.
type View struct {
	ID    uint64     `json:"id"`
	Type  node.Type  `json:"type"`
	State State      `json:"state"`
	Draft node.Attrs `json:"draft,omitempty"`
	Attrs node.Attrs `json:"attrs,omitempty"`
	HTML  string     `json:"html,omitempty"`
	Error string     `json:"error,omitempty"`
}

// Supported reports whether t has an in-place editor.
func Supported(t node.Type) bool {
	return t == node.TypeInlineMath || t == node.TypeBlockMath || t == node.TypeImage
}

// Open creates an editor for the node with identity id. uploader may be nil.
func Open(eng *engine.Engine, id uint64, uploader Uploader) (*Editor, error) {
	n, err := lookup(eng, id)
	if err != nil {
		return nil, err
	}
	if !Supported(n.Type) {
		return nil, fmt.Errorf("%s: %w", n.Type, ErrUnsupported)
	}
	ed := &Editor{eng: eng, id: id, typ: n.Type, uploader: uploader, state: Rendered}
	ed.committed = copyAttrs(n.Attrs)
	if ed.empty(n.Attrs) {
		ed.state = Editing
		ed.draft = copyAttrs(n.Attrs)
	} else {
		ed.render(n.Attrs)
	}
	return ed, nil
}

func lookup(eng *engine.Engine, id uint64) (*node.Node, error) {
	path, ok := eng.Find(id)
	if !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrGone)
	}
	return eng.NodeAt(path)
}

func (ed *Editor) ID() uint64      { return ed.id }
func (ed *Editor) Type() node.Type { return ed.typ }
func (ed *Editor) State() State    { return ed.state }

// Draft returns the value being edited: the LaTeX source for math, the
// source URL for images.
func (ed *Editor) Draft() string {
	if ed.draft == nil {
		return ""
	}
	s, _ := ed.draft[ed.key()].(string)
	return s
}

func (ed *Editor) key() string {
	if ed.typ == node.TypeImage {
		return "src"
	}
	return "latex"
}

func (ed *Editor) empty(attrs node.Attrs) bool {
	s, _ := attrs[ed.key()].(string)
	return strings.TrimSpace(s) == ""
}

// View returns the current state for rendering.
func (ed *Editor) View() View {
	v := View{ID: ed.id, Type: ed.typ, State: ed.state}
	if ed.state == Deleted {
		return v
	}
	n, err := lookup(ed.eng, ed.id)
	if err != nil {
		v.State = Deleted
		return v
	}
	v.Attrs = copyAttrs(n.Attrs)
	if ed.state == Editing {
		v.Draft = copyAttrs(ed.draft)
		return v
	}
	v.HTML = ed.markup(n.Attrs)
	if ed.renderErr != nil {
		v.Error = ed.renderErr.Error()
	}
	return v
}

// Activate switches a rendered node to editing, prefilled with its current
// attributes.
func (ed *Editor) Activate() error {
	n, err := ed.node()
	if err != nil {
		return err
	}
	if ed.state == Editing {
		return nil
	}
	ed.committed = copyAttrs(n.Attrs)
	ed.draft = copyAttrs(n.Attrs)
	ed.state = Editing
	return nil
}

// Input replaces the draft value.
func (ed *Editor) Input(value string) error {
	if _, err := ed.node(); err != nil {
		return err
	}
	if ed.state != Editing {
		return fmt.Errorf("input while %s: %w", ed.state, ErrState)
	}
	ed.draft[ed.key()] = value
	return nil
}

// HandleKey applies a key press to an editing node. Inline math confirms on
// Enter, block math on Mod+Enter; Escape cancels. It reports whether the key
// was consumed.
func (ed *Editor) HandleKey(ctx context.Context, k keys.Key) (bool, error) {
	if ed.state != Editing {
		return false, nil
	}
	switch {
	case k.Is(keys.Escape):
		return true, ed.Cancel()
	case ed.typ == node.TypeInlineMath && k.Is(keys.Enter):
		return true, ed.Confirm()
	case ed.typ == node.TypeBlockMath && k.Name == keys.Enter && k.Mod() && !k.Shift && !k.Alt:
		return true, ed.Confirm()
	}
	return false, nil
}

// Confirm commits the draft and renders it. Committing an empty draft deletes
// the node. A render failure does not prevent the commit.
func (ed *Editor) Confirm() error {
	path, err := ed.path()
	if err != nil {
		return err
	}
	if ed.state != Editing {
		return fmt.Errorf("confirm while %s: %w", ed.state, ErrState)
	}
	if ed.empty(ed.draft) {
		return ed.delete(path)
	}
	if err := ed.eng.UpdateNodeAttrs(path, ed.draft); err != nil {
		return err
	}
	n, err := ed.node()
	if err != nil {
		return err
	}
	ed.state = Rendered
	ed.draft = nil
	ed.committed = copyAttrs(n.Attrs)
	ed.render(n.Attrs)
	return nil
}

// Cancel abandons the draft. A node that had no content before editing is
// deleted; otherwise its attributes are left as they were.
func (ed *Editor) Cancel() error {
	path, err := ed.path()
	if err != nil {
		return err
	}
	if ed.state != Editing {
		return nil
	}
	if ed.empty(ed.committed) {
		return ed.delete(path)
	}
	n, err := ed.node()
	if err != nil {
		return err
	}
	ed.state = Rendered
	ed.draft = nil
	ed.render(n.Attrs)
	return nil
}

// Done commits an image source with optional alt text and title.
func (ed *Editor) Done(src, alt, title string) error {
	if ed.typ != node.TypeImage {
		return fmt.Errorf("done on %s: %w", ed.typ, ErrState)
	}
	if err := ed.Activate(); err != nil {
		return err
	}
	ed.draft = node.Attrs{"src": strings.TrimSpace(src), "alt": alt, "title": title}
	return ed.Confirm()
}

// Upload stores data through the uploader and commits the resulting URL as
// the image source.
func (ed *Editor) Upload(ctx context.Context, filename string, data io.Reader) error {
	if ed.typ != node.TypeImage {
		return fmt.Errorf("upload on %s: %w", ed.typ, ErrState)
	}
	if ed.uploader == nil {
		return ErrNoUploader
	}
	if _, err := ed.node(); err != nil {
		return err
	}
	url, err := ed.uploader.UploadImage(ctx, filename, data)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	alt, _ := ed.committed["alt"].(string)
	title, _ := ed.committed["title"].(string)
	return ed.Done(url, alt, title)
}

func (ed *Editor) delete(path node.Path) error {
	if err := ed.eng.DeleteNode(path); err != nil {
		return err
	}
	ed.state = Deleted
	ed.draft = nil
	return nil
}

func (ed *Editor) path() (node.Path, error) {
	if ed.state == Deleted {
		return nil, ErrGone
	}
	path, ok := ed.eng.Find(ed.id)
	if !ok {
		ed.state = Deleted
		return nil, fmt.Errorf("node %d: %w", ed.id, ErrGone)
	}
	return path, nil
}

func (ed *Editor) node() (*node.Node, error) {
	path, err := ed.path()
	if err != nil {
		return nil, err
	}
	return ed.eng.NodeAt(path)
}

func (ed *Editor) render(attrs node.Attrs) {
	ed.renderErr = nil
	if ed.typ == node.TypeImage {
		return
	}
	latex, _ := attrs["latex"].(string)
	_, ed.renderErr = RenderMath(latex, ed.typ == node.TypeBlockMath)
}

func (ed *Editor) markup(attrs node.Attrs) string {
	if ed.typ == node.TypeImage {
		return node.SerializeNodes([]*node.Node{node.New(node.TypeImage, attrs)})
	}
	latex, _ := attrs["latex"].(string)
	out, _ := RenderMath(latex, ed.typ == node.TypeBlockMath)
	return out
}

func copyAttrs(a node.Attrs) node.Attrs {
	out := make(node.Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
