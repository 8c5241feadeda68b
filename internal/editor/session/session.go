// Package session binds one open document to its editing engine, command
// router, autosave layer and node editors. A Session serializes all access to
// those components, so callers on different goroutines may share it.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Priya-753/notion-clone/internal/domain"
	"github.com/Priya-753/notion-clone/internal/editor/autosave"
	"github.com/Priya-753/notion-clone/internal/editor/command"
	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/keys"
	"github.com/Priya-753/notion-clone/internal/editor/node"
	"github.com/Priya-753/notion-clone/internal/editor/nodeview"
)

// Session is one user's editing session on one document.
type Session struct {
	ID         string
	DocumentID string
	OwnerID    string

	logger *slog.Logger

	mu       sync.Mutex
	eng      *engine.Engine
	router   *command.Router
	saver    *autosave.Saver
	uploader nodeview.Uploader
	editors  map[uint64]*nodeview.Editor
	lastUsed time.Time
	closed   bool
	cancel   []func()
}

// View is the client-facing state of a session.
type View struct {
	ID         string           `json:"id"`
	DocumentID string           `json:"document_id"`
	Content    string           `json:"content"`
	Selection  engine.Selection `json:"selection"`
	Version    uint64           `json:"version"`
	CanUndo    bool             `json:"can_undo"`
	CanRedo    bool             `json:"can_redo"`
	Palette    command.Palette  `json:"palette"`
	SaveStatus autosave.Status  `json:"save_status"`
	Title      string           `json:"title"`
	Nodes      []nodeview.View  `json:"nodes"`
}

// Op is one engine operation as sent by a client.
type Op struct {
	Op        string            `json:"op"`
	Text      string            `json:"text,omitempty"`
	At        *engine.Position  `json:"at,omitempty"`
	Range     *engine.Range     `json:"range,omitempty"`
	Selection *engine.Selection `json:"selection,omitempty"`
	Path      node.Path         `json:"path,omitempty"`
	Node      *node.Node        `json:"node,omitempty"`
	HTML      string            `json:"html,omitempty"`
	Mark      *node.Mark        `json:"mark,omitempty"`
	Type      node.Type         `json:"type,omitempty"`
	Attrs     node.Attrs        `json:"attrs,omitempty"`
	Value     *string           `json:"value,omitempty"`
}

// NodeAction is an action on a node editor.
type NodeAction struct {
	Action string    `json:"action"` // activate, input, confirm, cancel, done, key
	Value  string    `json:"value,omitempty"`
	Alt    string    `json:"alt,omitempty"`
	Title  string    `json:"title,omitempty"`
	Key    *keys.Key `json:"key,omitempty"`
}

func (s *Session) touch() { s.lastUsed = time.Now() }

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// lock acquires the session for an operation.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session %s: %w", s.ID, domain.ErrNotFound)
	}
	s.touch()
	return nil
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	v := View{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Content:    s.eng.Content(),
		Selection:  s.eng.Selection(),
		Version:    s.eng.Version(),
		CanUndo:    s.eng.CanUndo(),
		CanRedo:    s.eng.CanRedo(),
		Palette:    s.router.Palette(),
		SaveStatus: s.saver.Status(),
		Title:      s.saver.Title(),
		Nodes:      []nodeview.View{},
	}
	node.Walk(s.eng.Doc(), func(n *node.Node, _ node.Path) bool {
		if ed, ok := s.editors[n.ID()]; ok {
			v.Nodes = append(v.Nodes, ed.View())
		}
		return true
	})
	return v
}

// Apply runs one engine operation. Positions and ranges default to the
// current selection.
func (s *Session) Apply(ctx context.Context, op Op) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	if err := s.apply(op); err != nil {
		return s.view(), err
	}
	s.syncEditors()
	return s.view(), nil
}

func (s *Session) apply(op Op) error {
	sel := s.eng.Selection()
	at := sel.Head
	if op.At != nil {
		at = *op.At
	}
	r := sel.Range()
	if op.Range != nil {
		r = *op.Range
	}

	switch op.Op {
	case "insert_text":
		return s.eng.InsertText(op.Text, at)
	case "insert_node":
		if op.Node == nil {
			return domain.NewValidation("node is required")
		}
		return s.eng.InsertNode(op.Node, at)
	case "insert_html":
		nodes, err := node.ParseFragment(op.HTML)
		if err != nil {
			return domain.NewValidation("invalid html: %v", err)
		}
		return s.eng.InsertContent(nodes, at)
	case "delete_node":
		return s.eng.DeleteNode(op.Path)
	case "update_attrs":
		return s.eng.UpdateNodeAttrs(op.Path, op.Attrs)
	case "toggle_mark":
		if op.Mark == nil {
			return domain.NewValidation("mark is required")
		}
		return s.eng.ToggleMark(*op.Mark, r)
	case "set_block_type":
		return s.eng.SetBlockType(op.Type, op.Attrs, r)
	case "delete_range":
		return s.eng.DeleteRange(r)
	case "set_selection":
		if op.Selection == nil {
			return domain.NewValidation("selection is required")
		}
		return s.eng.SetSelection(*op.Selection)
	case "undo":
		s.eng.Undo()
		return nil
	case "redo":
		s.eng.Redo()
		return nil
	case "set_icon":
		s.saver.SetIcon(op.Value)
		return nil
	case "set_cover":
		s.saver.SetCover(op.Value)
		return nil
	case "retry_save":
		s.saver.Retry()
		return nil
	}
	return domain.NewValidation("unknown op %q", op.Op)
}

var markShortcuts = map[string]node.MarkType{
	"b": node.MarkBold,
	"i": node.MarkItalic,
	"u": node.MarkUnderline,
	"e": node.MarkCode,
}

// HandleKey routes a key press: the open palette gets it first, then the
// editor shortcuts.
func (s *Session) HandleKey(ctx context.Context, k keys.Key) (View, bool, error) {
	if err := s.lock(); err != nil {
		return View{}, false, err
	}
	defer s.mu.Unlock()

	consumed, err := s.router.HandleKey(ctx, k)
	if !consumed && err == nil {
		consumed, err = s.shortcut(k)
	}
	s.syncEditors()
	return s.view(), consumed, err
}

func (s *Session) shortcut(k keys.Key) (bool, error) {
	sel := s.eng.Selection()
	switch {
	case k.Mod() && k.Name == "z" && !k.Shift:
		s.eng.Undo()
		return true, nil
	case k.Mod() && (k.Name == "z" && k.Shift || k.Name == "y"):
		s.eng.Redo()
		return true, nil
	case k.Mod() && !k.Shift && !k.Alt && markShortcuts[k.Name] != "":
		return true, s.eng.ToggleMark(node.Mark{Type: markShortcuts[k.Name]}, sel.Range())
	case k.Is(keys.Backspace):
		r := sel.Range()
		if r.Empty() {
			if r.From.Offset == 0 {
				return false, nil
			}
			r.From.Offset--
		}
		return true, s.eng.DeleteRange(r)
	}
	return false, nil
}

// Execute runs the palette entry at index of the filtered list. answer, when
// not nil, is the value given to a command that prompts for input.
func (s *Session) Execute(ctx context.Context, index int, answer *string) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	var p command.Prompter
	if answer != nil {
		p = command.Answer(*answer)
	}
	err := s.router.Execute(ctx, index, p)
	s.syncEditors()
	return s.view(), err
}

// Node applies an action to the editor of the node with identity id.
func (s *Session) Node(ctx context.Context, id uint64, a NodeAction) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	ed, err := s.editor(id)
	if err != nil {
		return s.view(), err
	}
	switch a.Action {
	case "activate":
		err = ed.Activate()
	case "input":
		err = ed.Input(a.Value)
	case "confirm":
		err = ed.Confirm()
	case "cancel":
		err = ed.Cancel()
	case "done":
		err = ed.Done(a.Value, a.Alt, a.Title)
	case "key":
		if a.Key == nil {
			err = domain.NewValidation("key is required")
			break
		}
		_, err = ed.HandleKey(ctx, *a.Key)
	default:
		err = domain.NewValidation("unknown node action %q", a.Action)
	}
	s.syncEditors()
	return s.view(), err
}

// Upload stores an image and commits it as the source of image node id.
func (s *Session) Upload(ctx context.Context, id uint64, filename string, data io.Reader) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	ed, err := s.editor(id)
	if err != nil {
		return s.view(), err
	}
	err = ed.Upload(ctx, filename, data)
	s.syncEditors()
	return s.view(), err
}

func (s *Session) editor(id uint64) (*nodeview.Editor, error) {
	if ed, ok := s.editors[id]; ok && ed.State() != nodeview.Deleted {
		return ed, nil
	}
	ed, err := nodeview.Open(s.eng, id, s.uploader)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	s.editors[id] = ed
	return ed, nil
}

// syncEditors opens an editor for every editable atom that has none and
// drops editors whose node is gone. Unauthored atoms open in editing state.
func (s *Session) syncEditors() {
	live := make(map[uint64]bool)
	node.Walk(s.eng.Doc(), func(n *node.Node, _ node.Path) bool {
		if !nodeview.Supported(n.Type) {
			return true
		}
		live[n.ID()] = true
		if _, ok := s.editors[n.ID()]; !ok {
			if ed, err := nodeview.Open(s.eng, n.ID(), s.uploader); err == nil {
				s.editors[n.ID()] = ed
			}
		}
		return true
	})
	for id, ed := range s.editors {
		if !live[id] || ed.State() == nodeview.Deleted {
			delete(s.editors, id)
		}
	}
}

// Flush waits for pending autosave writes.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// close flushes pending content and detaches the components.
func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.router.Close()
	for _, c := range s.cancel {
		c()
	}
	s.mu.Unlock()

	err := s.saver.Flush(ctx)
	s.saver.Close()
	if err != nil {
		s.logger.Warn("session closed with unsaved changes", "session_id", s.ID, "document_id", s.DocumentID, "error", err)
	}
	return err
}
