// Package command detects the slash trigger while the user types and runs
// palette commands against the editing engine.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/keys"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// Trigger opens the palette.
const Trigger = '/'

var (
	// ErrClosed is returned when executing while the palette is not open.
	ErrClosed = errors.New("command palette is not open")
	// ErrNoCommand is returned for an index outside the filtered list.
	ErrNoCommand = errors.New("no such command")
	// ErrInput is returned when prompted input cannot be used.
	ErrInput = errors.New("invalid command input")
)

// State is the router state.
type State int

const (
	Idle State = iota
	Triggered
)

func (s State) String() string {
	if s == Triggered {
		return "triggered"
	}
	return "idle"
}

// TriggerRule decides when a typed trigger character opens the palette.
type TriggerRule int

const (
	// TriggerAnywhere opens on a trigger immediately before the cursor,
	// wherever it is in the line.
	TriggerAnywhere TriggerRule = iota
	// TriggerLineStart opens only when the trigger is the whole line so far.
	TriggerLineStart
)

// Item is a palette row.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Palette is the view of the router for rendering.
type Palette struct {
	Open      bool            `json:"open"`
	Query     string          `json:"query"`
	Anchor    engine.Position `json:"anchor"`
	Items     []Item          `json:"items"`
	Selected  int             `json:"selected"`
	NoMatches bool            `json:"no_matches"`
	Message   string          `json:"message,omitempty"`
	Available []string        `json:"available,omitempty"`
}

// Router tracks the trigger state of one engine. It follows the engine's
// selection through a subscription and never mutates the tree except when
// executing a command.
type Router struct {
	eng       *engine.Engine
	registry  []Command
	rule      TriggerRule
	prompter  Prompter
	extractor Extractor
	logger    *slog.Logger

	state     State
	anchor    engine.Position
	query     string
	selected  int
	executing bool

	onClose func()
	cancel  func()
}

// Option configures a Router.
type Option func(*Router)

func WithRule(rule TriggerRule) Option { return func(r *Router) { r.rule = rule } }
func WithPrompter(p Prompter) Option { return func(r *Router) { r.prompter = p } }
func WithExtractor(x Extractor) Option { return func(r *Router) { r.extractor = x } }
func WithRegistry(commands []Command) Option { return func(r *Router) { r.registry = commands } }
func WithCloseHook(fn func()) Option { return func(r *Router) { r.onClose = fn } }
func WithLogger(logger *slog.Logger) Option { return func(r *Router) { r.logger = logger } }

// NewRouter subscribes a router to eng.
func NewRouter(eng *engine.Engine, opts ...Option) *Router {
	r := &Router{eng: eng, registry: Registry(), logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.cancel = eng.Subscribe(func(ev engine.Event) {
		if ev.Kind == engine.SelectionChanged {
			r.observe(ev.Selection)
		}
	})
	return r
}

// Close detaches the router from the engine.
func (r *Router) Close() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Router) State() State { return r.state }
func (r *Router) Query() string { return r.query }
func (r *Router) Anchor() engine.Position { return r.anchor }
func (r *Router) SelectedIndex() int { return r.selected }

// Filtered returns the commands matching the current query in registry order.
func (r *Router) Filtered() []Command {
	var out []Command
	for _, c := range r.registry {
		if c.Matches(r.query) {
			out = append(out, c)
		}
	}
	return out
}

// Palette returns the current palette view.
func (r *Router) Palette() Palette {
	if r.state == Idle {
		return Palette{}
	}
	p := Palette{Open: true, Query: r.query, Anchor: r.anchor, Selected: r.selected, Items: []Item{}}
	for _, c := range r.Filtered() {
		p.Items = append(p.Items, Item{Title: c.Title, Description: c.Description, Icon: c.Icon})
	}
	if len(p.Items) == 0 {
		p.NoMatches = true
		p.Message = fmt.Sprintf("No commands found for %q", r.query)
		for _, c := range r.registry {
			p.Available = append(p.Available, c.Title)
		}
	}
	return p
}

// observe applies the transition rules for a new selection.
func (r *Router) observe(sel engine.Selection) {
	if r.executing {
		return
	}
	if !sel.Empty() {
		r.close()
		return
	}
	cursor := sel.Head
	text, err := r.eng.TextBefore(cursor)
	if err != nil {
		r.close()
		return
	}
	before := []rune(text)

	if r.state == Triggered {
		if cursor.Path.Equal(r.anchor.Path) && cursor.Offset > r.anchor.Offset && r.anchor.Offset < len(before) {
			typed := before[r.anchor.Offset:]
			if typed[0] == Trigger {
				r.setQuery(string(typed[1:]))
				return
			}
		}
		r.close()
	}

	switch {
	case len(before) > 1 && before[0] == Trigger:
		// A line that already reads "/image" (pasted or typed in one edit)
		// opens with the rest of the line as the query.
		r.open(cursor.Path, 0, string(before[1:]))
	case len(before) == 0 || before[len(before)-1] != Trigger:
	case r.rule == TriggerLineStart && len(before) != 1:
	default:
		r.open(cursor.Path, cursor.Offset-1, "")
	}
}

func (r *Router) open(path node.Path, offset int, query string) {
	r.state = Triggered
	r.anchor = engine.Position{Path: path.Copy(), Offset: offset}
	r.query = query
	r.selected = 0
	r.logger.Debug("command palette opened", "anchor", r.anchor.String(), "query", query)
}

func (r *Router) setQuery(q string) {
	if q != r.query {
		r.query = q
		r.selected = 0
	}
}

func (r *Router) close() {
	if r.state == Idle {
		return
	}
	r.state = Idle
	r.query = ""
	r.selected = 0
	if r.onClose != nil {
		r.onClose()
	}
}

// HandleKey routes a key press while the palette is open. It reports whether
// the key was consumed; unconsumed keys belong to the editor.
func (r *Router) HandleKey(ctx context.Context, k keys.Key) (bool, error) {
	if r.state == Idle {
		return false, nil
	}
	n := len(r.Filtered())
	switch {
	case k.Is(keys.ArrowDown):
		if n > 0 {
			r.selected = (r.selected + 1) % n
		}
		return true, nil
	case k.Is(keys.ArrowUp):
		if n > 0 {
			r.selected = (r.selected - 1 + n) % n
		}
		return true, nil
	case k.Is(keys.Enter):
		if n == 0 {
			return true, nil
		}
		return true, r.Execute(ctx, r.selected, nil)
	case k.Is(keys.Escape):
		r.close()
		return true, nil
	}
	return false, nil
}

// Execute runs the command at index in the filtered list. The trigger text is
// removed first, then the command applies its edit and the palette closes.
// p overrides the router's prompter when not nil.
func (r *Router) Execute(ctx context.Context, index int, p Prompter) error {
	if r.state == Idle {
		return ErrClosed
	}
	cmds := r.Filtered()
	if index < 0 || index >= len(cmds) {
		return fmt.Errorf("%w: index %d of %d", ErrNoCommand, index, len(cmds))
	}
	cmd := cmds[index]
	if p == nil {
		p = r.prompter
	}

	r.executing = true
	defer func() {
		r.executing = false
		r.close()
	}()

	cursor := r.eng.Selection().Head
	if cursor.Path.Equal(r.anchor.Path) && cursor.Offset > r.anchor.Offset {
		if err := r.eng.DeleteRange(engine.Range{From: r.anchor, To: cursor}); err != nil {
			return fmt.Errorf("remove trigger text: %w", err)
		}
	}

	env := &Env{Engine: r.eng, At: r.anchor, Prompter: p, Extractor: r.extractor}
	if err := cmd.Run(ctx, env); err != nil {
		r.logger.Warn("command failed", "command", cmd.Title, "error", err)
		return fmt.Errorf("%s: %w", strings.ToLower(cmd.Title), err)
	}
	r.logger.Debug("command executed", "command", cmd.Title)
	return nil
}
