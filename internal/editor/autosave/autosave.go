// Package autosave persists the content of an editing session without a
// store write per keystroke.
//
// Content changes are debounced: every change restarts a quiet timer and the
// latest content is written when it expires. At most one content write is in
// flight; a timer that expires during a write re-arms the write for when it
// completes. The title derived from the first block, and the icon and cover
// image, are written immediately as separate partial updates. Every write is
// skipped when the value equals the last value known to be persisted.
package autosave

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// DefaultQuiet is the debounce period when none is configured.
const DefaultQuiet = time.Second

// Status is the save status shown to the user.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusUnsaved Status = "unsaved"
	StatusSaving  Status = "saving"
)

// Store is the part of the document service the saver writes through.
type Store interface {
	UpdateDocument(ctx context.Context, ownerID, documentID string, req *docsvc.UpdateDocumentRequest) (*docsystem.Document, error)
}

type field int

const (
	fieldContent field = iota
	fieldTitle
	fieldIcon
	fieldCover
	fieldCount
)

var fieldNames = [fieldCount]string{"content", "title", "icon", "cover_image"}

// slot tracks one persisted field. saved is the last value the store
// accepted, want the value the editor holds now.
type slot struct {
	saved, want *string
	inflight    bool
	failed      bool
}

func (s *slot) dirty() bool { return !equal(s.saved, s.want) }

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Saver reconciles one document's editor state with the store.
type Saver struct {
	ctx     context.Context
	store   Store
	logger  *slog.Logger
	quiet   time.Duration
	ownerID string
	docID   string

	mu        sync.Mutex
	slots     [fieldCount]slot
	timer     *time.Timer
	again     bool
	status    Status
	err       error
	attempts  int
	closed    bool
	listeners []func(Status)

	// pending counts issued writes; idle waiters are released when it
	// drops to zero.
	pending int
	idle    []chan struct{}
}

// Option configures a Saver.
type Option func(*Saver)

// WithQuiet sets the debounce period.
func WithQuiet(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.quiet = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option { return func(s *Saver) { s.logger = logger } }

// New creates a saver whose baseline is doc as loaded from the store. Writes
// run under ctx, so cancelling it abandons them.
func New(ctx context.Context, store Store, doc *docsystem.Document, opts ...Option) *Saver {
	s := &Saver{
		ctx:     ctx,
		store:   store,
		logger:  slog.Default(),
		quiet:   DefaultQuiet,
		ownerID: doc.OwnerID,
		docID:   doc.ID,
		status:  StatusSaved,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.slots[fieldContent] = baseline(&doc.Content)
	s.slots[fieldTitle] = baseline(&doc.Title)
	s.slots[fieldIcon] = baseline(doc.Icon)
	s.slots[fieldCover] = baseline(doc.CoverImage)
	return s
}

func baseline(v *string) slot {
	if v == nil {
		return slot{}
	}
	c := *v
	return slot{saved: &c, want: &c}
}

// Status returns the current save status.
func (s *Saver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error of the last failed write, or nil once a later write
// has succeeded.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Title returns the title the saver currently holds for the document.
func (s *Saver) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.slots[fieldTitle].want; v != nil {
		return *v
	}
	return ""
}

// OnStatus registers fn for status transitions. Listeners run outside the
// saver's lock, possibly on a timer goroutine.
func (s *Saver) OnStatus(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Observe feeds an engine event to the saver. Subscribe it with
// eng.Subscribe(saver.Observe).
func (s *Saver) Observe(ev engine.Event) {
	if ev.Kind != engine.ContentChanged {
		return
	}
	s.update(func() {
		if s.closed {
			return
		}
		content := ev.Content
		s.slots[fieldContent].want = &content
		s.schedule()

		if title, ok := DeriveTitle(ev.Doc); ok {
			s.slots[fieldTitle].want = &title
		}
		s.write(fieldTitle)
		s.write(fieldIcon)
		s.write(fieldCover)
	})
}

// SetIcon sets or, with nil, clears the document icon.
func (s *Saver) SetIcon(icon *string) { s.set(fieldIcon, icon) }

// SetCover sets or, with nil, clears the cover image URL.
func (s *Saver) SetCover(url *string) { s.set(fieldCover, url) }

func (s *Saver) set(f field, v *string) {
	s.update(func() {
		if s.closed {
			return
		}
		if v != nil {
			c := *v
			v = &c
		}
		s.slots[f].want = v
		s.write(f)
	})
}

// Retry writes every unsaved field now.
func (s *Saver) Retry() {
	s.update(func() {
		if s.closed {
			return
		}
		s.stopTimer()
		for f := field(0); f < fieldCount; f++ {
			s.write(f)
		}
	})
}

// Flush writes pending content immediately and waits for all writes to
// finish. It returns the last write error when something is left unsaved.
func (s *Saver) Flush(ctx context.Context) error {
	var done chan struct{}
	s.update(func() {
		s.stopTimer()
		s.again = false
		for f := field(0); f < fieldCount; f++ {
			s.write(f)
		}
		if s.pending > 0 {
			done = make(chan struct{})
			s.idle = append(s.idle, done)
		}
	})

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusSaved {
		return s.err
	}
	return nil
}

// Close stops the saver. Pending content that was not flushed is dropped;
// writes already issued run to completion.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimer()
}

// schedule restarts the debounce timer. While a content write is in flight
// the timer is armed even when want equals saved, because saved is about to
// become the value being written. Must hold s.mu.
func (s *Saver) schedule() {
	s.stopTimer()
	sl := &s.slots[fieldContent]
	if !sl.inflight && !sl.dirty() {
		return
	}
	s.timer = time.AfterFunc(s.quiet, s.fire)
}

func (s *Saver) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Saver) fire() {
	s.update(func() {
		s.timer = nil
		if s.closed {
			return
		}
		if s.slots[fieldContent].inflight {
			s.again = true
			return
		}
		s.write(fieldContent)
	})
}

// write issues a store update for f if its value is not persisted and no
// write for f is outstanding. Must hold s.mu.
func (s *Saver) write(f field) {
	sl := &s.slots[f]
	if sl.inflight || !sl.dirty() {
		return
	}
	sl.inflight = true
	s.attempts++
	v := sl.want

	s.pending++
	go s.run(f, v, s.attempts)
}

// release marks one write finished. Must hold s.mu.
func (s *Saver) release() {
	s.pending--
	if s.pending > 0 {
		return
	}
	for _, ch := range s.idle {
		close(ch)
	}
	s.idle = nil
}

func (s *Saver) run(f field, v *string, attempt int) {
	_, err := s.store.UpdateDocument(s.ctx, s.ownerID, s.docID, request(f, v))

	s.update(func() {
		// Follow-up writes are issued before this one is released, so
		// Flush never sees a false idle.
		defer s.release()
		sl := &s.slots[f]
		sl.inflight = false
		if err != nil {
			sl.failed = true
			s.err = err
			s.logger.Warn("autosave write failed",
				"document_id", s.docID,
				"field", fieldNames[f],
				"attempt", attempt,
				"error", err,
			)
			return
		}
		sl.failed = false
		sl.saved = v
		if !s.anyFailed() {
			s.err = nil
		}
		s.logger.Debug("autosave write done", "document_id", s.docID, "field", fieldNames[f])
		if s.closed {
			return
		}

		if f != fieldContent {
			s.write(f)
			return
		}
		// A timer that fired during the write, or an edit back to the old
		// baseline that no timer covers, is written now.
		if s.again || (sl.dirty() && s.timer == nil) {
			s.again = false
			s.write(fieldContent)
		}
	})
}

func (s *Saver) anyFailed() bool {
	for i := range s.slots {
		if s.slots[i].failed {
			return true
		}
	}
	return false
}

func request(f field, v *string) *docsvc.UpdateDocumentRequest {
	req := &docsvc.UpdateDocumentRequest{}
	switch f {
	case fieldContent:
		req.Content = v
	case fieldTitle:
		req.Title = v
	case fieldIcon:
		req.Icon = docsystem.OptionalString{Present: true, Value: v}
	case fieldCover:
		req.CoverImage = docsystem.OptionalString{Present: true, Value: v}
	}
	return req
}

// update runs fn under the lock and notifies listeners if the status changed.
func (s *Saver) update(fn func()) {
	s.mu.Lock()
	fn()
	next := s.computeStatus()
	changed := next != s.status
	s.status = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l(next)
		}
	}
}

func (s *Saver) computeStatus() Status {
	dirty := false
	for i := range s.slots {
		if s.slots[i].inflight {
			return StatusSaving
		}
		dirty = dirty || s.slots[i].dirty()
	}
	if dirty {
		return StatusUnsaved
	}
	return StatusSaved
}

// DeriveTitle returns the title implied by the first block of doc. ok is
// false when the first block is neither a heading nor a paragraph.
func DeriveTitle(doc *node.Node) (title string, ok bool) {
	if doc == nil || len(doc.Content) == 0 {
		return "", false
	}
	first := doc.Content[0]
	if first.Type != node.TypeHeading && first.Type != node.TypeParagraph {
		return "", false
	}
	title = strings.TrimSpace(first.TextContent())
	if title == "" {
		return docsystem.DefaultTitle, true
	}
	return truncate(title, config.MaxDocumentTitleLength), true
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
