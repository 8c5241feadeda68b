package autosave

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

const quiet = 20 * time.Millisecond

type mockStore struct {
	mu    sync.Mutex
	calls []docsvc.UpdateDocumentRequest
	fail  error
	gate  chan struct{}
}

func (m *mockStore) UpdateDocument(ctx context.Context, ownerID, documentID string, req *docsvc.UpdateDocumentRequest) (*docsystem.Document, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, *req)
	if m.fail != nil {
		return nil, m.fail
	}
	return &docsystem.Document{ID: documentID, OwnerID: ownerID}, nil
}

func (m *mockStore) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *mockStore) contentCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.Content != nil {
			out = append(out, *c.Content)
		}
	}
	return out
}

func (m *mockStore) titleCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.Title != nil {
			out = append(out, *c.Title)
		}
	}
	return out
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testDoc() *docsystem.Document {
	return &docsystem.Document{
		ID:      "doc-1",
		OwnerID: "user-1",
		Title:   docsystem.DefaultTitle,
		Content: docsystem.InitialContent,
	}
}

func newSaver(t *testing.T, store Store, doc *docsystem.Document) *Saver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := New(context.Background(), store, doc, WithQuiet(quiet), WithLogger(logger))
	t.Cleanup(s.Close)
	return s
}

func contentEvent(t *testing.T, content string) engine.Event {
	t.Helper()
	doc := node.Parse(content)
	return engine.Event{Kind: engine.ContentChanged, Content: node.Serialize(doc), Doc: doc}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDebounceBurstWritesLastContent(t *testing.T) {
	store := &mockStore{}
	s := newSaver(t, store, testDoc())

	var last string
	for _, text := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		ev := contentEvent(t, "<h1>Untitled</h1><p>"+text+"</p>")
		last = ev.Content
		s.Observe(ev)
	}
	if got := s.Status(); got != StatusUnsaved {
		t.Errorf("status during burst = %s, want %s", got, StatusUnsaved)
	}
	if got := store.count(); got != 0 {
		t.Errorf("store called %d times before the quiet period elapsed", got)
	}

	waitFor(t, "saved", func() bool { return s.Status() == StatusSaved })
	got := store.contentCalls()
	if len(got) != 1 {
		t.Fatalf("content writes = %d, want 1: %q", len(got), got)
	}
	if got[0] != last {
		t.Errorf("content written = %q, want %q", got[0], last)
	}
}

func TestUnchangedContentIsNotWritten(t *testing.T) {
	store := &mockStore{}
	doc := testDoc()
	s := newSaver(t, store, doc)

	s.Observe(contentEvent(t, doc.Content))
	s.Observe(contentEvent(t, doc.Content))
	time.Sleep(4 * quiet)

	if got := store.count(); got != 0 {
		t.Errorf("store called %d times for content equal to the baseline", got)
	}
	if got := s.Status(); got != StatusSaved {
		t.Errorf("status = %s, want %s", got, StatusSaved)
	}
}

func TestSecondSaveOfSameContentIsNoOp(t *testing.T) {
	store := &mockStore{}
	s := newSaver(t, store, testDoc())

	ev := contentEvent(t, "<h1>Untitled</h1><p>x</p>")
	s.Observe(ev)
	waitFor(t, "first save", func() bool { return len(store.contentCalls()) == 1 && s.Status() == StatusSaved })

	s.Observe(ev)
	time.Sleep(4 * quiet)
	if got := len(store.contentCalls()); got != 1 {
		t.Errorf("content writes = %d, want 1", got)
	}
}

func TestTitleDerivedFromFirstHeading(t *testing.T) {
	store := &mockStore{}
	s := newSaver(t, store, testDoc())

	eng, err := engine.NewFromContent(docsystem.InitialContent)
	if err != nil {
		t.Fatalf("NewFromContent: %v", err)
	}
	eng.Subscribe(s.Observe)

	if err := eng.InsertNode(node.Heading(1, node.Text("My Notes")), eng.Start()); err != nil {
		t.Fatalf("InsertNode: %v", err)
	}

	waitFor(t, "title write", func() bool { return len(store.titleCalls()) == 1 })
	if got := store.titleCalls()[0]; got != "My Notes" {
		t.Errorf("title = %q, want %q", got, "My Notes")
	}
	if s.Title() != "My Notes" {
		t.Errorf("Title() = %q", s.Title())
	}

	waitFor(t, "content write", func() bool { return len(store.contentCalls()) == 1 })
	store.mu.Lock()
	for _, c := range store.calls {
		if c.Title != nil && c.Content != nil {
			t.Error("title and content must be written by separate updates")
		}
	}
	store.mu.Unlock()
}

func TestTitleNotRewrittenWhenUnchanged(t *testing.T) {
	store := &mockStore{}
	s := newSaver(t, store, testDoc())

	s.Observe(contentEvent(t, "<h1>Untitled</h1><p>one</p>"))
	s.Observe(contentEvent(t, "<h1>  Untitled </h1><p>two</p>"))
	waitFor(t, "saved", func() bool { return s.Status() == StatusSaved && store.count() > 0 })

	if got := store.titleCalls(); len(got) != 0 {
		t.Errorf("title writes = %q, want none", got)
	}
}

func TestDeriveTitle(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{"heading", "<h2>Plan <strong>A</strong></h2>", "Plan A", true},
		{"paragraph", "<p>first line</p><h1>later</h1>", "first line", true},
		{"empty heading", "<h1></h1><p>body</p>", "Untitled", true},
		{"inner spacing kept", "<p>My  Notes </p>", "My  Notes", true},
		{"list first", "<ul><li><p>item</p></li></ul>", "", false},
		{"truncated", "<p>" + string(long) + "</p>", string(long[:255]), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveTitle(node.Parse(tt.content))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DeriveTitle = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFailedWriteIsUnsavedAndRetried(t *testing.T) {
	store := &mockStore{fail: errors.New("connection refused")}
	s := newSaver(t, store, testDoc())

	var mu sync.Mutex
	var seen []Status
	s.OnStatus(func(st Status) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	ev := contentEvent(t, "<h1>Untitled</h1><p>draft</p>")
	s.Observe(ev)
	waitFor(t, "failed write", func() bool { return store.count() == 1 && s.Status() == StatusUnsaved })
	if s.Err() == nil {
		t.Error("Err() = nil after a failed write")
	}

	store.setFail(nil)
	s.Retry()
	waitFor(t, "saved after retry", func() bool { return s.Status() == StatusSaved })
	if s.Err() != nil {
		t.Errorf("Err() = %v after successful retry", s.Err())
	}
	got := store.contentCalls()
	if len(got) != 2 || got[1] != ev.Content {
		t.Errorf("content writes = %q, want the draft twice", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []Status{StatusUnsaved, StatusSaving, StatusUnsaved, StatusSaving, StatusSaved}
	if len(seen) != len(want) {
		t.Fatalf("status transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("status transitions = %v, want %v", seen, want)
		}
	}
}

func TestFailedWriteRetriedOnNextChange(t *testing.T) {
	store := &mockStore{fail: errors.New("timeout")}
	s := newSaver(t, store, testDoc())

	s.Observe(contentEvent(t, "<h1>Untitled</h1><p>a</p>"))
	waitFor(t, "failed write", func() bool { return store.count() == 1 && s.Status() == StatusUnsaved })

	store.setFail(nil)
	next := contentEvent(t, "<h1>Untitled</h1><p>ab</p>")
	s.Observe(next)
	waitFor(t, "saved", func() bool { return s.Status() == StatusSaved })

	got := store.contentCalls()
	if got[len(got)-1] != next.Content {
		t.Errorf("last content write = %q, want %q", got[len(got)-1], next.Content)
	}
}

func TestAtMostOneContentWriteInFlight(t *testing.T) {
	store := &mockStore{gate: make(chan struct{})}
	s := newSaver(t, store, testDoc())

	first := contentEvent(t, "<h1>Untitled</h1><p>1</p>")
	s.Observe(first)
	waitFor(t, "saving", func() bool { return s.Status() == StatusSaving })

	second := contentEvent(t, "<h1>Untitled</h1><p>2</p>")
	s.Observe(second)
	// Let the second debounce expire while the first write is still blocked.
	time.Sleep(4 * quiet)

	store.gate <- struct{}{}
	store.gate <- struct{}{}
	waitFor(t, "saved", func() bool { return s.Status() == StatusSaved })

	got := store.contentCalls()
	if len(got) != 2 {
		t.Fatalf("content writes = %d, want 2", len(got))
	}
	if got[0] != first.Content || got[1] != second.Content {
		t.Errorf("content writes = %q, want first then second", got)
	}
}

func TestEditBackToBaselineDuringWriteIsSaved(t *testing.T) {
	store := &mockStore{gate: make(chan struct{})}
	s := newSaver(t, store, testDoc())

	edited := contentEvent(t, "<h1>Untitled</h1><p>B</p>")
	s.Observe(edited)
	waitFor(t, "saving", func() bool { return s.Status() == StatusSaving })

	// Undo to the loaded content while the write of the edit is blocked.
	original := contentEvent(t, docsystem.InitialContent)
	s.Observe(original)
	time.Sleep(4 * quiet)
	close(store.gate)

	waitFor(t, "saved", func() bool { return s.Status() == StatusSaved })
	got := store.contentCalls()
	if len(got) != 2 || got[1] != original.Content {
		t.Fatalf("content writes = %q, want the edit then %q", got, original.Content)
	}
}

func TestEditBackToBaselineBeforeTimerFires(t *testing.T) {
	store := &mockStore{gate: make(chan struct{})}
	s := New(context.Background(), store, testDoc(), WithQuiet(time.Hour),
		WithLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))))
	t.Cleanup(s.Close)

	edited := contentEvent(t, "<h1>Untitled</h1><p>B</p>")
	s.Observe(edited)
	s.Retry()
	waitFor(t, "saving", func() bool { return s.Status() == StatusSaving })

	// The debounce timer will not fire during this test, so the write of the
	// baseline must be issued when the edit's write completes.
	original := contentEvent(t, docsystem.InitialContent)
	s.Observe(original)
	s.Retry()
	close(store.gate)

	waitFor(t, "saved", func() bool { return s.Status() == StatusSaved })
	got := store.contentCalls()
	if len(got) != 2 || got[1] != original.Content {
		t.Fatalf("content writes = %q, want the edit then %q", got, original.Content)
	}
}

func TestFlushWaitsForFollowUpWrite(t *testing.T) {
	store := &mockStore{gate: make(chan struct{})}
	s := newSaver(t, store, testDoc())

	s.Observe(contentEvent(t, "<h1>Untitled</h1><p>1</p>"))
	waitFor(t, "saving", func() bool { return s.Status() == StatusSaving })
	last := contentEvent(t, "<h1>Untitled</h1><p>2</p>")
	s.Observe(last)

	errc := make(chan error, 1)
	go func() { errc <- s.Flush(context.Background()) }()
	time.Sleep(2 * quiet)
	close(store.gate)

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Flush() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Flush did not return")
	}
	if s.Status() != StatusSaved {
		t.Errorf("status after Flush = %s, want saved", s.Status())
	}
	got := store.contentCalls()
	if len(got) != 2 || got[1] != last.Content {
		t.Errorf("content writes = %q, want the last edit written second", got)
	}
}

func TestIconAndCoverAreIndependentPartialUpdates(t *testing.T) {
	store := &mockStore{}
	s := newSaver(t, store, testDoc())

	icon := "📝"
	s.SetIcon(&icon)
	s.SetIcon(&icon)
	waitFor(t, "icon write", func() bool { return store.count() == 1 && s.Status() == StatusSaved })

	s.SetCover(nil)
	cover := "https://img.example.com/a.png"
	s.SetCover(&cover)
	waitFor(t, "cover write", func() bool { return store.count() == 2 && s.Status() == StatusSaved })

	s.SetIcon(nil)
	waitFor(t, "icon clear", func() bool { return store.count() == 3 && s.Status() == StatusSaved })

	store.mu.Lock()
	defer store.mu.Unlock()
	if c := store.calls[0]; !c.Icon.Present || c.Icon.Value == nil || *c.Icon.Value != icon || c.Content != nil || c.CoverImage.Present {
		t.Errorf("first call = %+v, want icon only", c)
	}
	if c := store.calls[1]; !c.CoverImage.Present || *c.CoverImage.Value != cover || c.Icon.Present {
		t.Errorf("second call = %+v, want cover only", c)
	}
	if c := store.calls[2]; !c.Icon.Present || c.Icon.Value != nil {
		t.Errorf("third call = %+v, want icon cleared", c)
	}
}

func TestFlushWritesPendingContent(t *testing.T) {
	store := &mockStore{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := New(context.Background(), store, testDoc(), WithQuiet(time.Hour), WithLogger(logger))
	defer s.Close()

	ev := contentEvent(t, "<h1>Untitled</h1><p>closing</p>")
	s.Observe(ev)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := store.contentCalls(); len(got) != 1 || got[0] != ev.Content {
		t.Errorf("content writes = %q", got)
	}
	if s.Status() != StatusSaved {
		t.Errorf("status = %s after flush", s.Status())
	}
}

func TestFlushReportsFailure(t *testing.T) {
	failure := errors.New("disk full")
	store := &mockStore{fail: failure}
	s := newSaver(t, store, testDoc())

	s.Observe(contentEvent(t, "<h1>Untitled</h1><p>x</p>"))
	if err := s.Flush(context.Background()); !errors.Is(err, failure) {
		t.Errorf("Flush = %v, want %v", err, failure)
	}
}

func TestSelectionEventsIgnored(t *testing.T) {
	store := &mockStore{}
	s := newSaver(t, store, testDoc())

	s.Observe(engine.Event{Kind: engine.SelectionChanged})
	if s.Status() != StatusSaved {
		t.Errorf("status = %s, want saved", s.Status())
	}
}
