package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

func TestDocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, alice, http.MethodPost, "/api/documents", map[string]any{"title": "Projects"})
	expectStatus(t, rec, http.StatusCreated)
	parent := decode[docsystem.Document](t, rec)
	if parent.Content != docsystem.InitialContent {
		t.Errorf("content = %q, want initial content", parent.Content)
	}

	rec = env.do(t, alice, http.MethodPost, "/api/documents", map[string]any{"title": "Plan", "parent_id": parent.ID})
	expectStatus(t, rec, http.StatusCreated)
	child := decode[docsystem.Document](t, rec)

	rec = env.do(t, alice, http.MethodGet, "/api/documents/children?parent=root", nil)
	expectStatus(t, rec, http.StatusOK)
	if roots := decode[[]docsystem.Document](t, rec); len(roots) != 1 || roots[0].ID != parent.ID {
		t.Errorf("root children = %+v", roots)
	}
	rec = env.do(t, alice, http.MethodGet, "/api/documents/children?parent="+parent.ID, nil)
	if kids := decode[[]docsystem.Document](t, rec); len(kids) != 1 || kids[0].ID != child.ID {
		t.Errorf("children = %+v", kids)
	}

	// Icon set, then cleared with an explicit null.
	rec = env.do(t, alice, http.MethodPatch, "/api/documents/"+child.ID, `{"icon": "🚀"}`)
	expectStatus(t, rec, http.StatusOK)
	if d := decode[docsystem.Document](t, rec); d.Icon == nil || *d.Icon != "🚀" {
		t.Errorf("icon = %v", d.Icon)
	}
	rec = env.do(t, alice, http.MethodPatch, "/api/documents/"+child.ID, `{"icon": null, "title": "Roadmap"}`)
	expectStatus(t, rec, http.StatusOK)
	if d := decode[docsystem.Document](t, rec); d.Icon != nil || d.Title != "Roadmap" {
		t.Errorf("after clear: icon = %v, title = %q", d.Icon, d.Title)
	}

	rec = env.do(t, alice, http.MethodGet, "/api/documents/search?q=road", nil)
	expectStatus(t, rec, http.StatusOK)
	if found := decode[[]docsystem.Document](t, rec); len(found) != 1 || found[0].ID != child.ID {
		t.Errorf("search = %+v", found)
	}

	rec = env.do(t, alice, http.MethodPost, "/api/documents/"+parent.ID+"/move", map[string]any{"parent_id": child.ID})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, alice, http.MethodPost, "/api/documents/"+parent.ID+"/archive", map[string]any{"archived": true})
	expectStatus(t, rec, http.StatusOK)
	if d := decode[docsystem.Document](t, rec); !d.IsArchived {
		t.Error("document not archived")
	}
	rec = env.do(t, alice, http.MethodGet, "/api/documents/archived", nil)
	if trash := decode[[]docsystem.Document](t, rec); len(trash) != 2 {
		t.Errorf("archived = %d documents, want 2", len(trash))
	}
	rec = env.do(t, alice, http.MethodGet, "/api/documents", nil)
	if live := decode[[]docsystem.Document](t, rec); len(live) != 0 {
		t.Errorf("live = %d documents, want 0", len(live))
	}

	rec = env.do(t, alice, http.MethodDelete, "/api/documents/"+parent.ID, nil)
	expectStatus(t, rec, http.StatusNoContent)
	rec = env.do(t, alice, http.MethodGet, "/api/documents/"+child.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)
	if detail := problemDetail(t, rec); !strings.Contains(detail, "not found") {
		t.Errorf("detail = %q", detail)
	}
}

func TestMoveToRoot(t *testing.T) {
	env := newTestEnv(t)
	parent := decode[docsystem.Document](t, env.do(t, alice, http.MethodPost, "/api/documents", map[string]any{"title": "A"}))
	child := decode[docsystem.Document](t, env.do(t, alice, http.MethodPost, "/api/documents", map[string]any{"title": "B", "parent_id": parent.ID}))

	rec := env.do(t, alice, http.MethodPost, "/api/documents/"+child.ID+"/move", `{"parent_id": null}`)
	expectStatus(t, rec, http.StatusOK)
	if d := decode[docsystem.Document](t, rec); d.ParentID != nil {
		t.Errorf("parent = %v, want root", *d.ParentID)
	}
}

func TestDocumentAccess(t *testing.T) {
	env := newTestEnv(t)
	doc := decode[docsystem.Document](t, env.do(t, alice, http.MethodPost, "/api/documents", map[string]any{"title": "Private"}))

	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   any
		want   int
	}{
		{"owner reads", alice, http.MethodGet, "/api/documents/" + doc.ID, nil, http.StatusOK},
		{"other user reads", bob, http.MethodGet, "/api/documents/" + doc.ID, nil, http.StatusNotFound},
		{"other user deletes", bob, http.MethodDelete, "/api/documents/" + doc.ID, nil, http.StatusNotFound},
		{"other user patches", bob, http.MethodPatch, "/api/documents/" + doc.ID, map[string]any{"title": "x"}, http.StatusNotFound},
		{"anonymous", "", http.MethodGet, "/api/documents/" + doc.ID, nil, http.StatusUnauthorized},
		{"health without token", "", http.MethodGet, "/health", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, tt.user, tt.method, tt.path, tt.body), tt.want)
		})
	}
}

func TestDocumentBadRequests(t *testing.T) {
	env := newTestEnv(t)
	doc := decode[docsystem.Document](t, env.do(t, alice, http.MethodPost, "/api/documents", map[string]any{"title": "Doc"}))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed json", http.MethodPost, "/api/documents", "{"},
		{"title too long", http.MethodPost, "/api/documents", map[string]any{"title": strings.Repeat("x", 256)}},
		{"archive without flag", http.MethodPost, "/api/documents/" + doc.ID + "/archive", map[string]any{}},
		{"bad archived filter", http.MethodGet, "/api/documents/search?q=a&archived=maybe", nil},
		{"bad limit", http.MethodGet, "/api/documents/search?q=a&limit=ten", nil},
		{"query too long", http.MethodGet, "/api/documents/search?q=" + strings.Repeat("a", 501), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, alice, tt.method, tt.path, tt.body), http.StatusBadRequest)
		})
	}
}
