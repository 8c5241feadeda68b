package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestImportMarkdownBodyAndExport(t *testing.T) {
	env := newTestEnv(t)

	body := "---\ntitle: Trip\nicon: \"✈️\"\n---\n# Packing\n\n- [ ] passport\n- [x] tickets\n"
	rec := env.do(t, alice, http.MethodPost, "/api/documents/import", body)
	expectStatus(t, rec, http.StatusCreated)
	res := decode[ImportResponse](t, rec)
	if !res.Success || res.Summary.Created != 1 || len(res.Documents) != 1 {
		t.Fatalf("import result = %+v", res)
	}
	doc := res.Documents[0]
	if doc.Title != "Trip" {
		t.Errorf("title = %q, want Trip", doc.Title)
	}

	rec = env.do(t, alice, http.MethodGet, "/api/documents/"+doc.ID+"/export?format=markdown", nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Trip.md"`) {
		t.Errorf("content disposition = %q", cd)
	}
	out := rec.Body.String()
	for _, want := range []string{"title: Trip", "# Packing", "passport"} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}

	rec = env.do(t, alice, http.MethodGet, "/api/documents/"+doc.ID+"/export?format=html", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "<title>Trip</title>") {
		t.Errorf("html export = %s", rec.Body.String())
	}

	// Importing the same title again is skipped unless overwrite is set.
	rec = env.do(t, alice, http.MethodPost, "/api/documents/import", body)
	expectStatus(t, rec, http.StatusOK)
	if res := decode[ImportResponse](t, rec); res.Summary.Skipped != 1 {
		t.Errorf("second import = %+v, want one skipped", res.Summary)
	}
	rec = env.do(t, alice, http.MethodPost, "/api/documents/import?overwrite=true", body)
	if res := decode[ImportResponse](t, rec); res.Summary.Updated != 1 {
		t.Errorf("overwrite import = %+v, want one updated", res.Summary)
	}
}

func TestImportMultipart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload(t, alice, "/api/documents/import", "files", map[string][]byte{
		"first.md":  []byte("# First\n\nhello"),
		"second.md": []byte("# Second\n\nworld"),
	})
	expectStatus(t, rec, http.StatusCreated)
	if res := decode[ImportResponse](t, rec); res.Summary.Created != 2 {
		t.Errorf("summary = %+v, want 2 created", res.Summary)
	}

	rec = env.upload(t, alice, "/api/documents/import", "other", map[string][]byte{"x.md": []byte("# X")})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestImportAndExportErrors(t *testing.T) {
	env := newTestEnv(t)
	res := decode[ImportResponse](t, env.do(t, alice, http.MethodPost, "/api/documents/import", "# Note"))
	id := res.Documents[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty body", http.MethodPost, "/api/documents/import", "  ", http.StatusBadRequest},
		{"missing parent", http.MethodPost, "/api/documents/import?parent=nope", "# A", http.StatusNotFound},
		{"unknown format", http.MethodGet, "/api/documents/" + id + "/export?format=docx", nil, http.StatusBadRequest},
		{"pdf without chrome", http.MethodGet, "/api/documents/" + id + "/export?format=pdf", nil, http.StatusServiceUnavailable},
		{"missing document", http.MethodGet, "/api/documents/nope/export", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, alice, tt.method, tt.path, tt.body), tt.want)
		})
	}
}

func TestRawFilename(t *testing.T) {
	tests := map[string]string{
		"":             "import.md",
		"notes":        "notes.md",
		"page.html":    "page.html",
		"../../etc.md": "etc.md",
	}
	for in, want := range tests {
		if got := rawFilename(in); got != want {
			t.Errorf("rawFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
