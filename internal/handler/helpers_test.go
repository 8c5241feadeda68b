package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Priya-753/notion-clone/internal/auth"
	"github.com/Priya-753/notion-clone/internal/domain"
	"github.com/Priya-753/notion-clone/internal/editor/session"
	"github.com/Priya-753/notion-clone/internal/export"
	"github.com/Priya-753/notion-clone/internal/extract"
	"github.com/Priya-753/notion-clone/internal/middleware"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
	"github.com/Priya-753/notion-clone/internal/repository/sqlite"
	sqlitedocs "github.com/Priya-753/notion-clone/internal/repository/sqlite/docsystem"
	"github.com/Priya-753/notion-clone/internal/search"
	serviceDocsys "github.com/Priya-753/notion-clone/internal/service/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

const (
	alice = "user-1"
	bob   = "user-2"
)

// memBlobs keeps uploaded blobs in memory.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "http://blobs.test/" + key
	m.objects[url] = data
	return url, nil
}

func (m *memBlobs) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	return nil
}

func (m *memBlobs) has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

// fakeParser serves canned pages; hosts starting with "down." fail upstream.
type fakeParser struct{}

func (fakeParser) Parse(_ context.Context, rawURL string) (*extract.Page, error) {
	if strings.Contains(rawURL, "://down.") {
		return nil, fmt.Errorf("fetch %s: connection refused: %w", rawURL, domain.ErrUpstream)
	}
	return &extract.Page{URL: rawURL, Title: "Example", Content: "<p>hi</p>", WordCount: 1}, nil
}

type testEnv struct {
	handler http.Handler
	blobs   *memBlobs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	tables := postgres.NewTableNames("test_")
	if err := sqlite.Migrate(ctx, db, tables); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
	docRepo := sqlitedocs.NewDocumentRepository(repoConfig)
	imageRepo := sqlitedocs.NewImageRepository(repoConfig)

	blobs := &memBlobs{objects: make(map[string][]byte)}
	searcher := search.NewService(nil, docRepo, logger)
	docs := serviceDocsys.NewDocumentService(docRepo, imageRepo, sqlite.NewTransactionManager(db, logger),
		serviceDocsys.DocumentDeps{Blobs: blobs, Searcher: searcher, Indexer: searcher}, logger)
	images := serviceDocsys.NewImageService(docRepo, imageRepo, blobs, logger)
	imports := serviceDocsys.NewImportService(docs, converter.NewConverterRegistry(), logger)

	manager := session.NewManager(docs, images, nil, session.Config{Quiet: 10 * time.Millisecond, Idle: time.Minute}, logger)
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	h := &Handlers{
		Documents: NewDocumentHandler(docs, logger),
		Images:    NewImageHandler(images, logger),
		Imports:   NewImportHandler(imports, logger),
		Exports:   NewExportHandler(docs, export.NewExporter(nil, logger), logger),
		ParseURL:  NewParseURLHandler(fakeParser{}, logger),
		Sessions:  NewSessionHandler(manager, logger),
	}
	mux := http.NewServeMux()
	h.Register(mux)

	return &testEnv{
		handler: middleware.Auth(auth.NewDevVerifier(logger), logger)(mux),
		blobs:   blobs,
	}
}

// do sends a request as user. A string body is sent raw, anything else as JSON.
func (e *testEnv) do(t *testing.T, user, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// upload sends a multipart request with one part per file under field.
func (e *testEnv) upload(t *testing.T, user, path, field string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// problemDetail returns the detail of an RFC 7807 response.
func problemDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q, want application/problem+json", ct)
	}
	p := decode[map[string]any](t, rec)
	detail, _ := p["detail"].(string)
	return detail
}
