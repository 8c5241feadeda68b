package docsystem

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
	"github.com/Priya-753/notion-clone/internal/repository/sqlite"
	sqlitedocs "github.com/Priya-753/notion-clone/internal/repository/sqlite/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

const owner = "user-1"

// mockBlobStore keeps blobs in memory.
type mockBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	deleted   []string
	deleteErr error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "http://blobs.test/images/" + key
	m.objects[url] = data
	m.types[url] = contentType
	return url, nil
}

func (m *mockBlobStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, url)
	return nil
}

func (m *mockBlobStore) deletedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// recordingIndexer records index calls synchronously.
type recordingIndexer struct {
	mu      sync.Mutex
	indexed map[string]models.Document
	removed []string
}

func (r *recordingIndexer) IndexDocuments(_ context.Context, docs []models.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexed == nil {
		r.indexed = make(map[string]models.Document)
	}
	for _, d := range docs {
		r.indexed[d.ID] = d
	}
}

func (r *recordingIndexer) RemoveDocuments(_ context.Context, ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, ids...)
}

func (r *recordingIndexer) get(id string) (models.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.indexed[id]
	return d, ok
}

type fixture struct {
	docRepo   docsysRepo.DocumentRepository
	imageRepo docsysRepo.ImageRepository
	blobs     *mockBlobStore
	indexer   *recordingIndexer
	docs      docsysSvc.DocumentService
	images    docsysSvc.ImageService
	imports   docsysSvc.ImportService
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tables := postgres.NewTableNames("test_")
	if err := sqlite.Migrate(ctx, db, tables); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logger := discardLogger()
	cfg := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}

	f := &fixture{
		docRepo:   sqlitedocs.NewDocumentRepository(cfg),
		imageRepo: sqlitedocs.NewImageRepository(cfg),
		blobs:     newMockBlobStore(),
		indexer:   &recordingIndexer{},
	}
	f.docs = NewDocumentService(f.docRepo, f.imageRepo, sqlite.NewTransactionManager(db, logger),
		DocumentDeps{Blobs: f.blobs, Indexer: f.indexer}, logger)
	f.images = NewImageService(f.docRepo, f.imageRepo, f.blobs, logger)
	f.imports = NewImportService(f.docs, converter.NewConverterRegistry(), logger)
	return f
}

func (f *fixture) create(t *testing.T, title string, parent *models.Document) *models.Document {
	t.Helper()
	req := &docsysSvc.CreateDocumentRequest{OwnerID: owner, Title: title}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	doc, err := f.docs.CreateDocument(context.Background(), req)
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return doc
}

func titles(docs []models.Document) string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Title
	}
	return strings.Join(out, ",")
}

func ptr[T any](v T) *T { return &v }
