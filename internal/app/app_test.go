package app

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/export"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DatabaseDriver: DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "notion.db"),
		TablePrefix:    "test_",
		ChromePath:     filepath.Join(t.TempDir(), "no-chrome"),
	}
}

func TestNewWithSQLite(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(ctx, testConfig(t), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if err := a.Storage.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Migrations are idempotent.
	if err := a.Storage.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	doc, err := a.Documents.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{OwnerID: "user-1", Title: "Wired"})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	found, err := a.Documents.SearchDocuments(ctx, "user-1", &docsysSvc.SearchDocumentsRequest{Query: "wired"})
	if err != nil {
		t.Fatalf("SearchDocuments: %v", err)
	}
	if len(found) != 1 || found[0].ID != doc.ID {
		t.Fatalf("search found %v", found)
	}

	if _, err := a.Images.Upload(ctx, "user-1", &docsysSvc.UploadedFile{Filename: "a.png"}); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("upload without blob storage: got %v, want ErrUnavailable", err)
	}
	if _, err := a.Exporter.Export(ctx, doc, export.FormatPDF); !errors.Is(err, export.ErrPDFUnavailable) {
		t.Errorf("pdf without chrome: got %v, want ErrPDFUnavailable", err)
	}
}

func TestOpenStorageErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"unknown driver", &config.Config{DatabaseDriver: "mysql"}},
		{"postgres without url", &config.Config{DatabaseDriver: DriverPostgres}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenStorage(t.Context(), tt.cfg, logger); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
