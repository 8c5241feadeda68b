package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Priya-753/notion-clone/internal/app"
	"github.com/Priya-753/notion-clone/internal/config"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/export"
)

// Backend is what the commands run against.
type Backend interface {
	Migrate(ctx context.Context) error
	Import(ctx context.Context, ownerID string, parentID *string, files []docsysSvc.UploadedFile, overwrite bool) (*docsysSvc.ImportResult, error)
	Export(ctx context.Context, ownerID, documentID string, format export.Format) (*export.Result, error)
	Reindex(ctx context.Context, ownerID string) (int, error)
	Close()
}

// Opener connects a Backend. verbose lowers the log level to debug.
type Opener func(ctx context.Context, verbose bool) (Backend, error)

type appBackend struct {
	app *app.App
}

func openApp(ctx context.Context, verbose bool) (Backend, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a, err := app.New(ctx, config.Load(), logger)
	if err != nil {
		return nil, err
	}
	return &appBackend{app: a}, nil
}

func (b *appBackend) Migrate(ctx context.Context) error {
	return b.app.Storage.Migrate(ctx)
}

func (b *appBackend) Import(ctx context.Context, ownerID string, parentID *string, files []docsysSvc.UploadedFile, overwrite bool) (*docsysSvc.ImportResult, error) {
	return b.app.Imports.ProcessFiles(ctx, ownerID, parentID, files, overwrite)
}

func (b *appBackend) Export(ctx context.Context, ownerID, documentID string, format export.Format) (*export.Result, error) {
	doc, err := b.app.Documents.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	return b.app.Exporter.Export(ctx, doc, format)
}

func (b *appBackend) Reindex(ctx context.Context, ownerID string) (int, error) {
	return b.app.Search.Reindex(ctx, ownerID)
}

func (b *appBackend) Close() { b.app.Close() }
