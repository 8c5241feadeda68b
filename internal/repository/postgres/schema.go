package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables and indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	p := tables.Prefix
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id TEXT NOT NULL,
			parent_id UUID REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL DEFAULT 'Untitled',
			content TEXT NOT NULL DEFAULT '',
			icon TEXT,
			cover_image TEXT,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.DocumentImages + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			alt TEXT,
			caption TEXT,
			width INTEGER,
			height INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `documents_owner_parent ON ` + tables.Documents + `(owner_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `documents_owner_archived ON ` + tables.Documents + `(owner_id, is_archived, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `document_images_document ON ` + tables.DocumentImages + `(document_id)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropAll drops the tables, images first.
func DropAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, t := range []string{tables.DocumentImages, tables.Documents} {
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+t+` CASCADE`); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return nil
}
