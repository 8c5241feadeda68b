package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Priya-753/notion-clone/internal/repository/postgres"
)

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, tables *postgres.TableNames) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			parent_id TEXT REFERENCES %[1]s(id) ON DELETE CASCADE,
			title TEXT NOT NULL DEFAULT 'Untitled',
			content TEXT NOT NULL DEFAULT '',
			icon TEXT,
			cover_image TEXT,
			is_archived INTEGER NOT NULL DEFAULT 0,
			is_published INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_owner_parent ON %[1]s(owner_id, parent_id)`, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_owner_archived ON %[1]s(owner_id, is_archived, updated_at)`, tables.Documents),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			alt TEXT,
			caption TEXT,
			width INTEGER,
			height INTEGER,
			created_at INTEGER NOT NULL
		)`, tables.DocumentImages, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_document ON %[1]s(document_id)`, tables.DocumentImages),
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
