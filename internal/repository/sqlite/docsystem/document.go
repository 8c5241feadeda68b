// Package docsystem implements the document and image repositories on SQLite.
package docsystem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
	pgdocsystem "github.com/Priya-753/notion-clone/internal/repository/postgres/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/sqlite"
)

const documentColumns = `id, owner_id, parent_id, title, content, icon, cover_image, is_archived, is_published, created_at, updated_at`

// SQLiteDocumentRepository implements the DocumentRepository interface
type SQLiteDocumentRepository struct {
	db     *sql.DB
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *sqlite.RepositoryConfig) docsysRepo.DocumentRepository {
	return &SQLiteDocumentRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var doc models.Document
	var created, updated int64
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.ParentID,
		&doc.Title,
		&doc.Content,
		&doc.Icon,
		&doc.CoverImage,
		&doc.IsArchived,
		&doc.IsPublished,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = sqlite.Time(created)
	doc.UpdatedAt = sqlite.Time(updated)
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]models.Document, error) {
	defer rows.Close()
	documents := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return documents, nil
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func anys(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// Create creates a new document
func (r *SQLiteDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	if doc.ParentID != nil {
		var exists int
		err := executor.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ? AND owner_id = ?`, r.tables.Documents),
			*doc.ParentID, doc.OwnerID,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFound("parent document", *doc.ParentID)
		}
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
	}

	now := sqlite.Now()
	id := uuid.NewString()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, parent_id, title, content, icon, cover_image, is_archived, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Documents)
	_, err := executor.ExecContext(ctx, query,
		id, doc.OwnerID, doc.ParentID, doc.Title, doc.Content, doc.Icon, doc.CoverImage,
		doc.IsArchived, doc.IsPublished, now, now,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	doc.ID = id
	doc.CreatedAt = sqlite.Time(now)
	doc.UpdatedAt = doc.CreatedAt
	return nil
}

// GetByID retrieves a document by ID
func (r *SQLiteDocumentRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND owner_id = ?`, documentColumns, r.tables.Documents)

	doc, err := scanDocument(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("document", id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update writes the mutable columns and refreshes updated_at.
func (r *SQLiteDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	now := sqlite.Now()
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = ?, content = ?, icon = ?, cover_image = ?, is_published = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, r.tables.Documents)

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		doc.Title, doc.Content, doc.Icon, doc.CoverImage, doc.IsPublished, now, doc.ID, doc.OwnerID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NewNotFound("document", doc.ID)
	}
	doc.UpdatedAt = sqlite.Time(now)
	return nil
}

func (r *SQLiteDocumentRepository) list(ctx context.Context, where, order string, args ...any) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s, rowid DESC`, documentColumns, r.tables.Documents, where, order)
	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

// ListAll lists live documents, newest first.
func (r *SQLiteDocumentRepository) ListAll(ctx context.Context, ownerID string) ([]models.Document, error) {
	return r.list(ctx, `owner_id = ? AND is_archived = 0`, `created_at DESC`, ownerID)
}

// ListChildren lists live documents under parentID, newest first.
func (r *SQLiteDocumentRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.Document, error) {
	if parentID == nil {
		return r.list(ctx, `owner_id = ? AND parent_id IS NULL AND is_archived = 0`, `created_at DESC`, ownerID)
	}
	return r.list(ctx, `owner_id = ? AND parent_id = ? AND is_archived = 0`, `created_at DESC`, ownerID, *parentID)
}

// ListArchived lists trashed documents, most recently updated first.
func (r *SQLiteDocumentRepository) ListArchived(ctx context.Context, ownerID string) ([]models.Document, error) {
	return r.list(ctx, `owner_id = ? AND is_archived = 1`, `updated_at DESC`, ownerID)
}

// SubtreeIDs returns id and the ids of all its descendants.
func (r *SQLiteDocumentRepository) SubtreeIDs(ctx context.Context, ownerID, id string) ([]string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM %[1]s WHERE id = ? AND owner_id = ?
			UNION
			SELECT d.id FROM %[1]s d JOIN subtree s ON d.parent_id = s.id WHERE d.owner_id = ?
		)
		SELECT id FROM subtree
	`, r.tables.Documents)

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, id, ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("scan subtree: %w", err)
		}
		ids = append(ids, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	if len(ids) == 0 {
		return nil, domain.NewNotFound("document", id)
	}
	return ids, nil
}

// SetArchived flags the whole subtree.
func (r *SQLiteDocumentRepository) SetArchived(ctx context.Context, ownerID, id string, archived bool) ([]string, error) {
	ids, err := r.SubtreeIDs(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`UPDATE %s SET is_archived = ?, updated_at = ? WHERE id IN (%s)`,
		r.tables.Documents, placeholders(len(ids)))

	args := append([]any{archived, sqlite.Now()}, anys(ids)...)
	if _, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("set archived: %w", err)
	}
	return ids, nil
}

// SetParent moves a document under parentID (nil = root).
func (r *SQLiteDocumentRepository) SetParent(ctx context.Context, ownerID, id string, parentID *string) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	if parentID != nil {
		var exists int
		err := executor.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ? AND owner_id = ?`, r.tables.Documents),
			*parentID, ownerID,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFound("parent document", *parentID)
		}
		if err != nil {
			return fmt.Errorf("move document: %w", err)
		}
	}

	query := fmt.Sprintf(`UPDATE %s SET parent_id = ?, updated_at = ? WHERE id = ? AND owner_id = ?`, r.tables.Documents)
	result, err := executor.ExecContext(ctx, query, parentID, sqlite.Now(), id, ownerID)
	if err != nil {
		return fmt.Errorf("move document: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NewNotFound("document", id)
	}
	return nil
}

// DeleteTree removes the subtree. Image rows go with it through the
// foreign key cascade.
func (r *SQLiteDocumentRepository) DeleteTree(ctx context.Context, ownerID, id string) ([]string, error) {
	ids, err := r.SubtreeIDs(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`, r.tables.Documents, placeholders(len(ids)))
	if _, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, anys(ids)...); err != nil {
		return nil, fmt.Errorf("delete document tree: %w", err)
	}
	return ids, nil
}

// Search matches documents by substring. SQLite has no ranking here, so
// the full-text strategy runs as a substring search too.
func (r *SQLiteDocumentRepository) Search(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, domain.NewValidation("%v", err)
	}

	pattern := "%" + pgdocsystem.EscapeLike(opts.Query) + "%"
	var conditions []string
	args := []any{opts.OwnerID, opts.Archived}
	if opts.Searches(models.SearchFieldTitle) {
		conditions = append(conditions, `title LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	if opts.Searches(models.SearchFieldContent) {
		conditions = append(conditions, `content LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = ? AND is_archived = ? AND (%s)
		ORDER BY updated_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, documentColumns, r.tables.Documents, strings.Join(conditions, " OR "))
	args = append(args, opts.Limit, opts.Offset)

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return collectDocuments(rows)
}
