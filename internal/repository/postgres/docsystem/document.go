package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
)

const documentColumns = `id, owner_id, parent_id, title, content, icon, cover_image, is_archived, is_published, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
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
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
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

// isMissing reports lookups that cannot match: no rows or a malformed id.
func isMissing(err error) bool {
	return postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err)
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, parent_id, title, content, icon, cover_image, is_archived, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.OwnerID,
		doc.ParentID,
		doc.Title,
		doc.Content,
		doc.Icon,
		doc.CoverImage,
		doc.IsArchived,
		doc.IsPublished,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("parent document", deref(doc.ParentID))
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND owner_id = $2`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if isMissing(err) {
			return nil, domain.NewNotFound("document", id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update writes the mutable columns and refreshes updated_at.
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, icon = $3, cover_image = $4, is_published = $5, updated_at = NOW()
		WHERE id = $6 AND owner_id = $7
		RETURNING updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.Content,
		doc.Icon,
		doc.CoverImage,
		doc.IsPublished,
		doc.ID,
		doc.OwnerID,
	).Scan(&doc.UpdatedAt)
	if err != nil {
		if isMissing(err) {
			return domain.NewNotFound("document", doc.ID)
		}
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// ListAll lists live documents, newest first.
func (r *PostgresDocumentRepository) ListAll(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND is_archived = FALSE
		ORDER BY created_at DESC
	`, documentColumns, r.tables.Documents)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

// ListChildren lists live documents under parentID, newest first.
func (r *PostgresDocumentRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.Document, error) {
	var query string
	args := []any{ownerID}
	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE owner_id = $1 AND parent_id IS NULL AND is_archived = FALSE
			ORDER BY created_at DESC
		`, documentColumns, r.tables.Documents)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE owner_id = $1 AND parent_id = $2 AND is_archived = FALSE
			ORDER BY created_at DESC
		`, documentColumns, r.tables.Documents)
		args = append(args, *parentID)
	}

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []models.Document{}, nil
		}
		return nil, fmt.Errorf("list children: %w", err)
	}
	return collectDocuments(rows)
}

// ListArchived lists trashed documents, most recently updated first.
func (r *PostgresDocumentRepository) ListArchived(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND is_archived = TRUE
		ORDER BY updated_at DESC
	`, documentColumns, r.tables.Documents)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list archived documents: %w", err)
	}
	return collectDocuments(rows)
}

// subtree is a recursive CTE selecting $1 and its descendants owned by $2.
func (r *PostgresDocumentRepository) subtree() string {
	return fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1 AND owner_id = $2
			UNION
			SELECT d.id FROM %[1]s d JOIN subtree s ON d.parent_id = s.id WHERE d.owner_id = $2
		)`, r.tables.Documents)
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// SubtreeIDs returns id and the ids of all its descendants.
func (r *PostgresDocumentRepository) SubtreeIDs(ctx context.Context, ownerID, id string) ([]string, error) {
	query := r.subtree() + ` SELECT id::text FROM subtree`

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, id, ownerID)
	if err != nil {
		if isMissing(err) {
			return nil, domain.NewNotFound("document", id)
		}
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		if isMissing(err) {
			return nil, domain.NewNotFound("document", id)
		}
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	if len(ids) == 0 {
		return nil, domain.NewNotFound("document", id)
	}
	return ids, nil
}

// SetArchived flags the whole subtree in one statement.
func (r *PostgresDocumentRepository) SetArchived(ctx context.Context, ownerID, id string, archived bool) ([]string, error) {
	query := r.subtree() + fmt.Sprintf(`
		UPDATE %s SET is_archived = $3, updated_at = NOW()
		WHERE id IN (SELECT id FROM subtree)
		RETURNING id::text
	`, r.tables.Documents)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, id, ownerID, archived)
	if err == nil {
		var ids []string
		ids, err = collectIDs(rows)
		if err == nil {
			if len(ids) == 0 {
				return nil, domain.NewNotFound("document", id)
			}
			return ids, nil
		}
	}
	if isMissing(err) {
		return nil, domain.NewNotFound("document", id)
	}
	return nil, fmt.Errorf("set archived: %w", err)
}

// SetParent moves a document under parentID (nil = root).
func (r *PostgresDocumentRepository) SetParent(ctx context.Context, ownerID, id string, parentID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET parent_id = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
	`, r.tables.Documents)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, parentID, id, ownerID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("parent document", deref(parentID))
		}
		if isMissing(err) {
			return domain.NewNotFound("document", id)
		}
		return fmt.Errorf("move document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("document", id)
	}
	return nil
}

// DeleteTree removes the subtree. Image rows go with it through the
// foreign key cascade.
func (r *PostgresDocumentRepository) DeleteTree(ctx context.Context, ownerID, id string) ([]string, error) {
	query := r.subtree() + fmt.Sprintf(`
		DELETE FROM %s WHERE id IN (SELECT id FROM subtree)
		RETURNING id::text
	`, r.tables.Documents)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, id, ownerID)
	if err == nil {
		var ids []string
		ids, err = collectIDs(rows)
		if err == nil {
			if len(ids) == 0 {
				return nil, domain.NewNotFound("document", id)
			}
			return ids, nil
		}
	}
	if isMissing(err) {
		return nil, domain.NewNotFound("document", id)
	}
	return nil, fmt.Errorf("delete document tree: %w", err)
}

// Search matches documents by substring or full-text query.
func (r *PostgresDocumentRepository) Search(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, domain.NewValidation("%v", err)
	}

	if opts.Strategy == models.SearchStrategyFullText {
		return r.fullTextSearch(ctx, opts)
	}
	return r.substringSearch(ctx, opts)
}

func (r *PostgresDocumentRepository) substringSearch(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	var conditions []string
	if opts.Searches(models.SearchFieldTitle) {
		conditions = append(conditions, `title ILIKE $3 ESCAPE '\'`)
	}
	if opts.Searches(models.SearchFieldContent) {
		conditions = append(conditions, `content ILIKE $3 ESCAPE '\'`)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND is_archived = $2 AND (%s)
		ORDER BY updated_at DESC
		LIMIT $4 OFFSET $5
	`, documentColumns, r.tables.Documents, strings.Join(conditions, " OR "))

	pattern := "%" + EscapeLike(opts.Query) + "%"
	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, opts.OwnerID, opts.Archived, pattern, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return collectDocuments(rows)
}

// fullTextSearch ranks matches with ts_rank, weighting title matches double.
func (r *PostgresDocumentRepository) fullTextSearch(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	var conditions, ranks []string
	if opts.Searches(models.SearchFieldTitle) {
		conditions = append(conditions, "to_tsvector($1, title) @@ websearch_to_tsquery($1, $2)")
		ranks = append(ranks, "ts_rank(to_tsvector($1, title), websearch_to_tsquery($1, $2)) * 2.0")
	}
	if opts.Searches(models.SearchFieldContent) {
		conditions = append(conditions, "to_tsvector($1, content) @@ websearch_to_tsquery($1, $2)")
		ranks = append(ranks, "ts_rank(to_tsvector($1, content), websearch_to_tsquery($1, $2))")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $3 AND is_archived = $4 AND (%s)
		ORDER BY (%s) DESC, updated_at DESC
		LIMIT $5 OFFSET $6
	`, documentColumns, r.tables.Documents, strings.Join(conditions, " OR "), strings.Join(ranks, " + "))

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query,
		opts.Language, opts.Query, opts.OwnerID, opts.Archived, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("full-text search query failed: %w", err)
	}
	return collectDocuments(rows)
}

// EscapeLike escapes LIKE wildcards so the query matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
