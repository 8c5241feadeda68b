package docsystem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
	"github.com/Priya-753/notion-clone/internal/repository/sqlite"
)

const imageColumns = `id, document_id, url, alt, caption, width, height, created_at`

// SQLiteImageRepository implements the ImageRepository interface
type SQLiteImageRepository struct {
	db     *sql.DB
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewImageRepository creates a new image repository
func NewImageRepository(config *sqlite.RepositoryConfig) docsysRepo.ImageRepository {
	return &SQLiteImageRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanImage(row scanner) (*models.DocumentImage, error) {
	var img models.DocumentImage
	var created int64
	var width, height sql.NullInt64
	if err := row.Scan(&img.ID, &img.DocumentID, &img.URL, &img.Alt, &img.Caption, &width, &height, &created); err != nil {
		return nil, err
	}
	if width.Valid {
		w := int(width.Int64)
		img.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		img.Height = &h
	}
	img.CreatedAt = sqlite.Time(created)
	return &img, nil
}

func collectImages(rows *sql.Rows) ([]models.DocumentImage, error) {
	defer rows.Close()
	images := []models.DocumentImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	return images, nil
}

// Create inserts an image record
func (r *SQLiteImageRepository) Create(ctx context.Context, img *models.DocumentImage) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	var exists int
	err := executor.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, r.tables.Documents), img.DocumentID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound("document", img.DocumentID)
	}
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	now := sqlite.Now()
	id := uuid.NewString()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, url, alt, caption, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.DocumentImages)
	if _, err := executor.ExecContext(ctx, query, id, img.DocumentID, img.URL, img.Alt, img.Caption, img.Width, img.Height, now); err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	img.ID = id
	img.CreatedAt = sqlite.Time(now)
	return nil
}

// GetByID retrieves an image record
func (r *SQLiteImageRepository) GetByID(ctx context.Context, id string) (*models.DocumentImage, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, imageColumns, r.tables.DocumentImages)
	img, err := scanImage(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("image", id)
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// ListByDocument lists a document's images, oldest first
func (r *SQLiteImageRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentImage, error) {
	return r.ListByDocuments(ctx, []string{documentID})
}

// ListByDocuments lists the images of several documents
func (r *SQLiteImageRepository) ListByDocuments(ctx context.Context, documentIDs []string) ([]models.DocumentImage, error) {
	if len(documentIDs) == 0 {
		return []models.DocumentImage{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE document_id IN (%s) ORDER BY created_at ASC, rowid ASC`,
		imageColumns, r.tables.DocumentImages, placeholders(len(documentIDs)))

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, anys(documentIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return collectImages(rows)
}

// Update writes alt text and caption
func (r *SQLiteImageRepository) Update(ctx context.Context, img *models.DocumentImage) error {
	query := fmt.Sprintf(`UPDATE %s SET alt = ?, caption = ? WHERE id = ?`, r.tables.DocumentImages)
	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, img.Alt, img.Caption, img.ID)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NewNotFound("image", img.ID)
	}
	return nil
}

// Delete removes an image record
func (r *SQLiteImageRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tables.DocumentImages)
	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NewNotFound("image", id)
	}
	return nil
}

// DeleteByDocuments removes the image records of several documents
func (r *SQLiteImageRepository) DeleteByDocuments(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id IN (%s)`, r.tables.DocumentImages, placeholders(len(documentIDs)))
	if _, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, anys(documentIDs)...); err != nil {
		return fmt.Errorf("delete images: %w", err)
	}
	return nil
}
