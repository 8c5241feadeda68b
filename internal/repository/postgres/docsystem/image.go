package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
)

const imageColumns = `id, document_id, url, alt, caption, width, height, created_at`

// PostgresImageRepository implements the ImageRepository interface
type PostgresImageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewImageRepository creates a new image repository
func NewImageRepository(config *postgres.RepositoryConfig) docsysRepo.ImageRepository {
	return &PostgresImageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanImage(row pgx.Row) (*models.DocumentImage, error) {
	var img models.DocumentImage
	if err := row.Scan(&img.ID, &img.DocumentID, &img.URL, &img.Alt, &img.Caption, &img.Width, &img.Height, &img.CreatedAt); err != nil {
		return nil, err
	}
	return &img, nil
}

func collectImages(rows pgx.Rows) ([]models.DocumentImage, error) {
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
func (r *PostgresImageRepository) Create(ctx context.Context, img *models.DocumentImage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, url, alt, caption, width, height)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.DocumentImages)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		img.DocumentID, img.URL, img.Alt, img.Caption, img.Width, img.Height,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("document", img.DocumentID)
		}
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

// GetByID retrieves an image record
func (r *PostgresImageRepository) GetByID(ctx context.Context, id string) (*models.DocumentImage, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, imageColumns, r.tables.DocumentImages)

	img, err := scanImage(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, domain.NewNotFound("image", id)
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// ListByDocument lists a document's images, oldest first
func (r *PostgresImageRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentImage, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE document_id = $1 ORDER BY created_at ASC`, imageColumns, r.tables.DocumentImages)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return collectImages(rows)
}

// ListByDocuments lists the images of several documents
func (r *PostgresImageRepository) ListByDocuments(ctx context.Context, documentIDs []string) ([]models.DocumentImage, error) {
	if len(documentIDs) == 0 {
		return []models.DocumentImage{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE document_id = ANY($1::uuid[]) ORDER BY created_at ASC`, imageColumns, r.tables.DocumentImages)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return collectImages(rows)
}

// Update writes alt text and caption
func (r *PostgresImageRepository) Update(ctx context.Context, img *models.DocumentImage) error {
	query := fmt.Sprintf(`UPDATE %s SET alt = $1, caption = $2 WHERE id = $3`, r.tables.DocumentImages)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, img.Alt, img.Caption, img.ID)
	if err != nil {
		if isMissing(err) {
			return domain.NewNotFound("image", img.ID)
		}
		return fmt.Errorf("update image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("image", img.ID)
	}
	return nil
}

// Delete removes an image record
func (r *PostgresImageRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.DocumentImages)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isMissing(err) {
			return domain.NewNotFound("image", id)
		}
		return fmt.Errorf("delete image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("image", id)
	}
	return nil
}

// DeleteByDocuments removes the image records of several documents
func (r *PostgresImageRepository) DeleteByDocuments(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = ANY($1::uuid[])`, r.tables.DocumentImages)
	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, documentIDs); err != nil {
		return fmt.Errorf("delete images: %w", err)
	}
	return nil
}
