package docsystem

import (
	"context"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

// ImageRepository defines data access operations for document images.
type ImageRepository interface {
	Create(ctx context.Context, img *docsystem.DocumentImage) error
	GetByID(ctx context.Context, id string) (*docsystem.DocumentImage, error)
	ListByDocument(ctx context.Context, documentID string) ([]docsystem.DocumentImage, error)

	// ListByDocuments returns the images of any of the given documents.
	ListByDocuments(ctx context.Context, documentIDs []string) ([]docsystem.DocumentImage, error)

	Update(ctx context.Context, img *docsystem.DocumentImage) error
	Delete(ctx context.Context, id string) error

	// DeleteByDocuments removes the image records of the given documents.
	DeleteByDocuments(ctx context.Context, documentIDs []string) error
}
