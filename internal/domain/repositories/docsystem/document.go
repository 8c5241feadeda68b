package docsystem

import (
	"context"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for documents. Every
// lookup is scoped to an owner; a document owned by someone else reads as
// not found.
type DocumentRepository interface {
	// Create inserts a new document. ID and timestamps are filled in.
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document, archived or not.
	GetByID(ctx context.Context, ownerID, id string) (*docsystem.Document, error)

	// Update writes every mutable column of doc and bumps updated_at.
	Update(ctx context.Context, doc *docsystem.Document) error

	// ListAll lists live documents, newest first.
	ListAll(ctx context.Context, ownerID string) ([]docsystem.Document, error)

	// ListChildren lists live documents under parentID (nil = root),
	// newest first.
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]docsystem.Document, error)

	// ListArchived lists archived documents, most recently updated first.
	ListArchived(ctx context.Context, ownerID string) ([]docsystem.Document, error)

	// SubtreeIDs returns id and the ids of all its descendants.
	SubtreeIDs(ctx context.Context, ownerID, id string) ([]string, error)

	// SetArchived flags id and all its descendants. It returns the affected ids.
	SetArchived(ctx context.Context, ownerID, id string, archived bool) ([]string, error)

	// SetParent moves a document under parentID (nil = root).
	SetParent(ctx context.Context, ownerID, id string, parentID *string) error

	// DeleteTree removes id and all its descendants. It returns the removed ids.
	DeleteTree(ctx context.Context, ownerID, id string) ([]string, error)

	// Search matches documents per options, most recently updated first.
	Search(ctx context.Context, options *docsystem.SearchOptions) ([]docsystem.Document, error)
}
