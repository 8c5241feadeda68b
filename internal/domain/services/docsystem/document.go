package docsystem

import (
	"context"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

// DocumentService handles document business logic. ownerID comes from the
// authenticated request; documents of other owners read as not found.
type DocumentService interface {
	// CreateDocument creates a document, defaulting title and content.
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*docsystem.Document, error)

	GetDocument(ctx context.Context, ownerID, documentID string) (*docsystem.Document, error)

	// UpdateDocument applies a partial update. Fields equal to the stored
	// values are skipped and an update that changes nothing is a no-op.
	UpdateDocument(ctx context.Context, ownerID, documentID string, req *UpdateDocumentRequest) (*docsystem.Document, error)

	ListDocuments(ctx context.Context, ownerID string) ([]docsystem.Document, error)

	// ListChildren lists live documents under parentID (nil = root).
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]docsystem.Document, error)

	ListArchived(ctx context.Context, ownerID string) ([]docsystem.Document, error)

	// ArchiveDocument archives or restores a document and all its descendants.
	ArchiveDocument(ctx context.Context, ownerID, documentID string, archived bool) (*docsystem.Document, error)

	// MoveDocument reparents a document (nil = root).
	MoveDocument(ctx context.Context, ownerID, documentID string, parentID *string) (*docsystem.Document, error)

	// DeleteDocument deletes a document, its descendants and their images.
	DeleteDocument(ctx context.Context, ownerID, documentID string) error

	SearchDocuments(ctx context.Context, ownerID string, req *SearchDocumentsRequest) ([]docsystem.Document, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	OwnerID    string  `json:"-"` // Set by handler from auth context, not from request body
	Title      string  `json:"title"`
	ParentID   *string `json:"parent_id,omitempty"`
	Content    *string `json:"content,omitempty"`
	Icon       *string `json:"icon,omitempty"`
	CoverImage *string `json:"cover_image,omitempty"`
}

// UpdateDocumentRequest represents a partial document update
type UpdateDocumentRequest struct {
	Title       *string
	Content     *string
	Icon        docsystem.OptionalString
	CoverImage  docsystem.OptionalString
	IsPublished *bool
}

// IsEmpty reports whether the request carries no fields.
func (r *UpdateDocumentRequest) IsEmpty() bool {
	return r.Title == nil && r.Content == nil && !r.Icon.Present && !r.CoverImage.Present && r.IsPublished == nil
}

// SearchDocumentsRequest represents a document search request
type SearchDocumentsRequest struct {
	Query    string   `json:"query"`
	Archived bool     `json:"archived,omitempty"`
	Fields   []string `json:"fields,omitempty"` // "title", "content" (default: both)
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
	Strategy string   `json:"strategy,omitempty"` // "substring" (default) or "fulltext"
}
