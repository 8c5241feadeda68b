package docsystem

import (
	"context"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

// ImageService manages uploaded images and their attachment to documents.
type ImageService interface {
	// Upload stores an image and returns its public URL.
	Upload(ctx context.Context, ownerID string, file *UploadedFile) (string, error)

	// AddToDocument records an uploaded image against a document.
	AddToDocument(ctx context.Context, ownerID, documentID string, req *AddImageRequest) (*docsystem.DocumentImage, error)

	ListForDocument(ctx context.Context, ownerID, documentID string) ([]docsystem.DocumentImage, error)

	UpdateMetadata(ctx context.Context, ownerID, imageID string, req *UpdateImageRequest) (*docsystem.DocumentImage, error)

	// DeleteImage removes the record and the stored blob.
	DeleteImage(ctx context.Context, ownerID, imageID string) error
}

// AddImageRequest attaches an uploaded image to a document
type AddImageRequest struct {
	URL     string  `json:"url"`
	Alt     *string `json:"alt,omitempty"`
	Caption *string `json:"caption,omitempty"`
	Width   *int    `json:"width,omitempty"`
	Height  *int    `json:"height,omitempty"`
}

// UpdateImageRequest changes image metadata
type UpdateImageRequest struct {
	Alt     *string `json:"alt,omitempty"`
	Caption *string `json:"caption,omitempty"`
}
