package docsystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

// imageExtensions maps sniffed content types to object key extensions.
var imageExtensions = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
}

// imageService implements the ImageService interface
type imageService struct {
	docRepo   docsysRepo.DocumentRepository
	imageRepo docsysRepo.ImageRepository
	blobs     docsysRepo.BlobStore
	maxBytes  int64
	logger    *slog.Logger
}

// NewImageService creates a new image service. blobs may be nil, in which
// case uploads fail with domain.ErrUnavailable.
func NewImageService(
	docRepo docsysRepo.DocumentRepository,
	imageRepo docsysRepo.ImageRepository,
	blobs docsysRepo.BlobStore,
	logger *slog.Logger,
) docsysSvc.ImageService {
	return &imageService{
		docRepo:   docRepo,
		imageRepo: imageRepo,
		blobs:     blobs,
		maxBytes:  config.MaxImageUploadBytes,
		logger:    logger,
	}
}

// Upload stores an image under "<owner>/<uuid><ext>". The content type is
// sniffed from the bytes, not taken from the client.
func (s *imageService) Upload(ctx context.Context, ownerID string, file *docsysSvc.UploadedFile) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("image storage is not configured: %w", domain.ErrUnavailable)
	}

	data, err := io.ReadAll(io.LimitReader(file.Content, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", domain.NewValidation("uploaded file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", domain.NewValidation("image exceeds the %d MiB limit", s.maxBytes>>20)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.NewValidation("file is not an image (detected %s)", contentType)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(file.Filename))
	}

	key := ownerID + "/" + uuid.New().String() + ext
	url, err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", err
	}

	s.logger.Info("image uploaded",
		"owner_id", ownerID,
		"key", key,
		"content_type", contentType,
		"bytes", len(data),
	)
	return url, nil
}

// AddToDocument records an uploaded image against a document of the caller
func (s *imageService) AddToDocument(ctx context.Context, ownerID, documentID string, req *docsysSvc.AddImageRequest) (*models.DocumentImage, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.URL, validation.Required),
		validation.Field(&req.Width, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.Height, validation.NilOrNotEmpty, validation.Min(1)),
	)
	if err == nil {
		err = validateImageMetadata(req.Alt, req.Caption)
	}
	if err != nil {
		return nil, invalid(err)
	}

	if _, err := s.docRepo.GetByID(ctx, ownerID, documentID); err != nil {
		return nil, err
	}

	img := &models.DocumentImage{
		DocumentID: documentID,
		URL:        req.URL,
		Alt:        req.Alt,
		Caption:    req.Caption,
		Width:      req.Width,
		Height:     req.Height,
	}
	if err := s.imageRepo.Create(ctx, img); err != nil {
		return nil, err
	}

	s.logger.Debug("image added to document", "image_id", img.ID, "document_id", documentID)
	return img, nil
}

// ListForDocument lists the images of a document of the caller, oldest first
func (s *imageService) ListForDocument(ctx context.Context, ownerID, documentID string) ([]models.DocumentImage, error) {
	if _, err := s.docRepo.GetByID(ctx, ownerID, documentID); err != nil {
		return nil, err
	}
	return s.imageRepo.ListByDocument(ctx, documentID)
}

// UpdateMetadata changes alt text and caption
func (s *imageService) UpdateMetadata(ctx context.Context, ownerID, imageID string, req *docsysSvc.UpdateImageRequest) (*models.DocumentImage, error) {
	if err := validateImageMetadata(req.Alt, req.Caption); err != nil {
		return nil, invalid(err)
	}

	img, err := s.owned(ctx, ownerID, imageID)
	if err != nil {
		return nil, err
	}
	if req.Alt != nil {
		img.Alt = req.Alt
	}
	if req.Caption != nil {
		img.Caption = req.Caption
	}
	if err := s.imageRepo.Update(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// DeleteImage removes the record, then the blob. A blob that cannot be
// deleted is logged and left behind.
func (s *imageService) DeleteImage(ctx context.Context, ownerID, imageID string) error {
	img, err := s.owned(ctx, ownerID, imageID)
	if err != nil {
		return err
	}
	if err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return err
	}

	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, img.URL); err != nil {
			s.logger.Warn("failed to delete image blob", "image_id", imageID, "url", img.URL, "error", err)
		}
	}
	s.logger.Info("image deleted", "image_id", imageID, "document_id", img.DocumentID)
	return nil
}

// owned loads an image whose document belongs to ownerID. Images of other
// owners read as not found.
func (s *imageService) owned(ctx context.Context, ownerID, imageID string) (*models.DocumentImage, error) {
	img, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.docRepo.GetByID(ctx, ownerID, img.DocumentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFound("image", imageID)
		}
		return nil, err
	}
	return img, nil
}
