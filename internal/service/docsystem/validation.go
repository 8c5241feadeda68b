package docsystem

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

// ResourceValidator checks that the documents an operation attaches to are
// live documents of the caller.
type ResourceValidator struct {
	docRepo docsysRepo.DocumentRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(docRepo docsysRepo.DocumentRepository) *ResourceValidator {
	return &ResourceValidator{docRepo: docRepo}
}

// ValidateParent ensures parentID names a live document of ownerID.
// A nil parent (root) is always valid.
func (v *ResourceValidator) ValidateParent(ctx context.Context, ownerID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	parent, err := v.docRepo.GetByID(ctx, ownerID, *parentID)
	if err != nil {
		return fmt.Errorf("invalid parent: %w", err)
	}
	if parent.IsArchived {
		return domain.NewValidation("parent document %s is archived", *parentID)
	}
	return nil
}

// normalizeParent maps the empty string to root.
func normalizeParent(parentID *string) *string {
	if parentID == nil || strings.TrimSpace(*parentID) == "" {
		return nil
	}
	return parentID
}

func validateCreateRequest(req *docsysSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title, validation.RuneLength(0, config.MaxDocumentTitleLength)),
		validation.Field(&req.Icon, validation.NilOrNotEmpty, validation.RuneLength(0, config.MaxIconLength)),
		validation.Field(&req.CoverImage, validation.NilOrNotEmpty),
	)
}

func validateUpdateRequest(req *docsysSvc.UpdateDocumentRequest) error {
	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.RuneLength(0, config.MaxDocumentTitleLength)); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if req.Icon.Present && req.Icon.Value != nil {
		if err := validation.Validate(*req.Icon.Value, validation.Required, validation.RuneLength(0, config.MaxIconLength)); err != nil {
			return fmt.Errorf("icon: %w", err)
		}
	}
	if req.CoverImage.Present && req.CoverImage.Value != nil {
		if err := validation.Validate(*req.CoverImage.Value, validation.Required); err != nil {
			return fmt.Errorf("cover_image: %w", err)
		}
	}
	return nil
}

func validateImageMetadata(alt, caption *string) error {
	return validation.Errors{
		"alt":     validation.Validate(alt, validation.RuneLength(0, config.MaxAltTextLength)),
		"caption": validation.Validate(caption, validation.RuneLength(0, config.MaxCaptionLength)),
	}.Filter()
}

// invalid wraps a validation failure as a domain validation error.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// displayTitle trims a title and defaults it when blank.
func displayTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return models.DefaultTitle
	}
	return title
}
