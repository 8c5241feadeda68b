package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	"github.com/Priya-753/notion-clone/internal/domain/repositories"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo   docsysRepo.DocumentRepository
	imageRepo docsysRepo.ImageRepository
	blobs     docsysRepo.BlobStore
	txManager repositories.TransactionManager
	searcher  docsysSvc.Searcher
	indexer   docsysSvc.Indexer
	validator *ResourceValidator
	logger    *slog.Logger
}

// DocumentDeps groups the optional collaborators of the document service.
// Any of them may be nil: a nil searcher searches the store directly, a nil
// indexer skips index maintenance and a nil blob store leaves image blobs
// in place on delete.
type DocumentDeps struct {
	Blobs    docsysRepo.BlobStore
	Searcher docsysSvc.Searcher
	Indexer  docsysSvc.Indexer
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	imageRepo docsysRepo.ImageRepository,
	txManager repositories.TransactionManager,
	deps DocumentDeps,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:   docRepo,
		imageRepo: imageRepo,
		blobs:     deps.Blobs,
		txManager: txManager,
		searcher:  deps.Searcher,
		indexer:   deps.Indexer,
		validator: NewResourceValidator(docRepo),
		logger:    logger,
	}
}

// CreateDocument creates a document under an optional parent. A blank title
// becomes "Untitled" and missing content becomes the initial heading and
// empty paragraph.
func (s *documentService) CreateDocument(ctx context.Context, req *docsysSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, invalid(err)
	}
	parentID := normalizeParent(req.ParentID)
	if err := s.validator.ValidateParent(ctx, req.OwnerID, parentID); err != nil {
		return nil, err
	}

	content := models.InitialContent
	if req.Content != nil {
		content = node.Serialize(node.Parse(*req.Content))
	}

	doc := &models.Document{
		OwnerID:    req.OwnerID,
		ParentID:   parentID,
		Title:      displayTitle(req.Title),
		Content:    content,
		Icon:       req.Icon,
		CoverImage: req.CoverImage,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"owner_id", doc.OwnerID,
		"parent_id", parentID,
	)
	s.index(ctx, *doc)
	return doc, nil
}

// GetDocument retrieves a document, archived or not
func (s *documentService) GetDocument(ctx context.Context, ownerID, documentID string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, ownerID, documentID)
}

// UpdateDocument applies the fields of req that differ from the stored
// document. Nothing is written when no field changes.
func (s *documentService) UpdateDocument(ctx context.Context, ownerID, documentID string, req *docsysSvc.UpdateDocumentRequest) (*models.Document, error) {
	if err := validateUpdateRequest(req); err != nil {
		return nil, invalid(err)
	}

	doc, err := s.docRepo.GetByID(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if req.Title != nil {
		if title := displayTitle(*req.Title); title != doc.Title {
			doc.Title = title
			changed = append(changed, "title")
		}
	}
	if req.Content != nil && *req.Content != doc.Content {
		doc.Content = *req.Content
		changed = append(changed, "content")
	}
	if req.Icon.Changes(doc.Icon) {
		doc.Icon = req.Icon.Apply(doc.Icon)
		changed = append(changed, "icon")
	}
	if req.CoverImage.Changes(doc.CoverImage) {
		doc.CoverImage = req.CoverImage.Apply(doc.CoverImage)
		changed = append(changed, "cover_image")
	}
	if req.IsPublished != nil && *req.IsPublished != doc.IsPublished {
		doc.IsPublished = *req.IsPublished
		changed = append(changed, "is_published")
	}

	if len(changed) == 0 {
		s.logger.Debug("document update skipped, nothing changed", "id", documentID)
		return doc, nil
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"owner_id", ownerID,
		"fields", changed,
	)
	if slices.ContainsFunc(changed, func(f string) bool { return f == "title" || f == "content" || f == "icon" }) {
		s.index(ctx, *doc)
	}
	return doc, nil
}

// ListDocuments lists live documents, newest first
func (s *documentService) ListDocuments(ctx context.Context, ownerID string) ([]models.Document, error) {
	return s.docRepo.ListAll(ctx, ownerID)
}

// ListChildren lists live documents under parentID (nil = root), newest first
func (s *documentService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.Document, error) {
	return s.docRepo.ListChildren(ctx, ownerID, normalizeParent(parentID))
}

// ListArchived lists the trash, most recently updated first
func (s *documentService) ListArchived(ctx context.Context, ownerID string) ([]models.Document, error) {
	return s.docRepo.ListArchived(ctx, ownerID)
}

// ArchiveDocument archives or restores a document together with its
// descendants. A document restored while its parent is still archived is
// moved to the root so it becomes reachable again.
func (s *documentService) ArchiveDocument(ctx context.Context, ownerID, documentID string, archived bool) (*models.Document, error) {
	var doc *models.Document
	var affected []string

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.docRepo.GetByID(txCtx, ownerID, documentID)
		if err != nil {
			return err
		}

		if !archived && current.ParentID != nil {
			parent, err := s.docRepo.GetByID(txCtx, ownerID, *current.ParentID)
			switch {
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				return err
			case err != nil || parent.IsArchived:
				if err := s.docRepo.SetParent(txCtx, ownerID, documentID, nil); err != nil {
					return err
				}
				s.logger.Debug("restored document detached to root",
					"id", documentID,
					"former_parent_id", *current.ParentID,
				)
			}
		}

		affected, err = s.docRepo.SetArchived(txCtx, ownerID, documentID, archived)
		if err != nil {
			return err
		}

		doc, err = s.docRepo.GetByID(txCtx, ownerID, documentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	action := "document restored"
	if archived {
		action = "document archived"
	}
	s.logger.Info(action,
		"id", documentID,
		"owner_id", ownerID,
		"affected", len(affected),
	)
	s.reindex(ctx, ownerID, affected)
	return doc, nil
}

// MoveDocument reparents a document. Moving a document under itself or one
// of its descendants is rejected.
func (s *documentService) MoveDocument(ctx context.Context, ownerID, documentID string, parentID *string) (*models.Document, error) {
	parentID = normalizeParent(parentID)

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		subtree, err := s.docRepo.SubtreeIDs(txCtx, ownerID, documentID)
		if err != nil {
			return err
		}
		if parentID != nil {
			if slices.Contains(subtree, *parentID) {
				return domain.NewValidation("cannot move a document into itself or one of its descendants")
			}
			if err := s.validator.ValidateParent(txCtx, ownerID, parentID); err != nil {
				return err
			}
		}
		if err := s.docRepo.SetParent(txCtx, ownerID, documentID, parentID); err != nil {
			return err
		}
		doc, err = s.docRepo.GetByID(txCtx, ownerID, documentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document moved",
		"id", documentID,
		"owner_id", ownerID,
		"parent_id", parentID,
	)
	s.index(ctx, *doc)
	return doc, nil
}

// DeleteDocument removes a document, its descendants and their images in one
// transaction. Image blobs are deleted after the commit; blob failures are
// logged and do not undo the delete.
func (s *documentService) DeleteDocument(ctx context.Context, ownerID, documentID string) error {
	var removed []string
	var images []models.DocumentImage

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		ids, err := s.docRepo.SubtreeIDs(txCtx, ownerID, documentID)
		if err != nil {
			return err
		}
		images, err = s.imageRepo.ListByDocuments(txCtx, ids)
		if err != nil {
			return err
		}
		if err := s.imageRepo.DeleteByDocuments(txCtx, ids); err != nil {
			return err
		}
		removed, err = s.docRepo.DeleteTree(txCtx, ownerID, documentID)
		return err
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(ctx, images)
	if s.indexer != nil {
		s.indexer.RemoveDocuments(ctx, removed)
	}

	s.logger.Info("document deleted",
		"id", documentID,
		"owner_id", ownerID,
		"documents", len(removed),
		"images", len(images),
	)
	return nil
}

// SearchDocuments matches title and content case-insensitively
func (s *documentService) SearchDocuments(ctx context.Context, ownerID string, req *docsysSvc.SearchDocumentsRequest) ([]models.Document, error) {
	query := strings.TrimSpace(req.Query)
	if len([]rune(query)) > config.MaxSearchQueryLength {
		return nil, domain.NewValidation("search query cannot exceed %d characters", config.MaxSearchQueryLength)
	}

	opts := &models.SearchOptions{
		OwnerID:  ownerID,
		Query:    query,
		Archived: req.Archived,
		Limit:    req.Limit,
		Offset:   req.Offset,
		Strategy: models.SearchStrategy(req.Strategy),
	}
	for _, f := range req.Fields {
		opts.Fields = append(opts.Fields, models.SearchField(strings.ToLower(strings.TrimSpace(f))))
	}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, domain.NewValidation("%s", err.Error())
	}

	if s.searcher != nil {
		return s.searcher.Search(ctx, opts)
	}
	return s.docRepo.Search(ctx, opts)
}

func (s *documentService) index(ctx context.Context, docs ...models.Document) {
	if s.indexer != nil {
		s.indexer.IndexDocuments(ctx, docs)
	}
}

// reindex pushes the current state of ids to the index.
func (s *documentService) reindex(ctx context.Context, ownerID string, ids []string) {
	if s.indexer == nil || len(ids) == 0 {
		return
	}
	docs := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.docRepo.GetByID(ctx, ownerID, id)
		if err != nil {
			s.logger.Warn("failed to load document for indexing", "id", id, "error", err)
			continue
		}
		docs = append(docs, *doc)
	}
	s.indexer.IndexDocuments(ctx, docs)
}

func (s *documentService) deleteBlobs(ctx context.Context, images []models.DocumentImage) {
	if s.blobs == nil {
		return
	}
	for _, img := range images {
		if err := s.blobs.Delete(ctx, img.URL); err != nil {
			s.logger.Warn("failed to delete image blob",
				"image_id", img.ID,
				"url", img.URL,
				"error", fmt.Errorf("document delete: %w", err),
			)
		}
	}
}
