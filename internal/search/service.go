package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Priya-753/notion-clone/internal/domain"
	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
)

// Backend is an external index. *Meili implements it.
type Backend interface {
	Healthy() bool
	Search(opts *models.SearchOptions) ([]string, error)
	Index(records []Record) error
	Delete(ids []string) error
}

// Service answers searches from the index when it is healthy and the request
// asks for ranked results, and from the document store otherwise. Substring
// searches always go to the store so results stay exact.
type Service struct {
	backend Backend
	docs    docsysRepo.DocumentRepository
	logger  *slog.Logger
}

// NewService creates a search service. backend may be nil.
func NewService(backend Backend, docs docsysRepo.DocumentRepository, logger *slog.Logger) *Service {
	if b, ok := backend.(*Meili); ok && b == nil {
		backend = nil
	}
	return &Service{backend: backend, docs: docs, logger: logger}
}

// Backend names where ranked searches currently go.
func (s *Service) Backend() string {
	if s.available() {
		return "meilisearch"
	}
	return "store"
}

func (s *Service) available() bool {
	return s.backend != nil && s.backend.Healthy()
}

// Search runs opts against the index or the store.
func (s *Service) Search(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, domain.NewValidation("%v", err)
	}

	if opts.Strategy == models.SearchStrategyFullText && s.available() {
		docs, err := s.searchIndex(ctx, opts)
		if err == nil {
			return docs, nil
		}
		s.logger.Warn("index search failed, falling back to store", "error", err)
	}
	return s.docs.Search(ctx, opts)
}

func (s *Service) searchIndex(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	ids, err := s.backend.Search(opts)
	if err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.docs.GetByID(ctx, opts.OwnerID, id)
		if errors.Is(err, domain.ErrNotFound) {
			// Stale index entry.
			continue
		}
		if err != nil {
			return nil, err
		}
		if doc.IsArchived != opts.Archived {
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// IndexDocuments pushes documents to the index in the background.
func (s *Service) IndexDocuments(_ context.Context, docs []models.Document) {
	if !s.available() || len(docs) == 0 {
		return
	}
	records := make([]Record, len(docs))
	for i := range docs {
		records[i] = NewRecord(&docs[i])
	}
	go func() {
		if err := s.backend.Index(records); err != nil {
			s.logger.Warn("index documents", "count", len(records), "error", err)
		}
	}()
}

// RemoveDocuments drops documents from the index in the background.
func (s *Service) RemoveDocuments(_ context.Context, ids []string) {
	if !s.available() || len(ids) == 0 {
		return
	}
	go func() {
		if err := s.backend.Delete(ids); err != nil {
			s.logger.Warn("remove documents from index", "count", len(ids), "error", err)
		}
	}()
}

// Reindex pushes every document of an owner, live and archived, and waits
// for the index to accept them.
func (s *Service) Reindex(ctx context.Context, ownerID string) (int, error) {
	if !s.available() {
		return 0, fmt.Errorf("search index: %w", domain.ErrUnavailable)
	}
	live, err := s.docs.ListAll(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	archived, err := s.docs.ListArchived(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	all := append(live, archived...)
	records := make([]Record, len(all))
	for i := range all {
		records[i] = NewRecord(&all[i])
	}
	if err := s.backend.Index(records); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	return len(records), nil
}
