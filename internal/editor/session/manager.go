package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Priya-753/notion-clone/internal/domain"
	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/autosave"
	"github.com/Priya-753/notion-clone/internal/editor/command"
	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/nodeview"
)

// Documents is the part of the document service sessions need.
type Documents interface {
	GetDocument(ctx context.Context, ownerID, documentID string) (*docsystem.Document, error)
	autosave.Store
}

// Config holds session tuning.
type Config struct {
	Quiet        time.Duration
	Idle         time.Duration
	HistoryDepth int
	Rule         command.TriggerRule
}

// Manager owns the open sessions.
type Manager struct {
	docs      Documents
	images    docsvc.ImageService
	extractor command.Extractor
	cfg       Config
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. images and extractor may be nil;
// image upload and URL parsing then fail inside the session.
func NewManager(docs Documents, images docsvc.ImageService, extractor command.Extractor, cfg Config, logger *slog.Logger) *Manager {
	if cfg.Idle <= 0 {
		cfg.Idle = 30 * time.Minute
	}
	return &Manager{
		docs:      docs,
		images:    images,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Open loads a document and starts an editing session on it.
func (m *Manager) Open(ctx context.Context, ownerID, documentID string) (*Session, error) {
	doc, err := m.docs.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewFromContent(doc.Content, engine.WithHistoryDepth(m.cfg.HistoryDepth))
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}

	s := &Session{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		OwnerID:    ownerID,
		logger:     m.logger,
		eng:        eng,
		editors:    make(map[uint64]*nodeview.Editor),
		lastUsed:   time.Now(),
	}
	if m.images != nil {
		s.uploader = &imageUploader{images: m.images, ownerID: ownerID, documentID: doc.ID}
	}

	// Writes outlive the request that opened the session.
	s.saver = autosave.New(context.WithoutCancel(ctx), m.docs, doc,
		autosave.WithQuiet(m.cfg.Quiet),
		autosave.WithLogger(m.logger.With("session_id", s.ID)),
	)
	s.router = command.NewRouter(eng,
		command.WithRule(m.cfg.Rule),
		command.WithExtractor(m.extractor),
		command.WithLogger(m.logger),
	)
	s.cancel = append(s.cancel, eng.Subscribe(s.saver.Observe))
	s.syncEditors()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("editing session opened", "session_id", s.ID, "document_id", doc.ID, "owner_id", ownerID)
	return s, nil
}

// Get returns the session with id if it belongs to ownerID.
func (m *Manager) Get(ownerID, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, domain.NewNotFound("session", id)
	}
	return s, nil
}

// Close flushes and removes a session.
func (m *Manager) Close(ctx context.Context, ownerID, id string) error {
	s, err := m.Get(ownerID, id)
	if err != nil {
		return err
	}
	m.remove(id)
	return s.close(ctx)
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the configured idle period.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.cfg.Idle {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.logger.Info("closing idle session", "session_id", s.ID, "document_id", s.DocumentID)
		_ = s.close(ctx)
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is done, then closes the rest.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			m.Shutdown(shutdownCtx)
			cancel()
			return
		case now := <-ticker.C:
			m.Sweep(ctx, now)
		}
	}
}

// Shutdown closes every session, flushing pending content.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := s.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}

// imageUploader stores an image and records it against the document.
type imageUploader struct {
	images     docsvc.ImageService
	ownerID    string
	documentID string
}

func (u *imageUploader) UploadImage(ctx context.Context, filename string, data io.Reader) (string, error) {
	url, err := u.images.Upload(ctx, u.ownerID, &docsvc.UploadedFile{Filename: filename, Content: data})
	if err != nil {
		return "", err
	}
	if _, err := u.images.AddToDocument(ctx, u.ownerID, u.documentID, &docsvc.AddImageRequest{URL: url}); err != nil {
		return "", err
	}
	return url, nil
}
