package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService docsysSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsysSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// updateDocumentBody distinguishes an absent icon or cover from an explicit
// null, which clears it.
type updateDocumentBody struct {
	Title       *string                 `json:"title"`
	Content     *string                 `json:"content"`
	Icon        httputil.OptionalString `json:"icon"`
	CoverImage  httputil.OptionalString `json:"cover_image"`
	IsPublished *bool                   `json:"is_published"`
}

func (b *updateDocumentBody) request() *docsysSvc.UpdateDocumentRequest {
	return &docsysSvc.UpdateDocumentRequest{
		Title:       b.Title,
		Content:     b.Content,
		Icon:        b.Icon.Field(),
		CoverImage:  b.CoverImage.Field(),
		IsPublished: b.IsPublished,
	}
}

type archiveBody struct {
	Archived *bool `json:"archived"`
}

type moveBody struct {
	ParentID *string `json:"parent_id"`
}

// CreateDocument creates a new document
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req docsysSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = userID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		logServerError(h.logger, "create document", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments lists every live document of the user, newest first
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListDocuments(r.Context(), httputil.GetUserID(r))
	if err != nil {
		logServerError(h.logger, "list documents", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// ListChildren lists live documents under a parent
// GET /api/documents/children?parent=root
func (h *DocumentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	parent := optionalParent(r.URL.Query().Get("parent"))
	docs, err := h.docService.ListChildren(r.Context(), httputil.GetUserID(r), parent)
	if err != nil {
		logServerError(h.logger, "list children", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// ListArchived lists the trash
// GET /api/documents/archived
func (h *DocumentHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListArchived(r.Context(), httputil.GetUserID(r))
	if err != nil {
		logServerError(h.logger, "list archived", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// SearchDocuments searches titles and content
// GET /api/documents/search?q=&archived=&fields=title,content&limit=&offset=&strategy=
func (h *DocumentHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := docsysSvc.SearchDocumentsRequest{
		Query:    q.Get("q"),
		Strategy: q.Get("strategy"),
	}
	if raw := q.Get("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "archived must be true or false")
			return
		}
		req.Archived = archived
	}
	if raw := q.Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Fields = append(req.Fields, f)
			}
		}
	}
	for name, dst := range map[string]*int{"limit": &req.Limit, "offset": &req.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, name+" must be an integer")
			return
		}
		*dst = n
	}

	docs, err := h.docService.SearchDocuments(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		logServerError(h.logger, "search documents", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument partially updates a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), httputil.GetUserID(r), id, body.request())
	if err != nil {
		logServerError(h.logger, "update document", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ArchiveDocument archives or restores a document and its descendants
// POST /api/documents/{id}/archive
func (h *DocumentHandler) ArchiveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var body archiveBody
	if err := httputil.ParseJSON(w, r, &body); err != nil || body.Archived == nil {
		httputil.RespondError(w, http.StatusBadRequest, `body must be {"archived": true|false}`)
		return
	}

	doc, err := h.docService.ArchiveDocument(r.Context(), httputil.GetUserID(r), id, *body.Archived)
	if err != nil {
		logServerError(h.logger, "archive document", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// MoveDocument reparents a document; a null parent moves it to the top level
// POST /api/documents/{id}/move
func (h *DocumentHandler) MoveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var body moveBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.MoveDocument(r.Context(), httputil.GetUserID(r), id, body.ParentID)
	if err != nil {
		logServerError(h.logger, "move document", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document and its descendants
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), id); err != nil {
		logServerError(h.logger, "delete document", err)
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now(),
	})
}
