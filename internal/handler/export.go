package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/export"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// ExportHandler serves document downloads
type ExportHandler struct {
	docService docsysSvc.DocumentService
	exporter   *export.Exporter
	logger     *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(docService docsysSvc.DocumentService, exporter *export.Exporter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		docService: docService,
		exporter:   exporter,
		logger:     logger,
	}
}

// Export renders a document as HTML, Markdown or PDF
// GET /api/documents/{id}/export?format=html|markdown|pdf (default markdown)
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatMarkdown)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		handleError(w, err)
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	res, err := h.exporter.Export(r.Context(), doc, format)
	if err != nil {
		logServerError(h.logger, "export document", err)
		handleError(w, err)
		return
	}

	httputil.RespondAttachment(w, res.Data, res.Filename, res.MimeType)
}
