package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Priya-753/notion-clone/internal/config"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// maxImportRequestBytes bounds a multipart import request (zip archives included).
const maxImportRequestBytes = 100 << 20

// ImportHandler handles document import HTTP requests.
//
// Two request shapes are accepted:
//   - multipart/form-data with one or more "files" (.md, .txt, .html or .zip)
//   - a raw markdown body, optionally with YAML frontmatter
type ImportHandler struct {
	importService docsysSvc.ImportService
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService docsysSvc.ImportService, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// ImportResponse represents the response for import operations
type ImportResponse struct {
	Success   bool                       `json:"success"`
	Summary   docsysSvc.ImportSummary    `json:"summary"`
	Errors    []docsysSvc.ImportError    `json:"errors"`
	Documents []docsysSvc.ImportDocument `json:"documents"`
}

// Import creates documents from uploaded files or a markdown body.
// POST /api/documents/import
//
// Query parameters:
//   - parent: optional parent document id (empty or "root" = top level)
//   - overwrite: optional, if "true" updates documents with the same title
//   - filename: optional name for a raw body (default "import.md")
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	q := r.URL.Query()
	parentID := optionalParent(q.Get("parent"))
	overwrite := q.Get("overwrite") == "true"

	var files []docsysSvc.UploadedFile
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportRequestBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			httputil.RespondError(w, http.StatusBadRequest, "No files provided")
			return
		}
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				h.logger.Error("failed to open uploaded file", "file", fh.Filename, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to open file %s", fh.Filename))
				return
			}
			defer func() { _ = f.Close() }()
			files = append(files, docsysSvc.UploadedFile{Filename: fh.Filename, Content: f})
		}
	} else {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, config.MaxImportBytes))
		if err != nil {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "import body exceeds the size limit")
			return
		}
		if len(bytes.TrimSpace(body)) == 0 {
			httputil.RespondError(w, http.StatusBadRequest, "request body is empty")
			return
		}
		files = append(files, docsysSvc.UploadedFile{Filename: rawFilename(q.Get("filename")), Content: bytes.NewReader(body)})
	}

	h.logger.Info("starting import",
		"owner_id", userID,
		"file_count", len(files),
		"overwrite", overwrite,
	)

	result, err := h.importService.ProcessFiles(r.Context(), userID, parentID, files, overwrite)
	if err != nil {
		logServerError(h.logger, "import", err)
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if result.Summary.Created > 0 {
		status = http.StatusCreated
	}
	httputil.RespondJSON(w, status, ImportResponse{
		Success:   result.Summary.Failed == 0,
		Summary:   result.Summary,
		Errors:    result.Errors,
		Documents: result.Documents,
	})
}

// rawFilename names a raw import body; bare names are treated as markdown.
func rawFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return "import.md"
	}
	if filepath.Ext(name) == "" {
		return name + ".md"
	}
	return name
}
