package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Priya-753/notion-clone/internal/config"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// multipartOverhead is allowed on top of the file size for boundaries and headers.
const multipartOverhead = 1 << 20

// ImageHandler handles image uploads and document image records
type ImageHandler struct {
	imageService docsysSvc.ImageService
	logger       *slog.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService docsysSvc.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		logger:       logger,
	}
}

// Upload stores an image and returns its URL
// POST /api/uploads (multipart field "file")
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImageUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer file.Close()

	url, err := h.imageService.Upload(r.Context(), httputil.GetUserID(r), &docsysSvc.UploadedFile{
		Filename: header.Filename,
		Content:  file,
	})
	if err != nil {
		logServerError(h.logger, "upload image", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// ListImages lists the images attached to a document
// GET /api/documents/{id}/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	docID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	images, err := h.imageService.ListForDocument(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		logServerError(h.logger, "list images", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, images)
}

// AddImage records an uploaded image against a document
// POST /api/documents/{id}/images
func (h *ImageHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	docID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req docsysSvc.AddImageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	img, err := h.imageService.AddToDocument(r.Context(), httputil.GetUserID(r), docID, &req)
	if err != nil {
		logServerError(h.logger, "add image", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, img)
}

// UpdateImage changes alt text or caption
// PATCH /api/images/{id}
func (h *ImageHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := PathParam(w, r, "id", "Image ID")
	if !ok {
		return
	}

	var req docsysSvc.UpdateImageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	img, err := h.imageService.UpdateMetadata(r.Context(), httputil.GetUserID(r), imageID, &req)
	if err != nil {
		logServerError(h.logger, "update image", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, img)
}

// DeleteImage removes an image record and its blob
// DELETE /api/images/{id}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := PathParam(w, r, "id", "Image ID")
	if !ok {
		return
	}

	if err := h.imageService.DeleteImage(r.Context(), httputil.GetUserID(r), imageID); err != nil {
		logServerError(h.logger, "delete image", err)
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
