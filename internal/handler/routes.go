package handler

import "net/http"

// Handlers groups the route handlers of the API.
type Handlers struct {
	Documents *DocumentHandler
	Images    *ImageHandler
	Imports   *ImportHandler
	Exports   *ExportHandler
	ParseURL  *ParseURLHandler
	Sessions  *SessionHandler
}

// Register adds every route to mux (Go 1.22+ method and wildcard patterns).
func (h *Handlers) Register(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", h.Documents.HealthCheck)

	// Document routes; literal segments take precedence over {id}
	mux.HandleFunc("GET /api/documents", h.Documents.ListDocuments)
	mux.HandleFunc("POST /api/documents", h.Documents.CreateDocument)
	mux.HandleFunc("GET /api/documents/children", h.Documents.ListChildren)
	mux.HandleFunc("GET /api/documents/archived", h.Documents.ListArchived)
	mux.HandleFunc("GET /api/documents/search", h.Documents.SearchDocuments)
	mux.HandleFunc("GET /api/documents/{id}", h.Documents.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.Documents.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/archive", h.Documents.ArchiveDocument)
	mux.HandleFunc("POST /api/documents/{id}/move", h.Documents.MoveDocument)

	// Import / export
	mux.HandleFunc("POST /api/documents/import", h.Imports.Import)
	mux.HandleFunc("GET /api/documents/{id}/export", h.Exports.Export)

	// Images
	mux.HandleFunc("POST /api/uploads", h.Images.Upload)
	mux.HandleFunc("GET /api/documents/{id}/images", h.Images.ListImages)
	mux.HandleFunc("POST /api/documents/{id}/images", h.Images.AddImage)
	mux.HandleFunc("PATCH /api/images/{id}", h.Images.UpdateImage)
	mux.HandleFunc("DELETE /api/images/{id}", h.Images.DeleteImage)

	// URL extraction
	mux.HandleFunc("POST /api/parse-url", h.ParseURL.ParseURL)

	// Editing sessions
	mux.HandleFunc("POST /api/documents/{id}/sessions", h.Sessions.Open)
	mux.HandleFunc("GET /api/sessions/{sid}", h.Sessions.Get)
	mux.HandleFunc("DELETE /api/sessions/{sid}", h.Sessions.Close)
	mux.HandleFunc("POST /api/sessions/{sid}/ops", h.Sessions.Apply)
	mux.HandleFunc("POST /api/sessions/{sid}/keys", h.Sessions.Key)
	mux.HandleFunc("POST /api/sessions/{sid}/commands/{index}", h.Sessions.Execute)
	mux.HandleFunc("POST /api/sessions/{sid}/nodes/{nid}", h.Sessions.Node)
	mux.HandleFunc("POST /api/sessions/{sid}/nodes/{nid}/upload", h.Sessions.Upload)
}
