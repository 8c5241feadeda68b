package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/editor/keys"
	"github.com/Priya-753/notion-clone/internal/editor/session"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// SessionHandler exposes editing sessions over HTTP. Every mutating call
// answers with the session view, including on editing errors.
type SessionHandler struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

// keyBody is either a structured key or a combo such as "Mod-b".
type keyBody struct {
	keys.Key
	Combo string `json:"combo,omitempty"`
}

type commandBody struct {
	Answer *string `json:"answer"`
}

type keyResponse struct {
	View     session.View `json:"view"`
	Consumed bool         `json:"consumed"`
}

// Open starts an editing session on a document
// POST /api/documents/{id}/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	docID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	s, err := h.manager.Open(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		logServerError(h.logger, "open session", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, s.View())
}

// Get returns the session view
// GET /api/sessions/{sid}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s.View())
}

// Apply runs one engine operation
// POST /api/sessions/{sid}/ops
func (h *SessionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var op session.Op
	if err := httputil.ParseJSON(w, r, &op); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.Apply(r.Context(), op)
	h.respond(w, view, err)
}

// Key routes a key press to the palette, node editors and shortcuts
// POST /api/sessions/{sid}/keys
func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body keyBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	k := body.Key
	if body.Combo != "" {
		parsed, err := keys.Parse(body.Combo)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		k = parsed
	}
	if k.Name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "key is required")
		return
	}

	view, consumed, err := s.HandleKey(r.Context(), k)
	if err != nil {
		h.respond(w, view, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, keyResponse{View: view, Consumed: consumed})
}

// Execute runs a palette entry by its index in the filtered list
// POST /api/sessions/{sid}/commands/{index}
func (h *SessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "command index must be an integer")
		return
	}

	var body commandBody
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &body); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	view, err := s.Execute(r.Context(), index, body.Answer)
	h.respond(w, view, err)
}

// Node applies an action to a node editor
// POST /api/sessions/{sid}/nodes/{nid}
func (h *SessionHandler) Node(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	nodeID, ok := intPathParam(w, r, "nid", "Node ID")
	if !ok {
		return
	}

	var action session.NodeAction
	if err := httputil.ParseJSON(w, r, &action); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.Node(r.Context(), nodeID, action)
	h.respond(w, view, err)
}

// Upload stores an image and sets it as the source of an image node
// POST /api/sessions/{sid}/nodes/{nid}/upload (multipart field "file")
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	nodeID, ok := intPathParam(w, r, "nid", "Node ID")
	if !ok {
		return
	}

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

	view, err := s.Upload(r.Context(), nodeID, header.Filename, file)
	h.respond(w, view, err)
}

// Close flushes pending autosave writes and ends the session
// DELETE /api/sessions/{sid}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	sid, ok := PathParam(w, r, "sid", "Session ID")
	if !ok {
		return
	}

	if err := h.manager.Close(r.Context(), httputil.GetUserID(r), sid); err != nil {
		logServerError(h.logger, "close session", err)
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sid, ok := PathParam(w, r, "sid", "Session ID")
	if !ok {
		return nil, false
	}
	s, err := h.manager.Get(httputil.GetUserID(r), sid)
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return s, true
}

// respond writes the view, or a problem carrying the view when err is set.
func (h *SessionHandler) respond(w http.ResponseWriter, view session.View, err error) {
	if err == nil {
		httputil.RespondJSON(w, http.StatusOK, view)
		return
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("session operation failed", "session_id", view.ID, "error", err)
		httputil.RespondError(w, status, "internal server error")
		return
	}
	detail := err.Error()
	if view.ID == "" {
		httputil.RespondError(w, status, detail)
		return
	}
	httputil.RespondErrorWithExtras(w, status, detail, map[string]interface{}{"view": view})
}
