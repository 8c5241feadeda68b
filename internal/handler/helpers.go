package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Priya-753/notion-clone/internal/domain"
	"github.com/Priya-753/notion-clone/internal/editor/command"
	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/node"
	"github.com/Priya-753/notion-clone/internal/editor/nodeview"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// statusFor maps domain and editor errors to HTTP status codes.
func statusFor(err error) int {
	var conflictErr *domain.ConflictError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, node.ErrSchemaViolation),
		errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, command.ErrClosed),
		errors.Is(err, command.ErrNoCommand),
		errors.Is(err, command.ErrInput),
		errors.Is(err, nodeview.ErrUnsupported),
		errors.Is(err, nodeview.ErrState),
		errors.Is(err, nodeview.ErrRender):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, nodeview.ErrGone):
		return http.StatusNotFound
	case errors.As(err, &conflictErr), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, nodeview.ErrNoUploader):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError converts domain errors to HTTP responses. Internal errors are
// not echoed to the client.
func handleError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		httputil.RespondError(w, status, "internal server error")
		return
	}
	httputil.RespondError(w, status, err.Error())
}

// PathParam reads a required path value, answering 400 when it is missing.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return v, true
}

// intPathParam reads a required non-negative integer path value.
func intPathParam(w http.ResponseWriter, r *http.Request, name, label string) (uint64, bool) {
	raw, ok := PathParam(w, r, name, label)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, label+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// optionalParent reads a parent reference where "", "root" and "null" mean
// the top level.
func optionalParent(raw string) *string {
	switch raw {
	case "", "root", "null":
		return nil
	}
	return &raw
}

// logServerError logs failures the client cannot fix.
func logServerError(logger *slog.Logger, op string, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		logger.Error(op+" failed", "error", err)
	}
}
