package handler

import (
	"log/slog"
	"net/http"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/extract"
	"github.com/Priya-753/notion-clone/internal/httputil"
)

// ParseURLHandler extracts readable content from web pages
type ParseURLHandler struct {
	parser extract.Parser
	logger *slog.Logger
}

// NewParseURLHandler creates a new parse-url handler
func NewParseURLHandler(parser extract.Parser, logger *slog.Logger) *ParseURLHandler {
	return &ParseURLHandler{parser: parser, logger: logger}
}

type parseURLBody struct {
	URL string `json:"url"`
}

// ParseURL fetches a page and returns its main content as sanitized HTML
// POST /api/parse-url {"url": "..."}
func (h *ParseURLHandler) ParseURL(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxExtractedBytes)
	var body parseURLBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := extract.ValidateURL(body.URL); err != nil {
		handleError(w, err)
		return
	}

	page, err := h.parser.Parse(r.Context(), body.URL)
	if err != nil {
		if statusFor(err) == http.StatusBadGateway {
			h.logger.Warn("parse url failed", "url", body.URL, "error", err)
			httputil.RespondError(w, http.StatusBadGateway, "Failed to parse URL")
			return
		}
		logServerError(h.logger, "parse url", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}
