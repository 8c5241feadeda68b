package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// RespondJSON writes a JSON response with the given status code. The payload
// is marshaled before any header is written so an encoding failure still
// produces a well-formed 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondAttachment writes a file download. The filename is sent both as an
// ASCII fallback and in the RFC 5987 UTF-8 form.
func RespondAttachment(w http.ResponseWriter, data []byte, filename, mimeType string) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", ContentDisposition(filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ContentDisposition builds an attachment header value for filename.
func ContentDisposition(filename string) string {
	ascii := make([]rune, 0, len(filename))
	for _, r := range filename {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			r = '_'
		}
		ascii = append(ascii, r)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, string(ascii), url.PathEscape(filename))
}

// ProblemDetail represents an RFC 7807 Problem Details response. Extra
// members are written at the top level next to the standard ones.
type ProblemDetail struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Extra    map[string]any `json:"-"`
}

// MarshalJSON flattens Extra into the problem object. Standard members win
// over extras with the same name.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	return json.Marshal(m)
}

// RespondError writes an RFC 7807 Problem Details error response
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondErrorWithExtras(w, status, detail, nil)
}

// RespondErrorWithExtras writes an RFC 7807 error with additional members,
// such as the editing session view after a rejected operation.
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]any) {
	payload, err := json.Marshal(ProblemDetail{
		Type:   problemType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	})
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(payload)
}

// problemTypes maps status codes to their RFC 9110 section.
var problemTypes = map[int]string{
	http.StatusBadRequest:            "#section-15.5.1",
	http.StatusUnauthorized:          "#section-15.5.2",
	http.StatusForbidden:             "#section-15.5.4",
	http.StatusNotFound:              "#section-15.5.5",
	http.StatusConflict:              "#section-15.5.10",
	http.StatusRequestEntityTooLarge: "#section-15.5.14",
	http.StatusInternalServerError:   "#section-15.6.1",
	http.StatusBadGateway:            "#section-15.6.3",
	http.StatusServiceUnavailable:    "#section-15.6.4",
}

func problemType(status int) string {
	if section, ok := problemTypes[status]; ok {
		return "https://www.rfc-editor.org/rfc/rfc9110" + section
	}
	return "about:blank"
}
