package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxJSONBodyBytes bounds request bodies decoded by ParseJSON. Document
// content travels in JSON, so the limit sits well above the upload limits.
const MaxJSONBodyBytes = 10 << 20

// ParseJSON decodes one JSON value from the request body into dest. Unknown
// fields are accepted; trailing data after the value is not.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON: unexpected data after the request body")
	}
	return nil
}
