package httputil

import (
	"bytes"
	"encoding/json"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

// OptionalString decodes a nullable JSON string for PATCH bodies (RFC 7396):
// an absent member leaves Present false, null clears, a string sets.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called for members present in the body.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Field converts to the transport-agnostic form used by services.
func (o OptionalString) Field() docsystem.OptionalString {
	return docsystem.OptionalString{Present: o.Present, Value: o.Value}
}
