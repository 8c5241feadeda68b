package docsystem

import "context"

// ContentConverter turns an imported file into editor content. Each
// converter handles one family of file types.
//
// Implementations should be stateless and thread-safe.
type ContentConverter interface {
	// Convert transforms input into sanitized editor HTML.
	Convert(ctx context.Context, input []byte) (*ConvertedContent, error)

	// SupportedExtensions returns file extensions this converter handles,
	// including the leading dot (e.g., [".md", ".markdown"]).
	SupportedExtensions() []string

	// Name returns a human-readable converter name for logging.
	Name() string
}

// ConvertedContent is converted HTML plus the metadata the file declared.
type ConvertedContent struct {
	HTML       string
	Title      *string
	Icon       *string
	CoverImage *string
}
