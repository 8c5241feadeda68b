package config

const (
	// MaxDocumentTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxDocumentTitleLength = 255

	// MaxIconLength bounds the icon field. Icons are a single emoji,
	// which can still be several code points long (ZWJ sequences, skin tones).
	MaxIconLength = 16

	// MaxImageUploadBytes is the largest image accepted by the upload endpoint.
	MaxImageUploadBytes = 10 << 20

	// MaxImportBytes is the largest markdown file accepted for import.
	MaxImportBytes = 5 << 20

	// MaxSearchQueryLength caps search input.
	MaxSearchQueryLength = 500

	// DefaultSearchLimit and MaxSearchLimit bound search page sizes.
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100

	// MaxExtractedBytes caps the body read when parsing a URL.
	MaxExtractedBytes = 5 << 20

	// MaxAltTextLength and MaxCaptionLength bound image metadata.
	MaxAltTextLength = 500
	MaxCaptionLength = 1000
)
