package docsystem

import (
	"context"
	"io"
)

// FileProcessor defines the strategy interface for processing uploaded files.
// Different implementations handle different file types (zip, individual files, etc.)
type FileProcessor interface {
	// CanProcess returns true if this processor can handle the given filename
	CanProcess(filename string) bool

	// Process imports file under parentID (nil = root) and returns import results
	Process(
		ctx context.Context,
		ownerID string,
		parentID *string,
		file io.Reader,
		filename string,
		overwrite bool,
	) (*ImportResult, error)

	// Name returns the processor name for logging
	Name() string
}
