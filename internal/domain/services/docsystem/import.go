package docsystem

import (
	"context"
)

// ImportService handles bulk document import operations
type ImportService interface {
	// ProcessFiles imports uploaded files (zip or individual files) under
	// parentID (nil = root). Folders inside a zip become parent documents.
	// If overwrite is true, a document with the same title under the same
	// parent is updated; otherwise it is skipped.
	ProcessFiles(ctx context.Context, ownerID string, parentID *string, files []UploadedFile, overwrite bool) (*ImportResult, error)
}

// ImportResult represents the result of a bulk import operation
type ImportResult struct {
	Summary   ImportSummary    `json:"summary"`
	Errors    []ImportError    `json:"errors"`
	Documents []ImportDocument `json:"documents"`
}

// ImportSummary contains aggregate statistics for an import operation
type ImportSummary struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	TotalFiles int `json:"total_files"`
}

// Merge adds the counts, errors and documents of other to r.
func (r *ImportResult) Merge(other *ImportResult) {
	r.Summary.Created += other.Summary.Created
	r.Summary.Updated += other.Summary.Updated
	r.Summary.Skipped += other.Summary.Skipped
	r.Summary.Failed += other.Summary.Failed
	r.Summary.TotalFiles += other.Summary.TotalFiles
	r.Errors = append(r.Errors, other.Errors...)
	r.Documents = append(r.Documents, other.Documents...)
}

// ImportError represents an error that occurred during import
type ImportError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ImportDocument represents a processed document
type ImportDocument struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Action string `json:"action"` // "created", "updated", or "skipped"
}
