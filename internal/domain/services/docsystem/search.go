package docsystem

import (
	"context"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

// Searcher answers document searches, possibly from an external index.
type Searcher interface {
	Search(ctx context.Context, opts *docsystem.SearchOptions) ([]docsystem.Document, error)
}

// Indexer keeps an external search index in step with the store. Calls do
// not block on the index and never fail the caller.
type Indexer interface {
	IndexDocuments(ctx context.Context, docs []docsystem.Document)
	RemoveDocuments(ctx context.Context, ids []string)
}
