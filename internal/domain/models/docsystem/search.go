package docsystem

import (
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SearchStrategy selects how the query is matched.
type SearchStrategy string

const (
	// SearchStrategySubstring is a case-insensitive substring match and works
	// on every storage driver.
	SearchStrategySubstring SearchStrategy = "substring"
	// SearchStrategyFullText ranks with Postgres ts_rank, or meilisearch when
	// it is configured.
	SearchStrategyFullText SearchStrategy = "fulltext"
)

// SearchField is a document field a search can look at.
type SearchField string

const (
	SearchFieldTitle   SearchField = "title"
	SearchFieldContent SearchField = "content"
)

const (
	DefaultSearchLimit    = 20
	MaxSearchLimit        = 100
	DefaultSearchLanguage = "english"
	DefaultSearchStrategy = SearchStrategySubstring
)

// SearchOptions is a search over one owner's documents.
type SearchOptions struct {
	OwnerID string `json:"owner_id"`
	Query   string `json:"query"`

	// Archived searches the trash instead of live documents.
	Archived bool `json:"archived"`

	// Fields defaults to title and content.
	Fields []SearchField `json:"fields"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`

	// Language is the Postgres text search configuration.
	Language string         `json:"language"`
	Strategy SearchStrategy `json:"strategy"`
}

// ApplyDefaults fills unset fields.
func (opts *SearchOptions) ApplyDefaults() {
	if len(opts.Fields) == 0 {
		opts.Fields = []SearchField{SearchFieldTitle, SearchFieldContent}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	opts.Offset = max(opts.Offset, 0)
	if opts.Language == "" {
		opts.Language = DefaultSearchLanguage
	}
	if opts.Strategy == "" {
		opts.Strategy = DefaultSearchStrategy
	}
}

// Validate reports the first problem with each invalid field.
func (opts *SearchOptions) Validate() error {
	return validation.ValidateStruct(opts,
		validation.Field(&opts.OwnerID, validation.Required),
		validation.Field(&opts.Query, validation.Required),
		validation.Field(&opts.Limit, validation.Min(0), validation.Max(MaxSearchLimit)),
		validation.Field(&opts.Offset, validation.Min(0)),
		validation.Field(&opts.Fields, validation.Each(validation.In(SearchFieldTitle, SearchFieldContent))),
		validation.Field(&opts.Strategy, validation.In(SearchStrategySubstring, SearchStrategyFullText)),
	)
}

// Searches reports whether field is searched.
func (opts *SearchOptions) Searches(field SearchField) bool {
	return slices.Contains(opts.Fields, field)
}
