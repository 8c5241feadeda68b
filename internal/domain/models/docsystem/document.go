package docsystem

import (
	"time"
)

const (
	// DefaultTitle is used when a document is created without a title and
	// when the first block of a document has no text.
	DefaultTitle = "Untitled"

	// InitialContent is the content of a newly created document.
	InitialContent = "<h1>Untitled</h1><p></p>"
)

// Document is one page in an owner's document tree.
type Document struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	ParentID    *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"` // Serialized node tree (HTML)
	Icon        *string   `json:"icon" db:"icon"`
	CoverImage  *string   `json:"cover_image" db:"cover_image"`
	IsArchived  bool      `json:"is_archived" db:"is_archived"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the document sits at the top of the tree.
func (d *Document) IsRoot() bool { return d.ParentID == nil }

// OptionalString tracks tri-state semantics for nullable fields in partial
// updates. Transport-agnostic; handlers map from httputil.OptionalString.
//   - Present=false: leave the field alone
//   - Present=true, Value=nil: clear the field
//   - Present=true, Value!=nil: set the field
type OptionalString struct {
	Present bool
	Value   *string
}

// Set returns a present OptionalString holding v.
func Set(v string) OptionalString { return OptionalString{Present: true, Value: &v} }

// Clear returns a present OptionalString that clears the field.
func Clear() OptionalString { return OptionalString{Present: true} }

// Apply returns the field value after the update.
func (o OptionalString) Apply(current *string) *string {
	if !o.Present {
		return current
	}
	return o.Value
}

// Changes reports whether applying o to current would change it.
func (o OptionalString) Changes(current *string) bool {
	if !o.Present {
		return false
	}
	switch {
	case o.Value == nil && current == nil:
		return false
	case o.Value == nil || current == nil:
		return true
	}
	return *o.Value != *current
}
