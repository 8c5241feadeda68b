package docsystem

import "time"

// DocumentImage is an uploaded image attached to a document.
type DocumentImage struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	URL        string    `json:"url" db:"url"`
	Alt        *string   `json:"alt" db:"alt"`
	Caption    *string   `json:"caption" db:"caption"`
	Width      *int      `json:"width" db:"width"`
	Height     *int      `json:"height" db:"height"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
