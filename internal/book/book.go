package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no book exists for a given id.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog entry.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Pages       int       `json:"pages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PatchFields carries the subset of mutable fields present in a partial
// update. A nil field keeps the stored value.
type PatchFields struct {
	Title       *string
	Description *string
	Pages       *int
}

// Empty reports whether no field is present.
func (f PatchFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Pages == nil
}

// Apply merges the present fields into b. Timestamps are owned by the
// store and are not touched here.
func (f PatchFields) Apply(b *Book) {
	if f.Title != nil {
		b.Title = *f.Title
	}
	if f.Description != nil {
		b.Description = *f.Description
	}
	if f.Pages != nil {
		b.Pages = *f.Pages
	}
}
