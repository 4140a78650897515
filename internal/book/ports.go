package book

import (
	"context"
)

// Store is the persistence contract for books, independent of the
// backing medium. Implementations serialize conflicting writes to the
// same record themselves.
type Store interface {
	// Create assigns a fresh id and timestamps and persists the book.
	Create(ctx context.Context, b Book) (Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	// List returns every book. Enumeration order is the backend's own;
	// callers must treat it as unordered.
	List(ctx context.Context) ([]Book, error)
	// ListPage returns at most limit books, skipping (page-1)*limit, and
	// the total count. An out-of-range page yields an empty slice.
	ListPage(ctx context.Context, page, limit int) ([]Book, int, error)
	// Update replaces the three mutable fields and touches UpdatedAt.
	Update(ctx context.Context, id, title, description string, pages int) (Book, error)
	// Patch merges only the present fields and touches UpdatedAt.
	Patch(ctx context.Context, id string, fields PatchFields) (Book, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every book. Idempotent.
	DeleteAll(ctx context.Context) error
	FilterByTitle(ctx context.Context, title string) ([]Book, error)
	FilterByDescription(ctx context.Context, description string) ([]Book, error)
	FilterByPages(ctx context.Context, pages int) ([]Book, error)
}
