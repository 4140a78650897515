package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"bookcatalog/internal/book"

	"github.com/google/uuid"
)

// Memory keeps books in a mutex-guarded map with a slice preserving
// insertion order. It backs the "memory" backend and the handler tests.
type Memory struct {
	mu    sync.RWMutex
	books map[string]book.Book
	order []string
}

func NewMemory() *Memory {
	return &Memory{books: make(map[string]book.Book)}
}

func (s *Memory) Create(_ context.Context, b book.Book) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.books[b.ID] = b
	s.order = append(s.order, b.ID)
	return b, nil
}

func (s *Memory) GetByID(_ context.Context, id string) (book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (s *Memory) List(_ context.Context) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *Memory) ListPage(_ context.Context, page, limit int) ([]book.Book, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.snapshot()
	return paginate(all, page, limit), len(all), nil
}

func (s *Memory) Update(_ context.Context, id, title, description string, pages int) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	b.Title = title
	b.Description = description
	b.Pages = pages
	b.UpdatedAt = time.Now().UTC()
	s.books[id] = b
	return b, nil
}

func (s *Memory) Patch(_ context.Context, id string, fields book.PatchFields) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	fields.Apply(&b)
	b.UpdatedAt = time.Now().UTC()
	s.books[id] = b
	return b, nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(s.books, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Memory) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make(map[string]book.Book)
	s.order = nil
	return nil
}

func (s *Memory) FilterByTitle(_ context.Context, title string) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterBooks(s.snapshot(), func(b book.Book) bool {
		return containsFold(b.Title, title)
	}), nil
}

func (s *Memory) FilterByDescription(_ context.Context, description string) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterBooks(s.snapshot(), func(b book.Book) bool {
		return containsFold(b.Description, description)
	}), nil
}

func (s *Memory) FilterByPages(_ context.Context, pages int) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterBooks(s.snapshot(), func(b book.Book) bool {
		return b.Pages == pages
	}), nil
}

func (s *Memory) Ping(_ context.Context) error { return nil }

// snapshot copies the collection in insertion order. Callers must hold
// at least the read lock.
func (s *Memory) snapshot() []book.Book {
	out := make([]book.Book, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.books[id])
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func filterBooks(all []book.Book, keep func(book.Book) bool) []book.Book {
	out := []book.Book{}
	for _, b := range all {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func paginate(all []book.Book, page, limit int) []book.Book {
	// compare before multiplying: a huge page would overflow the offset
	if page-1 > len(all)/limit {
		return []book.Book{}
	}
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []book.Book{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
