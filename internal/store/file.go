package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"bookcatalog/internal/book"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// File persists books as a single JSON object keyed by book id,
// rewritten wholesale on every mutation. Every operation round-trips to
// disk under the mutex; there is no in-process cache.
type File struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

// NewFile opens or creates the data file. A file that cannot be parsed
// is reset to an empty valid state; that recovery applies at open only,
// later corruption surfaces as an error.
func NewFile(path string, log zerolog.Logger) (*File, error) {
	s := &File{path: path, log: log}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.save(map[string]book.Book{}); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}

	var books map[string]book.Book
	if err := json.Unmarshal(data, &books); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("data file corrupt, resetting to empty state")
		if err := s.save(map[string]book.Book{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *File) load() (map[string]book.Book, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]book.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	var books map[string]book.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing data file: %w", err)
	}
	if books == nil {
		books = map[string]book.Book{}
	}
	return books, nil
}

func (s *File) save(books map[string]book.Book) error {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	return nil
}

// sorted returns the collection ordered by creation time so pagination
// is stable between calls.
func sorted(books map[string]book.Book) []book.Book {
	out := make([]book.Book, 0, len(books))
	for _, b := range books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *File) Create(_ context.Context, b book.Book) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return book.Book{}, err
	}
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	books[b.ID] = b
	if err := s.save(books); err != nil {
		return book.Book{}, err
	}
	return b, nil
}

func (s *File) GetByID(_ context.Context, id string) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return book.Book{}, err
	}
	b, ok := books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (s *File) List(_ context.Context) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return nil, err
	}
	return sorted(books), nil
}

func (s *File) ListPage(_ context.Context, page, limit int) ([]book.Book, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return nil, 0, err
	}
	all := sorted(books)
	return paginate(all, page, limit), len(all), nil
}

func (s *File) Update(_ context.Context, id, title, description string, pages int) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return book.Book{}, err
	}
	b, ok := books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	b.Title = title
	b.Description = description
	b.Pages = pages
	b.UpdatedAt = time.Now().UTC()
	books[id] = b
	if err := s.save(books); err != nil {
		return book.Book{}, err
	}
	return b, nil
}

func (s *File) Patch(_ context.Context, id string, fields book.PatchFields) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return book.Book{}, err
	}
	b, ok := books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	fields.Apply(&b)
	b.UpdatedAt = time.Now().UTC()
	books[id] = b
	if err := s.save(books); err != nil {
		return book.Book{}, err
	}
	return b, nil
}

func (s *File) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := books[id]; !ok {
		return book.ErrNotFound
	}
	delete(books, id)
	return s.save(books)
}

func (s *File) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(map[string]book.Book{})
}

func (s *File) FilterByTitle(ctx context.Context, title string) ([]book.Book, error) {
	return s.filter(func(b book.Book) bool { return containsFold(b.Title, title) })
}

func (s *File) FilterByDescription(ctx context.Context, description string) ([]book.Book, error) {
	return s.filter(func(b book.Book) bool { return containsFold(b.Description, description) })
}

func (s *File) FilterByPages(ctx context.Context, pages int) ([]book.Book, error) {
	return s.filter(func(b book.Book) bool { return b.Pages == pages })
}

func (s *File) filter(keep func(book.Book) bool) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return nil, err
	}
	return filterBooks(sorted(books), keep), nil
}

func (s *File) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}
