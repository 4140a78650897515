package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bookcatalog/internal/book"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	bookHashPrefix = "book"      // hash per record: book:{id}
	bookIDsKey     = "books:ids" // list preserving insertion order
)

// Redis stores one hash per book plus a list of ids preserving
// insertion order. Substring and pages filters are evaluated in-process
// over the enumerated set.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and verifies the connection before returning.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func bookKey(id string) string {
	return fmt.Sprintf("%s:%s", bookHashPrefix, id)
}

func bookToHash(b book.Book) map[string]any {
	return map[string]any{
		"id":          b.ID,
		"title":       b.Title,
		"description": b.Description,
		"pages":       b.Pages,
		"createdAt":   b.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":   b.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func bookFromHash(data map[string]string) (book.Book, error) {
	pages, err := strconv.Atoi(data["pages"])
	if err != nil {
		return book.Book{}, fmt.Errorf("parsing stored pages: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, data["createdAt"])
	if err != nil {
		return book.Book{}, fmt.Errorf("parsing stored createdAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, data["updatedAt"])
	if err != nil {
		return book.Book{}, fmt.Errorf("parsing stored updatedAt: %w", err)
	}
	return book.Book{
		ID:          data["id"],
		Title:       data["title"],
		Description: data["description"],
		Pages:       pages,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *Redis) Create(ctx context.Context, b book.Book) (book.Book, error) {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, bookKey(b.ID), bookToHash(b))
	pipe.RPush(ctx, bookIDsKey, b.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return book.Book{}, fmt.Errorf("storing book: %w", err)
	}
	return b, nil
}

func (s *Redis) GetByID(ctx context.Context, id string) (book.Book, error) {
	data, err := s.client.HGetAll(ctx, bookKey(id)).Result()
	if err != nil {
		return book.Book{}, fmt.Errorf("getting book: %w", err)
	}
	if len(data) == 0 {
		return book.Book{}, book.ErrNotFound
	}
	return bookFromHash(data)
}

func (s *Redis) List(ctx context.Context) ([]book.Book, error) {
	return s.listRange(ctx, 0, -1)
}

func (s *Redis) ListPage(ctx context.Context, page, limit int) ([]book.Book, int, error) {
	total, err := s.client.LLen(ctx, bookIDsKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("counting books: %w", err)
	}

	// compare before multiplying: a huge page would overflow the offset,
	// and LRange reads negative indices from the end of the list
	if int64(page-1) > total/int64(limit) {
		return []book.Book{}, int(total), nil
	}
	offset := int64(page-1) * int64(limit)
	if offset >= total {
		return []book.Book{}, int(total), nil
	}
	books, err := s.listRange(ctx, offset, offset+int64(limit)-1)
	if err != nil {
		return nil, 0, err
	}
	return books, int(total), nil
}

func (s *Redis) listRange(ctx context.Context, start, stop int64) ([]book.Book, error) {
	ids, err := s.client.LRange(ctx, bookIDsKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("listing book ids: %w", err)
	}

	books := []book.Book{}
	for _, id := range ids {
		data, err := s.client.HGetAll(ctx, bookKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("getting book %s: %w", id, err)
		}
		if len(data) == 0 {
			continue
		}
		b, err := bookFromHash(data)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

func (s *Redis) Update(ctx context.Context, id, title, description string, pages int) (book.Book, error) {
	return s.mutate(ctx, id, func(b *book.Book) {
		b.Title = title
		b.Description = description
		b.Pages = pages
	})
}

func (s *Redis) Patch(ctx context.Context, id string, fields book.PatchFields) (book.Book, error) {
	return s.mutate(ctx, id, func(b *book.Book) {
		fields.Apply(b)
	})
}

const maxTxRetries = 5

// mutate applies a read-modify-write under WATCH so two concurrent
// writers to the same record cannot drop each other's fields. A
// conflicting write aborts the transaction and the merge is retried
// against the fresh state.
func (s *Redis) mutate(ctx context.Context, id string, apply func(*book.Book)) (book.Book, error) {
	var result book.Book
	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, bookKey(id)).Result()
		if err != nil {
			return fmt.Errorf("getting book: %w", err)
		}
		if len(data) == 0 {
			return book.ErrNotFound
		}
		b, err := bookFromHash(data)
		if err != nil {
			return err
		}
		apply(&b)
		b.UpdatedAt = time.Now().UTC()

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, bookKey(id), bookToHash(b))
			return nil
		})
		if err != nil {
			return err
		}
		result = b
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, bookKey(id))
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return book.Book{}, err
	}
	return book.Book{}, fmt.Errorf("updating book %s: too many conflicting writes", id)
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, bookKey(id)).Result()
	if err != nil {
		return fmt.Errorf("checking book: %w", err)
	}
	if exists == 0 {
		return book.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, bookKey(id))
	pipe.LRem(ctx, bookIDsKey, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

func (s *Redis) DeleteAll(ctx context.Context) error {
	ids, err := s.client.LRange(ctx, bookIDsKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("listing book ids: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, bookKey(id))
	}
	pipe.Del(ctx, bookIDsKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting all books: %w", err)
	}
	return nil
}

func (s *Redis) FilterByTitle(ctx context.Context, title string) ([]book.Book, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterBooks(all, func(b book.Book) bool { return containsFold(b.Title, title) }), nil
}

func (s *Redis) FilterByDescription(ctx context.Context, description string) ([]book.Book, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterBooks(all, func(b book.Book) bool { return containsFold(b.Description, description) }), nil
}

func (s *Redis) FilterByPages(ctx context.Context, pages int) ([]book.Book, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterBooks(all, func(b book.Book) bool { return b.Pages == pages }), nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Redis) Close() error {
	return s.client.Close()
}
