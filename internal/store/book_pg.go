package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcatalog/internal/book"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = "id, title, description, pages, created_at, updated_at"

// BookPG is the Postgres-backed store, hand-written parameterized
// queries over a pgx pool.
type BookPG struct {
	db *pgxpool.Pool
}

func NewBookPG(db *pgxpool.Pool) *BookPG {
	return &BookPG{db: db}
}

func scanBook(row pgx.Row) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Pages, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBooks(rows pgx.Rows) ([]book.Book, error) {
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookPG) Create(ctx context.Context, b book.Book) (book.Book, error) {
	query := `
	INSERT INTO books (id, title, description, pages, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	RETURNING ` + bookColumns

	now := time.Now().UTC()
	created, err := scanBook(r.db.QueryRow(ctx, query, uuid.NewString(), b.Title, b.Description, b.Pages, now))
	if err != nil {
		return book.Book{}, fmt.Errorf("inserting book: %w", err)
	}
	return created, nil
}

func (r *BookPG) GetByID(ctx context.Context, id string) (book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return b, nil
}

func (r *BookPG) List(ctx context.Context) ([]book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("selecting books: %w", err)
	}
	return collectBooks(rows)
}

func (r *BookPG) ListPage(ctx context.Context, page, limit int) ([]book.Book, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting books: %w", err)
	}

	// compare before multiplying: a huge page would overflow the offset
	if page-1 > total/limit {
		return []book.Book{}, total, nil
	}

	query := `
	SELECT ` + bookColumns + `
	FROM books
	ORDER BY created_at, id
	LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("selecting books page: %w", err)
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *BookPG) Update(ctx context.Context, id, title, description string, pages int) (book.Book, error) {
	query := `
	UPDATE books
	SET title = $2, description = $3, pages = $4, updated_at = $5
	WHERE id = $1
	RETURNING ` + bookColumns

	b, err := scanBook(r.db.QueryRow(ctx, query, id, title, description, pages, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, fmt.Errorf("updating book: %w", err)
	}
	return b, nil
}

func (r *BookPG) Patch(ctx context.Context, id string, fields book.PatchFields) (book.Book, error) {
	query := `
	UPDATE books
	SET title = COALESCE($2, title),
	    description = COALESCE($3, description),
	    pages = COALESCE($4, pages),
	    updated_at = $5
	WHERE id = $1
	RETURNING ` + bookColumns

	b, err := scanBook(r.db.QueryRow(ctx, query, id, fields.Title, fields.Description, fields.Pages, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, fmt.Errorf("patching book: %w", err)
	}
	return b, nil
}

func (r *BookPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (r *BookPG) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("deleting all books: %w", err)
	}
	return nil
}

func (r *BookPG) FilterByTitle(ctx context.Context, title string) ([]book.Book, error) {
	query := `
	SELECT ` + bookColumns + `
	FROM books
	WHERE title ILIKE '%' || $1 || '%'
	ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, title)
	if err != nil {
		return nil, fmt.Errorf("filtering books by title: %w", err)
	}
	return collectBooks(rows)
}

func (r *BookPG) FilterByDescription(ctx context.Context, description string) ([]book.Book, error) {
	query := `
	SELECT ` + bookColumns + `
	FROM books
	WHERE description ILIKE '%' || $1 || '%'
	ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, description)
	if err != nil {
		return nil, fmt.Errorf("filtering books by description: %w", err)
	}
	return collectBooks(rows)
}

func (r *BookPG) FilterByPages(ctx context.Context, pages int) ([]book.Book, error) {
	query := `
	SELECT ` + bookColumns + `
	FROM books
	WHERE pages = $1
	ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, pages)
	if err != nil {
		return nil, fmt.Errorf("filtering books by pages: %w", err)
	}
	return collectBooks(rows)
}

func (r *BookPG) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
