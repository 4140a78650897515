package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"bookcatalog/internal/book"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.json")
	s, err := NewFile(path, zerolog.Nop())
	require.NoError(t, err)
	return s, path
}

func TestFile_CreateAndGet(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, book.Book{Title: "Dune", Description: "Desert planet epic", Pages: 412})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Pages, got.Pages)
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, book.Book{Title: "Dune", Pages: 412})
	require.NoError(t, err)

	reopened, err := NewFile(path, zerolog.Nop())
	require.NoError(t, err)

	got, err := reopened.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestFile_LayoutIsObjectKeyedByID(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, book.Book{Title: "Dune", Pages: 412})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var byID map[string]book.Book
	require.NoError(t, json.Unmarshal(data, &byID))
	require.Contains(t, byID, created.ID)
	assert.Equal(t, "Dune", byID[created.ID].Title)
}

func TestFile_CorruptFileResetsAtOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFile(path, zerolog.Nop())
	require.NoError(t, err)

	books, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestFile_PatchAndDelete(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, book.Book{Title: "Dune", Description: "Desert planet epic", Pages: 412})
	require.NoError(t, err)

	patched, err := s.Patch(ctx, created.ID, book.PatchFields{Pages: intPtr(42)})
	require.NoError(t, err)
	assert.Equal(t, "Dune", patched.Title)
	assert.Equal(t, 42, patched.Pages)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, book.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), book.ErrNotFound)
}

func TestFile_ListPageOrderIsStable(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := s.Create(ctx, book.Book{Title: "Book", Pages: i + 1})
		require.NoError(t, err)
	}

	first, total, err := s.ListPage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, first, 10)

	second, _, err := s.ListPage(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, second, 5)

	// the two pages partition the full listing
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 15)
	for i, b := range first {
		assert.Equal(t, all[i].ID, b.ID)
	}
	for i, b := range second {
		assert.Equal(t, all[10+i].ID, b.ID)
	}

	huge, total, err := s.ListPage(ctx, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, huge)
}

func TestFile_DeleteAll(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, book.Book{Title: "Dune", Pages: 412})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAll(ctx))
	books, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}
