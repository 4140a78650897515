package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		StoreBackend:   config.BackendMemory,
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		AdminUsername:  "admin",
		AdminPassword:  "hunter22",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 20,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := NewRouter(testConfig(), store.NewMemory(), zerolog.Nop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, data := doRequest(t, http.MethodPost, srv.URL+"/api/login", "", `{"username":"admin","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestRouter_LoginAndAuth(t *testing.T) {
	srv := newTestServer(t)

	t.Run("wrong credentials rejected", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/login", "", `{"username":"admin","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing token yields 403", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/books", "", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("garbage token yields 401", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/books", "garbage", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("issued token authorizes", func(t *testing.T) {
		token := login(t, srv)
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/books", token, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouter_CRUDFlow(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp, data := doRequest(t, http.MethodPost, srv.URL+"/api/books", token,
		`{"title":"Dune","description":"Desert planet epic","pages":412}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created book.Book
	require.NoError(t, json.Unmarshal(data, &created))
	require.NotEmpty(t, created.ID)

	resp, data = doRequest(t, http.MethodGet, srv.URL+"/api/books/"+created.ID, token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got book.Book
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 412, got.Pages)

	resp, data = doRequest(t, http.MethodPut, srv.URL+"/api/books/"+created.ID, token,
		`{"title":"Dune Messiah","description":"Sequel","pages":256}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Dune Messiah", got.Title)

	resp, data = doRequest(t, http.MethodPatch, srv.URL+"/api/books/"+created.ID, token, `{"pages":42}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "Sequel", got.Description)
	assert.Equal(t, 42, got.Pages)

	resp, _ = doRequest(t, http.MethodDelete, srv.URL+"/api/books/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/api/books/"+created.ID, token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_DeleteAll(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	for i := 0; i < 3; i++ {
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/books", token,
			fmt.Sprintf(`{"title":"Book %d","pages":%d}`, i, i+1))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, _ := doRequest(t, http.MethodDelete, srv.URL+"/api/books", token, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data := doRequest(t, http.MethodGet, srv.URL+"/api/books", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books []book.Book
	require.NoError(t, json.Unmarshal(data, &books))
	assert.Empty(t, books)
}

func TestRouter_PaginateAndFilters(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	for i := 1; i <= 25; i++ {
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/books", token,
			fmt.Sprintf(`{"title":"Book %02d","pages":%d}`, i, i))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, data := doRequest(t, http.MethodGet, srv.URL+"/api/books-pages/paginate?page=2&limit=10", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		TotalItems  int         `json:"totalItems"`
		TotalPages  int         `json:"totalPages"`
		CurrentPage int         `json:"currentPage"`
		Books       []book.Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, 25, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Books, 10)
	assert.Equal(t, 11, page.Books[0].Pages)

	resp, data = doRequest(t, http.MethodGet, srv.URL+"/api/books/filter/title?title=book%2001", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books []book.Book
	require.NoError(t, json.Unmarshal(data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Book 01", books[0].Title)

	resp, data = doRequest(t, http.MethodGet, srv.URL+"/api/books/filter/pages?pages=17", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, 17, books[0].Pages)
}

func TestRouter_MethodAndPathHandling(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	t.Run("unsupported method on collection", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPut, srv.URL+"/api/books", token, `{}`)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("unknown filter route", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/books/filter/genre?genre=scifi", token, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("login only accepts POST", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/login", "", "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
