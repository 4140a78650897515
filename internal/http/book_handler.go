package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookcatalog/internal/book"

	"github.com/rs/zerolog"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type BookHandler struct {
	store book.Store
	log   zerolog.Logger
}

func NewBookHandler(store book.Store, log zerolog.Logger) *BookHandler {
	return &BookHandler{store: store, log: log}
}

// decodeInput rejects unknown fields, so a client-supplied id or any
// field outside {title, description, pages} fails the whole write.
func decodeInput(r *http.Request) (*book.Input, error) {
	var in book.Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (h *BookHandler) storeError(r *http.Request, op string, err error) {
	h.log.Error().
		Err(err).
		Str("op", op).
		Str("request_id", RequestIDFrom(r)).
		Msg("store operation failed")
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.List(r.Context())
	if err != nil {
		h.storeError(r, "list", err)
		writeError(w, http.StatusInternalServerError, "error retrieving books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if verr := in.Validate(book.ModeCreate); verr != nil {
		writeValidationError(w, verr)
		return
	}

	b := book.Book{Title: *in.Title, Pages: *in.Pages}
	if in.Description != nil {
		b.Description = *in.Description
	}

	created, err := h.store.Create(r.Context(), b)
	if err != nil {
		h.storeError(r, "create", err)
		writeError(w, http.StatusInternalServerError, "error saving book")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		h.storeError(r, "get", err)
		writeError(w, http.StatusInternalServerError, "error retrieving book")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Replace(w http.ResponseWriter, r *http.Request, id string) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if verr := in.Validate(book.ModeReplace); verr != nil {
		writeValidationError(w, verr)
		return
	}

	updated, err := h.store.Update(r.Context(), id, *in.Title, *in.Description, *in.Pages)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		h.storeError(r, "update", err)
		writeError(w, http.StatusInternalServerError, "error updating book")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BookHandler) PatchBook(w http.ResponseWriter, r *http.Request, id string) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if verr := in.Validate(book.ModePatch); verr != nil {
		writeValidationError(w, verr)
		return
	}

	updated, err := h.store.Patch(r.Context(), id, in.Fields())
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		h.storeError(r, "patch", err)
		writeError(w, http.StatusInternalServerError, "error updating book")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		h.storeError(r, "delete", err)
		writeError(w, http.StatusInternalServerError, "error deleting book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAll(r.Context()); err != nil {
		h.storeError(r, "delete_all", err)
		writeError(w, http.StatusInternalServerError, "error deleting all books")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paginateResp struct {
	TotalItems  int         `json:"totalItems"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Books       []book.Book `json:"books"`
}

// Paginate defaults page and limit to 1 and 10 when absent, non-numeric
// or below 1. An out-of-range page yields an empty books array.
func (h *BookHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	limit := queryInt(r, "limit", defaultLimit)

	books, total, err := h.store.ListPage(r.Context(), page, limit)
	if err != nil {
		h.storeError(r, "paginate", err)
		writeError(w, http.StatusInternalServerError, "error paginating books")
		return
	}

	// divide then round up; total+limit-1 overflows for a huge limit
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, paginateResp{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Books:       books,
	})
}

func (h *BookHandler) FilterTitle(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.FilterByTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		h.storeError(r, "filter_title", err)
		writeError(w, http.StatusInternalServerError, "error filtering books by title")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) FilterDescription(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.FilterByDescription(r.Context(), r.URL.Query().Get("description"))
	if err != nil {
		h.storeError(r, "filter_description", err)
		writeError(w, http.StatusInternalServerError, "error filtering books by description")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) FilterPages(w http.ResponseWriter, r *http.Request) {
	pages, err := strconv.Atoi(r.URL.Query().Get("pages"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "pages must be a number")
		return
	}

	books, err := h.store.FilterByPages(r.Context(), pages)
	if err != nil {
		h.storeError(r, "filter_pages", err)
		writeError(w, http.StatusInternalServerError, "error filtering books by pages")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// Subtree dispatches everything under the books prefix: the filter
// routes and the per-id operations.
func (h *BookHandler) Subtree(prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, prefix)

		if strings.HasPrefix(rest, "filter/") {
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			switch rest {
			case "filter/title":
				h.FilterTitle(w, r)
			case "filter/description":
				h.FilterDescription(w, r)
			case "filter/pages":
				h.FilterPages(w, r)
			default:
				http.NotFound(w, r)
			}
			return
		}

		if rest == "" || strings.Contains(rest, "/") {
			http.NotFound(w, r)
			return
		}

		id := rest
		switch r.Method {
		case http.MethodGet:
			h.GetByID(w, r, id)
		case http.MethodPut:
			h.Replace(w, r, id)
		case http.MethodPatch:
			h.PatchBook(w, r, id)
		case http.MethodDelete:
			h.Delete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
