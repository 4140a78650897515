package http

import (
	"context"
	"net/http"
	"time"

	"bookcatalog/internal/auth"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"

	"github.com/rs/zerolog"
)

const apiPrefix = "/api"

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires handlers and the middleware chain around the given
// store. All /api/books* routes require a bearer token.
func NewRouter(cfg config.Config, store book.Store, log zerolog.Logger) http.Handler {
	books := NewBookHandler(store, log)
	login := NewAuthHandler(auth.Credentials{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}, cfg.JWTSecret, cfg.TokenTTL)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle(apiPrefix+"/login", MethodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(login.Login),
	}))

	requireToken := RequireToken(cfg.JWTSecret)

	mux.Handle(apiPrefix+"/books", requireToken(MethodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(books.List),
		http.MethodPost:   http.HandlerFunc(books.Create),
		http.MethodDelete: http.HandlerFunc(books.DeleteAll),
	})))
	mux.Handle(apiPrefix+"/books/", requireToken(books.Subtree(apiPrefix+"/books/")))
	mux.Handle(apiPrefix+"/books-pages/paginate", requireToken(MethodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(books.Paginate),
	})))

	var handler http.Handler = mux
	handler = NewRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(handler)
	handler = BodySizeLimit(cfg.MaxBodyBytes)(handler)
	handler = SecurityHeaders(handler)
	handler = Recovery(log)(handler)
	handler = AccessLog(log)(handler)
	handler = RequestID(handler)
	return handler
}
