package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quicknotes/quicknotes-go/internal/middleware"
)

// RouterConfig bundles what the router needs beyond the handlers.
type RouterConfig struct {
	JWTSecret   string
	AuthLimiter middleware.Limiter
	APILimiter  middleware.Limiter
}

// NewRouter assembles the full HTTP surface.
func NewRouter(auth *AuthHandler, notes *NoteHandler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if cfg.AuthLimiter != nil {
			r.Use(middleware.RateLimit(cfg.AuthLimiter, "auth"))
		}
		r.Post("/auth/register", auth.HandleRegister)
		r.Post("/auth/login", auth.HandleLogin)
		r.Post("/auth/refresh", auth.HandleRefresh)
	})

	r.Group(func(r chi.Router) {
		if cfg.APILimiter != nil {
			r.Use(middleware.RateLimit(cfg.APILimiter, "api"))
		}
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Get("/notes", notes.HandleList)
		r.Post("/notes", notes.HandleCreate)
		r.Get("/notes/{id}", notes.HandleGet)
		r.Put("/notes/{id}", notes.HandleUpdate)
		r.Delete("/notes/{id}", notes.HandleDelete)
	})

	return r
}
