package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/izzyreal/washboard/internal/server/httpx"
)

// Handler routes the dashboard endpoints. Cross-origin reads are allowed
// from origins; nil or "*" allows any.
func (s *Server) Handler(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(httpx.NoStore)
		r.Get("/", s.boardHandler)
		r.Get("/sync-state", s.syncStateHandler)
	})
	r.Get("/healthz", healthzHandler)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
