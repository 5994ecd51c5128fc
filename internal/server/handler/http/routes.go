// Package http serves the journal over HTTP: a JSON API for the session gate
// and entries, and a websocket for live recording.
package http

import (
	"net/http"

	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API.
//
// Routes:
//
//	GET    /api/session
//	POST   /api/setup
//	POST   /api/login
//	GET    /api/tags                         (bearer)
//	GET    /api/entries                      (bearer)
//	GET    /api/entries/{id}                 (bearer)
//	PUT    /api/entries/{id}                 (bearer)
//	DELETE /api/entries/{id}?confirm=true    (bearer)
//	POST   /api/entries/{id}/tags            (bearer)
//	DELETE /api/entries/{id}/tags/{tag}?confirm=true (bearer)
//	GET    /api/entries/{id}/export?format=  (bearer)
//	POST   /api/entries/{id}/archive         (bearer)
//	GET    /ws/record?token=
func NewRouter(
	sessionHandler *SessionHandler,
	entryHandler *EntryHandler,
	recordHandler *RecordHandler,
	tokens TokenVerifier,
	logger logging.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Get("/session", sessionHandler.State)
		r.Post("/setup", sessionHandler.Setup)
		r.Post("/login", sessionHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(tokens))

			r.Get("/tags", entryHandler.Tags)
			r.Get("/entries", entryHandler.List)
			r.Route("/entries/{id}", func(r chi.Router) {
				r.Get("/", entryHandler.Get)
				r.Put("/", entryHandler.Update)
				r.Delete("/", entryHandler.Delete)
				r.Post("/tags", entryHandler.AddTag)
				r.Delete("/tags/{tag}", entryHandler.RemoveTag)
				r.Get("/export", entryHandler.Export)
				r.Post("/archive", entryHandler.Archive)
			})
		})
	})

	r.Get("/ws/record", recordHandler.Record)

	return r
}
