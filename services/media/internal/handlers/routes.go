package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Mount registers the media routes on r. Callers add auth and rate limiting
// before mounting.
func Mount(r chi.Router, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r.Get("/media", ListMedia(d))
	r.Post("/media", CreateMedia(d))
	r.Put("/media/{media_id}", UpdateMedia(d))
	r.Delete("/media/{media_id}", DeleteMedia(d))
}
