package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/api"
	"github.com/example/media-catalog/internal/platform/auth"
	"github.com/example/media-catalog/internal/platform/events"
	"github.com/example/media-catalog/internal/platform/httpserver"
	"github.com/example/media-catalog/services/media/internal/store"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// createErrorBody and updateErrorBody are the two error shapes the catalog
// clients understand: create failures carry "error", update failures "message".
type createErrorBody struct {
	Error string `json:"error"`
}

type updateErrorBody struct {
	Message string `json:"message"`
}

// Deps bundles what the media handlers need.
type Deps struct {
	Store  store.MediaStore
	Events *events.Publisher
	Log    *zap.Logger
}

// ListMedia handles GET /media?page=N&limit=M
func ListMedia(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		page := parseInt(r.URL.Query().Get("page"), 1, 1, 1<<20)
		limit := parseInt(r.URL.Query().Get("limit"), defaultPageLimit, 1, maxPageLimit)

		recs, total, err := d.Store.List(r.Context(), page, limit)
		if err != nil {
			d.Log.Error("list media", zap.Int("page", page), zap.Error(err), zap.String("request_id", rid))
			api.Internal(w, rid)
			return
		}

		api.WriteJSON(w, http.StatusOK, media.Page{
			Data: recs,
			Meta: media.Meta{Page: page, Limit: limit, Total: total, Pages: media.PageCount(total, limit)},
		})
	}
}

// CreateMedia handles POST /media
func CreateMedia(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var f media.Fields
		if err := decodeJSON(w, r, &f); err != nil {
			api.WriteJSON(w, http.StatusBadRequest, createErrorBody{Error: "Invalid JSON"})
			return
		}
		if err := f.Validate(); err != nil {
			api.WriteJSON(w, http.StatusBadRequest, createErrorBody{Error: fieldMessage(err)})
			return
		}

		created, err := d.Store.Create(r.Context(), f)
		if err != nil {
			d.Log.Error("create media", zap.Error(err), zap.String("request_id", rid))
			api.WriteJSON(w, http.StatusInternalServerError, createErrorBody{Error: "Failed to create media"})
			return
		}
		d.Events.Publish(events.SubjectMediaCreated, created.ID, userID(r), map[string]any{"title": created.Title})
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// UpdateMedia handles PUT /media/{media_id}
func UpdateMedia(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id := strings.TrimSpace(chi.URLParam(r, "media_id"))
		if id == "" {
			api.WriteJSON(w, http.StatusBadRequest, updateErrorBody{Message: "media_id is required"})
			return
		}

		var f media.Fields
		if err := decodeJSON(w, r, &f); err != nil {
			api.WriteJSON(w, http.StatusBadRequest, updateErrorBody{Message: "Invalid JSON"})
			return
		}
		if err := f.Validate(); err != nil {
			api.WriteJSON(w, http.StatusBadRequest, updateErrorBody{Message: fieldMessage(err)})
			return
		}

		updated, err := d.Store.Update(r.Context(), id, f)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.WriteJSON(w, http.StatusNotFound, updateErrorBody{Message: "Media not found"})
				return
			}
			d.Log.Error("update media", zap.String("media_id", id), zap.Error(err), zap.String("request_id", rid))
			api.WriteJSON(w, http.StatusInternalServerError, updateErrorBody{Message: "Failed to update media"})
			return
		}
		d.Events.Publish(events.SubjectMediaUpdated, updated.ID, userID(r), map[string]any{"title": updated.Title})
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteMedia handles DELETE /media/{media_id}
func DeleteMedia(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id := strings.TrimSpace(chi.URLParam(r, "media_id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "media_id is required", rid, nil)
			return
		}

		if err := d.Store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "media not found", rid)
				return
			}
			d.Log.Error("delete media", zap.String("media_id", id), zap.Error(err), zap.String("request_id", rid))
			api.Internal(w, rid)
			return
		}
		d.Events.Publish(events.SubjectMediaDeleted, id, userID(r), nil)
		api.NoContent(w)
	}
}

func fieldMessage(err error) string {
	var fe *media.FieldError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

func userID(r *http.Request) string {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}
