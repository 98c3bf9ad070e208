// Package view serves the catalog pages: the record table with scroll-driven
// loading, the create/edit form and the delete confirmation.
package view

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/api"
	"github.com/example/media-catalog/internal/platform/httpserver"
	"github.com/example/media-catalog/services/catalog-ui/internal/form"
	"github.com/example/media-catalog/services/catalog-ui/internal/mediaapi"
	"github.com/example/media-catalog/services/catalog-ui/internal/scroll"
)

//go:embed templates/*.gohtml
var tplFS embed.FS

const sessionCookie = "catalog_session"

type Handler struct {
	api      mediaapi.Provider
	sessions *Sessions
	tpl      *template.Template
	log      *zap.Logger
}

func New(provider mediaapi.Provider, sessions *Sessions, log *zap.Logger) (*Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tpl, err := template.ParseFS(tplFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	return &Handler{api: provider, sessions: sessions, tpl: tpl, log: log}, nil
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/scroll", h.scroll)
	r.Get("/media/new", h.openCreate)
	r.Get("/media/{id}/edit", h.openEdit)
	r.Post("/media/form", h.submit)
	r.Post("/media/form/cancel", h.cancel)
	r.Get("/media/{id}/delete", h.askDelete)
	r.Post("/media/{id}/delete", h.remove)
}

type pageData struct {
	Records   []media.Record
	HasMore   bool
	Loading   bool
	LoadError string
	Flash     string
	Form      form.State
	Confirm   *media.Record
	Kinds     []media.Kind
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if r.URL.Query().Get("reload") != "" {
		_ = sess.List.LoadInitial(r.Context())
	} else {
		sess.Mount(r.Context())
	}
	h.render(w, http.StatusOK, "base", h.page(sess))
}

func (h *Handler) scroll(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := r.ParseForm(); err != nil {
		api.BadRequest(w, "INVALID_FORM", "invalid form", httpserver.RequestIDFromContext(r.Context()), nil)
		return
	}
	top, err1 := strconv.Atoi(r.PostFormValue("scrollTop"))
	vh, err2 := strconv.Atoi(r.PostFormValue("viewportHeight"))
	dh, err3 := strconv.Atoi(r.PostFormValue("documentHeight"))
	if err := errors.Join(err1, err2, err3); err != nil {
		api.BadRequest(w, "INVALID_SCROLL", "scrollTop, viewportHeight and documentHeight must be integers",
			httpserver.RequestIDFromContext(r.Context()), nil)
		return
	}

	sess.Bus.Publish(scroll.Signal{ScrollTop: top, ViewportHeight: vh, DocumentHeight: dh})
	if err := sess.Trigger.Wait(r.Context()); err != nil {
		return
	}

	data := h.page(sess)
	w.Header().Set("X-Has-More", strconv.FormatBool(data.HasMore))
	h.render(w, http.StatusOK, "rows", data)
}

func (h *Handler) openCreate(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	sess.Form.OpenCreate()
	seeOther(w, r)
}

func (h *Handler) openEdit(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	rec, ok := sess.List.Find(chi.URLParam(r, "id"))
	if !ok {
		sess.SetFlash("Media not found")
	} else {
		sess.Form.OpenEdit(rec)
	}
	seeOther(w, r)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := r.ParseForm(); err != nil {
		api.BadRequest(w, "INVALID_FORM", "invalid form", httpserver.RequestIDFromContext(r.Context()), nil)
		return
	}
	sess.Form.SetDraft(form.Draft{
		Title:       r.PostFormValue("title"),
		Kind:        r.PostFormValue("type"),
		Director:    r.PostFormValue("director"),
		Budget:      r.PostFormValue("budget"),
		Location:    r.PostFormValue("location"),
		Duration:    r.PostFormValue("duration"),
		ReleaseYear: r.PostFormValue("year"),
	})

	res, err := sess.Form.Submit(r.Context())
	switch {
	case err != nil:
		// The form keeps the draft and shows the error.
	case res.Created:
		sess.List.ApplyCreated(res.Record)
		sess.SetFlash("Media created")
	default:
		sess.List.ApplyUpdated(res.Record)
		sess.SetFlash("Media updated")
	}
	seeOther(w, r)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	sess.Form.Close()
	seeOther(w, r)
}

func (h *Handler) askDelete(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	id := chi.URLParam(r, "id")
	if _, ok := sess.List.Find(id); !ok {
		sess.SetFlash("Media not found")
	} else {
		sess.SetConfirmDelete(id)
	}
	seeOther(w, r)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	id := chi.URLParam(r, "id")
	sess.SetConfirmDelete("")
	if r.PostFormValue("confirm") != "yes" {
		seeOther(w, r)
		return
	}

	if err := h.api.Remove(r.Context(), id); err != nil {
		h.log.Warn("media delete failed",
			zap.String("media_id", id),
			zap.Int("status", mediaapi.Status(err)),
			zap.Error(err),
		)
		sess.SetFlash("Failed to delete media: " + mediaapi.Message(err))
		seeOther(w, r)
		return
	}
	sess.List.ApplyDeleted(id)
	sess.SetFlash("Media deleted")
	seeOther(w, r)
}

func (h *Handler) page(sess *Session) pageData {
	st := sess.List.Snapshot()
	data := pageData{
		Records: st.Records,
		HasMore: st.HasMore,
		Loading: st.Loading || sess.Trigger.Active(),
		Flash:   sess.TakeFlash(),
		Form:    sess.Form.State(),
		Kinds:   media.Kinds(),
	}
	if st.Err != nil {
		data.LoadError = mediaapi.Message(st.Err)
	}
	if id := sess.ConfirmDelete(); id != "" {
		if rec, ok := sess.List.Find(id); ok {
			data.Confirm = &rec
		}
	}
	return data
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// session returns the caller's session, starting a new one when the cookie
// is missing or expired.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := h.sessions.Get(c.Value); ok {
			return sess
		}
	}
	sess := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"),
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func seeOther(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
