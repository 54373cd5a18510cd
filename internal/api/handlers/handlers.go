// Package handlers wires HTTP requests to the services: form parsing in,
// rendered pages or redirects out.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/middleware"
	"github.com/quillboard/quillboard/internal/services"
	"github.com/quillboard/quillboard/internal/session"
	"github.com/quillboard/quillboard/internal/web"
)

type Handlers struct {
	users    *services.UserService
	posts    *services.PostService
	sessions *session.Manager
	render   *web.Renderer
}

func New(users *services.UserService, posts *services.PostService, sessions *session.Manager, render *web.Renderer) *Handlers {
	return &Handlers{users: users, posts: posts, sessions: sessions, render: render}
}

// data builds the base template context: actor and pending flashes.
func (h *Handlers) data(w http.ResponseWriter, r *http.Request, title string) *web.Data {
	d := &web.Data{Title: title, Flash: web.PopFlashes(w, r)}
	if u, ok := middleware.ActorFrom(r.Context()); ok {
		d.Actor = &u
	}
	return d
}

// fail renders the error outcome of a service call.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch apperror.KindOf(err) {
	case apperror.NotFound:
		d := h.data(w, r, "Not Found (404)")
		d.View = "That page does not exist."
		h.render.HTML(w, http.StatusNotFound, "error", d)
	case apperror.Forbidden:
		d := h.data(w, r, "You don't have permission to do that (403)")
		d.View = "Please check your account and try again."
		h.render.HTML(w, http.StatusForbidden, "error", d)
	case apperror.Unauthorized:
		http.Redirect(w, r, "/login", http.StatusFound)
	default:
		slog.Error("request failed", "path", r.URL.Path, "err", err)
		d := h.data(w, r, "Something went wrong (500)")
		d.View = "We're experiencing some trouble on our end. Please try again later."
		h.render.HTML(w, http.StatusInternalServerError, "error", d)
	}
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// safeNext accepts a post-login redirect target only when it is
// origin-relative; anything else falls back to the landing page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
