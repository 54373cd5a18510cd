package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/middleware"
	"github.com/quillboard/quillboard/internal/models"
	"github.com/quillboard/quillboard/internal/services"
	"github.com/quillboard/quillboard/internal/web"
)

type postFormView struct {
	Legend string
	Action string
}

type userPostsView struct {
	User models.User
	Page services.Page
}

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.ListAll(r.Context(), pageParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d := h.data(w, r, "Home")
	d.View = page
	h.render.HTML(w, http.StatusOK, "home", d)
}

func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "about", h.data(w, r, "About"))
}

func (h *Handlers) UserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	u, page, err := h.posts.ListByAuthor(r.Context(), username, pageParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d := h.data(w, r, u.Username)
	d.View = userPostsView{User: u, Page: page}
	h.render.HTML(w, http.StatusOK, "user_posts", d)
}

func (h *Handlers) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.fail(w, r, apperror.New(apperror.NotFound, "post not found"))
		return
	}
	p, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d := h.data(w, r, p.Title)
	d.View = p
	h.render.HTML(w, http.StatusOK, "post", d)
}

func (h *Handlers) ShowNewPost(w http.ResponseWriter, r *http.Request) {
	d := h.data(w, r, "New Post")
	d.View = postFormView{Legend: "New Post", Action: "/post/new"}
	h.render.HTML(w, http.StatusOK, "post_form", d)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	title := r.PostFormValue("title")
	body := r.PostFormValue("body")

	p, err := h.posts.Create(r.Context(), actor, title, body)
	if err != nil {
		if apperror.KindOf(err) == apperror.Validation {
			d := h.data(w, r, "New Post")
			d.View = postFormView{Legend: "New Post", Action: "/post/new"}
			d.Errors = apperror.FieldsOf(err)
			d.Form = map[string]string{"title": title, "body": body}
			h.render.HTML(w, http.StatusBadRequest, "post_form", d)
			return
		}
		h.fail(w, r, err)
		return
	}
	web.AddFlash(w, r, "success", "Your post has been created!")
	http.Redirect(w, r, "/post/"+strconv.FormatInt(p.ID, 10), http.StatusFound)
}

func (h *Handlers) ShowEditPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.fail(w, r, apperror.New(apperror.NotFound, "post not found"))
		return
	}
	p, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p.AuthorID != actor.ID {
		h.fail(w, r, apperror.New(apperror.Forbidden, "not the author of this post"))
		return
	}
	d := h.data(w, r, "Update Post")
	d.View = postFormView{Legend: "Update Post", Action: r.URL.Path}
	d.Form = map[string]string{"title": p.Title, "body": p.Body}
	h.render.HTML(w, http.StatusOK, "post_form", d)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.fail(w, r, apperror.New(apperror.NotFound, "post not found"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	title := r.PostFormValue("title")
	body := r.PostFormValue("body")

	p, err := h.posts.Update(r.Context(), actor, id, title, body)
	if err != nil {
		if apperror.KindOf(err) == apperror.Validation {
			d := h.data(w, r, "Update Post")
			d.View = postFormView{Legend: "Update Post", Action: r.URL.Path}
			d.Errors = apperror.FieldsOf(err)
			d.Form = map[string]string{"title": title, "body": body}
			h.render.HTML(w, http.StatusBadRequest, "post_form", d)
			return
		}
		h.fail(w, r, err)
		return
	}
	web.AddFlash(w, r, "success", "Your post has been updated!")
	http.Redirect(w, r, "/post/"+strconv.FormatInt(p.ID, 10), http.StatusFound)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.fail(w, r, apperror.New(apperror.NotFound, "post not found"))
		return
	}
	if err := h.posts.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	web.AddFlash(w, r, "success", "Your post has been deleted!")
	http.Redirect(w, r, "/", http.StatusFound)
}
