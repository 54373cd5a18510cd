package handlers

import (
	"net/http"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/middleware"
	"github.com/quillboard/quillboard/internal/web"
)

func (h *Handlers) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render.HTML(w, http.StatusOK, "register", h.data(w, r, "Register"))
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	rerender := func(fields map[string]string) {
		d := h.data(w, r, "Register")
		d.Errors = fields
		d.Form = map[string]string{"username": username, "email": email}
		h.render.HTML(w, http.StatusBadRequest, "register", d)
	}

	if password != confirm {
		rerender(map[string]string{"confirm_password": "passwords do not match"})
		return
	}
	_, err := h.users.Register(r.Context(), username, email, password)
	if err != nil {
		if apperror.KindOf(err) == apperror.Validation {
			rerender(apperror.FieldsOf(err))
			return
		}
		h.fail(w, r, err)
		return
	}
	web.AddFlash(w, r, "success", "Your account has been created! You are now able to log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	d := h.data(w, r, "Login")
	if next := safeNext(r.URL.Query().Get("next")); next != "/" {
		d.View = next
	}
	h.render.HTML(w, http.StatusOK, "login", d)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	remember := r.PostFormValue("remember") != ""
	next := safeNext(r.PostFormValue("next"))

	u, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		if apperror.KindOf(err) == apperror.Unauthorized {
			d := h.data(w, r, "Login")
			d.Flash = append(d.Flash, web.Flash{Level: "danger", Message: "Login unsuccessful. Please check email and password."})
			d.Form = map[string]string{"email": email}
			if next != "/" {
				d.View = next
			}
			h.render.HTML(w, http.StatusUnauthorized, "login", d)
			return
		}
		h.fail(w, r, err)
		return
	}

	sess, err := h.sessions.Issue(r.Context(), u.ID, remember)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		c.MaxAge = int(h.sessions.TTL(true).Seconds())
	}
	http.SetCookie(w, c)
	web.AddFlash(w, r, "success", "Login successful! Welcome back, "+u.Username)
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookie); err == nil {
		_ = h.sessions.Revoke(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
