package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/middleware"
	"github.com/quillboard/quillboard/internal/web"
)

func (h *Handlers) ShowResetRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render.HTML(w, http.StatusOK, "reset_request", h.data(w, r, "Reset Password"))
}

func (h *Handlers) ResetRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	email := r.PostFormValue("email")

	if err := h.users.RequestReset(r.Context(), email); err != nil {
		if apperror.KindOf(err) == apperror.Transport {
			d := h.data(w, r, "Reset Password")
			d.Flash = append(d.Flash, web.Flash{Level: "danger", Message: "We could not send the email right now. Please try again later."})
			d.Form = map[string]string{"email": email}
			h.render.HTML(w, http.StatusBadGateway, "reset_request", d)
			return
		}
		h.fail(w, r, err)
		return
	}
	web.AddFlash(w, r, "info", "An email has been sent with instructions to reset your password.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	token := chi.URLParam(r, "token")
	if _, err := h.users.VerifyResetToken(r.Context(), token); err != nil {
		web.AddFlash(w, r, "warning", "That is an invalid or expired token.")
		http.Redirect(w, r, "/reset_request", http.StatusFound)
		return
	}
	d := h.data(w, r, "Reset Password")
	d.View = token
	h.render.HTML(w, http.StatusOK, "reset_password", d)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	token := chi.URLParam(r, "token")
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	rerender := func(fields map[string]string) {
		d := h.data(w, r, "Reset Password")
		d.View = token
		d.Errors = fields
		h.render.HTML(w, http.StatusBadRequest, "reset_password", d)
	}

	if password != confirm {
		rerender(map[string]string{"confirm_password": "passwords do not match"})
		return
	}
	_, err := h.users.ResetPassword(r.Context(), token, password)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.Validation:
			rerender(apperror.FieldsOf(err))
		case apperror.NotFound:
			web.AddFlash(w, r, "warning", "That is an invalid or expired token.")
			http.Redirect(w, r, "/reset_request", http.StatusFound)
		default:
			h.fail(w, r, err)
		}
		return
	}
	web.AddFlash(w, r, "success", "Your password has been updated! You are now able to log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}
