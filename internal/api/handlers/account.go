package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/middleware"
	"github.com/quillboard/quillboard/internal/web"
)

const maxUploadBytes = 10 << 20

func (h *Handlers) ShowAccount(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	d := h.data(w, r, "Account")
	d.Form = map[string]string{"username": actor.Username, "email": actor.Email}
	h.render.HTML(w, http.StatusOK, "account", d)
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.fail(w, r, apperror.Wrap(apperror.Validation, "bad upload", err))
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")

	var picture io.Reader
	var pictureName string
	file, header, err := r.FormFile("picture")
	switch {
	case err == nil:
		defer file.Close()
		picture = file
		pictureName = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// no new picture, keep the current one
	default:
		h.fail(w, r, err)
		return
	}

	_, err = h.users.UpdateProfile(r.Context(), actor, username, email, picture, pictureName)
	if err != nil {
		if apperror.KindOf(err) == apperror.Validation {
			d := h.data(w, r, "Account")
			d.Errors = apperror.FieldsOf(err)
			if d.Errors == nil {
				d.Errors = map[string]string{"picture": err.Error()}
			}
			d.Form = map[string]string{"username": username, "email": email}
			h.render.HTML(w, http.StatusBadRequest, "account", d)
			return
		}
		h.fail(w, r, err)
		return
	}
	web.AddFlash(w, r, "success", "Your account has been updated!")
	http.Redirect(w, r, "/account", http.StatusFound)
}
