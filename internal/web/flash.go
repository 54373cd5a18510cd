package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Flash messages survive exactly one redirect: written into a cookie by the
// handler that redirects, popped by the handler that renders next.
type Flash struct {
	Level   string // success | info | warning | danger
	Message string
}

const flashCookie = "flash"

func AddFlash(w http.ResponseWriter, r *http.Request, level, msg string) {
	flashes := append(peekFlashes(r), Flash{Level: level, Message: msg})
	b, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
	})
}

// PopFlashes returns pending messages and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := peekFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return flashes
}

func peekFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	b, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	return flashes
}
