// Package web renders the embedded HTML pages. Handlers supply a Data
// value; the renderer never inspects what goes into the templates beyond
// executing them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/quillboard/quillboard/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = []string{
	"home", "about", "login", "register", "account", "user_posts",
	"post", "post_form", "reset_request", "reset_password", "error",
}

type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	m := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		m[p] = t
	}
	return &Renderer{templates: m}, nil
}

// Data is the context handed to every page template.
type Data struct {
	Title  string
	Actor  *models.User      // nil when anonymous
	Flash  []Flash           // messages to show once
	Errors map[string]string // field -> message, for form re-renders
	Form   map[string]string // submitted values to preserve
	View   any               // page-specific payload
}

func (r *Renderer) HTML(w http.ResponseWriter, status int, page string, data *Data) {
	t, ok := r.templates[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = &Data{}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("render", "page", page, "err", err)
	}
}
