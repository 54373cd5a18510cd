package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/quillboard/quillboard/internal/api/handlers"
	"github.com/quillboard/quillboard/internal/config"
	"github.com/quillboard/quillboard/internal/metrics"
	"github.com/quillboard/quillboard/internal/middleware"
)

// NewRouter assembles the middleware chain and every route of the app.
// avatarDir is served read-only under /static/profile_pics/.
func NewRouter(cfg config.Config, h *handlers.Handlers, actor *middleware.Actor, avatarDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(actor.Resolve)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	// static avatars
	fs := http.StripPrefix("/static/profile_pics/", http.FileServer(http.Dir(avatarDir)))
	r.Get("/static/profile_pics/*", fs.ServeHTTP)

	// public pages
	r.Get("/", h.Home)
	r.Get("/home", h.Home)
	r.Get("/about", h.About)
	r.Get("/user/{username}", h.UserPosts)
	r.Get("/post/{id}", h.ShowPost)

	// auth
	r.Get("/register", h.ShowRegister)
	r.Post("/register", h.Register)
	r.Get("/login", h.ShowLogin)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	// password reset
	r.Get("/reset_request", h.ShowResetRequest)
	r.Post("/reset_request", h.ResetRequest)
	r.Get("/reset_password/{token}", h.ShowResetPassword)
	r.Post("/reset_password/{token}", h.ResetPassword)

	// login-gated pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)
		r.Get("/account", h.ShowAccount)
		r.Post("/account", h.UpdateAccount)
		r.Get("/post/new", h.ShowNewPost)
		r.Post("/post/new", h.CreatePost)
		r.Get("/post/{id}/update", h.ShowEditPost)
		r.Post("/post/{id}/update", h.UpdatePost)
		r.Post("/post/{id}/delete", h.DeletePost)
	})

	return r
}
