package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/quillboard/quillboard/internal/models"
	repo "github.com/quillboard/quillboard/internal/repository"
	"github.com/quillboard/quillboard/internal/session"
)

// SessionCookie is the name of the cookie carrying the session credential.
const SessionCookie = "session"

type actorKey struct{}

// ActorFrom returns the authenticated user for this request, if any.
func ActorFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(actorKey{}).(models.User)
	return u, ok
}

// WithTestActor injects an actor directly, for handler tests.
func WithTestActor(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

type Actor struct {
	Sessions *session.Manager
	Users    repo.Users
}

func NewActor(sm *session.Manager, users repo.Users) *Actor {
	return &Actor{Sessions: sm, Users: users}
}

// Resolve maps the session cookie to a user and stashes it in the request
// context. Requests without a live session pass through as anonymous.
func (a *Actor) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		uid, ok := a.Sessions.Resolve(r.Context(), c.Value)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		u, err := a.Users.GetByID(r.Context(), uid)
		if err != nil {
			// session points at a vanished user; treat as anonymous
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), actorKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin redirects anonymous requests to the login page, preserving
// the requested path so login can return to it.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFrom(r.Context()); !ok {
			target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
