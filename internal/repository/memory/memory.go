// Package memory holds in-memory repository implementations used by tests.
// They follow the same error contract as the postgres implementations,
// including uniqueness enforcement on username and email.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/models"
	repo "github.com/quillboard/quillboard/internal/repository"
)

type Repositories struct {
	Users    *UsersRepo
	Posts    *PostsRepo
	Sessions *SessionsRepo
}

func NewRepositories() Repositories {
	users := &UsersRepo{byID: map[int64]models.User{}}
	return Repositories{
		Users:    users,
		Posts:    (&PostsRepo{byID: map[int64]models.Post{}}).WithUsers(users),
		Sessions: &SessionsRepo{byToken: map[string]models.Session{}},
	}
}

// ---------- users ----------

type UsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.User
}

var _ repo.Users = (*UsersRepo)(nil)

func (r *UsersRepo) Create(_ context.Context, username, email, hash string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			e := apperror.New(apperror.Conflict, "user already exists")
			e.Fields = map[string]string{"username": "already taken"}
			return models.User{}, e
		}
		if u.Email == email {
			e := apperror.New(apperror.Conflict, "user already exists")
			e.Fields = map[string]string{"email": "already registered"}
			return models.User{}, e
		}
	}
	r.nextID++
	now := time.Now()
	u := models.User{
		ID: r.nextID, Username: username, Email: email, PasswordHash: hash,
		Avatar: models.DefaultAvatar, CreatedAt: now, UpdatedAt: now,
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, apperror.New(apperror.NotFound, "user not found")
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UsersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UsersRepo) find(match func(models.User) bool) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, apperror.New(apperror.NotFound, "user not found")
}

func (r *UsersRepo) Update(_ context.Context, u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return apperror.New(apperror.NotFound, "user not found")
	}
	for id, other := range r.byID {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			e := apperror.New(apperror.Conflict, "user already exists")
			e.Fields = map[string]string{"username": "already taken"}
			return e
		}
		if other.Email == u.Email {
			e := apperror.New(apperror.Conflict, "user already exists")
			e.Fields = map[string]string{"email": "already registered"}
			return e
		}
	}
	u.PasswordHash = cur.PasswordHash
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = time.Now()
	r.byID[u.ID] = u
	return nil
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return apperror.New(apperror.NotFound, "user not found")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return nil
}

// ---------- posts ----------

type PostsRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.Post
	users  *UsersRepo // optional, fills Author on reads
}

var _ repo.Posts = (*PostsRepo)(nil)

// WithUsers lets reads fill the Author username like the SQL join does.
func (r *PostsRepo) WithUsers(users *UsersRepo) *PostsRepo {
	r.users = users
	return r
}

func (r *PostsRepo) Create(_ context.Context, p models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.byID[p.ID] = p
	return r.withAuthor(p), nil
}

func (r *PostsRepo) GetByID(_ context.Context, id int64) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return models.Post{}, apperror.New(apperror.NotFound, "post not found")
	}
	return r.withAuthor(p), nil
}

func (r *PostsRepo) Update(_ context.Context, p models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[p.ID]
	if !ok {
		return apperror.New(apperror.NotFound, "post not found")
	}
	cur.Title = p.Title
	cur.Body = p.Body
	r.byID[p.ID] = cur
	return nil
}

func (r *PostsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return apperror.New(apperror.NotFound, "post not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *PostsRepo) ListByAuthor(_ context.Context, authorID int64, limit, offset int) ([]models.Post, error) {
	return r.list(func(p models.Post) bool { return p.AuthorID == authorID }, limit, offset), nil
}

func (r *PostsRepo) ListAll(_ context.Context, limit, offset int) ([]models.Post, error) {
	return r.list(func(models.Post) bool { return true }, limit, offset), nil
}

func (r *PostsRepo) list(match func(models.Post) bool, limit, offset int) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Post
	for _, p := range r.byID {
		if match(p) {
			all = append(all, r.withAuthor(p))
		}
	}
	// newest first, matching the SQL ordering
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all
}

func (r *PostsRepo) CountByAuthor(_ context.Context, authorID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.byID {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *PostsRepo) CountAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *PostsRepo) withAuthor(p models.Post) models.Post {
	if r.users != nil {
		if u, err := r.users.GetByID(context.Background(), p.AuthorID); err == nil {
			p.Author = u.Username
		}
	}
	return p
}

// ---------- sessions ----------

type SessionsRepo struct {
	mu      sync.Mutex
	byToken map[string]models.Session
}

var _ repo.Sessions = (*SessionsRepo)(nil)

func (r *SessionsRepo) Create(_ context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byToken[s.Token]; ok {
		return apperror.New(apperror.Conflict, "session already exists")
	}
	s.CreatedAt = time.Now()
	r.byToken[s.Token] = s
	return nil
}

func (r *SessionsRepo) Get(_ context.Context, token string) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byToken[token]
	if !ok {
		return models.Session{}, apperror.New(apperror.NotFound, "session not found")
	}
	return s, nil
}

func (r *SessionsRepo) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byToken[token]; ok {
		s.Revoked = true
		r.byToken[token] = s
	}
	return nil
}

func (r *SessionsRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tok, s := range r.byToken {
		if s.UserID == userID {
			s.Revoked = true
			r.byToken[tok] = s
		}
	}
	return nil
}

func (r *SessionsRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var n int64
	for tok, s := range r.byToken {
		if s.Revoked || now.After(s.ExpiresAt) {
			delete(r.byToken, tok)
			n++
		}
	}
	return n, nil
}
