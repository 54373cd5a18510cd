package services

import (
	"context"
	"strings"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/metrics"
	"github.com/quillboard/quillboard/internal/models"
	repo "github.com/quillboard/quillboard/internal/repository"
	"github.com/quillboard/quillboard/internal/validate"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 5

type Page struct {
	Posts  []models.Post
	Number int // 1-based
	Count  int // total matching posts
}

func (p Page) Pages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + PageSize - 1) / PageSize
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Pages() }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

type PostService struct {
	posts repo.Posts
	users repo.Users
}

func NewPostService(posts repo.Posts, users repo.Users) *PostService {
	return &PostService{posts: posts, users: users}
}

func checkPost(title, body string) error {
	var errs validate.Errs
	errs.Check(
		validate.Required("title", title),
		validate.MaxLen("title", title, 100),
		validate.Required("body", body),
	)
	if len(errs) > 0 {
		return apperror.Invalid(errs.Fields())
	}
	return nil
}

// Create persists a new post owned by actor.
func (s *PostService) Create(ctx context.Context, actor models.User, title, body string) (models.Post, error) {
	if actor.ID == 0 {
		return models.Post{}, apperror.New(apperror.Unauthorized, "login required")
	}
	title = strings.TrimSpace(title)
	if err := checkPost(title, body); err != nil {
		return models.Post{}, err
	}
	p, err := s.posts.Create(ctx, models.Post{Title: title, Body: body, AuthorID: actor.ID})
	if err != nil {
		return models.Post{}, err
	}
	if p.Author == "" {
		p.Author = actor.Username
	}
	metrics.PostsCreatedTotal.Inc()
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Update mutates a post after the ownership gate: only the author may
// change it. On Forbidden the post is left untouched.
func (s *PostService) Update(ctx context.Context, actor models.User, id int64, title, body string) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if p.AuthorID != actor.ID {
		return models.Post{}, apperror.New(apperror.Forbidden, "not the author of this post")
	}
	title = strings.TrimSpace(title)
	if err := checkPost(title, body); err != nil {
		return models.Post{}, err
	}
	p.Title = title
	p.Body = body
	if err := s.posts.Update(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// Delete removes a post, gated the same way as Update.
func (s *PostService) Delete(ctx context.Context, actor models.User, id int64) error {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != actor.ID {
		return apperror.New(apperror.Forbidden, "not the author of this post")
	}
	return s.posts.Delete(ctx, id)
}

// ListByAuthor returns one page of an author's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, username string, page int) (models.User, Page, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, Page{}, err
	}
	if page < 1 {
		page = 1
	}
	count, err := s.posts.CountByAuthor(ctx, u.ID)
	if err != nil {
		return models.User{}, Page{}, err
	}
	posts, err := s.posts.ListByAuthor(ctx, u.ID, PageSize, (page-1)*PageSize)
	if err != nil {
		return models.User{}, Page{}, err
	}
	return u, Page{Posts: posts, Number: page, Count: count}, nil
}

// ListAll returns one page of the global feed, newest first.
func (s *PostService) ListAll(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	count, err := s.posts.CountAll(ctx)
	if err != nil {
		return Page{}, err
	}
	posts, err := s.posts.ListAll(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return Page{}, err
	}
	return Page{Posts: posts, Number: page, Count: count}, nil
}
