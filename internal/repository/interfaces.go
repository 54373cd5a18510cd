package repository

import (
	"context"

	"github.com/quillboard/quillboard/internal/models"
)

// Implementations map missing rows to apperror.NotFound and unique-constraint
// violations to apperror.Conflict so services see one error contract.

type Users interface {
	Create(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, u models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type Posts interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id int64) (models.Post, error)
	Update(ctx context.Context, p models.Post) error
	Delete(ctx context.Context, id int64) error
	ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, error)
	CountAll(ctx context.Context) (int, error)
}

type Sessions interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, token string) (models.Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}
