package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillboard/quillboard/internal/apperror"
	repo "github.com/quillboard/quillboard/internal/repository"
)

type Repositories struct {
	Users    repo.Users
	Posts    repo.Posts
	Sessions repo.Sessions
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:    &usersRepo{pool},
		Posts:    &postsRepo{pool},
		Sessions: &sessionsRepo{pool},
	}
}

// mapErr translates pgx errors into the shared taxonomy. Constraint names
// follow the migration schema (users_username_key, users_email_key).
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.Wrap(apperror.NotFound, what+" not found", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		e := apperror.Wrap(apperror.Conflict, what+" already exists", err)
		switch pgErr.ConstraintName {
		case "users_username_key":
			e.Fields = map[string]string{"username": "already taken"}
		case "users_email_key":
			e.Fields = map[string]string{"email": "already registered"}
		}
		return e
	}
	return err
}
