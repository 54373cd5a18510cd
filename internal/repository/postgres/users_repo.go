package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillboard/quillboard/internal/models"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userCols = `id, username, email, password_hash, avatar, created_at, updated_at`

func (r *usersRepo) Create(ctx context.Context, username, email, hash string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users(username, email, password_hash) VALUES($1,$2,$3)
		 RETURNING `+userCols,
		username, email, hash,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err, "user")
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.getBy(ctx, `id=$1`, id)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getBy(ctx, `email=$1`, email)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return r.getBy(ctx, `username=$1`, username)
}

func (r *usersRepo) getBy(ctx context.Context, where string, arg any) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err, "user")
}

func (r *usersRepo) Update(ctx context.Context, u models.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET username=$2, email=$3, avatar=$4, updated_at=now() WHERE id=$1`,
		u.ID, u.Username, u.Email, u.Avatar,
	)
	return mapErr(err, "user")
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`,
		id, hash,
	)
	return mapErr(err, "user")
}
