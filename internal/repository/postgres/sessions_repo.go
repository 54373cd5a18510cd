package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillboard/quillboard/internal/models"
)

type sessionsRepo struct{ pool *pgxpool.Pool }

func (r *sessionsRepo) Create(ctx context.Context, s models.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions(token, user_id, expires_at) VALUES($1,$2,$3)`,
		s.Token, s.UserID, s.ExpiresAt,
	)
	return mapErr(err, "session")
}

func (r *sessionsRepo) Get(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.pool.QueryRow(ctx,
		`SELECT token, user_id, expires_at, revoked, created_at FROM sessions WHERE token=$1`, token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.CreatedAt)
	return s, mapErr(err, "session")
}

func (r *sessionsRepo) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET revoked=true WHERE token=$1`, token)
	return mapErr(err, "session")
}

func (r *sessionsRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET revoked=true WHERE user_id=$1`, userID)
	return mapErr(err, "session")
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now() OR revoked`)
	if err != nil {
		return 0, mapErr(err, "session")
	}
	return tag.RowsAffected(), nil
}
