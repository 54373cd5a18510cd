package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillboard/quillboard/internal/models"
)

type postsRepo struct{ pool *pgxpool.Pool }

func (r *postsRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts(title, body, author_id) VALUES($1,$2,$3)
		 RETURNING id, created_at`,
		p.Title, p.Body, p.AuthorID,
	).Scan(&p.ID, &p.CreatedAt)
	return p, mapErr(err, "post")
}

func (r *postsRepo) GetByID(ctx context.Context, id int64) (models.Post, error) {
	var p models.Post
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.title, p.body, p.created_at, p.author_id, u.username
		 FROM posts p JOIN users u ON u.id = p.author_id
		 WHERE p.id=$1`, id,
	).Scan(&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.AuthorID, &p.Author)
	return p, mapErr(err, "post")
}

func (r *postsRepo) Update(ctx context.Context, p models.Post) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE posts SET title=$2, body=$3 WHERE id=$1`,
		p.ID, p.Title, p.Body,
	)
	return mapErr(err, "post")
}

func (r *postsRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	return mapErr(err, "post")
}

func (r *postsRepo) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]models.Post, error) {
	return r.list(ctx,
		`SELECT p.id, p.title, p.body, p.created_at, p.author_id, u.username
		 FROM posts p JOIN users u ON u.id = p.author_id
		 WHERE p.author_id=$1
		 ORDER BY p.created_at DESC, p.id DESC LIMIT $2 OFFSET $3`,
		authorID, limit, offset)
}

func (r *postsRepo) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.list(ctx,
		`SELECT p.id, p.title, p.body, p.created_at, p.author_id, u.username
		 FROM posts p JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *postsRepo) list(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "post")
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.AuthorID, &p.Author); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postsRepo) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts WHERE author_id=$1`, authorID).Scan(&n)
	return n, mapErr(err, "post")
}

func (r *postsRepo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&n)
	return n, mapErr(err, "post")
}
