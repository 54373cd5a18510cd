package models

import "time"

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  int64     `json:"author_id"`

	// Author is the author's username, filled on reads that join users.
	Author string `json:"author,omitempty"`
}
