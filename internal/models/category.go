package models

import (
	"time"
)

// Category represents a posting category. Categories are seeded once at first
// boot; slugs are unique across the set.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tag represents a free-form label attached to posts. Tags are created lazily
// on first use; lookup is by unique slug.
type Tag struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PostTag links a post and a tag. The rows for a post are replaced as a whole
// whenever its tag set changes.
type PostTag struct {
	PostID int64 `json:"post_id"`
	TagID  int64 `json:"tag_id"`
}
