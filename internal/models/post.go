package models

import (
	"time"
)

// MediaType classifies an optional media attachment on a post
type MediaType string

const (
	MediaNone  MediaType = "none"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ValidMediaTypes defines allowed media types
var ValidMediaTypes = map[MediaType]bool{
	MediaNone:  true,
	MediaImage: true,
	MediaVideo: true,
}

// MaxPostTags caps how many tags a single post may carry
const MaxPostTags = 5

// MediaRef is an optional media attachment reference
type MediaRef struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url,omitempty"`
}

// Post represents a published entry. Body holds the Markdown source; HTML is
// the sanitized rendered cache supplied by the caller.
type Post struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CategoryID     int64     `json:"category_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	HTML           string    `json:"html"`
	Excerpt        string    `json:"excerpt"`
	ReadingMinutes int       `json:"reading_minutes"`
	Media          MediaRef  `json:"media"`
	IsHidden       bool      `json:"is_hidden"`
	HiddenReason   string    `json:"hidden_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Like represents an active like by a user on a post. At most one row exists
// per (user, post) pair; toggling removes the row instead of duplicating it.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark represents a saved post. Same one-row-per-pair rule as Like.
type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
