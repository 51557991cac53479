package models

import (
	"fmt"
	"time"
)

// pathWidth is the zero-padded width of one materialized path segment. Fixed
// width keeps lexicographic path order identical to numeric pre-order.
const pathWidth = 10

// Comment represents a reply in a per-post tree. Path is the dot-joined,
// zero-padded chain of ancestor ids ending in the comment's own id.
type Comment struct {
	ID           int64     `json:"id"`
	PostID       int64     `json:"post_id"`
	UserID       int64     `json:"user_id"`
	ParentID     *int64    `json:"parent_comment_id,omitempty"`
	Depth        int       `json:"depth"`
	Path         string    `json:"path"`
	Body         string    `json:"body"`
	IsHidden     bool      `json:"is_hidden"`
	HiddenReason string    `json:"hidden_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PathSegment formats an id as one fixed-width path segment.
func PathSegment(id int64) string {
	return fmt.Sprintf("%0*d", pathWidth, id)
}

// ChildPath appends a comment id to its parent's materialized path.
func ChildPath(parentPath string, id int64) string {
	return parentPath + "." + PathSegment(id)
}

// ReactionType classifies a comment reaction
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionHeart ReactionType = "heart"
	ReactionFire  ReactionType = "fire"
	ReactionClap  ReactionType = "clap"
)

// ValidReactionTypes defines allowed reaction types
var ValidReactionTypes = map[ReactionType]bool{
	ReactionLike:  true,
	ReactionHeart: true,
	ReactionFire:  true,
	ReactionClap:  true,
}

// CommentReaction is an active reaction by a user on a comment. At most one
// row exists per (user, comment, type); distinct types may coexist.
type CommentReaction struct {
	ID        int64        `json:"id"`
	CommentID int64        `json:"comment_id"`
	UserID    int64        `json:"user_id"`
	Type      ReactionType `json:"reaction_type"`
	CreatedAt time.Time    `json:"created_at"`
}
