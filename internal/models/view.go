package models

// Placeholder labels used when a referenced record no longer resolves.
// References can only dangle in legacy data; live operations never delete.
const (
	DeletedUserLabel     = "[deleted]"
	MissingCategoryLabel = "Uncategorized"
)

// PostView is a post annotated with viewer-relative read-time fields. The
// annotations are computed per request and never persisted.
type PostView struct {
	Post
	Author         string   `json:"author"`
	CategoryName   string   `json:"category_name"`
	Tags           []string `json:"tags,omitempty"`
	LikeCount      int      `json:"like_count"`
	CommentCount   int      `json:"comment_count"`
	LikedByMe      bool     `json:"liked_by_me"`
	BookmarkedByMe bool     `json:"bookmarked_by_me"`
}

// CommentView is a comment annotated for a specific viewer.
type CommentView struct {
	Comment
	Author      string               `json:"author"`
	Reactions   map[ReactionType]int `json:"reactions,omitempty"`
	MyReactions []ReactionType       `json:"my_reactions,omitempty"`
}

// CreatorStat is one row of the top-creators leaderboard.
type CreatorStat struct {
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	Posts         int    `json:"posts"`
	LikesReceived int    `json:"likes_received"`
}

// TagStat is one row of the popular-tags leaderboard.
type TagStat struct {
	Tag
	Posts int `json:"posts"`
}
