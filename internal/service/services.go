package service

import (
	"context"

	"github.com/community-publishing-engine/internal/config"
	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Invalid-state refusals. An operation that would violate an invariant
// returns one of these with state left unchanged; a missing id returns
// (nil, nil) and the caller decides the user-facing behavior.
var (
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailTaken        = errors.New("email already registered")
	ErrSlugTaken         = errors.New("slug already taken")
	ErrInvalidRole       = errors.New("unrecognized role")
	ErrInvalidStatus     = errors.New("unrecognized user status")
	ErrInvalidMedia      = errors.New("unrecognized media type")
	ErrInvalidTarget     = errors.New("unrecognized report target type")
	ErrInvalidReaction   = errors.New("unrecognized reaction type")
	ErrInvalidParent     = errors.New("parent comment missing or on another post")
	ErrTooManyTags       = errors.New("post exceeds the tag limit")
	ErrInvalidTransition = errors.New("invalid report status transition")
)

// UserService defines account operations
type UserService interface {
	Register(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	IssueVerificationToken(ctx context.Context, userID int64) (string, error)
	ConfirmEmail(ctx context.Context, token string) (*models.User, error)
	IssueResetToken(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, passwordHash string) (*models.User, error)
}

// PostService defines post lifecycle and per-post engagement operations
type PostService interface {
	CreatePost(ctx context.Context, authorID, categoryID int64, title, body, html string, media models.MediaRef, tags []string) (*models.Post, error)
	UpdatePost(ctx context.Context, postID, categoryID int64, title, body, html string, media models.MediaRef, tags []string) (*models.Post, error)
	GetPost(ctx context.Context, id int64, viewer models.Viewer) (*models.PostView, error)
	ToggleLike(ctx context.Context, userID, postID int64) (bool, error)
	ToggleBookmark(ctx context.Context, userID, postID int64) (bool, error)
}

// CommentService defines the comment tree operations
type CommentService interface {
	AddComment(ctx context.Context, authorID, postID int64, body string, parentID *int64) (*models.Comment, error)
	VisibleComments(ctx context.Context, postID int64, viewer models.Viewer) ([]models.CommentView, error)
	ToggleReaction(ctx context.Context, userID, commentID int64, reaction models.ReactionType) (bool, error)
}

// ModerationService defines visibility toggles, the report lifecycle and the
// audit log. Every mutation here appends an audit entry as a side effect.
type ModerationService interface {
	HidePost(ctx context.Context, actorID, postID int64, reason string) (bool, error)
	UnhidePost(ctx context.Context, actorID, postID int64) (bool, error)
	HideComment(ctx context.Context, actorID, commentID int64, reason string) (bool, error)
	UnhideComment(ctx context.Context, actorID, commentID int64) (bool, error)
	SetUserStatus(ctx context.Context, actorID, userID int64, status models.UserStatus) (bool, error)
	ChangeRole(ctx context.Context, actorID, userID int64, role models.Role) (bool, error)
	CreateReport(ctx context.Context, reporterID int64, target models.TargetType, targetID int64, reasonCode, reasonText string) (*models.Report, error)
	AssignReport(ctx context.Context, actorID, reportID, assigneeID int64) (*models.Report, error)
	ResolveReport(ctx context.Context, actorID, reportID int64, status models.ReportStatus) (*models.Report, error)
	AuditTrail(ctx context.Context, target models.TargetType, targetID int64, limit int) ([]models.ModerationAction, error)
}

// FeedService defines the category taxonomy, viewer-scoped feed queries and
// aggregate leaderboards
type FeedService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name, slug, description string) (*models.Category, error)
	FilterPosts(ctx context.Context, viewer models.Viewer, filter FeedFilter) ([]models.PostView, error)
	Trending(ctx context.Context, viewer models.Viewer, limit int) ([]models.PostView, error)
	TopCreators(ctx context.Context, limit int) ([]models.CreatorStat, error)
	PopularTags(ctx context.Context, limit int) ([]models.TagStat, error)
}

// Services holds all service interfaces
type Services struct {
	User       UserService
	Post       PostService
	Comment    CommentService
	Moderation ModerationService
	Feed       FeedService
}

// NewServices creates all services over the shared store
func NewServices(st *store.Store, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		User:       newUserService(st, log),
		Post:       newPostService(st, log),
		Comment:    newCommentService(st, log),
		Moderation: newModerationService(st, cfg, log),
		Feed:       newFeedService(st, log),
	}
}
