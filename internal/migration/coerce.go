package migration

import (
	"strconv"
	"strings"
	"time"

	"github.com/community-publishing-engine/internal/models"
)

// Loose field accessors over a json-decoded document. Every accessor
// substitutes a typed default for a missing or malformed value so that a
// snapshot written by any prior version still loads.

func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func num(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func intval(m map[string]any, key string) int {
	return int(num(m, key))
}

func boolDef(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	case float64:
		return v != 0
	}
	return def
}

func ts(m map[string]any, key string) time.Time {
	if s, ok := m[key].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func optTS(m map[string]any, key string) *time.Time {
	if s, ok := m[key].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return &t
		}
	}
	return nil
}

func optID(m map[string]any, key string) *int64 {
	if n := num(m, key); n > 0 {
		return &n
	}
	return nil
}

// Per-entity coercers. Rows that are not even objects are discarded; every
// recognizable row is kept with its fields forced to the expected types.

func coerceCounters(v any) models.Counters {
	m := obj(v)
	if m == nil {
		return models.Counters{}
	}
	return models.Counters{
		Users:      num(m, "users"),
		Categories: num(m, "categories"),
		Tags:       num(m, "tags"),
		Posts:      num(m, "posts"),
		Comments:   num(m, "comments"),
		Likes:      num(m, "likes"),
		Bookmarks:  num(m, "bookmarks"),
		Reactions:  num(m, "reactions"),
		Reports:    num(m, "reports"),
		Actions:    num(m, "actions"),
	}
}

func coerceUsers(v any) []models.User {
	var users []models.User
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		role := models.Role(str(m, "role"))
		if !models.ValidRoles[role] {
			role = models.RoleUser
		}
		status := models.UserStatus(str(m, "status"))
		if !models.ValidUserStatuses[status] {
			status = models.UserActive
		}
		users = append(users, models.User{
			ID:              num(m, "id"),
			Username:        strings.TrimSpace(str(m, "username")),
			Email:           strings.ToLower(strings.TrimSpace(str(m, "email"))),
			PasswordHash:    str(m, "password_hash"),
			Role:            role,
			Status:          status,
			EmailVerified:   boolDef(m, "email_verified", true),
			VerifyTokenHash: str(m, "verify_token_hash"),
			VerifyTokenExp:  optTS(m, "verify_token_exp"),
			ResetTokenHash:  str(m, "reset_token_hash"),
			ResetTokenExp:   optTS(m, "reset_token_exp"),
			CreatedAt:       ts(m, "created_at"),
		})
	}
	return users
}

func coerceCategories(v any) []models.Category {
	var cats []models.Category
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		cats = append(cats, models.Category{
			ID:          num(m, "id"),
			Name:        strings.TrimSpace(str(m, "name")),
			Slug:        str(m, "slug"),
			Description: str(m, "description"),
			SortOrder:   intval(m, "sort_order"),
			CreatedAt:   ts(m, "created_at"),
		})
	}
	return cats
}

func coerceTags(v any) []models.Tag {
	var tags []models.Tag
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		tags = append(tags, models.Tag{
			ID:        num(m, "id"),
			Slug:      str(m, "slug"),
			Name:      strings.TrimSpace(str(m, "name")),
			CreatedAt: ts(m, "created_at"),
		})
	}
	return tags
}

func coercePosts(v any) []models.Post {
	var posts []models.Post
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		media := models.MediaRef{Type: models.MediaNone}
		if mm := obj(m["media"]); mm != nil {
			mt := models.MediaType(str(mm, "type"))
			if models.ValidMediaTypes[mt] && mt != models.MediaNone {
				media = models.MediaRef{Type: mt, URL: str(mm, "url")}
			}
		}
		posts = append(posts, models.Post{
			ID:             num(m, "id"),
			UserID:         num(m, "user_id"),
			CategoryID:     num(m, "category_id"),
			Title:          str(m, "title"),
			Body:           str(m, "body"),
			HTML:           str(m, "html"),
			Excerpt:        str(m, "excerpt"),
			ReadingMinutes: intval(m, "reading_minutes"),
			Media:          media,
			IsHidden:       boolDef(m, "is_hidden", false),
			HiddenReason:   str(m, "hidden_reason"),
			CreatedAt:      ts(m, "created_at"),
			UpdatedAt:      ts(m, "updated_at"),
		})
	}
	return posts
}

func coercePostTags(v any) []models.PostTag {
	var rels []models.PostTag
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		rels = append(rels, models.PostTag{
			PostID: num(m, "post_id"),
			TagID:  num(m, "tag_id"),
		})
	}
	return rels
}

func coerceComments(v any) []models.Comment {
	var comments []models.Comment
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		comments = append(comments, models.Comment{
			ID:           num(m, "id"),
			PostID:       num(m, "post_id"),
			UserID:       num(m, "user_id"),
			ParentID:     optID(m, "parent_comment_id"),
			Depth:        intval(m, "depth"),
			Path:         str(m, "path"),
			Body:         str(m, "body"),
			IsHidden:     boolDef(m, "is_hidden", false),
			HiddenReason: str(m, "hidden_reason"),
			CreatedAt:    ts(m, "created_at"),
		})
	}
	return comments
}

func coerceLikes(v any) []models.Like {
	var likes []models.Like
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		likes = append(likes, models.Like{
			ID:        num(m, "id"),
			UserID:    num(m, "user_id"),
			PostID:    num(m, "post_id"),
			CreatedAt: ts(m, "created_at"),
		})
	}
	return likes
}

func coerceBookmarks(v any) []models.Bookmark {
	var bookmarks []models.Bookmark
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		bookmarks = append(bookmarks, models.Bookmark{
			ID:        num(m, "id"),
			UserID:    num(m, "user_id"),
			PostID:    num(m, "post_id"),
			CreatedAt: ts(m, "created_at"),
		})
	}
	return bookmarks
}

func coerceReactions(v any) []models.CommentReaction {
	var reactions []models.CommentReaction
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		rt := models.ReactionType(str(m, "reaction_type"))
		if !models.ValidReactionTypes[rt] {
			rt = models.ReactionLike
		}
		reactions = append(reactions, models.CommentReaction{
			ID:        num(m, "id"),
			CommentID: num(m, "comment_id"),
			UserID:    num(m, "user_id"),
			Type:      rt,
			CreatedAt: ts(m, "created_at"),
		})
	}
	return reactions
}

func coerceReports(v any) []models.Report {
	var reports []models.Report
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		status := models.ReportStatus(str(m, "status"))
		if !models.ValidReportStatuses[status] {
			status = models.ReportOpen
		}
		tt := models.TargetType(str(m, "target_type"))
		if !models.ValidTargetTypes[tt] {
			tt = models.TargetPost
		}
		reports = append(reports, models.Report{
			ID:         num(m, "id"),
			ReporterID: num(m, "reporter_user_id"),
			TargetType: tt,
			TargetID:   num(m, "target_id"),
			ReasonCode: str(m, "reason_code"),
			ReasonText: str(m, "reason_text"),
			Status:     status,
			AssignedTo: num(m, "assigned_to_user_id"),
			CreatedAt:  ts(m, "created_at"),
			ResolvedAt: optTS(m, "resolved_at"),
		})
	}
	return reports
}

func coerceActions(v any) []models.ModerationAction {
	var actions []models.ModerationAction
	for _, item := range list(v) {
		m := obj(item)
		if m == nil {
			continue
		}
		tt := models.TargetType(str(m, "target_type"))
		if !models.ValidTargetTypes[tt] {
			tt = models.TargetPost
		}
		actions = append(actions, models.ModerationAction{
			ID:         num(m, "id"),
			ActorID:    num(m, "actor_user_id"),
			Action:     models.ActionType(str(m, "action_type")),
			TargetType: tt,
			TargetID:   num(m, "target_id"),
			Notes:      str(m, "notes"),
			CreatedAt:  ts(m, "created_at"),
		})
	}
	return actions
}
