package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/store"
	"github.com/rs/zerolog"
)

const (
	excerptMaxLen     = 200
	wordsPerMinute    = 200
	minReadingMinutes = 1
)

// postService is the concrete implementation of PostService
type postService struct {
	store *store.Store
	log   zerolog.Logger
}

// newPostService creates a new PostService
func newPostService(st *store.Store, log zerolog.Logger) *postService {
	return &postService{
		store: st,
		log:   log.With().Str("service", "post").Logger(),
	}
}

// CreatePost publishes a new post. Body is Markdown source and html the
// sanitized rendered cache, both already validated by the caller. The tag set
// is capped at MaxPostTags; tags are created lazily on first use.
func (s *postService) CreatePost(ctx context.Context, authorID, categoryID int64, title, body, html string, media models.MediaRef, tags []string) (*models.Post, error) {
	media, err := normalizeMedia(media)
	if err != nil {
		return nil, err
	}
	if len(dedupeNames(tags)) > models.MaxPostTags {
		return nil, ErrTooManyTags
	}

	var created *models.Post
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.UserByID(authorID) == nil {
			return false
		}
		now := time.Now()
		post := models.Post{
			ID:             snap.Counters.NextPostID(),
			UserID:         authorID,
			CategoryID:     categoryID,
			Title:          title,
			Body:           body,
			HTML:           html,
			Excerpt:        excerpt(body),
			ReadingMinutes: readingMinutes(body),
			Media:          media,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		snap.Posts = append(snap.Posts, post)
		replaceTags(snap, post.ID, tags)
		created = &post
		return true
	})
	if created == nil {
		return nil, nil
	}

	s.log.Info().
		Int64("post_id", created.ID).
		Int64("user_id", authorID).
		Msg("Post created")

	return created, nil
}

// UpdatePost edits a post in place. The tag relation rows are fully replaced,
// never diffed.
func (s *postService) UpdatePost(ctx context.Context, postID, categoryID int64, title, body, html string, media models.MediaRef, tags []string) (*models.Post, error) {
	media, err := normalizeMedia(media)
	if err != nil {
		return nil, err
	}
	if len(dedupeNames(tags)) > models.MaxPostTags {
		return nil, ErrTooManyTags
	}

	var updated *models.Post
	s.store.Update(func(snap *models.Snapshot) bool {
		p := snap.PostByID(postID)
		if p == nil {
			return false
		}
		p.CategoryID = categoryID
		p.Title = title
		p.Body = body
		p.HTML = html
		p.Excerpt = excerpt(body)
		p.ReadingMinutes = readingMinutes(body)
		p.Media = media
		p.UpdatedAt = time.Now()
		replaceTags(snap, p.ID, tags)
		copied := *p
		updated = &copied
		return true
	})
	return updated, nil
}

// GetPost returns a single post annotated for the viewer, or (nil, nil) when
// the post is absent or hidden from this viewer.
func (s *postService) GetPost(ctx context.Context, id int64, viewer models.Viewer) (*models.PostView, error) {
	var view *models.PostView
	s.store.View(func(snap *models.Snapshot) {
		p := snap.PostByID(id)
		if p == nil || !viewer.CanSee(p.UserID, p.IsHidden) {
			return
		}
		v := buildPostView(snap, p, viewer)
		view = &v
	})
	return view, nil
}

// ToggleLike flips the like state for (user, post) and reports whether the
// like is now active. Toggling twice restores the original absence.
func (s *postService) ToggleLike(ctx context.Context, userID, postID int64) (bool, error) {
	active := false
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.PostByID(postID) == nil {
			return false
		}
		for i, l := range snap.Likes {
			if l.UserID == userID && l.PostID == postID {
				snap.Likes = append(snap.Likes[:i], snap.Likes[i+1:]...)
				return true
			}
		}
		snap.Likes = append(snap.Likes, models.Like{
			ID:        snap.Counters.NextLikeID(),
			UserID:    userID,
			PostID:    postID,
			CreatedAt: time.Now(),
		})
		active = true
		return true
	})
	return active, nil
}

// ToggleBookmark flips the bookmark state for (user, post).
func (s *postService) ToggleBookmark(ctx context.Context, userID, postID int64) (bool, error) {
	active := false
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.PostByID(postID) == nil {
			return false
		}
		for i, b := range snap.Bookmarks {
			if b.UserID == userID && b.PostID == postID {
				snap.Bookmarks = append(snap.Bookmarks[:i], snap.Bookmarks[i+1:]...)
				return true
			}
		}
		snap.Bookmarks = append(snap.Bookmarks, models.Bookmark{
			ID:        snap.Counters.NextBookmarkID(),
			UserID:    userID,
			PostID:    postID,
			CreatedAt: time.Now(),
		})
		active = true
		return true
	})
	return active, nil
}

// replaceTags swaps a post's tag relations as one logical unit: delete every
// existing row for the post, then insert the new set. Tag identity is the
// name, case-insensitively: a repeat use reuses the existing tag whatever
// slug it was minted with. A new tag whose base slug is already held by a
// differently-named tag gets a numeric suffix.
func replaceTags(snap *models.Snapshot, postID int64, names []string) {
	kept := snap.PostTags[:0]
	for _, pt := range snap.PostTags {
		if pt.PostID != postID {
			kept = append(kept, pt)
		}
	}
	snap.PostTags = kept

	for _, name := range dedupeNames(names) {
		base := models.Slugify(name)
		if base == "" {
			continue
		}
		tag := snap.TagByName(name)
		if tag == nil {
			slug := models.UniqueSlug(func(c string) bool { return snap.TagBySlug(c) != nil }, base)
			snap.Tags = append(snap.Tags, models.Tag{
				ID:        snap.Counters.NextTagID(),
				Slug:      slug,
				Name:      strings.TrimSpace(name),
				CreatedAt: time.Now(),
			})
			tag = &snap.Tags[len(snap.Tags)-1]
		}
		snap.PostTags = append(snap.PostTags, models.PostTag{PostID: postID, TagID: tag.ID})
	}
}

// dedupeNames drops blank and duplicate tag names while preserving order.
// Names dedupe case-insensitively, matching tag identity.
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if models.Slugify(name) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// normalizeMedia fills in the none default and rejects unknown types.
func normalizeMedia(media models.MediaRef) (models.MediaRef, error) {
	if media.Type == "" {
		media.Type = models.MediaNone
	}
	if !models.ValidMediaTypes[media.Type] {
		return models.MediaRef{}, ErrInvalidMedia
	}
	if media.Type == models.MediaNone {
		media.URL = ""
	}
	return media, nil
}

// excerpt takes the leading run of the Markdown source, cut on a word
// boundary, or on a rune boundary when no space precedes the cap.
func excerpt(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= excerptMaxLen {
		return body
	}
	end := excerptMaxLen
	for end > 0 && !utf8.RuneStart(body[end]) {
		end--
	}
	cut := body[:end]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}

// readingMinutes estimates reading time from the word count.
func readingMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := words / wordsPerMinute
	if minutes < minReadingMinutes {
		return minReadingMinutes
	}
	return minutes
}
