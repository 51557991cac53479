package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/store"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	store *store.Store
	log   zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(st *store.Store, log zerolog.Logger) *commentService {
	return &commentService{
		store: st,
		log:   log.With().Str("service", "comment").Logger(),
	}
}

// AddComment appends a comment to a post's tree. A reply whose parent is
// missing or belongs to a different post is rejected with state unchanged.
// Depth and materialized path derive from the parent at creation and never
// change afterwards.
func (s *commentService) AddComment(ctx context.Context, authorID, postID int64, body string, parentID *int64) (*models.Comment, error) {
	var created *models.Comment
	var opErr error
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.PostByID(postID) == nil || snap.UserByID(authorID) == nil {
			return false
		}

		depth := 0
		path := ""
		var parent *models.Comment
		if parentID != nil {
			parent = snap.CommentByID(*parentID)
			if parent == nil || parent.PostID != postID {
				opErr = ErrInvalidParent
				return false
			}
			depth = parent.Depth + 1
		}

		id := snap.Counters.NextCommentID()
		if parent != nil {
			path = models.ChildPath(parent.Path, id)
		} else {
			path = models.PathSegment(id)
		}

		var parentRef *int64
		if parent != nil {
			pid := parent.ID
			parentRef = &pid
		}
		comment := models.Comment{
			ID:        id,
			PostID:    postID,
			UserID:    authorID,
			ParentID:  parentRef,
			Depth:     depth,
			Path:      path,
			Body:      body,
			CreatedAt: time.Now(),
		}
		snap.Comments = append(snap.Comments, comment)
		created = &comment
		return true
	})
	if opErr != nil {
		return nil, opErr
	}
	if created == nil {
		return nil, nil
	}

	s.log.Info().
		Int64("comment_id", created.ID).
		Int64("post_id", postID).
		Int("depth", created.Depth).
		Msg("Comment added")

	return created, nil
}

// VisibleComments returns a post's comments in materialized-path order,
// which equals depth-first traversal with siblings in creation order. A
// hidden comment the viewer may not see prunes its entire subtree by path
// prefix, with no per-descendant re-evaluation.
func (s *commentService) VisibleComments(ctx context.Context, postID int64, viewer models.Viewer) ([]models.CommentView, error) {
	var out []models.CommentView
	s.store.View(func(snap *models.Snapshot) {
		var thread []*models.Comment
		for i := range snap.Comments {
			if snap.Comments[i].PostID == postID {
				thread = append(thread, &snap.Comments[i])
			}
		}
		sort.Slice(thread, func(i, j int) bool {
			return thread[i].Path < thread[j].Path
		})

		skipPrefix := ""
		for _, c := range thread {
			if skipPrefix != "" && strings.HasPrefix(c.Path, skipPrefix) {
				continue
			}
			skipPrefix = ""
			if !viewer.CanSee(c.UserID, c.IsHidden) {
				skipPrefix = c.Path + "."
				continue
			}
			out = append(out, buildCommentView(snap, c, viewer))
		}
	})
	return out, nil
}

// ToggleReaction flips one (user, comment, type) reaction row and reports
// whether it is now active. Distinct reaction types on the same comment
// coexist independently.
func (s *commentService) ToggleReaction(ctx context.Context, userID, commentID int64, reaction models.ReactionType) (bool, error) {
	if !models.ValidReactionTypes[reaction] {
		return false, ErrInvalidReaction
	}

	active := false
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.CommentByID(commentID) == nil {
			return false
		}
		for i, r := range snap.Reactions {
			if r.UserID == userID && r.CommentID == commentID && r.Type == reaction {
				snap.Reactions = append(snap.Reactions[:i], snap.Reactions[i+1:]...)
				return true
			}
		}
		snap.Reactions = append(snap.Reactions, models.CommentReaction{
			ID:        snap.Counters.NextReactionID(),
			CommentID: commentID,
			UserID:    userID,
			Type:      reaction,
			CreatedAt: time.Now(),
		})
		active = true
		return true
	})
	return active, nil
}
