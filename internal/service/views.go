package service

import (
	"github.com/community-publishing-engine/internal/models"
)

// buildPostView assembles the viewer-relative read model for one post.
// Dangling references degrade to placeholder labels instead of erroring;
// they can only occur in legacy data since live operations never delete.
func buildPostView(snap *models.Snapshot, p *models.Post, viewer models.Viewer) models.PostView {
	view := models.PostView{
		Post:         *p,
		Author:       models.DeletedUserLabel,
		CategoryName: models.MissingCategoryLabel,
		Tags:         snap.TagsForPost(p.ID),
	}
	if u := snap.UserByID(p.UserID); u != nil {
		view.Author = u.Username
	}
	if c := snap.CategoryByID(p.CategoryID); c != nil {
		view.CategoryName = c.Name
	}

	for _, l := range snap.Likes {
		if l.PostID != p.ID {
			continue
		}
		view.LikeCount++
		if viewer.ID != 0 && l.UserID == viewer.ID {
			view.LikedByMe = true
		}
	}
	if viewer.ID != 0 {
		for _, b := range snap.Bookmarks {
			if b.PostID == p.ID && b.UserID == viewer.ID {
				view.BookmarkedByMe = true
				break
			}
		}
	}
	for i := range snap.Comments {
		c := &snap.Comments[i]
		if c.PostID == p.ID && viewer.CanSee(c.UserID, c.IsHidden) {
			view.CommentCount++
		}
	}
	return view
}

// buildCommentView assembles the viewer-relative read model for one comment.
func buildCommentView(snap *models.Snapshot, c *models.Comment, viewer models.Viewer) models.CommentView {
	view := models.CommentView{
		Comment: *c,
		Author:  models.DeletedUserLabel,
	}
	if u := snap.UserByID(c.UserID); u != nil {
		view.Author = u.Username
	}

	for _, r := range snap.Reactions {
		if r.CommentID != c.ID {
			continue
		}
		if view.Reactions == nil {
			view.Reactions = make(map[models.ReactionType]int)
		}
		view.Reactions[r.Type]++
		if viewer.ID != 0 && r.UserID == viewer.ID {
			view.MyReactions = append(view.MyReactions, r.Type)
		}
	}
	return view
}
