package migration

import (
	"encoding/json"

	"github.com/community-publishing-engine/internal/models"
	"github.com/rs/zerolog"
)

// Run upgrades a raw backing-file document of any prior schema version into
// the current in-memory shape. Malformed fields are coerced to typed
// defaults, structurally invalid rows are repaired or dropped, and the
// result is stamped with the current schema version. Run is idempotent:
// feeding it an already-current snapshot reproduces the same entity set.
//
// The only error is an unparseable document; the caller falls back to fresh
// empty state in that case.
func Run(raw []byte, log zerolog.Logger) (*models.Snapshot, error) {
	log = log.With().Str("component", "migration").Logger()

	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}

	snap := models.NewSnapshot()
	snap.Counters = coerceCounters(root["counters"])
	snap.Users = coerceUsers(root["users"])
	snap.Categories = coerceCategories(root["categories"])
	snap.Tags = coerceTags(root["tags"])
	snap.Posts = coercePosts(root["posts"])
	snap.PostTags = coercePostTags(root["post_tags"])
	snap.Comments = coerceComments(root["comments"])
	snap.Likes = coerceLikes(root["likes"])
	snap.Bookmarks = coerceBookmarks(root["bookmarks"])
	snap.Reactions = coerceReactions(root["comment_reactions"])
	snap.Reports = coerceReports(root["reports"])
	snap.Actions = coerceActions(root["moderation_actions"])

	ensureAdmin(snap, log)
	repairCategorySlugs(snap, log)
	repairTagSlugs(snap, log)
	repairCommentTree(snap, log)
	dropOrphanRows(snap, log)
	recomputeCounters(snap)

	fromVersion := int(num(root, "schema_version"))
	if fromVersion != models.SchemaVersion {
		log.Info().
			Int("from_version", fromVersion).
			Int("to_version", models.SchemaVersion).
			Msg("Snapshot migrated")
	}
	return snap, nil
}

// ensureAdmin backfills the bootstrap admin: if no user holds the admin role,
// the earliest-created user (stored first) is promoted.
func ensureAdmin(snap *models.Snapshot, log zerolog.Logger) {
	if len(snap.Users) == 0 {
		return
	}
	for i := range snap.Users {
		if snap.Users[i].Role == models.RoleAdmin {
			return
		}
	}
	snap.Users[0].Role = models.RoleAdmin
	log.Info().Int64("user_id", snap.Users[0].ID).Msg("Promoted first user to admin")
}

// repairCategorySlugs de-duplicates categories by slug keeping the first
// occurrence, and re-slugifies missing or invalid slugs from the name.
func repairCategorySlugs(snap *models.Snapshot, log zerolog.Logger) {
	seen := make(map[string]bool)
	kept := make([]models.Category, 0, len(snap.Categories))
	dropped := 0

	for _, c := range snap.Categories {
		if models.ValidSlug(c.Slug) {
			if seen[c.Slug] {
				dropped++
				continue
			}
		} else {
			base := models.Slugify(c.Name)
			if base == "" {
				base = "category"
			}
			c.Slug = models.UniqueSlug(func(s string) bool { return seen[s] }, base)
		}
		seen[c.Slug] = true
		kept = append(kept, c)
	}

	snap.Categories = kept
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped duplicate category slugs")
	}
}

// repairTagSlugs applies the same dedupe/re-slugify pass to tags.
func repairTagSlugs(snap *models.Snapshot, log zerolog.Logger) {
	seen := make(map[string]bool)
	kept := make([]models.Tag, 0, len(snap.Tags))
	dropped := 0

	for _, t := range snap.Tags {
		if models.ValidSlug(t.Slug) {
			if seen[t.Slug] {
				dropped++
				continue
			}
		} else {
			base := models.Slugify(t.Name)
			if base == "" {
				base = "tag"
			}
			t.Slug = models.UniqueSlug(func(s string) bool { return seen[s] }, base)
		}
		seen[t.Slug] = true
		kept = append(kept, t)
	}

	snap.Tags = kept
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped duplicate tag slugs")
	}
}

// repairCommentTree demotes comments whose parent is missing or belongs to a
// different post back to root, then recomputes every depth and materialized
// path from the repaired parent chain. Parent cycles in corrupt data are
// broken by demoting the re-entered comment to root.
func repairCommentTree(snap *models.Snapshot, log zerolog.Logger) {
	byID := make(map[int64]*models.Comment, len(snap.Comments))
	for i := range snap.Comments {
		byID[snap.Comments[i].ID] = &snap.Comments[i]
	}

	demoted := 0
	for i := range snap.Comments {
		c := &snap.Comments[i]
		if c.ParentID == nil {
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok || parent.PostID != c.PostID {
			c.ParentID = nil
			demoted++
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int64]int, len(snap.Comments))

	var fix func(c *models.Comment)
	fix = func(c *models.Comment) {
		switch state[c.ID] {
		case done:
			return
		case visiting:
			c.ParentID = nil
			demoted++
		}
		state[c.ID] = visiting
		if c.ParentID == nil {
			c.Depth = 0
			c.Path = models.PathSegment(c.ID)
		} else {
			parent := byID[*c.ParentID]
			fix(parent)
			c.Depth = parent.Depth + 1
			c.Path = models.ChildPath(parent.Path, c.ID)
		}
		state[c.ID] = done
	}
	for i := range snap.Comments {
		fix(&snap.Comments[i])
	}

	if demoted > 0 {
		log.Warn().Int("demoted", demoted).Msg("Reset comments with dangling parents to root")
	}
}

// dropOrphanRows removes relation and event rows whose own id or foreign
// keys are not positive.
func dropOrphanRows(snap *models.Snapshot, log zerolog.Logger) {
	dropped := 0

	likes := snap.Likes[:0]
	for _, l := range snap.Likes {
		if l.ID > 0 && l.UserID > 0 && l.PostID > 0 {
			likes = append(likes, l)
		} else {
			dropped++
		}
	}
	snap.Likes = likes

	bookmarks := snap.Bookmarks[:0]
	for _, b := range snap.Bookmarks {
		if b.ID > 0 && b.UserID > 0 && b.PostID > 0 {
			bookmarks = append(bookmarks, b)
		} else {
			dropped++
		}
	}
	snap.Bookmarks = bookmarks

	reactions := snap.Reactions[:0]
	for _, r := range snap.Reactions {
		if r.ID > 0 && r.UserID > 0 && r.CommentID > 0 {
			reactions = append(reactions, r)
		} else {
			dropped++
		}
	}
	snap.Reactions = reactions

	reports := snap.Reports[:0]
	for _, r := range snap.Reports {
		if r.ID > 0 && r.ReporterID > 0 && r.TargetID > 0 {
			reports = append(reports, r)
		} else {
			dropped++
		}
	}
	snap.Reports = reports

	actions := snap.Actions[:0]
	for _, a := range snap.Actions {
		if a.ID > 0 && a.ActorID > 0 && a.TargetID > 0 {
			actions = append(actions, a)
		} else {
			dropped++
		}
	}
	snap.Actions = actions

	rels := snap.PostTags[:0]
	for _, pt := range snap.PostTags {
		if pt.PostID > 0 && pt.TagID > 0 {
			rels = append(rels, pt)
		} else {
			dropped++
		}
	}
	snap.PostTags = rels

	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped rows with unresolvable foreign keys")
	}
}

// recomputeCounters re-derives every id counter as max(stored counter,
// max existing id).
func recomputeCounters(snap *models.Snapshot) {
	c := &snap.Counters
	for _, u := range snap.Users {
		if u.ID > c.Users {
			c.Users = u.ID
		}
	}
	for _, cat := range snap.Categories {
		if cat.ID > c.Categories {
			c.Categories = cat.ID
		}
	}
	for _, t := range snap.Tags {
		if t.ID > c.Tags {
			c.Tags = t.ID
		}
	}
	for _, p := range snap.Posts {
		if p.ID > c.Posts {
			c.Posts = p.ID
		}
	}
	for _, cm := range snap.Comments {
		if cm.ID > c.Comments {
			c.Comments = cm.ID
		}
	}
	for _, l := range snap.Likes {
		if l.ID > c.Likes {
			c.Likes = l.ID
		}
	}
	for _, b := range snap.Bookmarks {
		if b.ID > c.Bookmarks {
			c.Bookmarks = b.ID
		}
	}
	for _, r := range snap.Reactions {
		if r.ID > c.Reactions {
			c.Reactions = r.ID
		}
	}
	for _, r := range snap.Reports {
		if r.ID > c.Reports {
			c.Reports = r.ID
		}
	}
	for _, a := range snap.Actions {
		if a.ID > c.Actions {
			c.Actions = a.ID
		}
	}
}
