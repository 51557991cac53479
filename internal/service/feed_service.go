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

// MaxPageSize is the upper clamp on feed page sizes.
const MaxPageSize = 30

// FeedFilter narrows the post feed. Zero values mean "no constraint".
type FeedFilter struct {
	CategoryID int64
	TagSlug    string
	Query      string
}

// feedService is the concrete implementation of FeedService
type feedService struct {
	store *store.Store
	log   zerolog.Logger
}

// newFeedService creates a new FeedService
func newFeedService(st *store.Store, log zerolog.Logger) *feedService {
	return &feedService{
		store: st,
		log:   log.With().Str("service", "feed").Logger(),
	}
}

// Categories lists all categories in display order.
func (s *feedService) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	s.store.View(func(snap *models.Snapshot) {
		out = append(out, snap.Categories...)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateCategory adds a category to the taxonomy. An empty or malformed slug
// is derived from the name; a slug already in use is refused.
func (s *feedService) CreateCategory(ctx context.Context, name, slug, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if !models.ValidSlug(slug) {
		slug = models.Slugify(name)
		if slug == "" {
			slug = "category"
		}
	}

	var created *models.Category
	var opErr error
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.CategoryBySlug(slug) != nil {
			opErr = ErrSlugTaken
			return false
		}
		order := 0
		for i := range snap.Categories {
			if snap.Categories[i].SortOrder > order {
				order = snap.Categories[i].SortOrder
			}
		}
		cat := models.Category{
			ID:          snap.Counters.NextCategoryID(),
			Name:        name,
			Slug:        slug,
			Description: description,
			SortOrder:   order + 1,
			CreatedAt:   time.Now(),
		}
		snap.Categories = append(snap.Categories, cat)
		created = &cat
		return true
	})
	if opErr != nil {
		return nil, opErr
	}

	s.log.Info().
		Int64("category_id", created.ID).
		Str("slug", created.Slug).
		Msg("Category created")

	return created, nil
}

// FilterPosts returns the posts visible to the viewer, narrowed by category,
// tag membership and a case-insensitive substring query over a composed
// search blob (title, body, author, category, tags). The scan is linear; the
// corpus lives fully in memory. Results are newest first.
func (s *feedService) FilterPosts(ctx context.Context, viewer models.Viewer, filter FeedFilter) ([]models.PostView, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var out []models.PostView
	s.store.View(func(snap *models.Snapshot) {
		var tagPosts map[int64]bool
		if filter.TagSlug != "" {
			tagPosts = make(map[int64]bool)
			if tag := snap.TagBySlug(filter.TagSlug); tag != nil {
				for _, pt := range snap.PostTags {
					if pt.TagID == tag.ID {
						tagPosts[pt.PostID] = true
					}
				}
			}
		}

		for i := range snap.Posts {
			p := &snap.Posts[i]
			if !viewer.CanSee(p.UserID, p.IsHidden) {
				continue
			}
			if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
				continue
			}
			if tagPosts != nil && !tagPosts[p.ID] {
				continue
			}
			if query != "" && !strings.Contains(searchBlob(snap, p), query) {
				continue
			}
			out = append(out, buildPostView(snap, p, viewer))
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Trending ranks visible posts by like count, breaking ties by recency.
// Computed by full scan on demand; nothing is maintained incrementally.
func (s *feedService) Trending(ctx context.Context, viewer models.Viewer, limit int) ([]models.PostView, error) {
	views, err := s.FilterPosts(ctx, viewer, FeedFilter{})
	if err != nil {
		return nil, err
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].LikeCount != views[j].LikeCount {
			return views[i].LikeCount > views[j].LikeCount
		}
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// TopCreators ranks users by likes received on their visible posts, then by
// post count, then by seniority (lower id first).
func (s *feedService) TopCreators(ctx context.Context, limit int) ([]models.CreatorStat, error) {
	var stats []models.CreatorStat
	s.store.View(func(snap *models.Snapshot) {
		likesByPost := make(map[int64]int)
		for _, l := range snap.Likes {
			likesByPost[l.PostID]++
		}

		byUser := make(map[int64]*models.CreatorStat)
		for i := range snap.Posts {
			p := &snap.Posts[i]
			if p.IsHidden {
				continue
			}
			stat := byUser[p.UserID]
			if stat == nil {
				username := models.DeletedUserLabel
				if u := snap.UserByID(p.UserID); u != nil {
					username = u.Username
				}
				stat = &models.CreatorStat{UserID: p.UserID, Username: username}
				byUser[p.UserID] = stat
			}
			stat.Posts++
			stat.LikesReceived += likesByPost[p.ID]
		}

		for _, stat := range byUser {
			stats = append(stats, *stat)
		}
	})

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].LikesReceived != stats[j].LikesReceived {
			return stats[i].LikesReceived > stats[j].LikesReceived
		}
		if stats[i].Posts != stats[j].Posts {
			return stats[i].Posts > stats[j].Posts
		}
		return stats[i].UserID < stats[j].UserID
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// PopularTags ranks tags by how many visible posts carry them, then by name.
func (s *feedService) PopularTags(ctx context.Context, limit int) ([]models.TagStat, error) {
	var stats []models.TagStat
	s.store.View(func(snap *models.Snapshot) {
		hiddenPosts := make(map[int64]bool)
		for i := range snap.Posts {
			if snap.Posts[i].IsHidden {
				hiddenPosts[snap.Posts[i].ID] = true
			}
		}

		counts := make(map[int64]int)
		for _, pt := range snap.PostTags {
			if !hiddenPosts[pt.PostID] {
				counts[pt.TagID]++
			}
		}

		for i := range snap.Tags {
			if n := counts[snap.Tags[i].ID]; n > 0 {
				stats = append(stats, models.TagStat{Tag: snap.Tags[i], Posts: n})
			}
		}
	})

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Posts != stats[j].Posts {
			return stats[i].Posts > stats[j].Posts
		}
		return stats[i].Name < stats[j].Name
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// Paginate slices items for one page. Size clamps to [1, MaxPageSize] and
// page clamps into the valid range, so out-of-range input silently lands on
// the nearest real page instead of erroring or returning empty.
func Paginate[T any](items []T, page, size int) (pageItems []T, pageNum, pages int) {
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	pages = (len(items) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page, pages
}

// searchBlob composes the text searched by FilterPosts.
func searchBlob(snap *models.Snapshot, p *models.Post) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte(' ')
	b.WriteString(p.Body)
	if u := snap.UserByID(p.UserID); u != nil {
		b.WriteByte(' ')
		b.WriteString(u.Username)
	}
	if c := snap.CategoryByID(p.CategoryID); c != nil {
		b.WriteByte(' ')
		b.WriteString(c.Name)
	}
	for _, name := range snap.TagsForPost(p.ID) {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	return strings.ToLower(b.String())
}
