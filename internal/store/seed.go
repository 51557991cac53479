package store

import (
	"time"

	"github.com/community-publishing-engine/internal/models"
	"github.com/rs/zerolog"
)

// defaultCategories is the fixed set installed at first boot.
var defaultCategories = []struct {
	name        string
	slug        string
	description string
}{
	{"General", "general", "Anything that does not fit elsewhere"},
	{"Tutorials", "tutorials", "Step-by-step guides and walkthroughs"},
	{"Showcase", "showcase", "Share what you have built"},
	{"Questions", "questions", "Ask the community for help"},
	{"Announcements", "announcements", "News from the team"},
}

// seedCategories installs the default category set. It only runs while the
// collection is empty, so re-opening an existing store never re-seeds.
func seedCategories(snap *models.Snapshot, log zerolog.Logger) {
	if len(snap.Categories) > 0 {
		return
	}

	now := time.Now()
	for i, c := range defaultCategories {
		snap.Categories = append(snap.Categories, models.Category{
			ID:          snap.Counters.NextCategoryID(),
			Name:        c.name,
			Slug:        c.slug,
			Description: c.description,
			SortOrder:   i + 1,
			CreatedAt:   now,
		})
	}
	log.Info().Int("count", len(defaultCategories)).Msg("Seeded default categories")
}
