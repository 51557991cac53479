package migration_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/community-publishing-engine/internal/migration"
	"github.com/community-publishing-engine/internal/models"
	"github.com/rs/zerolog"
)

func run(t *testing.T, raw string) *models.Snapshot {
	t.Helper()
	snap, err := migration.Run([]byte(raw), zerolog.Nop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return snap
}

func TestRun_UnparseableDocument(t *testing.T) {
	if _, err := migration.Run([]byte("not json{"), zerolog.Nop()); err == nil {
		t.Fatal("Expected error for unparseable document")
	}
}

func TestRun_CoercesMalformedUserFields(t *testing.T) {
	snap := run(t, `{"users":[
		{"id":"7","username":" alice ","email":" Alice@Example.COM ","role":"superuser","status":"weird","email_verified":"nope"},
		{"id":2,"username":"bob","role":"moderator","status":"banned","email_verified":false}
	]}`)

	if len(snap.Users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(snap.Users))
	}

	alice := snap.Users[0]
	if alice.ID != 7 {
		t.Errorf("Expected string id coerced to 7, got %d", alice.ID)
	}
	if alice.Username != "alice" {
		t.Errorf("Expected trimmed username, got %q", alice.Username)
	}
	if alice.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %q", alice.Email)
	}
	if alice.Status != models.UserActive {
		t.Errorf("Unknown status should default to active, got %q", alice.Status)
	}
	// Legacy pre-verification records default to verified
	if !alice.EmailVerified {
		t.Error("Malformed email_verified should default to true")
	}

	bob := snap.Users[1]
	if bob.Role != models.RoleModerator || bob.Status != models.UserBanned {
		t.Errorf("Valid fields must survive, got role=%q status=%q", bob.Role, bob.Status)
	}
	if bob.EmailVerified {
		t.Error("Explicit false email_verified must be preserved")
	}
}

func TestRun_PromotesFirstUserToAdmin(t *testing.T) {
	snap := run(t, `{"users":[
		{"id":1,"username":"a","role":"superuser"},
		{"id":2,"username":"b","role":"user"}
	]}`)

	if snap.Users[0].Role != models.RoleAdmin {
		t.Errorf("Expected first user promoted to admin, got %q", snap.Users[0].Role)
	}
	if snap.Users[1].Role != models.RoleUser {
		t.Errorf("Second user should stay user, got %q", snap.Users[1].Role)
	}

	// An existing admin anywhere in the set suppresses the backfill
	snap = run(t, `{"users":[
		{"id":1,"username":"a","role":"user"},
		{"id":2,"username":"b","role":"admin"}
	]}`)
	if snap.Users[0].Role != models.RoleUser {
		t.Errorf("No promotion expected when an admin exists, got %q", snap.Users[0].Role)
	}
}

func TestRun_DanglingParentDemotedToRoot(t *testing.T) {
	snap := run(t, `{"comments":[
		{"id":5,"post_id":1,"user_id":1,"parent_comment_id":999,"depth":3,"body":"orphan"}
	]}`)

	c := snap.Comments[0]
	if c.ParentID != nil {
		t.Errorf("Expected nil parent, got %d", *c.ParentID)
	}
	if c.Depth != 0 {
		t.Errorf("Expected depth 0, got %d", c.Depth)
	}
	if c.Path != models.PathSegment(5) {
		t.Errorf("Expected root path, got %q", c.Path)
	}
}

func TestRun_CrossPostParentDemotedToRoot(t *testing.T) {
	snap := run(t, `{"comments":[
		{"id":1,"post_id":1,"user_id":1,"body":"on post 1"},
		{"id":2,"post_id":2,"user_id":1,"parent_comment_id":1,"body":"on post 2"}
	]}`)

	if snap.Comments[1].ParentID != nil {
		t.Error("Parent on a different post must be dropped")
	}
	if snap.Comments[1].Depth != 0 {
		t.Errorf("Expected depth 0, got %d", snap.Comments[1].Depth)
	}
}

func TestRun_RecomputesMissingPaths(t *testing.T) {
	snap := run(t, `{"comments":[
		{"id":1,"post_id":1,"user_id":1,"body":"root"},
		{"id":2,"post_id":1,"user_id":1,"parent_comment_id":1,"body":"reply"},
		{"id":3,"post_id":1,"user_id":1,"parent_comment_id":2,"body":"deep"}
	]}`)

	wantRoot := models.PathSegment(1)
	wantReply := models.ChildPath(wantRoot, 2)
	wantDeep := models.ChildPath(wantReply, 3)

	if snap.Comments[0].Path != wantRoot || snap.Comments[0].Depth != 0 {
		t.Errorf("Root: got path=%q depth=%d", snap.Comments[0].Path, snap.Comments[0].Depth)
	}
	if snap.Comments[1].Path != wantReply || snap.Comments[1].Depth != 1 {
		t.Errorf("Reply: got path=%q depth=%d", snap.Comments[1].Path, snap.Comments[1].Depth)
	}
	if snap.Comments[2].Path != wantDeep || snap.Comments[2].Depth != 2 {
		t.Errorf("Deep: got path=%q depth=%d", snap.Comments[2].Path, snap.Comments[2].Depth)
	}
}

func TestRun_ParentCycleBroken(t *testing.T) {
	snap := run(t, `{"comments":[
		{"id":1,"post_id":1,"user_id":1,"parent_comment_id":2,"body":"a"},
		{"id":2,"post_id":1,"user_id":1,"parent_comment_id":1,"body":"b"}
	]}`)

	roots := 0
	for _, c := range snap.Comments {
		if c.ParentID == nil {
			roots++
		}
	}
	if roots == 0 {
		t.Error("Cycle must be broken by demoting at least one comment to root")
	}
	for _, c := range snap.Comments {
		if c.Path == "" {
			t.Errorf("Comment %d left without a path", c.ID)
		}
	}
}

func TestRun_DedupesCategorySlugs(t *testing.T) {
	snap := run(t, `{"categories":[
		{"id":1,"name":"General","slug":"general"},
		{"id":2,"name":"Other General","slug":"general"},
		{"id":3,"name":"Show & Tell","slug":"BAD SLUG!"}
	]}`)

	if len(snap.Categories) != 2 {
		t.Fatalf("Expected duplicate slug dropped, got %d categories", len(snap.Categories))
	}
	if snap.Categories[0].ID != 1 {
		t.Error("First occurrence must win")
	}
	if snap.Categories[1].Slug != "show-tell" {
		t.Errorf("Expected re-slugified from name, got %q", snap.Categories[1].Slug)
	}
}

func TestRun_ReslugifiedTagGetsSuffixOnCollision(t *testing.T) {
	snap := run(t, `{"tags":[
		{"id":1,"name":"Go","slug":"go"},
		{"id":2,"name":"Go!","slug":"???"}
	]}`)

	if len(snap.Tags) != 2 {
		t.Fatalf("Expected both tags kept, got %d", len(snap.Tags))
	}
	if snap.Tags[1].Slug != "go-2" {
		t.Errorf("Expected numeric suffix on collision, got %q", snap.Tags[1].Slug)
	}
}

func TestRun_DropsOrphanRows(t *testing.T) {
	snap := run(t, `{
		"likes":[{"id":1,"user_id":1,"post_id":1},{"id":2,"user_id":0,"post_id":1},{"id":-1,"user_id":1,"post_id":1}],
		"bookmarks":[{"id":1,"user_id":1,"post_id":0}],
		"comment_reactions":[{"id":1,"user_id":1,"comment_id":1,"reaction_type":"volcano"},{"id":2,"user_id":1,"comment_id":-5}],
		"reports":[{"id":1,"reporter_user_id":1,"target_type":"post","target_id":0}],
		"moderation_actions":[{"id":1,"actor_user_id":1,"target_type":"user","target_id":3}]
	}`)

	if len(snap.Likes) != 1 {
		t.Errorf("Expected 1 like, got %d", len(snap.Likes))
	}
	if len(snap.Bookmarks) != 0 {
		t.Errorf("Expected 0 bookmarks, got %d", len(snap.Bookmarks))
	}
	if len(snap.Reactions) != 1 {
		t.Errorf("Expected 1 reaction, got %d", len(snap.Reactions))
	}
	// Unknown reaction types coerce to the default rather than dropping
	if snap.Reactions[0].Type != models.ReactionLike {
		t.Errorf("Expected default reaction type, got %q", snap.Reactions[0].Type)
	}
	if len(snap.Reports) != 0 {
		t.Errorf("Expected 0 reports, got %d", len(snap.Reports))
	}
	if len(snap.Actions) != 1 {
		t.Errorf("Expected 1 action, got %d", len(snap.Actions))
	}
}

func TestRun_RecomputesCounters(t *testing.T) {
	snap := run(t, `{
		"counters":{"users":1,"posts":90},
		"users":[{"id":41,"username":"a"}],
		"posts":[{"id":3,"user_id":41,"category_id":1,"title":"t"}]
	}`)

	if snap.Counters.Users != 41 {
		t.Errorf("Expected counter raised to max id 41, got %d", snap.Counters.Users)
	}
	if snap.Counters.Posts != 90 {
		t.Errorf("Stored counter above max id must be kept, got %d", snap.Counters.Posts)
	}
}

func TestRun_StampsSchemaVersion(t *testing.T) {
	snap := run(t, `{"schema_version":1}`)
	if snap.SchemaVersion != models.SchemaVersion {
		t.Errorf("Expected version %d, got %d", models.SchemaVersion, snap.SchemaVersion)
	}
}

func TestRun_FixedPoint(t *testing.T) {
	first := run(t, `{
		"schema_version":1,
		"users":[
			{"id":1,"username":"alice","email":"ALICE@x.com","role":"bogus"},
			{"id":2,"username":"bob","email":"bob@x.com","role":"user","status":"suspended"}
		],
		"categories":[{"id":1,"name":"General","slug":"general"},{"id":2,"name":"General Two","slug":""}],
		"tags":[{"id":1,"name":"go","slug":"go"}],
		"posts":[{"id":1,"user_id":1,"category_id":1,"title":"hello","body":"world","is_hidden":"yes"}],
		"post_tags":[{"post_id":1,"tag_id":1}],
		"comments":[
			{"id":1,"post_id":1,"user_id":2,"body":"root"},
			{"id":2,"post_id":1,"user_id":2,"parent_comment_id":7,"body":"orphan"}
		],
		"likes":[{"id":1,"user_id":2,"post_id":1}]
	}`)

	encodedOnce, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	second, err := migration.Run(encodedOnce, zerolog.Nop())
	if err != nil {
		t.Fatalf("Second Run failed: %v", err)
	}
	encodedTwice, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !bytes.Equal(encodedOnce, encodedTwice) {
		t.Errorf("Migrator is not a fixed point:\nfirst:  %s\nsecond: %s", encodedOnce, encodedTwice)
	}
}
