package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/community-publishing-engine/internal/config"
	"github.com/community-publishing-engine/internal/database"
	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/service"
	"github.com/community-publishing-engine/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// newTestServices wires a full service stack over a throwaway backing file.
func newTestServices(t *testing.T) *service.Services {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state.json")
	file := database.NewSnapshotFile(path, zerolog.Nop())
	writer := database.NewWriter(file, 16, 1, zerolog.Nop())

	st, err := store.Open(file, writer, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	cfg := &config.Config{
		Store: config.StoreConfig{DataFile: path, WriteQueue: 16, WriteRetryMax: 1},
		Feed:  config.FeedConfig{AuditFeedCap: 100},
	}
	return service.NewServices(st, cfg, zerolog.Nop())
}

// registerUser creates an account and returns it. The first account in a
// fresh store comes back as admin.
func registerUser(t *testing.T, svc *service.Services, username string) *models.User {
	t.Helper()
	u, err := svc.User.Register(ctx, username, username+"@example.com", "hash-"+username)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

// createPost publishes a minimal post by the given author.
func createPost(t *testing.T, svc *service.Services, authorID int64, title string, tags ...string) *models.Post {
	t.Helper()
	p, err := svc.Post.CreatePost(ctx, authorID, 1, title, "body of "+title, "<p>"+title+"</p>", models.MediaRef{}, tags)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

// addComment appends a comment, optionally as a reply.
func addComment(t *testing.T, svc *service.Services, authorID, postID int64, body string, parentID *int64) *models.Comment {
	t.Helper()
	c, err := svc.Comment.AddComment(ctx, authorID, postID, body, parentID)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}
