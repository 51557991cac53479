package service_test

import (
	"testing"

	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportLifecycle(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	author := registerUser(t, svc, "author")
	reporter := registerUser(t, svc, "reporter")
	p := createPost(t, svc, author.ID, "Suspicious")

	report, err := svc.Moderation.CreateReport(ctx, reporter.ID, models.TargetPost, p.ID, "spam", "looks automated")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, models.ReportOpen, report.Status)
	assert.Nil(t, report.ResolvedAt)

	// Assigning an open report promotes it to review
	assigned, err := svc.Moderation.AssignReport(ctx, admin.ID, report.ID, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, models.ReportInReview, assigned.Status)
	assert.Equal(t, admin.ID, assigned.AssignedTo)

	resolved, err := svc.Moderation.ResolveReport(ctx, admin.ID, report.ID, models.ReportResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, models.ReportResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// Terminal reports refuse further transitions
	_, err = svc.Moderation.AssignReport(ctx, admin.ID, report.ID, admin.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = svc.Moderation.ResolveReport(ctx, admin.ID, report.ID, models.ReportDismissed)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	// The lifecycle leaves an audit trail on the target, newest first
	trail, err := svc.Moderation.AuditTrail(ctx, models.TargetPost, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, models.ActionType("report.resolved"), trail[0].Action)
	assert.Equal(t, models.ActionReportAssign, trail[1].Action)
}

func TestResolveReport_DirectFromOpen(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	p := createPost(t, svc, admin.ID, "Post")

	report, err := svc.Moderation.CreateReport(ctx, admin.ID, models.TargetPost, p.ID, "spam", "")
	require.NoError(t, err)

	// Dismissal straight from open, without a review phase
	resolved, err := svc.Moderation.ResolveReport(ctx, admin.ID, report.ID, models.ReportDismissed)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, models.ReportDismissed, resolved.Status)
}

func TestResolveReport_RejectsNonTerminalTarget(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	p := createPost(t, svc, admin.ID, "Post")

	report, err := svc.Moderation.CreateReport(ctx, admin.ID, models.TargetPost, p.ID, "spam", "")
	require.NoError(t, err)

	_, err = svc.Moderation.ResolveReport(ctx, admin.ID, report.ID, models.ReportInReview)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = svc.Moderation.ResolveReport(ctx, admin.ID, report.ID, models.ReportOpen)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestCreateReport_InvalidTarget(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")

	_, err := svc.Moderation.CreateReport(ctx, admin.ID, "category", 1, "spam", "")
	assert.ErrorIs(t, err, service.ErrInvalidTarget)
}

func TestHidePost_AuditedAndReversible(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	author := registerUser(t, svc, "author")
	p := createPost(t, svc, author.ID, "Post")

	done, err := svc.Moderation.HidePost(ctx, admin.ID, p.ID, "tos violation")
	require.NoError(t, err)
	require.True(t, done)

	view, err := svc.Post.GetPost(ctx, p.ID, models.ViewerFor(admin))
	require.NoError(t, err)
	assert.True(t, view.IsHidden)
	assert.Equal(t, "tos violation", view.HiddenReason)

	done, err = svc.Moderation.UnhidePost(ctx, admin.ID, p.ID)
	require.NoError(t, err)
	require.True(t, done)

	view, err = svc.Post.GetPost(ctx, p.ID, models.Anonymous)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.False(t, view.IsHidden)
	assert.Empty(t, view.HiddenReason)

	trail, err := svc.Moderation.AuditTrail(ctx, models.TargetPost, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, models.ActionPostUnhide, trail[0].Action)
	assert.Equal(t, models.ActionPostHide, trail[1].Action)
	assert.Equal(t, admin.ID, trail[0].ActorID)
}

func TestHidePost_UnknownPost(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")

	done, err := svc.Moderation.HidePost(ctx, admin.ID, 99, "x")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSetUserStatus(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	member := registerUser(t, svc, "member")

	done, err := svc.Moderation.SetUserStatus(ctx, admin.ID, member.ID, models.UserSuspended)
	require.NoError(t, err)
	require.True(t, done)

	u, err := svc.User.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserSuspended, u.Status)

	// Reactivation is a plain status write, no transition rules apply
	done, err = svc.Moderation.SetUserStatus(ctx, admin.ID, member.ID, models.UserActive)
	require.NoError(t, err)
	require.True(t, done)

	_, err = svc.Moderation.SetUserStatus(ctx, admin.ID, member.ID, "shadowbanned")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	trail, err := svc.Moderation.AuditTrail(ctx, models.TargetUser, member.ID, 10)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, models.ActionType("user.active"), trail[0].Action)
	assert.Equal(t, models.ActionType("user.suspended"), trail[1].Action)
}

func TestChangeRole(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	member := registerUser(t, svc, "member")

	done, err := svc.Moderation.ChangeRole(ctx, admin.ID, member.ID, models.RoleModerator)
	require.NoError(t, err)
	require.True(t, done)

	u, err := svc.User.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, u.Role)

	_, err = svc.Moderation.ChangeRole(ctx, admin.ID, member.ID, "owner")
	assert.ErrorIs(t, err, service.ErrInvalidRole)

	trail, err := svc.Moderation.AuditTrail(ctx, models.TargetUser, member.ID, 10)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, models.ActionRoleChange, trail[0].Action)
	assert.Equal(t, string(models.RoleModerator), trail[0].Notes)
}

func TestAuditTrail_LimitAndOrder(t *testing.T) {
	svc := newTestServices(t)
	admin := registerUser(t, svc, "admin")
	author := registerUser(t, svc, "author")
	p := createPost(t, svc, author.ID, "Post")

	for i := 0; i < 5; i++ {
		_, err := svc.Moderation.HidePost(ctx, admin.ID, p.ID, "r")
		require.NoError(t, err)
		_, err = svc.Moderation.UnhidePost(ctx, admin.ID, p.ID)
		require.NoError(t, err)
	}

	trail, err := svc.Moderation.AuditTrail(ctx, models.TargetPost, p.ID, 3)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, models.ActionPostUnhide, trail[0].Action, "newest entry first")
	for i := 1; i < len(trail); i++ {
		assert.True(t, trail[i].ID < trail[i-1].ID, "ids descend with recency")
	}

	// Out-of-range limits clamp to the configured cap instead of erroring
	trail, err = svc.Moderation.AuditTrail(ctx, models.TargetPost, p.ID, -1)
	require.NoError(t, err)
	assert.Len(t, trail, 10)
}
