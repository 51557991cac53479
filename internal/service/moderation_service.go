package service

import (
	"context"
	"time"

	"github.com/community-publishing-engine/internal/config"
	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/store"
	"github.com/rs/zerolog"
)

// moderationService is the concrete implementation of ModerationService
type moderationService struct {
	store        *store.Store
	auditFeedCap int
	log          zerolog.Logger
}

// newModerationService creates a new ModerationService
func newModerationService(st *store.Store, cfg *config.Config, log zerolog.Logger) *moderationService {
	return &moderationService{
		store:        st,
		auditFeedCap: cfg.Feed.AuditFeedCap,
		log:          log.With().Str("service", "moderation").Logger(),
	}
}

// appendAction writes one audit-log entry. Called inside every moderation
// mutation's update closure so the entry lands in the same snapshot write.
func appendAction(snap *models.Snapshot, actorID int64, action models.ActionType, target models.TargetType, targetID int64, notes string) {
	snap.Actions = append(snap.Actions, models.ModerationAction{
		ID:         snap.Counters.NextActionID(),
		ActorID:    actorID,
		Action:     action,
		TargetType: target,
		TargetID:   targetID,
		Notes:      notes,
		CreatedAt:  time.Now(),
	})
}

// HidePost flags a post hidden. Tree shape and ownership are untouched so
// the toggle is fully reversible.
func (s *moderationService) HidePost(ctx context.Context, actorID, postID int64, reason string) (bool, error) {
	done := false
	s.store.Update(func(snap *models.Snapshot) bool {
		p := snap.PostByID(postID)
		if p == nil {
			return false
		}
		p.IsHidden = true
		p.HiddenReason = reason
		appendAction(snap, actorID, models.ActionPostHide, models.TargetPost, postID, reason)
		done = true
		return true
	})
	return done, nil
}

// UnhidePost clears the hidden flag and reason.
func (s *moderationService) UnhidePost(ctx context.Context, actorID, postID int64) (bool, error) {
	done := false
	s.store.Update(func(snap *models.Snapshot) bool {
		p := snap.PostByID(postID)
		if p == nil {
			return false
		}
		p.IsHidden = false
		p.HiddenReason = ""
		appendAction(snap, actorID, models.ActionPostUnhide, models.TargetPost, postID, "")
		done = true
		return true
	})
	return done, nil
}

// HideComment flags a comment hidden. Path and depth never change, so the
// subtree survives the toggle intact.
func (s *moderationService) HideComment(ctx context.Context, actorID, commentID int64, reason string) (bool, error) {
	done := false
	s.store.Update(func(snap *models.Snapshot) bool {
		c := snap.CommentByID(commentID)
		if c == nil {
			return false
		}
		c.IsHidden = true
		c.HiddenReason = reason
		appendAction(snap, actorID, models.ActionCommentHide, models.TargetComment, commentID, reason)
		done = true
		return true
	})
	return done, nil
}

// UnhideComment clears the hidden flag and reason.
func (s *moderationService) UnhideComment(ctx context.Context, actorID, commentID int64) (bool, error) {
	done := false
	s.store.Update(func(snap *models.Snapshot) bool {
		c := snap.CommentByID(commentID)
		if c == nil {
			return false
		}
		c.IsHidden = false
		c.HiddenReason = ""
		appendAction(snap, actorID, models.ActionCommentUnhide, models.TargetComment, commentID, "")
		done = true
		return true
	})
	return done, nil
}

// SetUserStatus writes the account standing. There is no enforced transition
// lattice: suspend, ban and reactivate are all plain status writes.
func (s *moderationService) SetUserStatus(ctx context.Context, actorID, userID int64, status models.UserStatus) (bool, error) {
	if !models.ValidUserStatuses[status] {
		return false, ErrInvalidStatus
	}

	done := false
	s.store.Update(func(snap *models.Snapshot) bool {
		u := snap.UserByID(userID)
		if u == nil {
			return false
		}
		u.Status = status
		appendAction(snap, actorID, models.ActionType("user."+string(status)), models.TargetUser, userID, "")
		done = true
		return true
	})
	return done, nil
}

// ChangeRole grants a recognized role; anything else is refused with state
// unchanged.
func (s *moderationService) ChangeRole(ctx context.Context, actorID, userID int64, role models.Role) (bool, error) {
	if !models.ValidRoles[role] {
		return false, ErrInvalidRole
	}

	done := false
	s.store.Update(func(snap *models.Snapshot) bool {
		u := snap.UserByID(userID)
		if u == nil {
			return false
		}
		u.Role = role
		appendAction(snap, actorID, models.ActionRoleChange, models.TargetUser, userID, string(role))
		done = true
		return true
	})
	return done, nil
}

// CreateReport files a complaint in the open state.
func (s *moderationService) CreateReport(ctx context.Context, reporterID int64, target models.TargetType, targetID int64, reasonCode, reasonText string) (*models.Report, error) {
	if !models.ValidTargetTypes[target] {
		return nil, ErrInvalidTarget
	}

	var created *models.Report
	s.store.Update(func(snap *models.Snapshot) bool {
		report := models.Report{
			ID:         snap.Counters.NextReportID(),
			ReporterID: reporterID,
			TargetType: target,
			TargetID:   targetID,
			ReasonCode: reasonCode,
			ReasonText: reasonText,
			Status:     models.ReportOpen,
			CreatedAt:  time.Now(),
		}
		snap.Reports = append(snap.Reports, report)
		created = &report
		return true
	})

	s.log.Info().
		Int64("report_id", created.ID).
		Str("target_type", string(target)).
		Int64("target_id", targetID).
		Msg("Report filed")

	return created, nil
}

// AssignReport hands a report to a moderator. Assigning an open report
// promotes it to in_review as a side effect; terminal reports are refused.
func (s *moderationService) AssignReport(ctx context.Context, actorID, reportID, assigneeID int64) (*models.Report, error) {
	var assigned *models.Report
	var opErr error
	s.store.Update(func(snap *models.Snapshot) bool {
		r := snap.ReportByID(reportID)
		if r == nil {
			return false
		}
		if r.Status.Terminal() {
			opErr = ErrInvalidTransition
			return false
		}
		r.AssignedTo = assigneeID
		if r.Status == models.ReportOpen {
			r.Status = models.ReportInReview
		}
		appendAction(snap, actorID, models.ActionReportAssign, r.TargetType, r.TargetID, "")
		copied := *r
		assigned = &copied
		return true
	})
	if opErr != nil {
		return nil, opErr
	}
	return assigned, nil
}

// ResolveReport closes a report. Only resolved and dismissed are accepted as
// target statuses; anything else is refused without state change.
func (s *moderationService) ResolveReport(ctx context.Context, actorID, reportID int64, status models.ReportStatus) (*models.Report, error) {
	if !status.Terminal() {
		return nil, ErrInvalidTransition
	}

	var resolved *models.Report
	var opErr error
	s.store.Update(func(snap *models.Snapshot) bool {
		r := snap.ReportByID(reportID)
		if r == nil {
			return false
		}
		if r.Status.Terminal() {
			opErr = ErrInvalidTransition
			return false
		}
		now := time.Now()
		r.Status = status
		r.ResolvedAt = &now
		appendAction(snap, actorID, models.ActionType("report."+string(status)), r.TargetType, r.TargetID, "")
		copied := *r
		resolved = &copied
		return true
	})
	if opErr != nil {
		return nil, opErr
	}
	return resolved, nil
}

// AuditTrail returns the reverse-chronological audit feed for one target,
// capped for moderation UIs.
func (s *moderationService) AuditTrail(ctx context.Context, target models.TargetType, targetID int64, limit int) ([]models.ModerationAction, error) {
	if limit < 1 || limit > s.auditFeedCap {
		limit = s.auditFeedCap
	}

	var out []models.ModerationAction
	s.store.View(func(snap *models.Snapshot) {
		// The log is append-only, so walking backwards yields newest first.
		for i := len(snap.Actions) - 1; i >= 0 && len(out) < limit; i-- {
			a := snap.Actions[i]
			if a.TargetType == target && a.TargetID == targetID {
				out = append(out, a)
			}
		}
	})
	return out, nil
}
