package models

import (
	"time"
)

// ReportStatus is the lifecycle state of a report
type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportInReview  ReportStatus = "in_review"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// ValidReportStatuses defines allowed report statuses
var ValidReportStatuses = map[ReportStatus]bool{
	ReportOpen:      true,
	ReportInReview:  true,
	ReportResolved:  true,
	ReportDismissed: true,
}

// Terminal reports whether the status admits no further transitions.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// TargetType identifies what kind of record a report or action points at
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
	TargetUser    TargetType = "user"
)

// ValidTargetTypes defines allowed report/action targets
var ValidTargetTypes = map[TargetType]bool{
	TargetPost:    true,
	TargetComment: true,
	TargetUser:    true,
}

// Report represents a user-filed complaint. Status only advances
// open → in_review → {resolved, dismissed}; assignment promotes open reports
// to in_review as a side effect.
type Report struct {
	ID         int64        `json:"id"`
	ReporterID int64        `json:"reporter_user_id"`
	TargetType TargetType   `json:"target_type"`
	TargetID   int64        `json:"target_id"`
	ReasonCode string       `json:"reason_code"`
	ReasonText string       `json:"reason_text,omitempty"`
	Status     ReportStatus `json:"status"`
	AssignedTo int64        `json:"assigned_to_user_id,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

// ActionType names an entry in the moderation audit log
type ActionType string

const (
	ActionPostHide      ActionType = "post.hide"
	ActionPostUnhide    ActionType = "post.unhide"
	ActionCommentHide   ActionType = "comment.hide"
	ActionCommentUnhide ActionType = "comment.unhide"
	ActionRoleChange    ActionType = "user.role_change"
	ActionReportAssign  ActionType = "report.assigned"
)

// ModerationAction is one append-only audit log entry. Entries are never
// mutated or deleted.
type ModerationAction struct {
	ID         int64      `json:"id"`
	ActorID    int64      `json:"actor_user_id"`
	Action     ActionType `json:"action_type"`
	TargetType TargetType `json:"target_type"`
	TargetID   int64      `json:"target_id"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
