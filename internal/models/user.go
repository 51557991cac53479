package models

import (
	"time"
)

// Role is the permission level of a user
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleUser:      true,
	RoleModerator: true,
	RoleAdmin:     true,
}

// UserStatus is the account standing of a user
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserBanned    UserStatus = "banned"
)

// ValidUserStatuses defines allowed user statuses
var ValidUserStatuses = map[UserStatus]bool{
	UserActive:    true,
	UserSuspended: true,
	UserBanned:    true,
}

// User represents a registered account. Accounts are never deleted, only
// suspended or banned, so every historical reference stays resolvable.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"password_hash"`
	Role            Role       `json:"role"`
	Status          UserStatus `json:"status"`
	EmailVerified   bool       `json:"email_verified"`
	VerifyTokenHash string     `json:"verify_token_hash,omitempty"`
	VerifyTokenExp  *time.Time `json:"verify_token_exp,omitempty"`
	ResetTokenHash  string     `json:"reset_token_hash,omitempty"`
	ResetTokenExp   *time.Time `json:"reset_token_exp,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Viewer identifies who is asking on a read path. The zero value is an
// anonymous viewer.
type Viewer struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Anonymous is the viewer used for unauthenticated reads.
var Anonymous = Viewer{}

// ViewerFor builds a Viewer from a stored user record.
func ViewerFor(u *User) Viewer {
	if u == nil {
		return Anonymous
	}
	return Viewer{ID: u.ID, Role: u.Role}
}

// CanModerate reports whether the viewer holds moderator capability.
func (v Viewer) CanModerate() bool {
	return v.Role == RoleModerator || v.Role == RoleAdmin
}

// CanSee is the visibility predicate for hidden content: hidden records stay
// visible to their author and to moderators, invisible to everyone else.
func (v Viewer) CanSee(authorID int64, hidden bool) bool {
	if !hidden {
		return true
	}
	if v.CanModerate() {
		return true
	}
	return v.ID != 0 && v.ID == authorID
}
