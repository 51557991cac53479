package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	verifyTokenTTL = 48 * time.Hour
	resetTokenTTL  = 2 * time.Hour
)

// userService is the concrete implementation of UserService
type userService struct {
	store *store.Store
	log   zerolog.Logger
}

// newUserService creates a new UserService
func newUserService(st *store.Store, log zerolog.Logger) *userService {
	return &userService{
		store: st,
		log:   log.With().Str("service", "user").Logger(),
	}
}

// Register creates an account. The password hash is supplied by the caller;
// the engine never sees plaintext credentials. The first account ever created
// is promoted to admin.
func (s *userService) Register(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var created *models.User
	var opErr error
	s.store.Update(func(snap *models.Snapshot) bool {
		if snap.UserByUsername(username) != nil {
			opErr = ErrUsernameTaken
			return false
		}
		if snap.UserByEmail(email) != nil {
			opErr = ErrEmailTaken
			return false
		}

		role := models.RoleUser
		if len(snap.Users) == 0 {
			role = models.RoleAdmin
		}
		user := models.User{
			ID:           snap.Counters.NextUserID(),
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
			Status:       models.UserActive,
			CreatedAt:    time.Now(),
		}
		snap.Users = append(snap.Users, user)
		created = &user
		return true
	})
	if opErr != nil {
		return nil, opErr
	}

	s.log.Info().
		Int64("user_id", created.ID).
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Msg("User registered")

	return created, nil
}

// GetByID returns a user by id, or (nil, nil) when absent.
func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var found *models.User
	s.store.View(func(snap *models.Snapshot) {
		if u := snap.UserByID(id); u != nil {
			copied := *u
			found = &copied
		}
	})
	return found, nil
}

// GetByUsername returns a user by case-insensitive username.
func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var found *models.User
	s.store.View(func(snap *models.Snapshot) {
		if u := snap.UserByUsername(username); u != nil {
			copied := *u
			found = &copied
		}
	})
	return found, nil
}

// GetByEmail returns a user by normalized email.
func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var found *models.User
	s.store.View(func(snap *models.Snapshot) {
		if u := snap.UserByEmail(email); u != nil {
			copied := *u
			found = &copied
		}
	})
	return found, nil
}

// IssueVerificationToken mints an email-verification token for the user.
// Only the token hash is persisted; the raw value goes to the mail pipeline.
// Returns "" when the user does not exist.
func (s *userService) IssueVerificationToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.New().String()
	exp := time.Now().Add(verifyTokenTTL)

	issued := false
	s.store.Update(func(snap *models.Snapshot) bool {
		u := snap.UserByID(userID)
		if u == nil {
			return false
		}
		u.VerifyTokenHash = hashToken(token)
		u.VerifyTokenExp = &exp
		issued = true
		return true
	})
	if !issued {
		return "", nil
	}
	return token, nil
}

// ConfirmEmail consumes a verification token. An unknown or expired token
// returns (nil, nil).
func (s *userService) ConfirmEmail(ctx context.Context, token string) (*models.User, error) {
	hashed := hashToken(token)
	now := time.Now()

	var confirmed *models.User
	s.store.Update(func(snap *models.Snapshot) bool {
		for i := range snap.Users {
			u := &snap.Users[i]
			if u.VerifyTokenHash != hashed || u.VerifyTokenExp == nil || u.VerifyTokenExp.Before(now) {
				continue
			}
			u.EmailVerified = true
			u.VerifyTokenHash = ""
			u.VerifyTokenExp = nil
			copied := *u
			confirmed = &copied
			return true
		}
		return false
	})
	return confirmed, nil
}

// IssueResetToken mints a password-reset token for the account behind the
// given email. Returns "" when no such account exists.
func (s *userService) IssueResetToken(ctx context.Context, email string) (string, error) {
	token := uuid.New().String()
	exp := time.Now().Add(resetTokenTTL)

	issued := false
	s.store.Update(func(snap *models.Snapshot) bool {
		u := snap.UserByEmail(email)
		if u == nil {
			return false
		}
		u.ResetTokenHash = hashToken(token)
		u.ResetTokenExp = &exp
		issued = true
		return true
	})
	if !issued {
		return "", nil
	}
	return token, nil
}

// ResetPassword consumes a reset token and installs the new password hash.
func (s *userService) ResetPassword(ctx context.Context, token, passwordHash string) (*models.User, error) {
	hashed := hashToken(token)
	now := time.Now()

	var updated *models.User
	s.store.Update(func(snap *models.Snapshot) bool {
		for i := range snap.Users {
			u := &snap.Users[i]
			if u.ResetTokenHash != hashed || u.ResetTokenExp == nil || u.ResetTokenExp.Before(now) {
				continue
			}
			u.PasswordHash = passwordHash
			u.ResetTokenHash = ""
			u.ResetTokenExp = nil
			copied := *u
			updated = &copied
			return true
		}
		return false
	})
	return updated, nil
}

// hashToken stores tokens one-way so a leaked snapshot cannot be replayed.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
