// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/dealer-auth/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists user accounts. Lookups ignore soft-deleted users
// and email/username uniqueness is enforced among non-deleted users only.
type UserRepository interface {
	// CreateUser stores user and returns it as persisted. Returns
	// ErrEmailAlreadyExists or ErrUsernameAlreadyExists on conflicts.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	FindUserByID(ctx context.Context, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)

	// UpdateUser applies the non-nil fields of update and returns the
	// resulting user.
	UpdateUser(ctx context.Context, id string, update models.UserUpdate, at time.Time) (models.User, error)

	// UpdatePassword replaces the password hash and deletes every session of
	// the user in one atomic step.
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error

	SetRole(ctx context.Context, id string, role models.Role, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error

	// SoftDelete deactivates the user, marks it deleted and drops its
	// sessions.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// RecordLoginFailure increments the failed attempt counter and, when the
	// new value reaches maxAttempts, sets locked_until to lockUntil. Both
	// happen in a single update. The updated user is returned.
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil, at time.Time) (models.User, error)

	// RecordLoginSuccess resets the failed attempt counter, clears the lock
	// and stamps the last login.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
}

// SessionRepository persists refresh-token sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) (models.Session, error)
	FindSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
	FindSessionByID(ctx context.Context, id string) (models.Session, error)

	// ListSessionsByUser returns the sessions of userID, newest first. A
	// non-zero activeAt excludes sessions expired at that moment.
	ListSessionsByUser(ctx context.Context, userID string, activeAt time.Time) ([]models.Session, error)

	// RotateSession swaps the refresh token of a session only if the stored
	// token still equals rotation.OldToken. Returns ErrStaleSession when it
	// does not, which is what a replayed refresh token produces.
	RotateSession(ctx context.Context, rotation models.SessionRotation) error

	DeleteSession(ctx context.Context, id string) error
	DeleteSessionByToken(ctx context.Context, refreshToken string) error
	DeleteSessionsByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// PasswordResetRepository persists single-use password reset tokens.
type PasswordResetRepository interface {
	CreateResetToken(ctx context.Context, token models.PasswordResetToken) error

	// FindResetToken returns the token whether or not it was used.
	FindResetToken(ctx context.Context, token string) (models.PasswordResetToken, error)

	// ResetPassword marks the token used, replaces the user's password hash
	// and deletes the user's sessions atomically. Returns
	// ErrTokenAlreadyUsed if the token was consumed concurrently.
	ResetPassword(ctx context.Context, tokenID, userID, passwordHash string, at time.Time) error

	// DeleteExpiredResetTokens removes tokens expired before the given
	// moment as well as used ones.
	DeleteExpiredResetTokens(ctx context.Context, before time.Time) (int64, error)
}

// EmailVerificationRepository persists single-use email verification
// tokens.
type EmailVerificationRepository interface {
	CreateVerificationToken(ctx context.Context, token models.EmailVerificationToken) error
	FindVerificationToken(ctx context.Context, token string) (models.EmailVerificationToken, error)

	// VerifyEmail marks the token used and the user's email verified
	// atomically. Returns ErrTokenAlreadyUsed if the token was consumed
	// concurrently.
	VerifyEmail(ctx context.Context, tokenID, userID string, at time.Time) error

	DeleteExpiredVerificationTokens(ctx context.Context, before time.Time) (int64, error)
}
