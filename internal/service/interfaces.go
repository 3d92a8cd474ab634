// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/dealer-auth/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock -exclude_interfaces=AuthServiceWrapper,AccountServiceWrapper

// AuthService is the authentication core: registration, login, token
// refresh and revocation, and the password and email-verification flows.
type AuthService interface {
	// Register creates an active, unverified user. An absent or unknown role
	// falls back to models.DefaultRole.
	Register(ctx context.Context, registration models.Registration) (models.User, error)

	// Login checks the client's rate limit, the account lock and the
	// password, in that order, and opens a session on success.
	Login(ctx context.Context, credentials models.Credentials, client models.ClientInfo) (models.AuthResponse, error)

	// Refresh exchanges a refresh token for a new pair. The presented token
	// is invalid afterwards.
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Logout ends the session of refreshToken. A non-empty accessToken is
	// blacklisted until it would have expired anyway.
	Logout(ctx context.Context, refreshToken, accessToken string) error

	// LogoutAll ends every session of userID. It is idempotent.
	LogoutAll(ctx context.Context, userID string) error

	// VerifyToken reports whether token is a valid, non-revoked access token
	// of an existing user. Failure reasons are only logged.
	VerifyToken(ctx context.Context, token string) bool

	// Authenticate resolves an access token to the calling identity.
	Authenticate(ctx context.Context, token string) (models.Caller, error)

	PromoteToAdmin(ctx context.Context, userID string) (models.User, error)

	ChangePassword(ctx context.Context, caller models.Caller, request models.ChangePasswordRequest) error
	CreatePasswordResetToken(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, request models.ResetPasswordRequest) error

	CreateEmailVerificationToken(ctx context.Context, caller models.Caller) (string, error)
	VerifyEmail(ctx context.Context, token string) error
}

// AccountService serves the authenticated user's own profile and sessions.
type AccountService interface {
	Profile(ctx context.Context, caller models.Caller) (models.User, error)
	UpdateProfile(ctx context.Context, caller models.Caller, request models.ProfileUpdateRequest) (models.User, error)

	// ListSessions returns the caller's unexpired sessions, newest first.
	ListSessions(ctx context.Context, caller models.Caller) ([]models.Session, error)

	// RevokeSession deletes one of the caller's sessions. Sessions of other
	// users are reported as ErrForbidden.
	RevokeSession(ctx context.Context, caller models.Caller, sessionID string) error
}

// UserAdminService manages user accounts on behalf of administrators.
// Access control happens before these methods are called.
type UserAdminService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	UpdateUser(ctx context.Context, userID string, update models.UserUpdate) (models.User, error)
	SetRole(ctx context.Context, userID string, role models.Role) (models.User, error)
	SetActive(ctx context.Context, userID string, active bool) (models.User, error)

	// DeleteUser soft-deletes the user and ends its sessions.
	DeleteUser(ctx context.Context, userID string) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetAppName(ctx context.Context) string
}

// AuthServiceWrapper defines middleware composition for AuthService.
// Implementations wrap an existing AuthService to add behavior such as
// validating.
type AuthServiceWrapper interface {
	Wrap(AuthService) AuthService
}

// AccountServiceWrapper is the AccountService counterpart of
// AuthServiceWrapper.
type AccountServiceWrapper interface {
	Wrap(AccountService) AccountService
}
