// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/crypto"
	"github.com/MKhiriev/dealer-auth/internal/limiter"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/internal/store"
	"github.com/MKhiriev/dealer-auth/internal/token"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
)

// loginKeyPrefix namespaces login attempts in the rate limiter.
const loginKeyPrefix = "login:"

// Security bundles the in-process collaborators of the auth core.
type Security struct {
	Codec     *token.Codec
	Limiter   *limiter.FixedWindow
	Blacklist *limiter.Blacklist
	Hasher    crypto.PasswordHasher
	Tokens    crypto.TokenGenerator
	IDs       utils.IDGenerator

	// Now is the clock of every expiry decision. Defaults to time.Now.
	Now func() time.Time
}

// authService is the concrete implementation of AuthService.
//
// It keeps no mutable state of its own: the limiter and blacklist guard
// their maps, and every multi-record change is a single repository call.
type authService struct {
	users         store.UserRepository
	sessions      store.SessionRepository
	resets        store.PasswordResetRepository
	verifications store.EmailVerificationRepository

	codec     *token.Codec
	limiter   *limiter.FixedWindow
	blacklist *limiter.Blacklist
	hasher    crypto.PasswordHasher
	tokens    crypto.TokenGenerator
	ids       utils.IDGenerator
	now       func() time.Time

	cfg     config.Auth
	metrics metrics.Recorder
	logger  *logger.Logger
}

// NewAuthService constructs the auth core over storages.
//
// The returned service is safe for concurrent use.
func NewAuthService(storages *store.Storages, security Security, cfg config.Auth, recorder metrics.Recorder, logger *logger.Logger) AuthService {
	now := security.Now
	if now == nil {
		now = time.Now
	}
	if recorder == nil {
		recorder = metrics.Nop()
	}

	return &authService{
		users:         storages.UserRepository,
		sessions:      storages.SessionRepository,
		resets:        storages.PasswordResetRepository,
		verifications: storages.EmailVerificationRepository,
		codec:         security.Codec,
		limiter:       security.Limiter,
		blacklist:     security.Blacklist,
		hasher:        security.Hasher,
		tokens:        security.Tokens,
		ids:           security.IDs,
		now:           now,
		cfg:           cfg,
		metrics:       recorder,
		logger:        logger,
	}
}

// Register creates a new user account.
//
// Returns the persisted user or:
//   - ErrDuplicateEmail / ErrDuplicateUsername if either is taken.
//   - ErrWeakPassword if the password is longer than bcrypt accepts.
//   - A wrapped error if hashing or storage fails.
func (a *authService) Register(ctx context.Context, registration models.Registration) (models.User, error) {
	log := logger.FromContext(ctx)

	role := models.RoleOrDefault(registration.Role)
	if _, known := models.ParseRole(registration.Role); registration.Role != "" && !known {
		log.Warn().Str("requested_role", registration.Role).Str("role", role.String()).Msg("unrecognized role replaced with default")
	}

	hash, err := a.hashPassword(registration.Password)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return models.User{}, err
	}

	now := a.now()
	user := models.User{
		ID:           a.ids.Generate(),
		Email:        normalizeEmail(registration.Email),
		Username:     strings.TrimSpace(registration.Username),
		FullName:     strings.TrimSpace(registration.FullName),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := a.users.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("email", user.Email).Str("username", user.Username).Msg("user creation ended with error")
		return models.User{}, mapStoreError("user creation ended with error", err)
	}

	a.metrics.RecordRegistration()
	log.Info().Str("user_id", created.ID).Str("role", created.Role.String()).Msg("user registered")

	return created, nil
}

// Login authenticates a user and opens a session.
//
// The checks run strictly in this order: client rate limit, user lookup,
// account lock, password, account status. An unknown email and a wrong
// password both yield ErrInvalidCredentials.
func (a *authService) Login(ctx context.Context, credentials models.Credentials, client models.ClientInfo) (response models.AuthResponse, err error) {
	log := logger.FromContext(ctx)
	defer func() { a.metrics.RecordLogin(loginOutcome(err)) }()

	if !a.limiter.Allow(loginKeyPrefix + client.IPAddress) {
		a.metrics.RecordRateLimited("login")
		log.Warn().Str("ip", client.IPAddress).
			Int64("retry_after", a.limiter.SecondsUntilReset(loginKeyPrefix+client.IPAddress)).
			Msg("login rate limit exceeded")
		return models.AuthResponse{}, ErrRateLimited
	}

	user, err := a.users.FindUserByEmail(ctx, normalizeEmail(credentials.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug().Str("email", credentials.Email).Msg("login for unknown email")
			return models.AuthResponse{}, ErrInvalidCredentials
		}
		log.Err(err).Msg("user search by email failed")
		return models.AuthResponse{}, fmt.Errorf("user search by email failed: %w", err)
	}

	now := a.now()
	if user.IsLocked(now) {
		log.Info().Str("user_id", user.ID).Time("locked_until", *user.LockedUntil).Msg("login to locked account")
		return models.AuthResponse{}, ErrAccountLocked
	}

	matches, err := a.hasher.Compare(user.PasswordHash, credentials.Password)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("password comparison failed")
		return models.AuthResponse{}, fmt.Errorf("password comparison failed: %w", err)
	}
	if !matches {
		return models.AuthResponse{}, a.recordFailedLogin(ctx, user, now)
	}

	if !user.Active {
		log.Info().Str("user_id", user.ID).Msg("login to disabled account")
		return models.AuthResponse{}, ErrAccountDisabled
	}

	if err = a.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("recording successful login failed")
		return models.AuthResponse{}, fmt.Errorf("recording successful login failed: %w", err)
	}

	pair, err := a.issueTokenPair(user)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("token issuing failed")
		return models.AuthResponse{}, err
	}

	session := models.Session{
		ID:           a.ids.Generate(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		DeviceInfo:   client.DeviceInfo,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		ExpiresAt:    now.Add(a.codec.RefreshTTL()),
		CreatedAt:    now,
	}
	if _, err = a.sessions.CreateSession(ctx, session); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("session creation failed")
		return models.AuthResponse{}, fmt.Errorf("session creation failed: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("user logged in")

	return models.AuthResponse{TokenPair: pair, UserSummary: user.Summary()}, nil
}

// recordFailedLogin bumps the failure counter, locking the account once it
// reaches the configured maximum, and returns ErrInvalidCredentials.
func (a *authService) recordFailedLogin(ctx context.Context, user models.User, now time.Time) error {
	log := logger.FromContext(ctx)

	updated, err := a.users.RecordLoginFailure(ctx, user.ID, a.cfg.MaxFailedAttempts, now.Add(a.cfg.LockoutDuration), now)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("recording failed login failed")
		return fmt.Errorf("recording failed login failed: %w", err)
	}

	if updated.IsLocked(now) && !user.IsLocked(now) {
		a.metrics.RecordLockout()
		log.Warn().Str("user_id", user.ID).Int("attempts", updated.FailedLoginAttempts).
			Time("locked_until", *updated.LockedUntil).Msg("account locked")
	}

	return ErrInvalidCredentials
}

// Refresh rotates the session bound to refreshToken.
//
// A refresh token that is unknown, was already rotated, or whose rotation
// loses a race with a concurrent refresh yields ErrInvalidToken. An expired
// session is deleted and yields ErrTokenExpired.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (pair models.TokenPair, err error) {
	log := logger.FromContext(ctx)
	defer func() { a.metrics.RecordRefresh(refreshOutcome(err)) }()

	if refreshToken == "" {
		return models.TokenPair{}, ErrInvalidToken
	}

	session, err := a.sessions.FindSessionByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			log.Debug().Msg("refresh with unknown token")
			return models.TokenPair{}, ErrInvalidToken
		}
		log.Err(err).Msg("session search failed")
		return models.TokenPair{}, fmt.Errorf("session search failed: %w", err)
	}

	now := a.now()
	if session.IsExpired(now) {
		if err = a.sessions.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			log.Err(err).Str("session_id", session.ID).Msg("expired session deletion failed")
		}
		return models.TokenPair{}, ErrTokenExpired
	}

	user, err := a.users.FindUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.TokenPair{}, ErrInvalidToken
		}
		log.Err(err).Str("user_id", session.UserID).Msg("user search by id failed")
		return models.TokenPair{}, fmt.Errorf("user search by id failed: %w", err)
	}
	if !user.Active {
		return models.TokenPair{}, ErrAccountDisabled
	}

	pair, err = a.issueTokenPair(user)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("token issuing failed")
		return models.TokenPair{}, err
	}

	err = a.sessions.RotateSession(ctx, models.SessionRotation{
		SessionID: session.ID,
		OldToken:  refreshToken,
		NewToken:  pair.RefreshToken,
		ExpiresAt: now.Add(a.codec.RefreshTTL()),
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleSession) {
			log.Warn().Str("session_id", session.ID).Str("user_id", user.ID).Msg("refresh token replay rejected")
			return models.TokenPair{}, ErrInvalidToken
		}
		log.Err(err).Str("session_id", session.ID).Msg("session rotation failed")
		return models.TokenPair{}, fmt.Errorf("session rotation failed: %w", err)
	}

	return pair, nil
}

// Logout deletes the session of refreshToken and blacklists accessToken,
// if given, for the configured blacklist TTL.
func (a *authService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return ErrInvalidToken
	}

	if err := a.sessions.DeleteSessionByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return ErrInvalidToken
		}
		log.Err(err).Msg("session deletion failed")
		return fmt.Errorf("session deletion failed: %w", err)
	}

	if accessToken != "" {
		a.blacklist.Add(accessToken, a.cfg.BlacklistTTL)
	}

	return nil
}

func (a *authService) LogoutAll(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	removed, err := a.sessions.DeleteSessionsByUser(ctx, userID)
	if err != nil {
		log.Err(err).Str("user_id", userID).Msg("sessions deletion failed")
		return fmt.Errorf("sessions deletion failed: %w", err)
	}

	log.Info().Str("user_id", userID).Int64("sessions", removed).Msg("logged out from all sessions")
	return nil
}

func (a *authService) VerifyToken(ctx context.Context, tokenString string) bool {
	if _, err := a.resolveAccessToken(ctx, tokenString); err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token verification failed")
		return false
	}
	return true
}

// Authenticate resolves tokenString to its caller. The caller's role is
// the one currently stored, so a demotion takes effect immediately.
func (a *authService) Authenticate(ctx context.Context, tokenString string) (models.Caller, error) {
	user, err := a.resolveAccessToken(ctx, tokenString)
	if err != nil {
		return models.Caller{}, err
	}
	if !user.Active {
		return models.Caller{}, ErrAccountDisabled
	}

	return models.Caller{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Token:  tokenString,
	}, nil
}

// resolveAccessToken verifies the signature and expiry of an access token,
// rejects blacklisted and refresh tokens, and loads the token's user.
func (a *authService) resolveAccessToken(ctx context.Context, tokenString string) (models.User, error) {
	if tokenString == "" {
		return models.User{}, ErrInvalidToken
	}

	claims, err := a.codec.Verify(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return models.User{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Role == "" {
		return models.User{}, fmt.Errorf("%w: refresh token used as access token", ErrInvalidToken)
	}
	if a.blacklist.IsBlacklisted(tokenString) {
		return models.User{}, fmt.Errorf("%w: token is revoked", ErrInvalidToken)
	}

	user, err := a.users.FindUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	return user, nil
}

// PromoteToAdmin grants the admin role unconditionally.
func (a *authService) PromoteToAdmin(ctx context.Context, userID string) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.users.SetRole(ctx, userID, models.RoleAdmin, a.now()); err != nil {
		log.Err(err).Str("user_id", userID).Msg("promotion failed")
		return models.User{}, mapStoreError("promotion failed", err)
	}

	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		return models.User{}, mapStoreError("user search by id failed", err)
	}

	log.Info().Str("user_id", userID).Msg("user promoted to admin")
	return user, nil
}

func (a *authService) issueTokenPair(user models.User) (models.TokenPair, error) {
	access, err := a.codec.IssueAccessToken(user.Email, user.Role)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("access token creation failed: %w", err)
	}

	refresh, err := a.codec.IssueRefreshToken(user.Email)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh token creation failed: %w", err)
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrRateLimited):
		return metrics.OutcomeLimited
	case errors.Is(err, ErrAccountLocked):
		return metrics.OutcomeLocked
	case errors.Is(err, ErrAccountDisabled):
		return metrics.OutcomeDisabled
	default:
		return metrics.OutcomeFailure
	}
}

func refreshOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	return metrics.OutcomeFailure
}

// mapStoreError translates repository sentinels into service errors. Other
// errors are wrapped with msg.
func mapStoreError(msg string, err error) error {
	switch {
	case errors.Is(err, store.ErrEmailAlreadyExists):
		return ErrDuplicateEmail
	case errors.Is(err, store.ErrUsernameAlreadyExists):
		return ErrDuplicateUsername
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrInvalidData):
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// hashPassword hashes password, reporting input the hasher cannot accept as
// ErrWeakPassword.
func (a *authService) hashPassword(password string) (string, error) {
	hash, err := a.hasher.Hash(password)
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		return "", ErrWeakPassword
	}
	if err != nil {
		return "", fmt.Errorf("password hashing failed: %w", err)
	}
	return hash, nil
}
