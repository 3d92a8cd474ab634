// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/dealer-auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// ChangePassword
// ─────────────────────────────────────────────

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice@example.com", "alice")
	ctx := context.Background()
	resp := env.login(t, "alice@example.com", testPassword)
	caller := callerOf(user)

	err := env.auth.ChangePassword(ctx, caller, models.ChangePasswordRequest{CurrentPassword: "Wrong123!", NewPassword: "Better2@"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = env.auth.ChangePassword(ctx, caller, models.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "weakpassword"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, env.auth.ChangePassword(ctx, caller, models.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "Better2@"}))

	_, err = env.auth.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "sessions are revoked")

	_, err = env.auth.Login(ctx, models.Credentials{Email: "alice@example.com", Password: testPassword}, env.client())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	env.login(t, "alice@example.com", "Better2@")
}

// ─────────────────────────────────────────────
// Password reset
// ─────────────────────────────────────────────

func TestResetPassword_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "alice")
	ctx := context.Background()
	resp := env.login(t, "alice@example.com", testPassword)

	resetToken, err := env.auth.CreatePasswordResetToken(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, resetToken)

	require.NoError(t, env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: resetToken, NewPassword: "Reset3#ok"}))

	err = env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: resetToken, NewPassword: "Again4$ok"})
	assert.ErrorIs(t, err, ErrInvalidOrUsedToken)

	_, err = env.auth.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "sessions are revoked")

	env.login(t, "alice@example.com", "Reset3#ok")
}

func TestResetPassword_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "alice")
	ctx := context.Background()

	err := env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: "unknown", NewPassword: "Reset3#ok"})
	assert.ErrorIs(t, err, ErrInvalidOrUsedToken)

	weak, err := env.auth.CreatePasswordResetToken(ctx, "alice@example.com")
	require.NoError(t, err)
	err = env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: weak, NewPassword: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	expiring, err := env.auth.CreatePasswordResetToken(ctx, "alice@example.com")
	require.NoError(t, err)
	env.clock.Advance(time.Hour + time.Second)
	err = env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: expiring, NewPassword: "Reset3#ok"})
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCreatePasswordResetToken_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.CreatePasswordResetToken(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ─────────────────────────────────────────────
// Email verification
// ─────────────────────────────────────────────

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice@example.com", "alice")
	ctx := context.Background()

	verification, err := env.auth.CreateEmailVerificationToken(ctx, callerOf(user))
	require.NoError(t, err)

	require.NoError(t, env.auth.VerifyEmail(ctx, verification))

	stored, err := env.store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	assert.ErrorIs(t, env.auth.VerifyEmail(ctx, verification), ErrTokenAlreadyUsed)
	assert.ErrorIs(t, env.auth.VerifyEmail(ctx, "unknown"), ErrInvalidVerificationToken)

	_, err = env.auth.CreateEmailVerificationToken(ctx, callerOf(user))
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestVerifyEmail_Expired(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice@example.com", "alice")
	ctx := context.Background()

	verification, err := env.auth.CreateEmailVerificationToken(ctx, callerOf(user))
	require.NoError(t, err)

	env.clock.Advance(24*time.Hour + time.Second)

	assert.ErrorIs(t, env.auth.VerifyEmail(ctx, verification), ErrTokenExpired)
}

func TestPasswordOver72BytesRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	long := "Secret1!" + strings.Repeat("x", 76)

	_, err := env.auth.Register(ctx, models.Registration{Email: "bob@example.com", Username: "bob", Password: long})
	assert.ErrorIs(t, err, ErrWeakPassword)

	user := env.register(t, "alice@example.com", "alice")
	err = env.auth.ChangePassword(ctx, callerOf(user), models.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: long})
	assert.ErrorIs(t, err, ErrWeakPassword)

	resetToken, err := env.auth.CreatePasswordResetToken(ctx, "alice@example.com")
	require.NoError(t, err)
	err = env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: resetToken, NewPassword: long})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, env.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: resetToken, NewPassword: "Reset3#ok"}), "token survives the rejected attempt")
}
