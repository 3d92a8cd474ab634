// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/store"
	"github.com/MKhiriev/dealer-auth/internal/validators"
	"github.com/MKhiriev/dealer-auth/models"
)

// ChangePassword replaces the caller's password after checking the current
// one. Every session of the caller is revoked.
func (a *authService) ChangePassword(ctx context.Context, caller models.Caller, request models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByID(ctx, caller.UserID)
	if err != nil {
		log.Err(err).Str("user_id", caller.UserID).Msg("user search by id failed")
		return mapStoreError("user search by id failed", err)
	}

	matches, err := a.hasher.Compare(user.PasswordHash, request.CurrentPassword)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("password comparison failed")
		return fmt.Errorf("password comparison failed: %w", err)
	}
	if !matches {
		return ErrInvalidCredentials
	}

	if err = validators.ValidatePassword(request.NewPassword); err != nil {
		return ErrWeakPassword
	}

	hash, err := a.hashPassword(request.NewPassword)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return err
	}

	if err = a.users.UpdatePassword(ctx, user.ID, hash, a.now()); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("password update failed")
		return mapStoreError("password update failed", err)
	}

	log.Info().Str("user_id", user.ID).Msg("password changed, sessions revoked")
	return nil
}

// CreatePasswordResetToken issues a single-use reset token for the user
// owning email. Unknown emails yield ErrNotFound.
func (a *authService) CreatePasswordResetToken(ctx context.Context, email string) (string, error) {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return "", mapStoreError("user search by email failed", err)
	}

	raw, err := a.tokens.Generate()
	if err != nil {
		log.Err(err).Msg("reset token generation failed")
		return "", fmt.Errorf("reset token generation failed: %w", err)
	}

	now := a.now()
	err = a.resets.CreateResetToken(ctx, models.PasswordResetToken{
		ID:        a.ids.Generate(),
		UserID:    user.ID,
		Token:     raw,
		ExpiresAt: now.Add(a.cfg.ResetTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("reset token creation failed")
		return "", mapStoreError("reset token creation failed", err)
	}

	log.Info().Str("user_id", user.ID).Msg("password reset requested")
	return raw, nil
}

// ResetPassword consumes a reset token and sets the new password. Every
// session of the token's user is revoked.
func (a *authService) ResetPassword(ctx context.Context, request models.ResetPasswordRequest) error {
	log := logger.FromContext(ctx)

	resetToken, err := a.resets.FindResetToken(ctx, request.Token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return ErrInvalidOrUsedToken
		}
		log.Err(err).Msg("reset token search failed")
		return fmt.Errorf("reset token search failed: %w", err)
	}
	if resetToken.Used {
		return ErrInvalidOrUsedToken
	}

	now := a.now()
	if now.After(resetToken.ExpiresAt) {
		return ErrTokenExpired
	}

	if err = validators.ValidatePassword(request.NewPassword); err != nil {
		return ErrWeakPassword
	}

	hash, err := a.hashPassword(request.NewPassword)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return err
	}

	err = a.resets.ResetPassword(ctx, resetToken.ID, resetToken.UserID, hash, now)
	if err != nil {
		if errors.Is(err, store.ErrTokenAlreadyUsed) || errors.Is(err, store.ErrTokenNotFound) {
			return ErrInvalidOrUsedToken
		}
		log.Err(err).Str("user_id", resetToken.UserID).Msg("password reset failed")
		return mapStoreError("password reset failed", err)
	}

	log.Info().Str("user_id", resetToken.UserID).Msg("password reset, sessions revoked")
	return nil
}

// CreateEmailVerificationToken issues a single-use token confirming the
// caller's email.
func (a *authService) CreateEmailVerificationToken(ctx context.Context, caller models.Caller) (string, error) {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return "", mapStoreError("user search by id failed", err)
	}
	if user.EmailVerified {
		return "", fmt.Errorf("%w: email is already verified", ErrInvalidDataProvided)
	}

	raw, err := a.tokens.Generate()
	if err != nil {
		log.Err(err).Msg("verification token generation failed")
		return "", fmt.Errorf("verification token generation failed: %w", err)
	}

	now := a.now()
	err = a.verifications.CreateVerificationToken(ctx, models.EmailVerificationToken{
		ID:        a.ids.Generate(),
		UserID:    user.ID,
		Token:     raw,
		ExpiresAt: now.Add(a.cfg.VerificationTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("verification token creation failed")
		return "", mapStoreError("verification token creation failed", err)
	}

	return raw, nil
}

// VerifyEmail consumes a verification token and marks its user's email as
// verified.
func (a *authService) VerifyEmail(ctx context.Context, raw string) error {
	log := logger.FromContext(ctx)

	verification, err := a.verifications.FindVerificationToken(ctx, raw)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return ErrInvalidVerificationToken
		}
		log.Err(err).Msg("verification token search failed")
		return fmt.Errorf("verification token search failed: %w", err)
	}
	if verification.Used {
		return ErrTokenAlreadyUsed
	}

	now := a.now()
	if now.After(verification.ExpiresAt) {
		return ErrTokenExpired
	}

	err = a.verifications.VerifyEmail(ctx, verification.ID, verification.UserID, now)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTokenAlreadyUsed):
			return ErrTokenAlreadyUsed
		case errors.Is(err, store.ErrTokenNotFound):
			return ErrInvalidVerificationToken
		}
		log.Err(err).Str("user_id", verification.UserID).Msg("email verification failed")
		return mapStoreError("email verification failed", err)
	}

	log.Info().Str("user_id", verification.UserID).Msg("email verified")
	return nil
}
