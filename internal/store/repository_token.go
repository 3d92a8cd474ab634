// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/jackc/pgerrcode"
)

// passwordResetRepository is the PostgreSQL-backed implementation of
// [PasswordResetRepository].
type passwordResetRepository struct {
	*DB
	logger *logger.Logger
}

// NewPasswordResetRepository constructs a [PasswordResetRepository].
func NewPasswordResetRepository(db *DB, logger *logger.Logger) PasswordResetRepository {
	return &passwordResetRepository{DB: db, logger: logger}
}

// emailVerificationRepository is the PostgreSQL-backed implementation of
// [EmailVerificationRepository].
type emailVerificationRepository struct {
	*DB
	logger *logger.Logger
}

// NewEmailVerificationRepository constructs an [EmailVerificationRepository].
func NewEmailVerificationRepository(db *DB, logger *logger.Logger) EmailVerificationRepository {
	return &emailVerificationRepository{DB: db, logger: logger}
}

func classifyTokenError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTokenNotFound
	}

	switch postgresError(err) {
	case pgerrcode.ForeignKeyViolation:
		return ErrUserNotFound
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: duplicate token", ErrInvalidData)
	default:
		return fmt.Errorf("unexpected DB error: %w", err)
	}
}

// ─── password reset ──────────────────────────────────────────────────────────

func (r *passwordResetRepository) CreateResetToken(ctx context.Context, token models.PasswordResetToken) error {
	_, err := r.DB.ExecContext(ctx, createResetToken,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.Used, token.CreatedAt)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*passwordResetRepository.CreateResetToken").
			Str("user_id", token.UserID).
			Msg("failed to create reset token")
		return classifyTokenError(err)
	}

	return nil
}

func (r *passwordResetRepository) FindResetToken(ctx context.Context, token string) (models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.DB.QueryRowContext(ctx, findResetToken, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		err = classifyTokenError(err)
		if !errors.Is(err, ErrTokenNotFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*passwordResetRepository.FindResetToken").Msg("failed to find reset token")
		}
		return models.PasswordResetToken{}, err
	}

	return t, nil
}

// ResetPassword consumes the token, replaces the hash and drops the user's
// sessions in one transaction. The conditional consume makes a second
// concurrent reset with the same token fail with [ErrTokenAlreadyUsed].
func (r *passwordResetRepository) ResetPassword(ctx context.Context, tokenID, userID, passwordHash string, at time.Time) error {
	log := logger.FromContext(ctx)

	err := r.DB.inTx(ctx, func(tx *sql.Tx) error {
		if err := execAffectingOne(ctx, tx, ErrTokenAlreadyUsed, consumeResetToken, tokenID); err != nil {
			return err
		}
		if err := execAffectingOne(ctx, tx, ErrUserNotFound, updatePasswordHash, userID, passwordHash, at); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteSessionsByUser, userID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "*passwordResetRepository.ResetPassword").
			Str("user_id", userID).
			Msg("failed to reset password")
		return classifyUpdateError(err)
	}

	return nil
}

func (r *passwordResetRepository) DeleteExpiredResetTokens(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.execWithRetry(ctx, deleteExpiredResetTokens, before)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*passwordResetRepository.DeleteExpiredResetTokens").Msg("failed to delete expired reset tokens")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res.RowsAffected()
}

// ─── email verification ──────────────────────────────────────────────────────

func (r *emailVerificationRepository) CreateVerificationToken(ctx context.Context, token models.EmailVerificationToken) error {
	_, err := r.DB.ExecContext(ctx, createVerificationToken,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.Used, token.CreatedAt)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*emailVerificationRepository.CreateVerificationToken").
			Str("user_id", token.UserID).
			Msg("failed to create verification token")
		return classifyTokenError(err)
	}

	return nil
}

func (r *emailVerificationRepository) FindVerificationToken(ctx context.Context, token string) (models.EmailVerificationToken, error) {
	var t models.EmailVerificationToken
	err := r.DB.QueryRowContext(ctx, findVerificationToken, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		err = classifyTokenError(err)
		if !errors.Is(err, ErrTokenNotFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*emailVerificationRepository.FindVerificationToken").Msg("failed to find verification token")
		}
		return models.EmailVerificationToken{}, err
	}

	return t, nil
}

func (r *emailVerificationRepository) VerifyEmail(ctx context.Context, tokenID, userID string, at time.Time) error {
	err := r.DB.inTx(ctx, func(tx *sql.Tx) error {
		if err := execAffectingOne(ctx, tx, ErrTokenAlreadyUsed, consumeVerificationToken, tokenID); err != nil {
			return err
		}
		return execAffectingOne(ctx, tx, ErrUserNotFound, setUserEmailVerified, userID, at)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*emailVerificationRepository.VerifyEmail").
			Str("user_id", userID).
			Msg("failed to verify email")
		return classifyUpdateError(err)
	}

	return nil
}

func (r *emailVerificationRepository) DeleteExpiredVerificationTokens(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.execWithRetry(ctx, deleteExpiredVerificationTokens, before)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*emailVerificationRepository.DeleteExpiredVerificationTokens").Msg("failed to delete expired verification tokens")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res.RowsAffected()
}
