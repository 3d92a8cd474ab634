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

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FullName,
		&u.AvatarURL,
		&u.Role,
		&u.Active,
		&u.EmailVerified,
		&u.FailedLoginAttempts,
		&u.LockedUntil,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	)
	return u, err
}

// classifyUserError maps driver errors of user statements onto the
// package sentinels.
func classifyUserError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}

	switch postgresError(err) {
	case pgerrcode.UniqueViolation:
		switch postgresConstraint(err) {
		case constraintUsersUsername:
			return ErrUsernameAlreadyExists
		default:
			return ErrEmailAlreadyExists
		}
	case pgerrcode.InvalidTextRepresentation:
		// malformed uuid
		return ErrUserNotFound
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	default:
		return fmt.Errorf("unexpected DB error: %w", err)
	}
}

// CreateUser inserts user and returns the row as stored.
//
// Error handling:
//   - unique_violation on users_email_key → [ErrEmailAlreadyExists].
//   - unique_violation on users_username_key → [ErrUsernameAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, user.AvatarURL,
		user.Role, user.Active, user.EmailVerified, user.CreatedAt, user.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("email", user.Email).Msg("error creating user")
		return models.User{}, classifyUserError(err)
	}

	return created, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByID", findUserByID, id)
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByEmail", findUserByEmail, email)
}

func (r *userRepository) findOne(ctx context.Context, fn, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		err = classifyUserError(err)
		if errors.Is(err, ErrUserNotFound) {
			log.Debug().Str("func", fn).Any("key", arg).Msg("user not found")
		} else {
			log.Err(err).Str("func", fn).Any("key", arg).Msg("error finding user")
		}
		return models.User{}, err
	}

	return user, nil
}

// ListUsers returns users matching filter ordered by creation time.
func (r *userRepository) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListUsersQuery(filter)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("failed to create query")
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0, 16)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*userRepository.ListUsers").Msg("failed to scan user row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, id string, update models.UserUpdate, at time.Time) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateUserQuery(id, update, at)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Str("id", id).Msg("failed to build update query")
		return models.User{}, err
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Str("id", id).Msg("failed to update user")
		return models.User{}, classifyUserError(err)
	}

	return user, nil
}

// UpdatePassword replaces the hash and drops all sessions of the user in
// one transaction.
func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	log := logger.FromContext(ctx)

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := execAffectingOne(ctx, tx, ErrUserNotFound, updatePasswordHash, id, passwordHash, at); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteSessionsByUser, id); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdatePassword").Str("id", id).Msg("failed to update password")
		return classifyUpdateError(err)
	}

	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id string, role models.Role, at time.Time) error {
	return r.updateOne(ctx, "*userRepository.SetRole", setUserRole, id, role, at)
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return r.updateOne(ctx, "*userRepository.SetActive", setUserActive, id, active, at)
}

func (r *userRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, "*userRepository.RecordLoginSuccess", recordLoginSuccess, id, at)
}

func (r *userRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := execAffectingOne(ctx, tx, ErrUserNotFound, softDeleteUser, id, at); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteSessionsByUser, id); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SoftDelete").Str("id", id).Msg("failed to delete user")
		return classifyUpdateError(err)
	}

	return nil
}

// RecordLoginFailure bumps the failure counter and locks the account in one
// statement so concurrent failures cannot skip the lock.
func (r *userRepository) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil, at time.Time) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := scanUser(r.db.QueryRowContext(ctx, recordLoginFailure, id, maxAttempts, lockUntil, at))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.RecordLoginFailure").Str("id", id).Msg("failed to record login failure")
		return models.User{}, classifyUserError(err)
	}

	return user, nil
}

func (r *userRepository) updateOne(ctx context.Context, fn, query string, args ...any) error {
	log := logger.FromContext(ctx)

	if err := execAffectingOne(ctx, r.db, ErrUserNotFound, query, args...); err != nil {
		log.Err(err).Str("func", fn).Any("id", args[0]).Msg("failed to update user")
		return classifyUpdateError(err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execAffectingOne executes query and returns notFound when no row was
// affected.
func execAffectingOne(ctx context.Context, db execer, notFound error, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return notFound
	}

	return nil
}

// classifyUpdateError classifies driver errors and passes everything else,
// package sentinels included, through unchanged.
func classifyUpdateError(err error) error {
	if _, ok := pgError(err); ok {
		return classifyUserError(err)
	}
	return err
}
