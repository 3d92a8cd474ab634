// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when a non-deleted user already owns
	// the email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUsernameAlreadyExists is returned when a non-deleted user already
	// owns the username.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrUserNotFound is returned when no non-deleted user matches.
	ErrUserNotFound = errors.New("no user was found")

	ErrSessionNotFound      = errors.New("session was not found")
	ErrSessionAlreadyExists = errors.New("session with this refresh token already exists")

	// ErrStaleSession is returned by a conditional session rotation when the
	// stored refresh token no longer matches the presented one.
	ErrStaleSession = errors.New("session refresh token was already rotated")

	// ErrTokenNotFound is returned when a reset or verification token does
	// not exist.
	ErrTokenNotFound = errors.New("token was not found")

	// ErrTokenAlreadyUsed is returned when a single-use token was consumed
	// before.
	ErrTokenAlreadyUsed = errors.New("token was already used")

	// ErrInvalidData is returned when a record is missing required fields.
	ErrInvalidData = errors.New("invalid data provided to repository")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to executing statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")
)
