// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/dealer-auth/models"
)

// Constraint names from the schema, used to tell conflicts apart.
const (
	constraintUsersEmail          = "users_email_key"
	constraintUsersUsername       = "users_username_key"
	constraintSessionRefreshToken = "sessions_refresh_token_key"
)

var userColumnList = []string{
	"id", "email", "username", "password_hash", "full_name", "avatar_url", "role",
	"is_active", "email_verified", "failed_login_attempts", "locked_until",
	"last_login", "created_at", "updated_at", "deleted_at",
}

var sessionColumnList = []string{
	"id", "user_id", "refresh_token", "device_info", "ip_address", "user_agent",
	"expires_at", "created_at",
}

var (
	userColumns    = strings.Join(userColumnList, ", ")
	sessionColumns = strings.Join(sessionColumnList, ", ")
)

// psql is a squirrel builder emitting PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	createUser = `INSERT INTO users (id, email, username, password_hash, full_name, avatar_url, role, is_active, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	findUserByID = `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	findUserByEmail = `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`

	recordLoginFailure = `UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
			updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + userColumns
)

const (
	updatePasswordHash = `UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`

	setUserRole = `UPDATE users
		SET role = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`

	setUserActive = `UPDATE users
		SET is_active = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`

	setUserEmailVerified = `UPDATE users
		SET email_verified = TRUE, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`

	softDeleteUser = `UPDATE users
		SET is_active = FALSE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`

	recordLoginSuccess = `UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, last_login = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`
)

var (
	createSession = `INSERT INTO sessions (id, user_id, refresh_token, device_info, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + sessionColumns

	findSessionByToken = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE refresh_token = $1`

	findSessionByID = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1`
)

const (
	rotateSession = `UPDATE sessions
		SET refresh_token = $3, expires_at = $4
		WHERE id = $1 AND refresh_token = $2`

	deleteSession         = `DELETE FROM sessions WHERE id = $1`
	deleteSessionByToken  = `DELETE FROM sessions WHERE refresh_token = $1`
	deleteSessionsByUser  = `DELETE FROM sessions WHERE user_id = $1`
	deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at < $1`
)

const (
	createResetToken = `INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	findResetToken = `SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1`

	consumeResetToken = `UPDATE password_reset_tokens
		SET used = TRUE
		WHERE id = $1 AND used = FALSE`

	deleteExpiredResetTokens = `DELETE FROM password_reset_tokens WHERE expires_at < $1 OR used`

	createVerificationToken = `INSERT INTO email_verification_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	findVerificationToken = `SELECT id, user_id, token, expires_at, used, created_at
		FROM email_verification_tokens
		WHERE token = $1`

	consumeVerificationToken = `UPDATE email_verification_tokens
		SET used = TRUE
		WHERE id = $1 AND used = FALSE`

	deleteExpiredVerificationTokens = `DELETE FROM email_verification_tokens WHERE expires_at < $1 OR used`
)

// buildListUsersQuery builds the admin user listing for filter.
func buildListUsersQuery(filter models.UserFilter) (string, []any, error) {
	query := psql.Select(userColumnList...).From("users")

	if !filter.IncludeDeleted {
		query = query.Where(sq.Eq{"deleted_at": nil})
	}
	if filter.Role != nil {
		query = query.Where(sq.Eq{"role": string(*filter.Role)})
	}
	if filter.Active != nil {
		query = query.Where(sq.Eq{"is_active": *filter.Active})
	}

	query = query.OrderBy("created_at", "id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return sqlStr, args, nil
}

// buildUpdateUserQuery builds a partial UPDATE applying the non-nil fields
// of update. The query returns the updated row.
func buildUpdateUserQuery(id string, update models.UserUpdate, at time.Time) (string, []any, error) {
	if update.IsEmpty() {
		return "", nil, fmt.Errorf("%w: nothing to update", ErrBuildingSQLQuery)
	}

	query := psql.Update("users")
	if update.Email != nil {
		query = query.Set("email", *update.Email)
	}
	if update.Username != nil {
		query = query.Set("username", *update.Username)
	}
	if update.FullName != nil {
		query = query.Set("full_name", *update.FullName)
	}
	if update.AvatarURL != nil {
		query = query.Set("avatar_url", *update.AvatarURL)
	}

	query = query.
		Set("updated_at", at).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + userColumns)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return sqlStr, args, nil
}

// buildListSessionsQuery lists the sessions of userID, newest first,
// optionally excluding sessions expired at activeAt.
func buildListSessionsQuery(userID string, activeAt time.Time) (string, []any, error) {
	query := psql.Select(sessionColumnList...).
		From("sessions").
		Where(sq.Eq{"user_id": userID})

	if !activeAt.IsZero() {
		query = query.Where(sq.GtOrEq{"expires_at": activeAt})
	}

	sqlStr, args, err := query.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return sqlStr, args, nil
}
