// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewUserRepository(newDBFromSQL(db), logger.Nop()), mock
}

func newUser() models.User {
	return models.User{
		ID:           "0195f1c2-0000-7000-8000-000000000001",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		FullName:     "Full Name",
		Role:         models.RoleDealerStaff,
		Active:       true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

// ─── CreateUser ──────────────────────────────────────────────────────────────

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	user := newUser()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, user.AvatarURL,
			user.Role, user.Active, user.EmailVerified, user.CreatedAt, user.UpdatedAt).
		WillReturnRows(userRows(userRow(user.ID, user.Email, user.Username)))

	created, err := repo.CreateUser(testContext(), user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.ID)
	assert.Equal(t, user.Email, created.Email)
	assert.Equal(t, models.RoleDealerStaff, created.Role)
	assert.True(t, created.Active)
	assert.Nil(t, created.LockedUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{"duplicate email", newPgConstraintError(pgerrcode.UniqueViolation, constraintUsersEmail), ErrEmailAlreadyExists},
		{"duplicate username", newPgConstraintError(pgerrcode.UniqueViolation, constraintUsersUsername), ErrUsernameAlreadyExists},
		{"check violation", newPgError(pgerrcode.CheckViolation), ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)
			mock.ExpectQuery("INSERT INTO users").WillReturnError(tt.dbErr)

			_, err := repo.CreateUser(testContext(), newUser())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("boom"))

	_, err := repo.CreateUser(testContext(), newUser())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected DB error")
}

// ─── Find ────────────────────────────────────────────────────────────────────

func TestFindUserByEmail_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	locked := testNow.Add(15 * time.Minute)
	row := userRow("id-1", "alice@example.com", "alice")
	row[9] = int64(5)
	row[10] = locked

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 AND deleted_at IS NULL")).
		WithArgs("alice@example.com").
		WillReturnRows(userRows(row))

	user, err := repo.FindUserByEmail(testContext(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", user.ID)
	assert.Equal(t, 5, user.FailedLoginAttempts)
	require.NotNil(t, user.LockedUntil)
	assert.True(t, locked.Equal(*user.LockedUntil))
	assert.True(t, user.IsLocked(testNow))
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectQuery("FROM users").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserByEmail(testContext(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserByID_MalformedUUID(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("not-a-uuid").
		WillReturnError(newPgError(pgerrcode.InvalidTextRepresentation))

	_, err := repo.FindUserByID(testContext(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	role := models.RoleAdmin

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE deleted_at IS NULL AND role = $1 ORDER BY created_at, id LIMIT 10")).
		WithArgs("ADMIN").
		WillReturnRows(userRows(userRow("id-1", "a@example.com", "a"), userRow("id-2", "b@example.com", "b")))

	users, err := repo.ListUsers(testContext(), models.UserFilter{Role: &role, Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "id-2", users[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers_QueryError(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectQuery("FROM users").WillReturnError(errors.New("boom"))

	_, err := repo.ListUsers(testContext(), models.UserFilter{})
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

// ─── Updates ─────────────────────────────────────────────────────────────────

func TestUpdateUser_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	fullName := "Alice Liddell"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET full_name = $1, updated_at = $2 WHERE deleted_at IS NULL AND id = $3 RETURNING")).
		WithArgs(fullName, testNow, "id-1").
		WillReturnRows(userRows(userRow("id-1", "alice@example.com", "alice")))

	_, err := repo.UpdateUser(testContext(), "id-1", models.UserUpdate{FullName: &fullName}, testNow)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_DuplicateUsername(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	username := "bob"

	mock.ExpectQuery("UPDATE users").
		WillReturnError(newPgConstraintError(pgerrcode.UniqueViolation, constraintUsersUsername))

	_, err := repo.UpdateUser(testContext(), "id-1", models.UserUpdate{Username: &username}, testNow)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestUpdateUser_EmptyUpdate(t *testing.T) {
	repo, _ := newTestUserRepo(t)

	_, err := repo.UpdateUser(testContext(), "id-1", models.UserUpdate{}, testNow)
	assert.ErrorIs(t, err, ErrBuildingSQLQuery)
}

func TestUpdatePassword_RevokesSessionsInTransaction(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET password_hash = $2")).
		WithArgs("id-1", "new-hash", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteSessionsByUser)).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdatePassword(testContext(), "id-1", "new-hash", testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword_UserMissingRollsBack(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdatePassword(testContext(), "id-1", "new-hash", testNow)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword_BeginFails(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := repo.UpdatePassword(testContext(), "id-1", "new-hash", testNow)
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestSetRole(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"updated", 1, nil},
		{"missing user", 0, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)
			mock.ExpectExec(regexp.QuoteMeta("SET role = $2")).
				WithArgs("id-1", models.RoleAdmin, testNow).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.SetRole(testContext(), "id-1", models.RoleAdmin, testNow)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSoftDelete(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET is_active = FALSE, deleted_at = $2")).
		WithArgs("id-1", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteSessionsByUser)).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.SoftDelete(testContext(), "id-1", testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoginFailure_SingleStatement(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	lockUntil := testNow.Add(15 * time.Minute)

	row := userRow("id-1", "alice@example.com", "alice")
	row[9] = int64(5)
	row[10] = lockUntil

	mock.ExpectQuery(regexp.QuoteMeta("SET failed_login_attempts = failed_login_attempts + 1")).
		WithArgs("id-1", 5, lockUntil, testNow).
		WillReturnRows(userRows(row))

	user, err := repo.RecordLoginFailure(testContext(), "id-1", 5, lockUntil, testNow)
	require.NoError(t, err)
	assert.Equal(t, 5, user.FailedLoginAttempts)
	assert.True(t, user.IsLocked(testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoginSuccess(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("SET failed_login_attempts = 0, locked_until = NULL, last_login = $2")).
		WithArgs("id-1", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordLoginSuccess(testContext(), "id-1", testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}
