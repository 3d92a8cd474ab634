// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
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

var tokenColumns = []string{"id", "user_id", "token", "expires_at", "used", "created_at"}

func newTestResetRepo(t *testing.T) (PasswordResetRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewPasswordResetRepository(newDBFromSQL(db), logger.Nop()), mock
}

func newTestVerificationRepo(t *testing.T) (EmailVerificationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewEmailVerificationRepository(newDBFromSQL(db), logger.Nop()), mock
}

func TestCreateResetToken(t *testing.T) {
	repo, mock := newTestResetRepo(t)
	token := models.PasswordResetToken{
		ID:        "t-1",
		UserID:    "u-1",
		Token:     "secret",
		ExpiresAt: testNow.Add(time.Hour),
		CreatedAt: testNow,
	}

	mock.ExpectExec("INSERT INTO password_reset_tokens").
		WithArgs(token.ID, token.UserID, token.Token, token.ExpiresAt, false, token.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateResetToken(testContext(), token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateResetToken_UnknownUser(t *testing.T) {
	repo, mock := newTestResetRepo(t)
	mock.ExpectExec("INSERT INTO password_reset_tokens").
		WillReturnError(newPgError(pgerrcode.ForeignKeyViolation))

	err := repo.CreateResetToken(testContext(), models.PasswordResetToken{ID: "t-1", UserID: "u-404", Token: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindResetToken(t *testing.T) {
	t.Run("found used token", func(t *testing.T) {
		repo, mock := newTestResetRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens")).
			WithArgs("secret").
			WillReturnRows(sqlmock.NewRows(tokenColumns).
				AddRow("t-1", "u-1", "secret", testNow.Add(time.Hour), true, testNow))

		tok, err := repo.FindResetToken(testContext(), "secret")
		require.NoError(t, err)
		assert.Equal(t, "t-1", tok.ID)
		assert.True(t, tok.Used)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newTestResetRepo(t)
		mock.ExpectQuery("FROM password_reset_tokens").WillReturnError(sql.ErrNoRows)

		_, err := repo.FindResetToken(testContext(), "nope")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestResetPassword_Success(t *testing.T) {
	repo, mock := newTestResetRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(consumeResetToken)).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updatePasswordHash)).
		WithArgs("u-1", "new-hash", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteSessionsByUser)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.ResetPassword(testContext(), "t-1", "u-1", "new-hash", testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_TokenAlreadyConsumed(t *testing.T) {
	repo, mock := newTestResetRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(consumeResetToken)).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ResetPassword(testContext(), "t-1", "u-1", "new-hash", testNow)
	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_CommitFails(t *testing.T) {
	repo, mock := newTestResetRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(consumeResetToken)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updatePasswordHash)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteSessionsByUser)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	err := repo.ResetPassword(testContext(), "t-1", "u-1", "new-hash", testNow)
	assert.ErrorIs(t, err, ErrCommitingTransaction)
}

func TestDeleteExpiredResetTokens(t *testing.T) {
	repo, mock := newTestResetRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(deleteExpiredResetTokens)).
		WithArgs(testNow).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpiredResetTokens(testContext(), testNow)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestVerifyEmail(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		repo, mock := newTestVerificationRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(consumeVerificationToken)).
			WithArgs("v-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(setUserEmailVerified)).
			WithArgs("u-1", testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.VerifyEmail(testContext(), "v-1", "u-1", testNow))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user deleted meanwhile", func(t *testing.T) {
		repo, mock := newTestVerificationRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(consumeVerificationToken)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(setUserEmailVerified)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.VerifyEmail(testContext(), "v-1", "u-1", testNow)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindVerificationToken(t *testing.T) {
	repo, mock := newTestVerificationRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM email_verification_tokens")).
		WithArgs("secret").
		WillReturnRows(sqlmock.NewRows(tokenColumns).
			AddRow("v-1", "u-1", "secret", testNow.Add(time.Hour), false, testNow))

	tok, err := repo.FindVerificationToken(testContext(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", tok.UserID)
	assert.False(t, tok.Used)
}
