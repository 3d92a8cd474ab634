// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/dealer-auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, m *MemoryStore, id, email, username string) models.User {
	t.Helper()
	u, err := m.CreateUser(context.Background(), models.User{
		ID:        id,
		Email:     email,
		Username:  username,
		Role:      models.RoleDealerStaff,
		Active:    true,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
	require.NoError(t, err)
	return u
}

func seedSession(t *testing.T, m *MemoryStore, id, userID, token string, expiresAt time.Time) {
	t.Helper()
	_, err := m.CreateSession(context.Background(), models.Session{
		ID:           id,
		UserID:       userID,
		RefreshToken: token,
		ExpiresAt:    expiresAt,
		CreatedAt:    testNow,
	})
	require.NoError(t, err)
}

func TestMemoryStore_CreateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")

	_, err := m.CreateUser(ctx, models.User{ID: "u-2", Email: "a@example.com", Username: "other"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = m.CreateUser(ctx, models.User{ID: "u-2", Email: "b@example.com", Username: "alice"})
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)

	_, err = m.CreateUser(ctx, models.User{ID: "u-2"})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestMemoryStore_ConcurrentRegistrationSameEmail(t *testing.T) {
	m := NewMemoryStore()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateUser(context.Background(), models.User{
				ID:       fmt.Sprintf("u-%d", i),
				Email:    "race@example.com",
				Username: fmt.Sprintf("user%d", i),
			})
			if err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
}

func TestMemoryStore_SoftDeleteFreesEmailAndDropsSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")
	seedSession(t, m, "s-1", "u-1", "r-1", testNow.Add(time.Hour))

	require.NoError(t, m.SoftDelete(ctx, "u-1", testNow))

	_, err := m.FindUserByID(ctx, "u-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = m.FindUserByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = m.FindSessionByToken(ctx, "r-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.SoftDelete(ctx, "u-1", testNow), ErrUserNotFound)

	seedUser(t, m, "u-2", "a@example.com", "alice")

	all, err := m.ListUsers(ctx, models.UserFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStore_ListUsersFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for i := range 5 {
		u := models.User{
			ID:        fmt.Sprintf("u-%d", i),
			Email:     fmt.Sprintf("u%d@example.com", i),
			Username:  fmt.Sprintf("user%d", i),
			Role:      models.RoleDealerStaff,
			Active:    i%2 == 0,
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		}
		if i == 4 {
			u.Role = models.RoleAdmin
		}
		_, err := m.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	page, err := m.ListUsers(ctx, models.UserFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "u-1", page[0].ID)
	assert.Equal(t, "u-2", page[1].ID)

	active := true
	actives, err := m.ListUsers(ctx, models.UserFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, actives, 3)

	admin := models.RoleAdmin
	admins, err := m.ListUsers(ctx, models.UserFilter{Role: &admin})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "u-4", admins[0].ID)

	empty, err := m.ListUsers(ctx, models.UserFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_UpdateUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")
	seedUser(t, m, "u-2", "b@example.com", "bob")

	taken := "b@example.com"
	_, err := m.UpdateUser(ctx, "u-1", models.UserUpdate{Email: &taken}, testNow)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	newEmail := "alice@example.com"
	name := "Alice"
	u, err := m.UpdateUser(ctx, "u-1", models.UserUpdate{Email: &newEmail, FullName: &name}, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, newEmail, u.Email)
	assert.Equal(t, name, u.FullName)

	_, err = m.FindUserByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	found, err := m.FindUserByEmail(ctx, newEmail)
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)

	_, err = m.UpdateUser(ctx, "u-1", models.UserUpdate{}, testNow)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestMemoryStore_LoginFailureLocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")
	lockUntil := testNow.Add(15 * time.Minute)

	for i := 1; i < 5; i++ {
		u, err := m.RecordLoginFailure(ctx, "u-1", 5, lockUntil, testNow)
		require.NoError(t, err)
		assert.Equal(t, i, u.FailedLoginAttempts)
		assert.False(t, u.IsLocked(testNow))
	}

	u, err := m.RecordLoginFailure(ctx, "u-1", 5, lockUntil, testNow)
	require.NoError(t, err)
	assert.True(t, u.IsLocked(testNow))
	assert.False(t, u.IsLocked(lockUntil))

	require.NoError(t, m.RecordLoginSuccess(ctx, "u-1", testNow))
	u, err = m.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Zero(t, u.FailedLoginAttempts)
	assert.Nil(t, u.LockedUntil)
	require.NotNil(t, u.LastLogin)
}

func TestMemoryStore_RotateSessionIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")
	seedSession(t, m, "s-1", "u-1", "old", testNow.Add(time.Hour))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.RotateSession(ctx, models.SessionRotation{
				SessionID: "s-1",
				OldToken:  "old",
				NewToken:  fmt.Sprintf("new-%d", i),
				ExpiresAt: testNow.Add(2 * time.Hour),
			})
			if err == nil {
				wins.Add(1)
				return
			}
			assert.ErrorIs(t, err, ErrStaleSession)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	_, err := m.FindSessionByToken(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sessions, err := m.ListSessionsByUser(ctx, "u-1", time.Time{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].ExpiresAt.Equal(testNow.Add(2*time.Hour)))
}

func TestMemoryStore_SessionsRequireLiveUser(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.CreateSession(context.Background(), models.Session{ID: "s-1", UserID: "ghost", RefreshToken: "r"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStore_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")
	seedSession(t, m, "s-1", "u-1", "r-1", testNow.Add(-time.Minute))
	seedSession(t, m, "s-2", "u-1", "r-2", testNow.Add(time.Hour))

	active, err := m.ListSessionsByUser(ctx, "u-1", testNow)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	n, err := m.DeleteExpiredSessions(ctx, testNow)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = m.FindSessionByID(ctx, "s-2")
	assert.NoError(t, err)
}

func TestMemoryStore_ResetPasswordSingleUse(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")
	seedSession(t, m, "s-1", "u-1", "r-1", testNow.Add(time.Hour))

	require.NoError(t, m.CreateResetToken(ctx, models.PasswordResetToken{
		ID: "t-1", UserID: "u-1", Token: "secret", ExpiresAt: testNow.Add(time.Hour), CreatedAt: testNow,
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.ResetPassword(ctx, "t-1", "u-1", "new-hash", testNow); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())

	tok, err := m.FindResetToken(ctx, "secret")
	require.NoError(t, err)
	assert.True(t, tok.Used)

	u, err := m.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.PasswordHash)

	_, err = m.FindSessionByToken(ctx, "r-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, m.ResetPassword(ctx, "t-1", "u-1", "x", testNow), ErrTokenAlreadyUsed)
	assert.ErrorIs(t, m.ResetPassword(ctx, "t-404", "u-1", "x", testNow), ErrTokenNotFound)

	n, err := m.DeleteExpiredResetTokens(ctx, testNow)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryStore_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "u-1", "a@example.com", "alice")

	require.NoError(t, m.CreateVerificationToken(ctx, models.EmailVerificationToken{
		ID: "v-1", UserID: "u-1", Token: "secret", ExpiresAt: testNow.Add(time.Hour), CreatedAt: testNow,
	}))
	assert.ErrorIs(t, m.CreateVerificationToken(ctx, models.EmailVerificationToken{
		ID: "v-2", UserID: "ghost", Token: "other",
	}), ErrUserNotFound)

	require.NoError(t, m.VerifyEmail(ctx, "v-1", "u-1", testNow))
	assert.ErrorIs(t, m.VerifyEmail(ctx, "v-1", "u-1", testNow), ErrTokenAlreadyUsed)

	u, err := m.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
}

func TestNewStorages_InMemory(t *testing.T) {
	s := NewMemoryStorages(NewMemoryStore())
	require.NotNil(t, s.UserRepository)
	require.NotNil(t, s.SessionRepository)
	assert.NoError(t, s.Close())
}
