// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

//go:build integration

package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *Storages {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dealer_auth"),
		postgres.WithUsername("auth"),
		postgres.WithPassword("auth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storages, err := NewStorages(ctx, config.Storage{DB: config.DB{
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return storages
}

func TestPostgres_UserLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := testContext()
	now := time.Now().UTC().Truncate(time.Microsecond)

	user := models.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         models.RoleDealerStaff,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.UserRepository.CreateUser(ctx, user)
	require.NoError(t, err)

	dup := user
	dup.ID = uuid.NewString()
	dup.Username = "alice2"
	_, err = s.UserRepository.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	dup.Email = "other@example.com"
	dup.Username = "alice"
	_, err = s.UserRepository.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)

	_, err = s.UserRepository.FindUserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)

	lockUntil := now.Add(15 * time.Minute)
	var locked models.User
	for range 5 {
		locked, err = s.UserRepository.RecordLoginFailure(ctx, user.ID, 5, lockUntil, now)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, locked.FailedLoginAttempts)
	assert.True(t, locked.IsLocked(now))

	require.NoError(t, s.UserRepository.SoftDelete(ctx, user.ID, now))
	_, err = s.UserRepository.FindUserByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// the email is free again once the holder is deleted
	dup.ID = uuid.NewString()
	dup.Email = user.Email
	_, err = s.UserRepository.CreateUser(ctx, dup)
	assert.NoError(t, err)
}

func TestPostgres_ConcurrentRotation(t *testing.T) {
	s := setupPostgres(t)
	ctx := testContext()
	now := time.Now().UTC().Truncate(time.Microsecond)

	userID := uuid.NewString()
	_, err := s.UserRepository.CreateUser(ctx, models.User{
		ID: userID, Email: "bob@example.com", Username: "bob", PasswordHash: "h",
		Role: models.RoleUser, Active: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	sessionID := uuid.NewString()
	_, err = s.SessionRepository.CreateSession(ctx, models.Session{
		ID: sessionID, UserID: userID, RefreshToken: "old", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.SessionRepository.RotateSession(ctx, models.SessionRotation{
				SessionID: sessionID,
				OldToken:  "old",
				NewToken:  uuid.NewString(),
				ExpiresAt: now.Add(2 * time.Hour),
			})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
}

func TestPostgres_ResetPasswordSingleUse(t *testing.T) {
	s := setupPostgres(t)
	ctx := testContext()
	now := time.Now().UTC().Truncate(time.Microsecond)

	userID := uuid.NewString()
	_, err := s.UserRepository.CreateUser(ctx, models.User{
		ID: userID, Email: "carol@example.com", Username: "carol", PasswordHash: "h",
		Role: models.RoleUser, Active: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	tokenID := uuid.NewString()
	require.NoError(t, s.PasswordResetRepository.CreateResetToken(ctx, models.PasswordResetToken{
		ID: tokenID, UserID: userID, Token: "secret", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))

	require.NoError(t, s.PasswordResetRepository.ResetPassword(ctx, tokenID, userID, "new-hash", now))
	assert.ErrorIs(t, s.PasswordResetRepository.ResetPassword(ctx, tokenID, userID, "again", now), ErrTokenAlreadyUsed)

	u, err := s.UserRepository.FindUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.PasswordHash)
}
