// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/dealer-auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUserAdminService_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "alice")
	env.register(t, "bob@example.com", "bob")
	ctx := context.Background()

	_, err := env.auth.PromoteToAdmin(ctx, alice.ID)
	require.NoError(t, err)

	all, err := env.admin.ListUsers(ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	admins, err := env.admin.ListUsers(ctx, models.UserFilter{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, alice.ID, admins[0].ID)

	got, err := env.admin.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = env.admin.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserAdminService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "alice")
	env.register(t, "bob@example.com", "bob")
	ctx := context.Background()

	updated, err := env.admin.UpdateUser(ctx, alice.ID, models.UserUpdate{Email: ptr("Alice.New@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", updated.Email)

	_, err = env.admin.UpdateUser(ctx, alice.ID, models.UserUpdate{Username: ptr("bob")})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = env.admin.UpdateUser(ctx, alice.ID, models.UserUpdate{})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestUserAdminService_SetRoleAndActive(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "alice")
	ctx := context.Background()
	resp := env.login(t, "alice@example.com", testPassword)

	user, err := env.admin.SetRole(ctx, alice.ID, models.RoleDealerManager)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDealerManager, user.Role)

	user, err = env.admin.SetActive(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.False(t, user.Active)

	_, err = env.auth.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "deactivation ends sessions")

	user, err = env.admin.SetActive(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.True(t, user.Active)

	_, err = env.admin.SetRole(ctx, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserAdminService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "alice")
	ctx := context.Background()

	require.NoError(t, env.admin.DeleteUser(ctx, alice.ID))

	_, err := env.admin.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.admin.DeleteUser(ctx, alice.ID), ErrNotFound)

	// the email is free again
	env.register(t, "alice@example.com", "alice")
}
