// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/store"
	"github.com/MKhiriev/dealer-auth/models"
)

type userAdminService struct {
	users    store.UserRepository
	sessions store.SessionRepository
	now      func() time.Time

	logger *logger.Logger
}

func NewUserAdminService(storages *store.Storages, now func() time.Time, logger *logger.Logger) UserAdminService {
	if now == nil {
		now = time.Now
	}

	return &userAdminService{
		users:    storages.UserRepository,
		sessions: storages.SessionRepository,
		now:      now,
		logger:   logger,
	}
}

func (s *userAdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Err(err).Msg("users listing failed")
		return nil, mapStoreError("users listing failed", err)
	}
	return users, nil
}

func (s *userAdminService) GetUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return models.User{}, mapStoreError("user search by id failed", err)
	}
	return user, nil
}

func (s *userAdminService) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) (models.User, error) {
	if update.IsEmpty() {
		return models.User{}, ErrInvalidDataProvided
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		update.Email = &email
	}

	user, err := s.users.UpdateUser(ctx, userID, update, s.now())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", userID).Msg("user update failed")
		return models.User{}, mapStoreError("user update failed", err)
	}
	return user, nil
}

func (s *userAdminService) SetRole(ctx context.Context, userID string, role models.Role) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := s.users.SetRole(ctx, userID, role, s.now()); err != nil {
		log.Err(err).Str("user_id", userID).Msg("role update failed")
		return models.User{}, mapStoreError("role update failed", err)
	}

	log.Info().Str("user_id", userID).Str("role", role.String()).Msg("role updated")
	return s.GetUser(ctx, userID)
}

// SetActive enables or disables an account. Disabling also ends the
// account's sessions.
func (s *userAdminService) SetActive(ctx context.Context, userID string, active bool) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := s.users.SetActive(ctx, userID, active, s.now()); err != nil {
		log.Err(err).Str("user_id", userID).Msg("status update failed")
		return models.User{}, mapStoreError("status update failed", err)
	}

	if !active {
		if _, err := s.sessions.DeleteSessionsByUser(ctx, userID); err != nil {
			log.Err(err).Str("user_id", userID).Msg("sessions deletion failed")
			return models.User{}, mapStoreError("sessions deletion failed", err)
		}
	}

	log.Info().Str("user_id", userID).Bool("active", active).Msg("status updated")
	return s.GetUser(ctx, userID)
}

func (s *userAdminService) DeleteUser(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	if err := s.users.SoftDelete(ctx, userID, s.now()); err != nil {
		log.Err(err).Str("user_id", userID).Msg("user deletion failed")
		return mapStoreError("user deletion failed", err)
	}

	log.Info().Str("user_id", userID).Msg("user deactivated")
	return nil
}
