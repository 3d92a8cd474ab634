// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"strings"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/store"
	"github.com/MKhiriev/dealer-auth/models"
)

type accountService struct {
	users    store.UserRepository
	sessions store.SessionRepository
	now      func() time.Time

	logger *logger.Logger
}

func NewAccountService(storages *store.Storages, now func() time.Time, logger *logger.Logger) AccountService {
	if now == nil {
		now = time.Now
	}

	return &accountService{
		users:    storages.UserRepository,
		sessions: storages.SessionRepository,
		now:      now,
		logger:   logger,
	}
}

func (s *accountService) Profile(ctx context.Context, caller models.Caller) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, caller.UserID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", caller.UserID).Msg("profile lookup failed")
		return models.User{}, mapStoreError("profile lookup failed", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's display name and avatar. Blank fields
// are left as they are.
func (s *accountService) UpdateProfile(ctx context.Context, caller models.Caller, request models.ProfileUpdateRequest) (models.User, error) {
	var update models.UserUpdate
	if fullName := strings.TrimSpace(request.FullName); fullName != "" {
		update.FullName = &fullName
	}
	if avatarURL := strings.TrimSpace(request.AvatarURL); avatarURL != "" {
		update.AvatarURL = &avatarURL
	}
	if update.IsEmpty() {
		return models.User{}, ErrInvalidDataProvided
	}

	user, err := s.users.UpdateUser(ctx, caller.UserID, update, s.now())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", caller.UserID).Msg("profile update failed")
		return models.User{}, mapStoreError("profile update failed", err)
	}
	return user, nil
}

func (s *accountService) ListSessions(ctx context.Context, caller models.Caller) ([]models.Session, error) {
	sessions, err := s.sessions.ListSessionsByUser(ctx, caller.UserID, s.now())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", caller.UserID).Msg("sessions listing failed")
		return nil, mapStoreError("sessions listing failed", err)
	}
	return sessions, nil
}

func (s *accountService) RevokeSession(ctx context.Context, caller models.Caller, sessionID string) error {
	log := logger.FromContext(ctx)

	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return mapStoreError("session search failed", err)
	}
	if session.UserID != caller.UserID {
		log.Warn().Str("user_id", caller.UserID).Str("session_id", sessionID).Msg("revoking foreign session denied")
		return ErrForbidden
	}

	if err = s.sessions.DeleteSession(ctx, sessionID); err != nil {
		log.Err(err).Str("session_id", sessionID).Msg("session deletion failed")
		return mapStoreError("session deletion failed", err)
	}

	log.Info().Str("user_id", caller.UserID).Str("session_id", sessionID).Msg("session revoked")
	return nil
}
