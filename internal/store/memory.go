// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/dealer-auth/models"
)

// MemoryStore is an in-process implementation of every repository
// interface. It is used when no database is configured and in tests.
//
// A single RWMutex guards all maps, which makes multi-record operations
// such as ResetPassword atomic without transactions.
type MemoryStore struct {
	mu sync.RWMutex

	users          map[string]models.User
	emailIndex     map[string]string // email → user id, non-deleted only
	usernameIndex  map[string]string // username → user id, non-deleted only
	sessions       map[string]models.Session
	sessionByToken map[string]string // refresh token → session id
	resetTokens    map[string]models.PasswordResetToken
	verifyTokens   map[string]models.EmailVerificationToken
}

var (
	_ UserRepository              = (*MemoryStore)(nil)
	_ SessionRepository           = (*MemoryStore)(nil)
	_ PasswordResetRepository     = (*MemoryStore)(nil)
	_ EmailVerificationRepository = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[string]models.User),
		emailIndex:     make(map[string]string),
		usernameIndex:  make(map[string]string),
		sessions:       make(map[string]models.Session),
		sessionByToken: make(map[string]string),
		resetTokens:    make(map[string]models.PasswordResetToken),
		verifyTokens:   make(map[string]models.EmailVerificationToken),
	}
}

// ─── users ───────────────────────────────────────────────────────────────────

func (m *MemoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	if user.ID == "" || user.Email == "" || user.Username == "" {
		return models.User{}, ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emailIndex[user.Email]; ok {
		return models.User{}, ErrEmailAlreadyExists
	}
	if _, ok := m.usernameIndex[user.Username]; ok {
		return models.User{}, ErrUsernameAlreadyExists
	}
	if _, ok := m.users[user.ID]; ok {
		return models.User{}, ErrInvalidData
	}

	m.users[user.ID] = user
	m.emailIndex[user.Email] = user.ID
	m.usernameIndex[user.Username] = user.ID

	return user, nil
}

// liveUser returns a non-deleted user. Callers hold m.mu.
func (m *MemoryStore) liveUser(id string) (models.User, bool) {
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return models.User{}, false
	}
	return u, true
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.liveUser(id)
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emailIndex[email]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return m.users[id], nil
}

func (m *MemoryStore) ListUsers(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	m.mu.RLock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if !filter.IncludeDeleted && u.DeletedAt != nil {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		users = append(users, u)
	}
	m.mu.RUnlock()

	slices.SortFunc(users, func(a, b models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if filter.Offset >= uint64(len(users)) {
		return []models.User{}, nil
	}
	users = users[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < uint64(len(users)) {
		users = users[:filter.Limit]
	}

	return users, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, id string, update models.UserUpdate, at time.Time) (models.User, error) {
	if update.IsEmpty() {
		return models.User{}, ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.liveUser(id)
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	if update.Email != nil && *update.Email != u.Email {
		if _, taken := m.emailIndex[*update.Email]; taken {
			return models.User{}, ErrEmailAlreadyExists
		}
	}
	if update.Username != nil && *update.Username != u.Username {
		if _, taken := m.usernameIndex[*update.Username]; taken {
			return models.User{}, ErrUsernameAlreadyExists
		}
	}

	if update.Email != nil {
		delete(m.emailIndex, u.Email)
		u.Email = *update.Email
		m.emailIndex[u.Email] = id
	}
	if update.Username != nil {
		delete(m.usernameIndex, u.Username)
		u.Username = *update.Username
		m.usernameIndex[u.Username] = id
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	u.UpdatedAt = at

	m.users[id] = u
	return u, nil
}

// mutateUser applies fn to a live user under the write lock.
func (m *MemoryStore) mutateUser(id string, fn func(u *models.User)) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutateUserLocked(id, fn)
}

func (m *MemoryStore) mutateUserLocked(id string, fn func(u *models.User)) (models.User, error) {
	u, ok := m.liveUser(id)
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	fn(&u)
	m.users[id] = u
	return u, nil
}

func (m *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.mutateUserLocked(id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = at
	})
	if err != nil {
		return err
	}

	m.deleteSessionsByUserLocked(id)
	return nil
}

func (m *MemoryStore) SetRole(_ context.Context, id string, role models.Role, at time.Time) error {
	_, err := m.mutateUser(id, func(u *models.User) {
		u.Role = role
		u.UpdatedAt = at
	})
	return err
}

func (m *MemoryStore) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	_, err := m.mutateUser(id, func(u *models.User) {
		u.Active = active
		u.UpdatedAt = at
	})
	return err
}

func (m *MemoryStore) SoftDelete(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.mutateUserLocked(id, func(u *models.User) {
		u.Active = false
		u.DeletedAt = &at
		u.UpdatedAt = at
	})
	if err != nil {
		return err
	}

	delete(m.emailIndex, u.Email)
	delete(m.usernameIndex, u.Username)
	m.deleteSessionsByUserLocked(id)
	return nil
}

func (m *MemoryStore) RecordLoginFailure(_ context.Context, id string, maxAttempts int, lockUntil, at time.Time) (models.User, error) {
	return m.mutateUser(id, func(u *models.User) {
		u.FailedLoginAttempts++
		if u.FailedLoginAttempts >= maxAttempts {
			u.LockedUntil = &lockUntil
		}
		u.UpdatedAt = at
	})
}

func (m *MemoryStore) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	_, err := m.mutateUser(id, func(u *models.User) {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
		u.LastLogin = &at
		u.UpdatedAt = at
	})
	return err
}

// ─── sessions ────────────────────────────────────────────────────────────────

func (m *MemoryStore) CreateSession(_ context.Context, session models.Session) (models.Session, error) {
	if session.ID == "" || session.RefreshToken == "" {
		return models.Session{}, ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.liveUser(session.UserID); !ok {
		return models.Session{}, ErrUserNotFound
	}
	if _, ok := m.sessionByToken[session.RefreshToken]; ok {
		return models.Session{}, ErrSessionAlreadyExists
	}

	m.sessions[session.ID] = session
	m.sessionByToken[session.RefreshToken] = session.ID
	return session, nil
}

func (m *MemoryStore) FindSessionByToken(_ context.Context, refreshToken string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.sessionByToken[refreshToken]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return m.sessions[id], nil
}

func (m *MemoryStore) FindSessionByID(_ context.Context, id string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) ListSessionsByUser(_ context.Context, userID string, activeAt time.Time) ([]models.Session, error) {
	m.mu.RLock()
	sessions := make([]models.Session, 0, 4)
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if !activeAt.IsZero() && s.IsExpired(activeAt) {
			continue
		}
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(sessions, func(a, b models.Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return sessions, nil
}

func (m *MemoryStore) RotateSession(_ context.Context, rotation models.SessionRotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[rotation.SessionID]
	if !ok || s.RefreshToken != rotation.OldToken {
		return ErrStaleSession
	}
	if _, taken := m.sessionByToken[rotation.NewToken]; taken {
		return ErrSessionAlreadyExists
	}

	delete(m.sessionByToken, s.RefreshToken)
	s.RefreshToken = rotation.NewToken
	s.ExpiresAt = rotation.ExpiresAt
	m.sessions[s.ID] = s
	m.sessionByToken[s.RefreshToken] = s.ID

	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	delete(m.sessions, id)
	delete(m.sessionByToken, s.RefreshToken)
	return nil
}

func (m *MemoryStore) DeleteSessionByToken(_ context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.sessionByToken[refreshToken]
	if !ok {
		return ErrSessionNotFound
	}

	delete(m.sessions, id)
	delete(m.sessionByToken, refreshToken)
	return nil
}

func (m *MemoryStore) DeleteSessionsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteSessionsByUserLocked(userID), nil
}

func (m *MemoryStore) deleteSessionsByUserLocked(userID string) int64 {
	var removed int64
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			delete(m.sessionByToken, s.RefreshToken)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(before) {
			delete(m.sessions, id)
			delete(m.sessionByToken, s.RefreshToken)
			removed++
		}
	}
	return removed, nil
}

// ─── password reset tokens ───────────────────────────────────────────────────

func (m *MemoryStore) CreateResetToken(_ context.Context, token models.PasswordResetToken) error {
	if token.ID == "" || token.Token == "" {
		return ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.liveUser(token.UserID); !ok {
		return ErrUserNotFound
	}
	if _, ok := m.resetTokens[token.Token]; ok {
		return ErrInvalidData
	}

	m.resetTokens[token.Token] = token
	return nil
}

func (m *MemoryStore) FindResetToken(_ context.Context, token string) (models.PasswordResetToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.resetTokens[token]
	if !ok {
		return models.PasswordResetToken{}, ErrTokenNotFound
	}
	return t, nil
}

func (m *MemoryStore) ResetPassword(_ context.Context, tokenID, userID, passwordHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, t, ok := findByID(m.resetTokens, tokenID, func(t models.PasswordResetToken) string { return t.ID })
	if !ok {
		return ErrTokenNotFound
	}
	if t.Used {
		return ErrTokenAlreadyUsed
	}
	if _, ok := m.liveUser(userID); !ok {
		return ErrUserNotFound
	}

	t.Used = true
	m.resetTokens[key] = t

	_, _ = m.mutateUserLocked(userID, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = at
	})
	m.deleteSessionsByUserLocked(userID)

	return nil
}

func (m *MemoryStore) DeleteExpiredResetTokens(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for key, t := range m.resetTokens {
		if t.Used || t.ExpiresAt.Before(before) {
			delete(m.resetTokens, key)
			removed++
		}
	}
	return removed, nil
}

// ─── email verification tokens ───────────────────────────────────────────────

func (m *MemoryStore) CreateVerificationToken(_ context.Context, token models.EmailVerificationToken) error {
	if token.ID == "" || token.Token == "" {
		return ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.liveUser(token.UserID); !ok {
		return ErrUserNotFound
	}
	if _, ok := m.verifyTokens[token.Token]; ok {
		return ErrInvalidData
	}

	m.verifyTokens[token.Token] = token
	return nil
}

func (m *MemoryStore) FindVerificationToken(_ context.Context, token string) (models.EmailVerificationToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.verifyTokens[token]
	if !ok {
		return models.EmailVerificationToken{}, ErrTokenNotFound
	}
	return t, nil
}

func (m *MemoryStore) VerifyEmail(_ context.Context, tokenID, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, t, ok := findByID(m.verifyTokens, tokenID, func(t models.EmailVerificationToken) string { return t.ID })
	if !ok {
		return ErrTokenNotFound
	}
	if t.Used {
		return ErrTokenAlreadyUsed
	}
	if _, ok := m.liveUser(userID); !ok {
		return ErrUserNotFound
	}

	t.Used = true
	m.verifyTokens[key] = t

	_, _ = m.mutateUserLocked(userID, func(u *models.User) {
		u.EmailVerified = true
		u.UpdatedAt = at
	})

	return nil
}

func (m *MemoryStore) DeleteExpiredVerificationTokens(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for key, t := range m.verifyTokens {
		if t.Used || t.ExpiresAt.Before(before) {
			delete(m.verifyTokens, key)
			removed++
		}
	}
	return removed, nil
}

// findByID scans a token map keyed by token value for the record with id.
func findByID[T any](tokens map[string]T, id string, idOf func(T) string) (string, T, bool) {
	for key, t := range tokens {
		if idOf(t) == id {
			return key, t, true
		}
	}

	var zero T
	return "", zero, false
}
