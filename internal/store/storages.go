// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/logger"
)

// Storages groups every repository used by the services.
type Storages struct {
	UserRepository              UserRepository
	SessionRepository           SessionRepository
	PasswordResetRepository     PasswordResetRepository
	EmailVerificationRepository EmailVerificationRepository

	closeFn func() error
}

// NewStorages builds the repositories for cfg. An empty DSN selects the
// in-memory store; otherwise PostgreSQL is connected and migrated.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	if cfg.DB.InMemory() {
		log.Warn().Str("func", "NewStorages").Msg("no database configured, using in-memory storage")
		return NewMemoryStorages(NewMemoryStore()), nil
	}

	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		_ = db.Close()
		return nil, err
	}

	return NewPostgresStorages(db, log), nil
}

// NewPostgresStorages wires the PostgreSQL repositories to db.
func NewPostgresStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:              NewUserRepository(db, log),
		SessionRepository:           NewSessionRepository(db, log),
		PasswordResetRepository:     NewPasswordResetRepository(db, log),
		EmailVerificationRepository: NewEmailVerificationRepository(db, log),
		closeFn:                     db.Close,
	}
}

// NewMemoryStorages exposes m through every repository interface.
func NewMemoryStorages(m *MemoryStore) *Storages {
	return &Storages{
		UserRepository:              m,
		SessionRepository:           m,
		PasswordResetRepository:     m,
		EmailVerificationRepository: m,
	}
}

// Close releases the underlying connection pool, if any.
func (s *Storages) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
