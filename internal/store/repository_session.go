// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/jackc/pgerrcode"
)

// sessionRepository is the PostgreSQL-backed implementation of
// [SessionRepository].
type sessionRepository struct {
	*DB
	logger *logger.Logger
}

// NewSessionRepository constructs a [SessionRepository] backed by db.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		DB:     db,
		logger: logger,
	}
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshToken,
		&s.DeviceInfo,
		&s.IPAddress,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	return s, err
}

func classifySessionError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}

	switch postgresError(err) {
	case pgerrcode.UniqueViolation:
		if postgresConstraint(err) == constraintSessionRefreshToken {
			return ErrSessionAlreadyExists
		}
		return fmt.Errorf("unexpected DB error: %w", err)
	case pgerrcode.InvalidTextRepresentation:
		return ErrSessionNotFound
	case pgerrcode.ForeignKeyViolation:
		return ErrUserNotFound
	default:
		return fmt.Errorf("unexpected DB error: %w", err)
	}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session models.Session) (models.Session, error) {
	log := logger.FromContext(ctx)

	row := r.DB.QueryRowContext(ctx, createSession,
		session.ID, session.UserID, session.RefreshToken, session.DeviceInfo,
		session.IPAddress, session.UserAgent, session.ExpiresAt, session.CreatedAt,
	)

	created, err := scanSession(row)
	if err != nil {
		log.Err(err).
			Str("func", "*sessionRepository.CreateSession").
			Str("user_id", session.UserID).
			Msg("failed to create session")
		return models.Session{}, classifySessionError(err)
	}

	return created, nil
}

func (r *sessionRepository) FindSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	session, err := scanSession(r.DB.QueryRowContext(ctx, findSessionByToken, refreshToken))
	if err != nil {
		err = classifySessionError(err)
		if !errors.Is(err, ErrSessionNotFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*sessionRepository.FindSessionByToken").Msg("failed to find session")
		}
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) FindSessionByID(ctx context.Context, id string) (models.Session, error) {
	session, err := scanSession(r.DB.QueryRowContext(ctx, findSessionByID, id))
	if err != nil {
		err = classifySessionError(err)
		if !errors.Is(err, ErrSessionNotFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*sessionRepository.FindSessionByID").Str("id", id).Msg("failed to find session")
		}
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) ListSessionsByUser(ctx context.Context, userID string, activeAt time.Time) ([]models.Session, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListSessionsQuery(userID, activeAt)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.ListSessionsByUser").Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*sessionRepository.ListSessionsByUser").
			Str("user_id", userID).
			Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0, 4)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "*sessionRepository.ListSessionsByUser").
				Str("user_id", userID).
				Msg("failed to scan session row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "*sessionRepository.ListSessionsByUser").
			Str("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return sessions, nil
}

// RotateSession is a compare-and-swap on the refresh token column: of two
// concurrent rotations presenting the same old token only one matches.
func (r *sessionRepository) RotateSession(ctx context.Context, rotation models.SessionRotation) error {
	log := logger.FromContext(ctx)

	err := execAffectingOne(ctx, r.DB, ErrStaleSession, rotateSession,
		rotation.SessionID, rotation.OldToken, rotation.NewToken, rotation.ExpiresAt)
	if err != nil {
		if errors.Is(err, ErrStaleSession) {
			log.Warn().
				Str("func", "*sessionRepository.RotateSession").
				Str("session_id", rotation.SessionID).
				Msg("refresh token was already rotated")
			return err
		}
		log.Err(err).
			Str("func", "*sessionRepository.RotateSession").
			Str("session_id", rotation.SessionID).
			Msg("failed to rotate session")
		return classifySessionError(err)
	}

	return nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.deleteOne(ctx, "*sessionRepository.DeleteSession", deleteSession, id)
}

func (r *sessionRepository) DeleteSessionByToken(ctx context.Context, refreshToken string) error {
	return r.deleteOne(ctx, "*sessionRepository.DeleteSessionByToken", deleteSessionByToken, refreshToken)
}

func (r *sessionRepository) deleteOne(ctx context.Context, fn, query string, arg any) error {
	err := execAffectingOne(ctx, r.DB, ErrSessionNotFound, query, arg)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to delete session")
		return classifySessionError(err)
	}

	return nil
}

func (r *sessionRepository) DeleteSessionsByUser(ctx context.Context, userID string) (int64, error) {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, deleteSessionsByUser, userID)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.DeleteSessionsByUser").Str("user_id", userID).Msg("failed to delete sessions")
		if postgresError(err) == pgerrcode.InvalidTextRepresentation {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res.RowsAffected()
}

func (r *sessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.execWithRetry(ctx, deleteExpiredSessions, before)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionRepository.DeleteExpiredSessions").Msg("failed to delete expired sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res.RowsAffected()
}
