// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/internal/store"
)

// Cleanup kinds reported to the metrics recorder.
const (
	KindSessions           = "sessions"
	KindResetTokens        = "reset_tokens"
	KindVerificationTokens = "verification_tokens"
	KindBlacklist          = "blacklist"
	KindLoginWindows       = "login_windows"
	KindAPIClients         = "api_clients"
)

// NamedPurger is an in-memory structure purged on every pass.
type NamedPurger struct {
	Kind   string
	Purger Purger
}

// PurgerFunc adapts a function to [Purger].
type PurgerFunc func() int

func (f PurgerFunc) Purge() int { return f() }

// CleanupWorker periodically removes expired sessions, reset and
// verification tokens from storage and purges in-memory state such as the
// token blacklist.
type CleanupWorker struct {
	sessions      ExpiredSessionsRemover
	resetTokens   ExpiredResetTokensRemover
	verifications ExpiredVerificationTokensRemover
	purgers       []NamedPurger

	interval time.Duration
	now      func() time.Time
	metrics  metrics.Recorder
	logger   *logger.Logger
}

// NewCleanupWorker builds a worker over the repositories of storages. A nil
// now defaults to time.Now and a nil recorder to [metrics.Nop].
func NewCleanupWorker(storages *store.Storages, interval time.Duration, now func() time.Time, recorder metrics.Recorder, logger *logger.Logger, purgers ...NamedPurger) *CleanupWorker {
	if now == nil {
		now = time.Now
	}
	if recorder == nil {
		recorder = metrics.Nop()
	}

	return &CleanupWorker{
		sessions:      storages.SessionRepository,
		resetTokens:   storages.PasswordResetRepository,
		verifications: storages.EmailVerificationRepository,
		purgers:       purgers,
		interval:      interval,
		now:           now,
		metrics:       recorder,
		logger:        logger,
	}
}

// Run performs a pass every interval until ctx is cancelled. A
// non-positive interval disables the worker.
func (c *CleanupWorker) Run(ctx context.Context) {
	if c.interval <= 0 {
		c.logger.Warn().Msg("cleanup worker disabled")
		return
	}

	c.logger.Info().Dur("interval", c.interval).Msg("cleanup worker started")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("cleanup worker stopped")
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass. A failing step is logged and the
// remaining steps still run.
func (c *CleanupWorker) RunOnce(ctx context.Context) {
	now := c.now()

	c.deleteExpired(ctx, KindSessions, func() (int64, error) {
		return c.sessions.DeleteExpiredSessions(ctx, now)
	})
	c.deleteExpired(ctx, KindResetTokens, func() (int64, error) {
		return c.resetTokens.DeleteExpiredResetTokens(ctx, now)
	})
	c.deleteExpired(ctx, KindVerificationTokens, func() (int64, error) {
		return c.verifications.DeleteExpiredVerificationTokens(ctx, now)
	})

	for _, p := range c.purgers {
		removed := p.Purger.Purge()
		c.report(p.Kind, int64(removed))
	}
}

func (c *CleanupWorker) deleteExpired(ctx context.Context, kind string, fn func() (int64, error)) {
	if ctx.Err() != nil {
		return
	}

	removed, err := fn()
	if err != nil {
		c.logger.Err(err).Str("kind", kind).Msg("cleanup step failed")
		return
	}
	c.report(kind, removed)
}

func (c *CleanupWorker) report(kind string, removed int64) {
	c.metrics.RecordCleanup(kind, removed)
	if removed > 0 {
		c.logger.Debug().Str("kind", kind).Int64("removed", removed).Msg("expired records removed")
	}
}
