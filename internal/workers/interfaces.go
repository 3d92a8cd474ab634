// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the background housekeeping of the auth service.
// It defines the Worker interface and a Workers aggregate that starts every
// worker and waits for all of them to stop.
package workers

import (
	"context"
	"time"
)

// Worker is a background task. Run blocks until ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// ExpiredSessionsRemover deletes sessions that expired before a moment.
type ExpiredSessionsRemover interface {
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// ExpiredResetTokensRemover deletes password reset tokens that expired
// before a moment.
type ExpiredResetTokensRemover interface {
	DeleteExpiredResetTokens(ctx context.Context, before time.Time) (int64, error)
}

// ExpiredVerificationTokensRemover deletes email verification tokens that
// expired before a moment.
type ExpiredVerificationTokensRemover interface {
	DeleteExpiredVerificationTokens(ctx context.Context, before time.Time) (int64, error)
}

// Purger drops expired in-memory entries and reports how many went away.
type Purger interface {
	Purge() int
}
