// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package limiter holds the process-local shared state of the auth core:
// the fixed-window login rate limiter and the access token blacklist.
//
// Both types guard their map with a single mutex. Every call takes the lock
// for a constant amount of work, which is fine at login volumes but is the
// first place to look if lock contention ever shows up in profiles.
package limiter

import (
	"math"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindow counts calls per key in discrete windows. A window starts on
// the first call for a key and the counter resets once the clock passes the
// window end.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewFixedWindow returns a limiter allowing limit calls per window. A nil now
// defaults to time.Now.
func NewFixedWindow(limit int, window time.Duration, now func() time.Time) *FixedWindow {
	if now == nil {
		now = time.Now
	}

	return &FixedWindow{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		now:     now,
	}
}

// Allow reports whether another call for key fits in the current window and
// counts it if so. Rejected calls are not counted.
func (l *FixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}

	if b.count >= l.limit {
		return false
	}

	b.count++
	return true
}

// SecondsUntilReset returns the whole seconds left in the current window of
// key, rounded up, or 0 when key has no active window.
func (l *FixedWindow) SecondsUntilReset(key string) int64 {
	l.mu.Lock()
	b, ok := l.buckets[key]
	l.mu.Unlock()
	if !ok {
		return 0
	}

	left := b.resetAt.Sub(l.now())
	if left <= 0 {
		return 0
	}

	return int64(math.Ceil(left.Seconds()))
}

// Purge drops buckets whose window has ended and returns how many were
// removed.
func (l *FixedWindow) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, key)
			removed++
		}
	}

	return removed
}
