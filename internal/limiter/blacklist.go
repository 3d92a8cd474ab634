// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package limiter

import (
	"sync"
	"time"
)

// Blacklist is a denylist of access tokens with per-entry expiry. Expired
// entries are dropped lazily on lookup and in bulk by Purge.
type Blacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewBlacklist returns an empty Blacklist. A nil now defaults to time.Now.
func NewBlacklist(now func() time.Time) *Blacklist {
	if now == nil {
		now = time.Now
	}

	return &Blacklist{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// Add denies token until ttl from now. Adding a token again overwrites its
// expiry.
func (b *Blacklist) Add(token string, ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[token] = b.now().Add(ttl)
}

// IsBlacklisted reports whether token is denied. A stale entry found here is
// evicted.
func (b *Blacklist) IsBlacklisted(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[token]
	if !ok {
		return false
	}

	if b.now().After(expiresAt) {
		delete(b.entries, token)
		return false
	}

	return true
}

// Len returns the number of stored entries, stale ones included.
func (b *Blacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries)
}

// Purge evicts every expired entry and returns how many were removed.
func (b *Blacklist) Purge() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for token, expiresAt := range b.entries {
		if now.After(expiresAt) {
			delete(b.entries, token)
			removed++
		}
	}

	return removed
}
