// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/crypto"
	"github.com/MKhiriev/dealer-auth/internal/limiter"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/internal/store"
	"github.com/MKhiriev/dealer-auth/internal/token"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testStart = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

const testPassword = "Secret1!"

// testClock is a manually advanced clock shared by every component of a
// test environment.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testStart}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingMetrics captures the auth events a test cares about.
type recordingMetrics struct {
	metrics.Recorder

	mu        sync.Mutex
	logins    []string
	refreshes []string
	lockouts  int
	limited   int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{Recorder: metrics.Nop()}
}

func (r *recordingMetrics) RecordLogin(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, outcome)
}

func (r *recordingMetrics) RecordRefresh(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes = append(r.refreshes, outcome)
}

func (r *recordingMetrics) RecordLockout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockouts++
}

func (r *recordingMetrics) RecordRateLimited(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limited++
}

func testAuthConfig() config.Auth {
	return config.Auth{
		TokenSecret:          "test-secret",
		TokenIssuer:          "dealer-auth",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		VerificationTokenTTL: 24 * time.Hour,
		BlacklistTTL:         15 * time.Minute,
		LoginRateLimit:       5,
		LoginRateWindow:      15 * time.Minute,
		MaxFailedAttempts:    5,
		LockoutDuration:      15 * time.Minute,
		BcryptCost:           bcrypt.MinCost,
	}
}

// testEnv is an auth core over the in-memory store.
type testEnv struct {
	clock     *testClock
	store     *store.MemoryStore
	storages  *store.Storages
	security  Security
	metrics   *recordingMetrics
	auth      AuthService
	account   AccountService
	admin     UserAdminService
	ipCounter atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testAuthConfig()
	clock := newTestClock()

	codec, err := token.NewCodec(cfg.TokenSecret, cfg.TokenIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clock.Now)
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	storages := store.NewMemoryStorages(mem)
	security := Security{
		Codec:     codec,
		Limiter:   limiter.NewFixedWindow(cfg.LoginRateLimit, cfg.LoginRateWindow, clock.Now),
		Blacklist: limiter.NewBlacklist(clock.Now),
		Hasher:    crypto.NewBcryptHasher(cfg.BcryptCost),
		Tokens:    crypto.NewTokenGenerator(),
		IDs:       utils.NewUUIDGenerator(),
		Now:       clock.Now,
	}
	recorder := newRecordingMetrics()

	return &testEnv{
		clock:    clock,
		store:    mem,
		storages: storages,
		security: security,
		metrics:  recorder,
		auth:     NewAuthService(storages, security, cfg, recorder, logger.Nop()),
		account:  NewAccountService(storages, clock.Now, logger.Nop()),
		admin:    NewUserAdminService(storages, clock.Now, logger.Nop()),
	}
}

// client returns client info with an IP not used before in this
// environment, so tests not about rate limiting never hit the limiter.
func (e *testEnv) client() models.ClientInfo {
	n := e.ipCounter.Add(1)
	return models.ClientInfo{
		IPAddress: fmt.Sprintf("10.0.%d.%d", n/250, n%250+1),
		UserAgent: "service-test",
	}
}

func (e *testEnv) register(t *testing.T, email, username string) models.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), models.Registration{
		Email:    email,
		Username: username,
		FullName: "Test " + username,
		Password: testPassword,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) login(t *testing.T, email, password string) models.AuthResponse {
	t.Helper()
	resp, err := e.auth.Login(context.Background(), models.Credentials{Email: email, Password: password}, e.client())
	require.NoError(t, err)
	return resp
}

func callerOf(user models.User) models.Caller {
	return models.Caller{UserID: user.ID, Email: user.Email, Role: user.Role}
}
