// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/mock"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	userToken  = "user-access-token"
	adminToken = "admin-access-token"
)

var (
	testUser  = models.Caller{UserID: "u-1", Email: "alice@example.com", Role: models.RoleDealerStaff, Token: userToken}
	testAdmin = models.Caller{UserID: "a-1", Email: "root@example.com", Role: models.RoleAdmin, Token: adminToken}
)

type handlerMocks struct {
	auth    *mock.MockAuthService
	account *mock.MockAccountService
	admin   *mock.MockUserAdminService
	info    *mock.MockAppInfoService
}

// newTestHandler builds a Handler over gomock services with a fixed clock
// and no throttling.
func newTestHandler(t *testing.T, cfg config.Server, opts ...Option) (*Handler, handlerMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := handlerMocks{
		auth:    mock.NewMockAuthService(ctrl),
		account: mock.NewMockAccountService(ctrl),
		admin:   mock.NewMockUserAdminService(ctrl),
		info:    mock.NewMockAppInfoService(ctrl),
	}
	services := &service.Services{
		AuthService:      m.auth,
		AccountService:   m.account,
		UserAdminService: m.admin,
		AppInfoService:   m.info,
	}

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewHandler(services, cfg, logger.Nop(), opts...), m
}

// expectAuthenticated lets token through the auth middleware as caller.
func (m handlerMocks) expectAuthenticated(caller models.Caller) {
	m.auth.EXPECT().Authenticate(gomock.Any(), caller.Token).Return(caller, nil)
}

// serve sends a request through the full router.
func serve(t *testing.T, h *Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:5555"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireErrorBody(t *testing.T, rec *httptest.ResponseRecorder, status int) models.ErrorResponse {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeResponse[models.ErrorResponse](t, rec)
	require.Equal(t, status, body.Status)
	require.True(t, testNow.Equal(body.Timestamp), "timestamp %s", body.Timestamp)
	return body
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// recordingMetrics is a metrics.Recorder keeping the events the HTTP layer
// reports.
type recordingMetrics struct {
	mu          sync.Mutex
	rateLimited []string
	requests    []string
}

func (r *recordingMetrics) RecordLogin(string) {}
func (r *recordingMetrics) RecordRegistration() {}
func (r *recordingMetrics) RecordRefresh(string) {}
func (r *recordingMetrics) RecordLockout() {}
func (r *recordingMetrics) RecordCleanup(string, int64) {}

func (r *recordingMetrics) RecordRateLimited(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimited = append(r.rateLimited, scope)
}

func (r *recordingMetrics) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, fmt.Sprintf("%s %s %d", method, route, status))
}
