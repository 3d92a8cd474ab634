// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(OutcomeSuccess)
	c.RecordLogin(OutcomeSuccess)
	c.RecordLogin(OutcomeFailure)
	c.RecordRegistration()
	c.RecordRefresh(OutcomeFailure)
	c.RecordLockout()
	c.RecordRateLimited("login")
	c.RecordCleanup("sessions", 3)
	c.RecordCleanup("sessions", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refreshes.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.lockouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rateLimited.WithLabelValues("login")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.cleanup.WithLabelValues("sessions")))
}

func TestCollector_HTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodPost, "/api/v1/auth/login", http.StatusUnauthorized, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpStatus.WithLabelValues("POST", "/api/v1/auth/login", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.httpLatency))
}

func TestCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistration()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "dealer_auth_registrations_total 1")
}

func TestNop(t *testing.T) {
	r := Nop()
	assert.NotPanics(t, func() {
		r.RecordLogin(OutcomeSuccess)
		r.RecordHTTPRequest("GET", "/", 200, time.Second)
		r.RecordCleanup("sessions", 1)
	})
}
