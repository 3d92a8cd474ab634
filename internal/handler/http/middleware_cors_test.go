// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/stretchr/testify/assert"
)

func corsRequest(t *testing.T, origins []string, method, origin string, preflight bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	h, _ := newTestHandler(t, config.Server{CORSAllowedOrigins: origins})
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(method, "/api/v1/auth/login", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	h.withCORS(next).ServeHTTP(rec, req)
	return rec, called
}

func TestWithCORS(t *testing.T) {
	origins := []string{"https://dealer.example.com"}

	t.Run("allowed origin", func(t *testing.T) {
		rec, called := corsRequest(t, origins, http.MethodPost, "https://dealer.example.com", false)

		assert.True(t, called)
		assert.Equal(t, "https://dealer.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, traceIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight is answered", func(t *testing.T) {
		rec, called := corsRequest(t, origins, http.MethodOptions, "https://dealer.example.com", true)

		assert.False(t, called)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("foreign origin gets no headers", func(t *testing.T) {
		rec, called := corsRequest(t, origins, http.MethodPost, "https://evil.example.com", false)

		assert.True(t, called)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		rec, _ := corsRequest(t, []string{"*"}, http.MethodGet, "https://any.example.com", false)

		assert.Equal(t, "https://any.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled without origins", func(t *testing.T) {
		rec, called := corsRequest(t, nil, http.MethodGet, "https://dealer.example.com", false)

		assert.True(t, called)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
