// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) AuthClient {
	t.Helper()

	client, err := NewHTTPAuthClient(serverURL, 2*time.Second, logger.Nop())
	require.NoError(t, err)
	return client
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "localhost:8080", want: "http://localhost:8080"},
		{raw: " https://auth.example.com/ ", want: "https://auth.example.com"},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify_ValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, verifyPath, r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		utils.WriteJSON(w, models.VerifyResponse{Valid: true, Message: "Token is valid"}, http.StatusOK)
	}))
	defer srv.Close()

	valid, err := newTestClient(t, srv.URL).Verify(context.Background(), "access-token")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerify_InvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, models.VerifyResponse{Valid: false, Message: "Token is invalid"}, http.StatusOK)
	}))
	defer srv.Close()

	valid, err := newTestClient(t, srv.URL).Verify(context.Background(), "revoked")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerify_EmptyToken(t *testing.T) {
	client := newTestClient(t, "localhost:1")

	_, err := client.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestVerify_MapsErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusBadRequest, want: ErrBadRequest},
		{status: http.StatusUnauthorized, want: ErrUnauthorized},
		{status: http.StatusTooManyRequests, want: ErrTooManyRequests},
		{status: http.StatusInternalServerError, want: ErrInternalServerError},
		{status: http.StatusServiceUnavailable, want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				utils.WriteJSON(w, models.ErrorResponse{Status: tt.status, Message: "from server"}, tt.status)
			}))
			defer srv.Close()

			valid, err := newTestClient(t, srv.URL).Verify(context.Background(), "token")
			assert.False(t, valid)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "from server")
		})
	}
}

func TestVerify_PlainTextErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout\n"))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Verify(context.Background(), "token")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "http 418: short and stout"))
}
