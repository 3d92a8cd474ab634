// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"slices"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
)

// auth is an HTTP middleware that enforces bearer-token authentication.
//
// The token is resolved with [service.AuthService.Authenticate]; on success
// the resulting [models.Caller] is stored in the request context with
// [utils.WithCaller]. Requests are rejected with 401 when the header is
// missing or malformed, the token is invalid, expired or revoked, and with
// 403 when the account is disabled.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			h.writeError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		tokenString, ok := utils.BearerToken(r)
		if !ok {
			h.writeError(w, r, ErrInvalidAuthorizationHeader)
			return
		}

		ctx := r.Context()
		caller, err := h.services.AuthService.Authenticate(ctx, tokenString)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		l := logger.FromRequest(r).With().Str("user_id", caller.UserID).Logger()
		ctx = l.WithContext(utils.WithCaller(ctx, caller))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole lets through only callers holding one of roles. It must be
// mounted after auth.
func (h *Handler) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := utils.CallerFromContext(r.Context())
			if !ok {
				h.writeError(w, r, ErrNoCaller)
				return
			}
			if !slices.Contains(roles, caller.Role) {
				h.writeError(w, r, service.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// callerOrError returns the caller stored by auth, writing 401 if absent.
func (h *Handler) callerOrError(w http.ResponseWriter, r *http.Request) (models.Caller, bool) {
	caller, ok := utils.CallerFromContext(r.Context())
	if !ok {
		h.writeError(w, r, ErrNoCaller)
	}
	return caller, ok
}
