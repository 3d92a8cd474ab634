// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers used across the
// application: request-scoped context values, HTTP response writing and
// client address extraction, the resty-based HTTP client and id generation.
package utils

import (
	"context"

	"github.com/MKhiriev/dealer-auth/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// CallerCtxKey is the key under which the authentication middleware stores
// the [models.Caller] of a request.
var CallerCtxKey = contextKey("caller")

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, CallerCtxKey, caller)
}

// CallerFromContext retrieves the authenticated caller stored by
// [WithCaller].
//
// Returns the caller and an ok flag:
//   - ok == true  — a caller is present
//   - ok == false — the request was not authenticated
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(CallerCtxKey).(models.Caller)
	return caller, ok
}
