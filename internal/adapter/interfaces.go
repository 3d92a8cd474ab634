// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the auth service for downstream
// services of the dealer system.
//
// [AuthClient] checks access tokens presented to another service against
// the auth service. Non-2xx responses are mapped by mapHTTPError to the
// sentinel errors of this package so callers can use [errors.Is].
package adapter

import "context"

// AuthClient verifies access tokens against the auth service.
type AuthClient interface {
	// Verify reports whether accessToken is currently valid. A rejected
	// token is (false, nil); an error means the answer is unknown.
	Verify(ctx context.Context, accessToken string) (bool, error)
}
