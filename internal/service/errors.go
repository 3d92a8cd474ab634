// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

// Domain failures of the auth core. The HTTP layer maps each of them to a
// status code; match them with [errors.Is].
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrRateLimited        = errors.New("too many login attempts, try again later")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to too many failed login attempts")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidOrUsedToken = errors.New("invalid or already used token")

	// ErrInvalidVerificationToken is returned for an unknown email
	// verification token.
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrTokenAlreadyUsed         = errors.New("token has already been used")

	ErrWeakPassword = errors.New("password must be at least 8 characters and contain an uppercase letter, a digit and a symbol")

	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrDuplicateUsername = errors.New("username is already taken")

	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("access denied")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
