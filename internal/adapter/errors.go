// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	ErrEmptyToken          = errors.New("empty access token")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("auth service internal error")
	ErrUnavailable         = errors.New("auth service unavailable")
)
