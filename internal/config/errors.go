// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate].
var (
	// ErrInvalidAuthConfigs indicates a missing token secret or a
	// non-positive TTL, limit or bcrypt cost out of range.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidServerConfigs indicates a missing HTTP address or bad API
	// throttling settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidWorkerConfigs indicates a zero housekeeping interval.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
