// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	// ErrWeakPassword is returned when a password does not meet the policy:
	// at least 8 characters with an uppercase letter, a digit and a symbol.
	ErrWeakPassword = errors.New("password does not meet complexity requirements")
)

// Field error messages.
const (
	msgRequired        = "must not be blank"
	msgInvalidEmail    = "must be a well-formed email address"
	msgInvalidUsername = "must be 3-50 letters, digits, dots, dashes or underscores"
	msgTooShort        = "must be at least 8 characters"
	msgTooLong         = "is too long"
	msgPasswordTooLong = "must be at most 72 bytes"
	msgWeakPassword    = "must contain an uppercase letter, a digit and a symbol"
	msgInvalidURL      = "must be an absolute http(s) URL"
	msgInvalidRole     = "must be one of ADMIN, DEALER_MANAGER, DEALER_STAFF, USER"
	msgNoFields        = "at least one field must be provided"
)

// FieldErrors collects validation failures keyed by JSON field name.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := slices.Sorted(maps.Keys(e))

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(" ")
		b.WriteString(e[k])
	}
	return b.String()
}

func (e FieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
