// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the shape of incoming auth requests before they
// reach the services, and owns the password policy.
//
// A failed request validation is reported as [FieldErrors], a map from JSON
// field name to message, which the HTTP layer returns in the "errors" member
// of the error body.
package validators

import "context"

// Validator validates arbitrary input values, optionally restricted to
// the named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
