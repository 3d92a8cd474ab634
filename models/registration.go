// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Registration is the input of a user registration.
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Credentials is the input of a login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
