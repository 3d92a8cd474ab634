// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the claim set carried by access and refresh tokens.
//
// Subject holds the user's email. Role is empty for refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	Role Role `json:"role,omitempty"`
}

// TokenPair is an access token together with its refresh token.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned on a successful login.
type AuthResponse struct {
	TokenPair
	UserSummary
}

// Caller is the authenticated identity behind a request. It is passed
// explicitly into every operation that acts on behalf of a user.
type Caller struct {
	UserID string
	Email  string
	Role   Role
	Token  string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
