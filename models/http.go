// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// RefreshRequest is the body of refresh and logout requests.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutAllRequest is the body of a logout-all request. When UserID is empty
// the authenticated caller is used.
type LogoutAllRequest struct {
	UserID string `json:"userId"`
}

// EmailRequest carries a single email address.
type EmailRequest struct {
	Email string `json:"email"`
}

// TokenRequest carries a single opaque token.
type TokenRequest struct {
	Token string `json:"token"`
}

// ResetPasswordRequest is the body of a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordRequest is the body of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileUpdateRequest is the body of a profile update.
type ProfileUpdateRequest struct {
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// PromoteRequest is the body of a promote-to-admin request.
type PromoteRequest struct {
	UserID string `json:"userId"`
}

// RoleRequest is the body of a role change.
type RoleRequest struct {
	Role string `json:"role"`
}

// StatusRequest is the body of an activation status change.
type StatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// MessageResponse is the generic success body.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyResponse is the body of a token verification.
type VerifyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Path      string            `json:"path,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// RegistrationResponse is the body of a successful registration.
type RegistrationResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// TokenIssuedResponse carries a freshly issued one-time token. Until mail
// delivery exists the token is returned to the client directly.
type TokenIssuedResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ProfileUpdateResponse is the body of a successful profile update.
type ProfileUpdateResponse struct {
	Message   string `json:"message"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// RoleResponse is the body of a role change or promotion.
type RoleResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	Role    Role   `json:"role"`
}

// StatusResponse is the body of an activation status change.
type StatusResponse struct {
	Message  string `json:"message"`
	IsActive bool   `json:"isActive"`
}

// HealthResponse is the body of the health probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
