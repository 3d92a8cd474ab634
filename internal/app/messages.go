// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used by the
// dealer-auth HTTP handlers.
//
// The Msg* constants are the human-readable texts written into successful
// response bodies. Keeping them in one place keeps the wording of the API
// stable.
package app

const (
	MsgRegistrationSuccessful = "Registration successful"
	MsgLoggedOut              = "Logged out successfully"
	MsgLoggedOutEverywhere    = "Logged out from all devices"

	// MsgTokenValid and MsgTokenInvalid answer GET /verify. The failure
	// reason is deliberately not distinguished.
	MsgTokenValid   = "Token is valid"
	MsgTokenInvalid = "Token is invalid or expired"

	MsgEmailVerified       = "Email verified successfully"
	MsgVerificationCreated = "Verification email sent"
	MsgResetEmailSent      = "Reset email sent"
	MsgPasswordReset       = "Password reset successfully"
	MsgPasswordChanged     = "Password changed successfully"
	MsgProfileUpdated      = "Profile updated"
	MsgSessionRevoked      = "Session revoked"
	MsgUserPromoted        = "User promoted to ADMIN"
	MsgUserDeactivated     = "User deactivated"
	MsgRoleUpdated         = "Role updated"
	MsgStatusUpdated       = "Status updated"
	MsgServiceHealthy      = "UP"
)
