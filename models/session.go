// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Session binds a refresh token to a user and an expiry.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RefreshToken string    `json:"-"`
	DeviceInfo   string    `json:"deviceInfo,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ClientInfo describes the client performing a login or refresh.
type ClientInfo struct {
	IPAddress  string
	UserAgent  string
	DeviceInfo string
}

// SessionRotation describes a conditional refresh-token rotation: the session
// is updated only if its stored token still equals OldToken.
type SessionRotation struct {
	SessionID string
	OldToken  string
	NewToken  string
	ExpiresAt time.Time
}
