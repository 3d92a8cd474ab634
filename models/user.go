// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User represents a dealer-system account used for authentication and
// authorization. PasswordHash is never serialized.
type User struct {
	// ID is the opaque user identifier (UUID).
	ID string `json:"id"`

	// Email is unique among non-deleted users and is the login identifier.
	Email string `json:"email"`

	// Username is unique among non-deleted users.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`

	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`

	Role Role `json:"role"`

	Active        bool `json:"isActive"`
	EmailVerified bool `json:"emailVerified"`

	// FailedLoginAttempts counts consecutive failed logins since the last
	// successful one.
	FailedLoginAttempts int `json:"-"`

	// LockedUntil is set when the account is locked out; nil otherwise.
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`
}

// IsLocked reports whether the account is locked at the given moment.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Summary returns the public subset of the user returned on login.
func (u User) Summary() UserSummary {
	return UserSummary{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// UserSummary is the user part of a successful login response.
type UserSummary struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// UserUpdate carries a partial update of a user record. Nil fields are left
// untouched.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"fullName,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// IsEmpty reports whether the update has nothing to apply.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.Username == nil && u.FullName == nil && u.AvatarURL == nil
}

// UserFilter narrows an admin listing of users. Zero values mean "any";
// a zero Limit means no limit.
type UserFilter struct {
	Role           *Role
	Active         *bool
	IncludeDeleted bool
	Limit          uint64
	Offset         uint64
}
