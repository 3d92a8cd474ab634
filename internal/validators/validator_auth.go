// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/MKhiriev/dealer-auth/models"
)

const (
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldFullName        = "fullName"
	FieldPassword        = "password"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldRefreshToken    = "refreshToken"
	FieldToken           = "token"
	FieldAvatarURL       = "avatarUrl"
	FieldRole            = "role"
	FieldIsActive        = "isActive"
	FieldUserID          = "userId"
)

const (
	maxEmailLength    = 255
	maxNameLength     = 255
	maxURLLength      = 2048
	minUsernameLength = 3
	maxUsernameLength = 50
)

// AuthRequestValidator validates the request bodies of the auth API.
type AuthRequestValidator struct{}

func NewAuthRequestValidator() Validator {
	return &AuthRequestValidator{}
}

func (v *AuthRequestValidator) Validate(_ context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Registration:
		return v.validateRegistration(value, fields...)
	case *models.Registration:
		return v.validateRegistration(*value, fields...)

	case models.Credentials:
		return v.validateCredentials(value)
	case *models.Credentials:
		return v.validateCredentials(*value)

	case models.RefreshRequest:
		return required(FieldRefreshToken, value.RefreshToken)
	case models.TokenRequest:
		return required(FieldToken, value.Token)
	case models.EmailRequest:
		errs := FieldErrors{}
		checkEmail(errs, value.Email)
		return errs.orNil()
	case models.PromoteRequest:
		return required(FieldUserID, value.UserID)

	case models.ResetPasswordRequest:
		errs := FieldErrors{}
		if isBlank(value.Token) {
			errs.add(FieldToken, msgRequired)
		}
		checkNewPassword(errs, value.NewPassword)
		return errs.orNil()

	case models.ChangePasswordRequest:
		errs := FieldErrors{}
		if isBlank(value.CurrentPassword) {
			errs.add(FieldCurrentPassword, msgRequired)
		}
		checkNewPassword(errs, value.NewPassword)
		return errs.orNil()

	case models.ProfileUpdateRequest:
		return v.validateProfileUpdate(value)
	case models.UserUpdate:
		return v.validateUserUpdate(value)

	case models.RoleRequest:
		if _, ok := models.ParseRole(value.Role); !ok {
			return FieldErrors{FieldRole: msgInvalidRole}
		}
		return nil
	case models.StatusRequest:
		if value.IsActive == nil {
			return FieldErrors{FieldIsActive: msgRequired}
		}
		return nil

	default:
		return ErrUnsupportedType
	}
}

func (v *AuthRequestValidator) validateRegistration(r models.Registration, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldUsername, FieldPassword, FieldFullName}
	}

	errs := FieldErrors{}
	for _, f := range fields {
		switch f {
		case FieldEmail:
			checkEmail(errs, r.Email)
		case FieldUsername:
			checkUsername(errs, r.Username)
		case FieldPassword:
			switch {
			case isBlank(r.Password):
				errs.add(FieldPassword, msgRequired)
			case utf8.RuneCountInString(r.Password) < MinPasswordLength:
				errs.add(FieldPassword, msgTooShort)
			case len(r.Password) > MaxPasswordBytes:
				errs.add(FieldPassword, msgPasswordTooLong)
			}
		case FieldFullName:
			if utf8.RuneCountInString(r.FullName) > maxNameLength {
				errs.add(FieldFullName, msgTooLong)
			}
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

func (v *AuthRequestValidator) validateCredentials(c models.Credentials) error {
	errs := FieldErrors{}
	if isBlank(c.Email) {
		errs.add(FieldEmail, msgRequired)
	}
	if isBlank(c.Password) {
		errs.add(FieldPassword, msgRequired)
	}
	return errs.orNil()
}

func (v *AuthRequestValidator) validateProfileUpdate(p models.ProfileUpdateRequest) error {
	if isBlank(p.FullName) && isBlank(p.AvatarURL) {
		return FieldErrors{FieldFullName: msgNoFields}
	}

	errs := FieldErrors{}
	if utf8.RuneCountInString(p.FullName) > maxNameLength {
		errs.add(FieldFullName, msgTooLong)
	}
	if !isBlank(p.AvatarURL) {
		checkURL(errs, p.AvatarURL)
	}
	return errs.orNil()
}

func (v *AuthRequestValidator) validateUserUpdate(u models.UserUpdate) error {
	if u.IsEmpty() {
		return FieldErrors{FieldEmail: msgNoFields}
	}

	errs := FieldErrors{}
	if u.Email != nil {
		checkEmail(errs, *u.Email)
	}
	if u.Username != nil {
		checkUsername(errs, *u.Username)
	}
	if u.FullName != nil && utf8.RuneCountInString(*u.FullName) > maxNameLength {
		errs.add(FieldFullName, msgTooLong)
	}
	if u.AvatarURL != nil && *u.AvatarURL != "" {
		checkURL(errs, *u.AvatarURL)
	}
	return errs.orNil()
}

func required(field, value string) error {
	if isBlank(value) {
		return FieldErrors{field: msgRequired}
	}
	return nil
}

func checkEmail(errs FieldErrors, email string) {
	if isBlank(email) {
		errs.add(FieldEmail, msgRequired)
		return
	}
	if len(email) > maxEmailLength {
		errs.add(FieldEmail, msgTooLong)
		return
	}

	// a bare address only, no display name
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@'):], ".") {
		errs.add(FieldEmail, msgInvalidEmail)
	}
}

func checkUsername(errs FieldErrors, username string) {
	if isBlank(username) {
		errs.add(FieldUsername, msgRequired)
		return
	}

	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		errs.add(FieldUsername, msgInvalidUsername)
		return
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			errs.add(FieldUsername, msgInvalidUsername)
			return
		}
	}
}

func checkURL(errs FieldErrors, raw string) {
	if len(raw) > maxURLLength {
		errs.add(FieldAvatarURL, msgTooLong)
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs.add(FieldAvatarURL, msgInvalidURL)
	}
}

// checkNewPassword reports blank and overlong passwords. The complexity
// policy is checked by the service, which answers with a weak password error.
func checkNewPassword(errs FieldErrors, password string) {
	switch {
	case isBlank(password):
		errs.add(FieldNewPassword, msgRequired)
	case len(password) > MaxPasswordBytes:
		errs.add(FieldNewPassword, msgPasswordTooLong)
	}
}
