// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/dealer-auth/internal/validators"
	"github.com/MKhiriev/dealer-auth/models"
)

// AuthValidationService checks request payloads before they reach the
// wrapped AuthService. Methods without input rules pass straight through.
type AuthValidationService struct {
	AuthService
	validator validators.Validator
}

func NewAuthValidationService() AuthServiceWrapper {
	return &AuthValidationService{
		validator: validators.NewAuthRequestValidator(),
	}
}

func (v *AuthValidationService) Wrap(inner AuthService) AuthService {
	v.AuthService = inner
	return v
}

func (v *AuthValidationService) Register(ctx context.Context, registration models.Registration) (models.User, error) {
	if err := v.validator.Validate(ctx, registration); err != nil {
		return models.User{}, fmt.Errorf("error during registration validation: %w", err)
	}
	return v.AuthService.Register(ctx, registration)
}

func (v *AuthValidationService) Login(ctx context.Context, credentials models.Credentials, client models.ClientInfo) (models.AuthResponse, error) {
	if err := v.validator.Validate(ctx, credentials); err != nil {
		return models.AuthResponse{}, fmt.Errorf("error during credentials validation: %w", err)
	}
	return v.AuthService.Login(ctx, credentials, client)
}

func (v *AuthValidationService) PromoteToAdmin(ctx context.Context, userID string) (models.User, error) {
	if err := v.validator.Validate(ctx, models.PromoteRequest{UserID: userID}); err != nil {
		return models.User{}, fmt.Errorf("error during promotion validation: %w", err)
	}
	return v.AuthService.PromoteToAdmin(ctx, userID)
}

func (v *AuthValidationService) ChangePassword(ctx context.Context, caller models.Caller, request models.ChangePasswordRequest) error {
	if err := v.validator.Validate(ctx, request); err != nil {
		return fmt.Errorf("error during password change validation: %w", err)
	}
	return v.AuthService.ChangePassword(ctx, caller, request)
}

func (v *AuthValidationService) CreatePasswordResetToken(ctx context.Context, email string) (string, error) {
	if err := v.validator.Validate(ctx, models.EmailRequest{Email: email}); err != nil {
		return "", fmt.Errorf("error during email validation: %w", err)
	}
	return v.AuthService.CreatePasswordResetToken(ctx, email)
}

func (v *AuthValidationService) ResetPassword(ctx context.Context, request models.ResetPasswordRequest) error {
	if err := v.validator.Validate(ctx, request); err != nil {
		return fmt.Errorf("error during password reset validation: %w", err)
	}
	return v.AuthService.ResetPassword(ctx, request)
}

func (v *AuthValidationService) VerifyEmail(ctx context.Context, token string) error {
	if err := v.validator.Validate(ctx, models.TokenRequest{Token: token}); err != nil {
		return fmt.Errorf("error during verification token validation: %w", err)
	}
	return v.AuthService.VerifyEmail(ctx, token)
}

// AccountValidationService checks profile updates before they reach the
// wrapped AccountService.
type AccountValidationService struct {
	AccountService
	validator validators.Validator
}

func NewAccountValidationService() AccountServiceWrapper {
	return &AccountValidationService{
		validator: validators.NewAuthRequestValidator(),
	}
}

func (v *AccountValidationService) Wrap(inner AccountService) AccountService {
	v.AccountService = inner
	return v
}

func (v *AccountValidationService) UpdateProfile(ctx context.Context, caller models.Caller, request models.ProfileUpdateRequest) (models.User, error) {
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.User{}, fmt.Errorf("error during profile validation: %w", err)
	}
	return v.AccountService.UpdateProfile(ctx, caller, request)
}
