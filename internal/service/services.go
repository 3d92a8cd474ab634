// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/internal/store"
)

type Services struct {
	AuthService      AuthService
	AccountService   AccountService
	UserAdminService UserAdminService
	AppInfoService   AppInfoService
}

// NewServices wires the services over storages. The auth and account
// services are wrapped with request validation.
func NewServices(storages *store.Storages, security Security, cfg config.StructuredConfig, recorder metrics.Recorder, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	auth := NewAuthService(storages, security, cfg.Auth, recorder, logger)
	account := NewAccountService(storages, security.Now, logger)

	return &Services{
		AuthService:      NewAuthValidationService().Wrap(auth),
		AccountService:   NewAccountValidationService().Wrap(account),
		UserAdminService: NewUserAdminService(storages, security.Now, logger),
		AppInfoService:   appInfo,
	}, nil
}
