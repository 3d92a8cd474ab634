// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// validate checks that the merged [StructuredConfig] satisfies the
// invariants the service relies on at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Auth.TokenSecret == "" {
		return fmt.Errorf("%w: token secret is empty", ErrInvalidAuthConfigs)
	}

	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 ||
		cfg.Auth.ResetTokenTTL <= 0 || cfg.Auth.VerificationTokenTTL <= 0 ||
		cfg.Auth.BlacklistTTL <= 0 || cfg.Auth.LoginRateWindow <= 0 ||
		cfg.Auth.LockoutDuration <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidAuthConfigs)
	}

	if cfg.Auth.LoginRateLimit <= 0 || cfg.Auth.MaxFailedAttempts <= 0 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidAuthConfigs)
	}

	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt cost %d out of range", ErrInvalidAuthConfigs, cfg.Auth.BcryptCost)
	}

	if cfg.Server.HTTPAddress == "" {
		return fmt.Errorf("%w: http address is empty", ErrInvalidServerConfigs)
	}

	if cfg.Server.APIRate < 0 || (cfg.Server.APIRate > 0 && cfg.Server.APIBurst <= 0) {
		return fmt.Errorf("%w: invalid api rate limit", ErrInvalidServerConfigs)
	}

	for _, proxy := range cfg.Server.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("%w: invalid trusted proxy %q", ErrInvalidServerConfigs, proxy)
		}
	}

	if cfg.Workers.CleanupInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

// validProxy accepts a single IP address or a CIDR prefix.
func validProxy(entry string) bool {
	entry = strings.TrimSpace(entry)
	if _, err := netip.ParsePrefix(entry); err == nil {
		return true
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}
