// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON shape of the configuration.
type StructuredJSONConfig struct {
	App struct {
		Name     string `json:"name"`
		Version  string `json:"version"`
		LogLevel string `json:"log_level"`
	} `json:"app,omitempty"`

	Auth struct {
		TokenSecret          string   `json:"token_secret"`
		TokenIssuer          string   `json:"token_issuer"`
		AccessTokenTTL       Duration `json:"access_token_ttl"`
		RefreshTokenTTL      Duration `json:"refresh_token_ttl"`
		ResetTokenTTL        Duration `json:"reset_token_ttl"`
		VerificationTokenTTL Duration `json:"verification_token_ttl"`
		BlacklistTTL         Duration `json:"blacklist_ttl"`
		LoginRateLimit       int      `json:"login_rate_limit"`
		LoginRateWindow      Duration `json:"login_rate_window"`
		MaxFailedAttempts    int      `json:"max_failed_attempts"`
		LockoutDuration      Duration `json:"lockout_duration"`
		BcryptCost           int      `json:"bcrypt_cost"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN             string   `json:"dsn"`
			MaxOpenConns    int      `json:"max_open_conns"`
			MaxIdleConns    int      `json:"max_idle_conns"`
			ConnMaxLifetime Duration `json:"conn_max_lifetime"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress        string   `json:"http_address"`
		GRPCAddress        string   `json:"grpc_address"`
		RequestTimeout     Duration `json:"request_timeout"`
		CORSAllowedOrigins []string `json:"cors_allowed_origins"`
		TrustedProxies     []string `json:"trusted_proxies"`
		APIRate            float64  `json:"api_rate"`
		APIBurst           int      `json:"api_burst"`
	} `json:"server,omitempty"`

	Workers struct {
		CleanupInterval   Duration `json:"cleanup_interval"`
		ClientIdleTimeout Duration `json:"client_idle_timeout"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Name:     jsonCfg.App.Name,
			Version:  jsonCfg.App.Version,
			LogLevel: jsonCfg.App.LogLevel,
		},
		Auth: Auth{
			TokenSecret:          jsonCfg.Auth.TokenSecret,
			TokenIssuer:          jsonCfg.Auth.TokenIssuer,
			AccessTokenTTL:       time.Duration(jsonCfg.Auth.AccessTokenTTL),
			RefreshTokenTTL:      time.Duration(jsonCfg.Auth.RefreshTokenTTL),
			ResetTokenTTL:        time.Duration(jsonCfg.Auth.ResetTokenTTL),
			VerificationTokenTTL: time.Duration(jsonCfg.Auth.VerificationTokenTTL),
			BlacklistTTL:         time.Duration(jsonCfg.Auth.BlacklistTTL),
			LoginRateLimit:       jsonCfg.Auth.LoginRateLimit,
			LoginRateWindow:      time.Duration(jsonCfg.Auth.LoginRateWindow),
			MaxFailedAttempts:    jsonCfg.Auth.MaxFailedAttempts,
			LockoutDuration:      time.Duration(jsonCfg.Auth.LockoutDuration),
			BcryptCost:           jsonCfg.Auth.BcryptCost,
		},
		Storage: Storage{
			DB: DB{
				DSN:             jsonCfg.Storage.DB.DSN,
				MaxOpenConns:    jsonCfg.Storage.DB.MaxOpenConns,
				MaxIdleConns:    jsonCfg.Storage.DB.MaxIdleConns,
				ConnMaxLifetime: time.Duration(jsonCfg.Storage.DB.ConnMaxLifetime),
			},
		},
		Server: Server{
			HTTPAddress:        jsonCfg.Server.HTTPAddress,
			GRPCAddress:        jsonCfg.Server.GRPCAddress,
			RequestTimeout:     time.Duration(jsonCfg.Server.RequestTimeout),
			CORSAllowedOrigins: jsonCfg.Server.CORSAllowedOrigins,
			TrustedProxies:     jsonCfg.Server.TrustedProxies,
			APIRate:            jsonCfg.Server.APIRate,
			APIBurst:           jsonCfg.Server.APIBurst,
		},
		Workers: Workers{
			CleanupInterval:   time.Duration(jsonCfg.Workers.CleanupInterval),
			ClientIdleTimeout: time.Duration(jsonCfg.Workers.ClientIdleTimeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h" or "30s" as well as raw nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
