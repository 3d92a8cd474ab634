// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
)

const verifyPath = "/api/v1/auth/verify"

type httpAuthClient struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewHTTPAuthClient returns an [AuthClient] talking to the auth service at
// address. A bare host:port is treated as http.
func NewHTTPAuthClient(address string, timeout time.Duration, logger *logger.Logger) (AuthClient, error) {
	baseURL, err := normalizeBaseURL(address)
	if err != nil {
		return nil, fmt.Errorf("invalid auth service address: %w", err)
	}

	return &httpAuthClient{
		client: utils.NewHTTPClient(baseURL, timeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (c *httpAuthClient) Verify(ctx context.Context, accessToken string) (bool, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return false, ErrEmptyToken
	}

	var result models.VerifyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&result).
		Get(verifyPath)
	if err != nil {
		return false, fmt.Errorf("verify request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		c.logger.Warn().Err(err).Int("status", resp.StatusCode()).Msg("token verification failed")
		return false, err
	}

	return result.Valid, nil
}
