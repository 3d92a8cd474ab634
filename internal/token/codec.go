// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package token issues and verifies the HMAC-SHA256 signed JWTs used as
// access and refresh tokens.
package token

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/dealer-auth/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minKeyLength is the shortest key accepted as-is for HS256.
const minKeyLength = 32

// Codec signs and verifies tokens with a single symmetric key.
//
// Verification applies no leeway: a token is rejected once the clock
// reaches its "exp" claim.
type Codec struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewCodec builds a Codec.
//
// secret is used directly when it is base64 encoded key material of at
// least 32 bytes; any other value is treated as a passphrase and hashed
// with SHA-256 into a 32 byte key. A nil now defaults to time.Now.
func NewCodec(secret, issuer string, accessTTL, refreshTTL time.Duration, now func() time.Time) (*Codec, error) {
	if secret == "" || accessTTL <= 0 || refreshTTL <= 0 {
		return nil, ErrInvalidParams
	}
	if now == nil {
		now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Codec{
		key:        deriveKey(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		parser:     jwt.NewParser(opts...),
	}, nil
}

func deriveKey(secret string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= minKeyLength {
		return decoded
	}

	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// AccessTTL returns the lifetime of access tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the lifetime of refresh tokens.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken returns a signed access token for subject carrying role.
func (c *Codec) IssueAccessToken(subject string, role models.Role) (string, error) {
	return c.issue(subject, role, c.accessTTL)
}

// IssueRefreshToken returns a signed refresh token for subject. Every call
// yields a distinct value, even within the same second.
func (c *Codec) IssueRefreshToken(subject string) (string, error) {
	return c.issue(subject, "", c.refreshTTL)
}

func (c *Codec) issue(subject string, role models.Role, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidParams)
	}

	now := c.now()
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("error occurred during signing token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. It never returns claims together with an error. A token is
// expired from its exp instant onward.
func (c *Codec) Verify(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	_, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	}
}
