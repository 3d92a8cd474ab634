// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"io"
)

const opaqueTokenBytes = 32

type randomTokenGenerator struct{}

// NewTokenGenerator returns a [TokenGenerator] producing 256-bit random
// tokens encoded as unpadded base64url.
func NewTokenGenerator() TokenGenerator {
	return randomTokenGenerator{}
}

func (randomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
