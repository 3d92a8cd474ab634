// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher turns plaintext passwords into one-way salted hashes and
// checks candidates against them. Both operations are deliberately slow and
// must not be called while holding a lock.
type PasswordHasher interface {
	// Hash returns the encoded hash of password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. A mismatch is not an
	// error; err is non-nil only for unusable hashes.
	Compare(hash, password string) (bool, error)
}

// TokenGenerator produces opaque single-use tokens for password resets and
// email verification.
type TokenGenerator interface {
	Generate() (string, error)
}
