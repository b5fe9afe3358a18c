// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxInput is the number of input bytes bcrypt takes into account.
const bcryptMaxInput = 72

// NewSalt returns a 64 character hex salt seeded with seed.
func NewSalt(seed string) string {
	sum := sha256.Sum256([]byte(uuid.NewString() + "|" + time.Now().Format(time.RFC3339Nano) + "|" + seed))
	return hex.EncodeToString(sum[:])
}

// HashPassword returns the bcrypt hash the scheduler checks logins against:
// bcrypt(password + salt).
func HashPassword(password Secret, salt string) (string, error) {
	if password.IsEmpty() {
		return "", errors.New("password must not be empty")
	}
	in := saltedInput(password, salt)
	defer in.Zero()
	hash, err := bcrypt.GenerateFromPassword(in, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password and salt produce hash.
func CheckPassword(hash string, password Secret, salt string) bool {
	in := saltedInput(password, salt)
	defer in.Zero()
	return bcrypt.CompareHashAndPassword([]byte(hash), in) == nil
}

// saltedInput truncates to what bcrypt reads. The scheduler's bcrypt
// implementation silently ignores the tail, x/crypto refuses it.
func saltedInput(password Secret, salt string) Secret {
	in := append(password.Bytes(), salt...)
	if len(in) > bcryptMaxInput {
		in = in[:bcryptMaxInput]
	}
	return in
}
