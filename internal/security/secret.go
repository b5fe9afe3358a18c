// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds the hook's small amount of credential handling:
// a redacting Secret type for passwords and API keys read from the
// environment, and the password hashing the scheduler expects.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret wraps sensitive configuration values so that logging, JSON and YAML
// output never reveal them.
type Secret []byte

// FromString wraps s.
func FromString(s string) Secret { return Secret(s) }

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter to ensure `%v`, `%#v` and friends are redacted.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, redacted)
}

// Reveal returns the plain value. Call sites should be few and obvious.
func (s Secret) Reveal() string { return string(s) }

// Bytes returns a copy of the underlying bytes.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// IsEmpty reports whether no value is set.
func (s Secret) IsEmpty() bool { return len(s) == 0 }

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.display()) }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.display()), nil }

// MarshalYAML redacts secrets for YAML encoding.
func (s Secret) MarshalYAML() (any, error) { return s.display(), nil }

// empty secrets stay empty so written config files do not carry a placeholder
func (s Secret) display() string {
	if s.IsEmpty() {
		return ""
	}
	return redacted
}
