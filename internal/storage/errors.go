// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import "errors"

var (
	// ErrNotFound is returned by engines and record reads when a key does not exist.
	ErrNotFound = errors.New("storage: key not found")
	// ErrListNotFound is returned when a list header does not exist.
	ErrListNotFound = errors.New("storage: list not found")
	// ErrListExists is returned by ListCreate when the list already exists.
	ErrListExists = errors.New("storage: list already exists")
	// ErrItemNotFound is returned when no list item matches the search criteria.
	ErrItemNotFound = errors.New("storage: list item not found")
)

// IsNotFound reports whether err means a missing key, list or item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrListNotFound) || errors.Is(err, ErrItemNotFound)
}
