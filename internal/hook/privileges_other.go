// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build !unix

package hook

import "fmt"

// DropPrivileges is not supported on this platform.
func DropPrivileges(uid string) error {
	return fmt.Errorf("switching to user %s is not supported on this platform", uid)
}
