// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build unix

package hook

import (
	"fmt"
	"os/user"
	"strconv"
	"syscall"
)

// DropPrivileges switches the process to uid, a user name or numeric id.
// The group is switched first while still privileged.
func DropPrivileges(uid string) error {
	u, err := lookupUser(uid)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("invalid uid %q: %w", u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("invalid gid %q: %w", u.Gid, err)
	}
	if err := syscall.Setgid(gid); err != nil {
		return fmt.Errorf("setgid %d: %w", gid, err)
	}
	if err := syscall.Setuid(id); err != nil {
		return fmt.Errorf("setuid %d: %w", id, err)
	}
	return nil
}

func lookupUser(uid string) (*user.User, error) {
	if _, err := strconv.Atoi(uid); err == nil {
		u, err := user.LookupId(uid)
		if err != nil {
			return nil, fmt.Errorf("lookup uid %s: %w", uid, err)
		}
		return u, nil
	}
	u, err := user.Lookup(uid)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", uid, err)
	}
	return u, nil
}
