// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build !unix

package export

import "os/exec"

// killProcessGroup is a no-op here. WaitDelay still bounds the wait.
func killProcessGroup(*exec.Cmd) {}
