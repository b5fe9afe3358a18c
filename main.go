// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for cronicle-hook.
//
// Usage:
//
//	cronicle-hook before-start [--backup-dir DIR]
//	cronicle-hook <command> [flags]
//
// See --help for the full command list.
package main

import (
	"os"

	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
