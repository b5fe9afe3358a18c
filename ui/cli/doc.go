// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface of the hook using Cobra.
// It loads configuration, opens the store and delegates to the internal
// packages. CLI code should stay thin.
package cli
