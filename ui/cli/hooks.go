// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spryker/cronicle-hook/internal/backup"
	"github.com/spryker/cronicle-hook/internal/hook"
	"github.com/spryker/cronicle-hook/internal/i18n"
	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/schedule"
	"github.com/spryker/cronicle-hook/internal/storage"
)

func newBeforeStartCmd(a *app) *cobra.Command {
	var backupDir string
	cmd := &cobra.Command{
		Use:   "before-start",
		Short: "Provision the scheduler and import the application's jobs",
		Long: `Runs the preflight checks, then creates the administrator (unless it
exists), creates or refreshes the API key and the master server group and
finally imports the jobs and categories of every enabled store.

With --backup-dir a snapshot of the scheduler's lists is written first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHook(cmd, "before-start", func(ctx context.Context, h *hook.Hook) error {
				return h.BeforeStart(ctx, backupDir)
			})
		},
	}
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "write a backup into this directory before changing anything")
	return cmd
}

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the administrator, the API key and the server group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHook(cmd, "setup", func(ctx context.Context, h *hook.Hook) error {
				return h.Setup(ctx)
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import jobs and categories from the enabled stores",
		Long: `Exports every enabled store with 'scheduler:export', disables every
scheduled job and then adds or updates the exported ones.

With --dry-run the import runs against an in-memory copy of the lists and
the resulting schedule is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return a.dryRunImport(cmd)
			}
			return a.runHook(cmd, "import", func(ctx context.Context, h *hook.Hook) error {
				_, err := h.Import(ctx)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "import into an in-memory copy and print the result")
	return cmd
}

// runHook opens the store through the preflight checks and runs fn.
func (a *app) runHook(cmd *cobra.Command, name string, fn func(context.Context, *hook.Hook) error) error {
	start := time.Now()
	ctx := cmd.Context()
	store, h, err := a.openHook(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := fn(ctx, h); err != nil {
		return err
	}
	logging.Infof("%s", i18n.T("hook.done", name, time.Since(start).Round(time.Millisecond)))
	return nil
}

func (a *app) dryRunImport(cmd *cobra.Command) error {
	ctx := cmd.Context()
	store, _, err := hook.Open(ctx, a.cfg, system, openStore)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	snap, err := backup.Take(ctx, store)
	if err != nil {
		return err
	}
	mem := storage.New(storage.NewMemoryEngine(), storage.Options{ListPageSize: a.cfg.Storage.ListPageSize})
	defer func() { _ = mem.Close() }()
	if err := backup.Restore(ctx, mem, snap); err != nil {
		return err
	}

	res, err := hook.New(mem, a.cfg.Scheduler, newExporter(a.cfg.Scheduler)).Import(ctx)
	if err != nil {
		return err
	}
	printSchedule(cmd.OutOrStdout(), res)
	logging.Infof("%s", i18n.T("import.dry_run"))
	return nil
}

func printSchedule(w io.Writer, res *schedule.Result) {
	cols := listKinds["jobs"].columns
	var rows [][]string
	_ = res.Jobs.Each(func(_ string, j model.Job) error {
		rows = append(rows, cells(storage.Item(j.Record), cols))
		return nil
	})
	renderTable(w, cols, rows)
	_, _ = fmt.Fprintf(w, "%d created, %d updated, %d disabled, %d categories created\n",
		res.Created, res.Updated, res.Disabled, res.CategoriesCreated)
}
