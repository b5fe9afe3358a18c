// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/spryker/cronicle-hook/internal/backup"
	"github.com/spryker/cronicle-hook/internal/config"
	"github.com/spryker/cronicle-hook/internal/db"
	"github.com/spryker/cronicle-hook/internal/engines"
	"github.com/spryker/cronicle-hook/internal/i18n"
	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/storage"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed (zstd) JSON snapshot of the scheduler's lists",
		Long: `Dumps the users, API keys, server groups, categories and the schedule
into a single Zstandard-compressed JSON file.

'.zst' is appended to the file name if missing. Without a file name
'cronicle-hook-backup-YYYYMMDD-HHMMSS.json.zst' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := backup.DefaultFileName(time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()
			store, err := a.openAdminStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := backup.Take(ctx, store)
			if err != nil {
				return err
			}
			written, err := backup.WriteFile(path, snap)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.written", written))
			return err
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file.zst>",
		Short: "Restore the scheduler's lists from a backup",
		Long: `Replaces every list contained in the backup and rewrites its user
records. Lists missing from the backup are left alone.

WARNING: the replaced lists are not merged, this is not reversible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := a.openAdminStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := backup.Restore(ctx, store, snap); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.restored", len(snap.Lists), args[0]))
			return err
		},
	}
}

type listKind struct {
	key     string
	columns []string
}

var listKinds = map[string]listKind{
	"users":      {model.UsersList, []string{"username", "full_name", "email", "active"}},
	"api-keys":   {model.APIKeysList, []string{"id", "title", "username", "active"}},
	"groups":     {model.ServerGroupsList, []string{"id", "title", "regexp", "master"}},
	"categories": {model.CategoriesList, []string{"id", "title", "enabled"}},
	"jobs":       {model.ScheduleList, []string{"id", "title", "category", "target", "enabled"}},
}

func listKindNames() []string {
	names := make([]string, 0, len(listKinds))
	for name := range listKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list <" + strings.Join(listKindNames(), "|") + ">",
		Short:     "Print one of the scheduler's lists as a table",
		ValidArgs: listKindNames(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := listKinds[args[0]]
			ctx := cmd.Context()
			store, err := a.openAdminStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			items, err := store.ListGet(ctx, kind.key, 0, 0)
			if err != nil && !errors.Is(err, storage.ErrListNotFound) {
				return err
			}
			if kind.key == model.UsersList {
				if items, err = loadUsers(ctx, store, items); err != nil {
					return err
				}
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, cells(it, kind.columns))
			}
			renderTable(cmd.OutOrStdout(), kind.columns, rows)
			return nil
		},
	}
}

// loadUsers replaces the user list's references with the user records.
// The password hash and salt are dropped.
func loadUsers(ctx context.Context, store *storage.Storage, refs []storage.Item) ([]storage.Item, error) {
	out := make([]storage.Item, 0, len(refs))
	for _, ref := range refs {
		name := fmt.Sprint(ref["username"])
		var user storage.Item
		err := store.Get(ctx, model.UserKey(name), &user)
		if storage.IsNotFound(err) {
			out = append(out, ref)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read user %s: %w", name, err)
		}
		delete(user, "password")
		delete(user, "salt")
		out = append(out, user)
	}
	return out, nil
}

func cells(it storage.Item, columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		if v, ok := it[c]; ok && v != nil {
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, _ = fmt.Fprintln(w, t.Render())
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the hook configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML, secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(&a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file holding the defaults",
		Long: `Writes the built-in defaults as YAML (default path conf/config.yaml).
Credentials are left empty; they are expected in the SPRYKER_SCHEDULER_*
environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "conf/config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite it", path)
			}
			def, err := config.LoadConfig[config.Config](nil, config.Options{
				Defaults: config.Defaults,
				Environ:  []string{},
			})
			if err != nil {
				return err
			}
			def.Scheduler.Password = nil
			def.Scheduler.APIKey = nil
			if err := config.WriteConfigFile(&def, path); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return err
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database engine housekeeping",
	}

	var timeout time.Duration
	maintain := &cobra.Command{
		Use:   "maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) for SQL-backed engines",
		Long:  `Runs engine-specific maintenance tasks (VACUUM, OPTIMIZE TABLE, PRAGMA optimize).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbType, dsn, ok := engines.SQLTarget(a.cfg.Storage)
			if !ok {
				return fmt.Errorf("storage engine %q has no database to maintain", a.cfg.Storage.Engine)
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := db.Maintain(ctx, dbType, dsn); err != nil {
				return fmt.Errorf("maintenance failed: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Maintenance completed successfully")
			return err
		},
	}
	maintain.Flags().DurationVar(&timeout, "timeout", 0, "abort maintenance after this long (0 means no timeout)")

	cmd.AddCommand(maintain)
	return cmd
}
