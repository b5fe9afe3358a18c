// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, the global flags and the shared
// configuration loading. The hook commands live in hooks.go, the
// maintenance commands in admin.go.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spryker/cronicle-hook/buildvars"
	"github.com/spryker/cronicle-hook/internal/config"
	"github.com/spryker/cronicle-hook/internal/db"
	"github.com/spryker/cronicle-hook/internal/engines"
	"github.com/spryker/cronicle-hook/internal/hook"
	"github.com/spryker/cronicle-hook/internal/i18n"
	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/schedule"
	"github.com/spryker/cronicle-hook/internal/storage"
)

const modulePath = "github.com/spryker/cronicle-hook"

var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// Swapped in tests.
var (
	openStore   hook.OpenFunc = engines.Open
	system      hook.System   = hook.OS
	newExporter               = func(config.SchedulerConfig) schedule.Exporter { return nil }
)

type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	debug      bool
	lang       string
}

// app carries the state shared by the commands of one root command.
type app struct {
	flags globalFlags
	cfg   config.Config
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates a fresh root command. Tests create one per case.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "cronicle-hook [hook]",
		Short: "Prepares the scheduler's store before it starts.",
		Long: `cronicle-hook runs before the scheduler starts. It provisions the
administrator, the API key and the master server group, then imports the
jobs and categories every enabled store exports via
'vendor/bin/console scheduler:export'.

Unknown hook names are reported and ignored.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == cmd.Root() {
				return nil
			}
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if a.flags.lang != "" {
				i18n.Init(a.flags.lang)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), i18n.T("hook.unknown", args[0]))
			return err
		},
	}
	cmd.Version = versionString(nil)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.configFile, "config", "c", "", "config file (default: conf/config.json)")
	pf.BoolVar(&a.flags.debug, "debug", false, "log every storage operation")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", false, "only log errors")
	pf.StringVar(&a.flags.lang, "lang", "", `message language ("en", "de")`)
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		newBeforeStartCmd(a),
		newSetupCmd(a),
		newImportCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newListCmd(a),
		newConfigCmd(a),
		newDBCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// init loads the configuration and sets up logging and i18n.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, a.flags.configFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg

	logging.Setup(logging.Options{
		Quiet:   a.flags.quiet,
		Verbose: a.flags.verbose || cfg.Storage.Debug,
		Output:  cmd.ErrOrStderr(),
	})
	db.SetDebug(cfg.Storage.Debug)
	i18n.Init(cfg.Language)
	return nil
}

// openHook runs the preflight checks, opens the store and wires a Hook.
func (a *app) openHook(ctx context.Context) (*storage.Storage, *hook.Hook, error) {
	store, _, err := hook.Open(ctx, a.cfg, system, openStore)
	if err != nil {
		return nil, nil, err
	}
	return store, hook.New(store, a.cfg.Scheduler, newExporter(a.cfg.Scheduler)), nil
}

// openAdminStore opens the store without preflight checks, for the maintenance
// commands.
func (a *app) openAdminStore(ctx context.Context) (*storage.Storage, error) {
	store, err := openStore(ctx, a.cfg.Storage)
	if err != nil {
		return nil, errors.New(i18n.T("config.error_init_store", err))
	}
	return store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
			return nil
		},
	}
}

func versionString(info *debug.BuildInfo) string {
	v, c, d := resolveBuildVersion(info)
	if c != "" && c != "dev" && c != v {
		v += " (" + c + ")"
	}
	if d != "" {
		v += " built: " + d
	}
	return v
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if found, ok := debug.ReadBuildInfo(); ok {
			info = found
		}
	}
	if info != nil {
		if resolvedVersion == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// installed as a dependency of another main module
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
