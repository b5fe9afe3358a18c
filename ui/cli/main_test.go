// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spryker/cronicle-hook/internal/config"
	"github.com/spryker/cronicle-hook/internal/export"
	"github.com/spryker/cronicle-hook/internal/i18n"
	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/schedule"
	"github.com/spryker/cronicle-hook/internal/storage"
	"github.com/spryker/cronicle-hook/internal/testutil"
)

type fakeSystem struct {
	euid int
}

func (f fakeSystem) Geteuid() int            { return f.euid }
func (fakeSystem) Getenv(string) string      { return "" }
func (fakeSystem) Hostname() (string, error) { return "scheduler-1", nil }
func (fakeSystem) InterfaceAddrs() ([]net.Addr, error) {
	return []net.Addr{
		&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
		&net.IPNet{IP: net.ParseIP("10.0.0.5"), Mask: net.CIDRMask(24, 32)},
	}, nil
}

// setupCLI runs the test in an empty working directory against a shared
// in-memory store and a fake export runner.
func setupCLI(t *testing.T) (*storage.Storage, *testutil.FakeRunner) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("SPRYKER_ENABLED_SCHEDULER_STORES", `["DE","AT"]`)
	t.Setenv("SPRYKER_SCHEDULER_API_KEY", "0123abcd")

	s := testutil.MemoryStorage(t, 0)
	runner := testutil.NewFakeRunner()

	origOpen, origSystem, origExporter, origLogger := openStore, system, newExporter, logging.L
	openStore = func(context.Context, config.StorageConfig) (*storage.Storage, error) { return s, nil }
	system = fakeSystem{euid: 1000}
	newExporter = func(cfg config.SchedulerConfig) schedule.Exporter {
		return export.New(runner, export.Options{Scheduler: cfg.Name})
	}
	t.Cleanup(func() {
		openStore, system, newExporter, logging.L = origOpen, origSystem, origExporter, origLogger
	})
	i18n.Init("en")
	return s, runner
}

// executeCommand runs a fresh root command and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	t.Logf("stderr of %v:\n%s", args, errOut.String())
	return out.String(), err
}

func cannedExports(runner *testutil.FakeRunner) {
	runner.Set("DE", testutil.Output{Stdout: `{"jobData":[{"id":"j1","title":"Queue worker","enabled":1},{"id":"j2","title":"Old title","enabled":1}],"categoryData":[{"id":"c1","title":"Queue"}]}`})
	runner.Set("AT", testutil.Output{Stdout: `{"jobData":[{"id":"j2","title":"Export feeds","enabled":1}],"categoryData":[]}`})
}

func TestUnknownHook(t *testing.T) {
	i18n.Init("en")
	out, err := executeCommand(t, "after-stop")
	if err != nil {
		t.Fatalf("unknown hook must not fail: %v", err)
	}
	if !strings.Contains(out, "Unknown hook: after-stop") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBeforeStart_ProvisionsAndImports(t *testing.T) {
	s, runner := setupCLI(t)
	cannedExports(runner)
	ctx := context.Background()

	if _, err := executeCommand(t, "before-start", "--backup-dir", "backups"); err != nil {
		t.Fatalf("before-start: %v", err)
	}

	if ok, _ := s.Exists(ctx, model.UserKey("spryker")); !ok {
		t.Fatalf("administrator was not created")
	}
	if _, _, err := s.ListFind(ctx, model.APIKeysList, map[string]any{"id": "cronicle", "key": "0123abcd"}); err != nil {
		t.Fatalf("api key: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join("backups", "*.json.zst"))
	if len(matches) != 1 {
		t.Fatalf("expected one backup, got %v", matches)
	}

	out, err := executeCommand(t, "list", "jobs")
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	for _, want := range []string{"j1", "Queue worker", "j2", "Export feeds"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list jobs misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Old title") {
		t.Fatalf("later store must win:\n%s", out)
	}
}

func TestBeforeStart_PreflightNeedsRoot(t *testing.T) {
	setupCLI(t)
	if err := os.MkdirAll("conf", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("conf", "config.json"), []byte(`{"uid":"cronicle"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := executeCommand(t, "before-start")
	if err == nil || !strings.Contains(err.Error(), "root") {
		t.Fatalf("expected root error, got %v", err)
	}
}

func TestBeforeStart_ExportFailureFails(t *testing.T) {
	_, runner := setupCLI(t)
	runner.Set("DE", testutil.Output{Stdout: `{}`})
	// no canned output for AT
	if _, err := executeCommand(t, "before-start"); err == nil {
		t.Fatalf("expected failure when a store cannot be exported")
	}
}

func TestImportDryRun_LeavesStoreUntouched(t *testing.T) {
	s, runner := setupCLI(t)
	cannedExports(runner)
	ctx := context.Background()
	if err := s.ListPush(ctx, model.ScheduleList, map[string]any{"id": "j0", "title": "Legacy", "enabled": 1}); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "import", "--dry-run")
	if err != nil {
		t.Fatalf("import --dry-run: %v", err)
	}
	if !strings.Contains(out, "j0") || !strings.Contains(out, "j1") || !strings.Contains(out, "2 created, 0 updated, 1 disabled") {
		t.Fatalf("unexpected dry run output:\n%s", out)
	}

	items, err := s.ListGet(ctx, model.ScheduleList, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || !model.NewJob(items[0]).Enabled() {
		t.Fatalf("store was modified: %v", items)
	}
}

func TestBackupRestore(t *testing.T) {
	s, runner := setupCLI(t)
	cannedExports(runner)
	ctx := context.Background()

	if _, err := executeCommand(t, "before-start"); err != nil {
		t.Fatalf("before-start: %v", err)
	}
	out, err := executeCommand(t, "backup", "snapshot.json")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if !strings.Contains(out, "snapshot.json.zst") {
		t.Fatalf("unexpected backup output: %q", out)
	}

	if err := s.ListDelete(ctx, model.ScheduleList); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand(t, "restore", "snapshot.json.zst"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	info, err := s.ListInfo(ctx, model.ScheduleList)
	if err != nil || info.Length != 2 {
		t.Fatalf("schedule after restore = %+v, %v", info, err)
	}
}

func TestList_RejectsUnknownKind(t *testing.T) {
	setupCLI(t)
	if _, err := executeCommand(t, "list", "servers"); err == nil {
		t.Fatalf("expected error for unknown list")
	}
}

func TestList_UsersHidesPassword(t *testing.T) {
	setupCLI(t)
	if _, err := executeCommand(t, "setup"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out, err := executeCommand(t, "list", "users")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if !strings.Contains(out, "admin@spryker.local") || strings.Contains(out, "$2a$") {
		t.Fatalf("unexpected users table:\n%s", out)
	}
}

func TestConfigShowAndInit(t *testing.T) {
	setupCLI(t)
	t.Setenv("SPRYKER_SCHEDULER_PASSWORD", "hunter2")

	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "hunter2") || !strings.Contains(out, "[SECRET]") {
		t.Fatalf("secrets must be redacted:\n%s", out)
	}

	if _, err := executeCommand(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(filepath.Join("conf", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "SECRET") || !strings.Contains(string(data), "vendor/bin/console") {
		t.Fatalf("unexpected config file:\n%s", data)
	}
	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Fatalf("config init must not overwrite without --force")
	}
	if _, err := executeCommand(t, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestDBMaintain(t *testing.T) {
	setupCLI(t)
	if _, err := executeCommand(t, "db", "maintain"); err == nil || !strings.Contains(err.Error(), "no database") {
		t.Fatalf("expected error for the filesystem engine, got %v", err)
	}

	t.Setenv("CRONICLE_Storage__engine", "SQLite")
	t.Setenv("CRONICLE_Storage__SQLite__base_dir", t.TempDir())
	out, err := executeCommand(t, "db", "maintain")
	if err != nil {
		t.Fatalf("db maintain: %v", err)
	}
	if !strings.Contains(out, "Maintenance completed successfully") {
		t.Fatalf("unexpected output: %q", out)
	}
}
