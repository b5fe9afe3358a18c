// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package hook runs the scheduler's startup hooks: preflight checks, the
// setup routines and the schedule import.
package hook

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spryker/cronicle-hook/internal/backup"
	"github.com/spryker/cronicle-hook/internal/config"
	"github.com/spryker/cronicle-hook/internal/export"
	"github.com/spryker/cronicle-hook/internal/i18n"
	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/schedule"
	"github.com/spryker/cronicle-hook/internal/setup"
	"github.com/spryker/cronicle-hook/internal/storage"
)

// OpenFunc opens the configured store.
type OpenFunc func(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error)

// dropPrivileges is swapped in tests.
var dropPrivileges = DropPrivileges

// Open runs the preflight checks, opens the store and, when the hook runs as
// root with a configured uid, switches to that user. The store is opened
// first so files it creates are accessible to root.
func Open(ctx context.Context, cfg config.Config, sys System, open OpenFunc) (*storage.Storage, *Host, error) {
	host, err := Preflight(sys, cfg.UID)
	if err != nil {
		return nil, nil, err
	}
	logging.Debugf("hook: host %s (%s)", host.Hostname, host.IP)

	store, err := open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.UID != "" && sys.Geteuid() == 0 {
		logging.Infof("%s", i18n.T("hook.switch_user", cfg.UID))
		if err := dropPrivileges(cfg.UID); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}
	return store, host, nil
}

// Hook runs the routines against one store.
type Hook struct {
	store    *storage.Storage
	cfg      config.SchedulerConfig
	exporter schedule.Exporter
}

// New returns a Hook. A nil exporter runs the application console.
func New(store *storage.Storage, cfg config.SchedulerConfig, exporter schedule.Exporter) *Hook {
	if exporter == nil {
		exporter = export.New(nil, export.Options{
			ProjectRoot: cfg.ProjectRoot,
			Console:     cfg.Console,
			Scheduler:   cfg.Name,
			Timeout:     cfg.ExportTimeout,
		})
	}
	return &Hook{store: store, cfg: cfg, exporter: announcingExporter{exporter}}
}

// Setup provisions the administrator, the API key and the server group.
// A failing user setup is logged and does not stop the others.
func (h *Hook) Setup(ctx context.Context) error {
	p := setup.New(h.store)

	rep, err := p.DefaultUser(ctx, setup.UserOptions{
		Username: h.cfg.Username,
		Password: h.cfg.Password,
		Email:    h.cfg.Email,
	})
	switch {
	case err != nil:
		logging.Errorf("%v", err)
	case rep.Outcome == setup.Created:
		logging.Infof("%s", i18n.T("setup.user_created", rep.ID))
	default:
		logging.Debugf("%s", i18n.T("setup.user_exists", rep.ID))
	}

	rep, err = p.APIKey(ctx, setup.APIKeyOptions{
		Scheduler: h.cfg.Name,
		Key:       h.cfg.APIKey,
		Owner:     h.cfg.APIKeyOwner,
	})
	if err != nil {
		return err
	}
	switch rep.Outcome {
	case setup.Skipped:
		logging.Warnf("%s", i18n.T("setup.api_key_skipped"))
	case setup.Created:
		logging.Infof("%s", i18n.T("setup.api_key_created", rep.ID))
	default:
		logging.Debugf("%s", i18n.T("setup.api_key_updated", rep.ID))
	}

	rep, err = p.SchedulerGroup(ctx, h.cfg.Name)
	if err != nil {
		return err
	}
	if rep.Outcome == setup.Created {
		logging.Infof("%s", i18n.T("setup.group_created", rep.ID))
	} else {
		logging.Debugf("%s", i18n.T("setup.group_updated", rep.ID))
	}
	return nil
}

// Import pulls the exports of every enabled store into the schedule.
func (h *Hook) Import(ctx context.Context) (*schedule.Result, error) {
	if len(h.cfg.EnabledStores) == 0 {
		logging.Warnf("%s", i18n.T("import.no_stores"))
	}
	im := schedule.NewImporter(schedule.NewRepository(h.store), h.exporter, h.cfg.EnabledStores)
	res, err := im.Run(ctx)
	if err != nil {
		return nil, err
	}
	logging.Infof("%s", i18n.T("import.summary",
		res.Created+res.Updated, res.Created, res.Updated, res.CategoriesCreated, res.Disabled))
	return res, nil
}

// BeforeStart runs before the scheduler starts: an optional backup into
// backupDir, the setup routines and the import.
func (h *Hook) BeforeStart(ctx context.Context, backupDir string) error {
	if backupDir != "" {
		snap, err := backup.Take(ctx, h.store)
		if err != nil {
			return fmt.Errorf("backup before start: %w", err)
		}
		path, err := backup.WriteFile(filepath.Join(backupDir, backup.DefaultFileName(time.Now())), snap)
		if err != nil {
			return fmt.Errorf("backup before start: %w", err)
		}
		logging.Infof("%s", i18n.T("backup.written", path))
	}
	if err := h.Setup(ctx); err != nil {
		return err
	}
	_, err := h.Import(ctx)
	return err
}

type announcingExporter struct {
	schedule.Exporter
}

func (a announcingExporter) Export(ctx context.Context, store string) (*export.Data, error) {
	logging.Infof("%s", i18n.T("import.exporting", store))
	return a.Exporter.Export(ctx, store)
}
