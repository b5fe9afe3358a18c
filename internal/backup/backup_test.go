// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/storage"
)

func seeded(t *testing.T) *storage.Storage {
	t.Helper()
	ctx := context.Background()
	s := storage.New(storage.NewMemoryEngine(), storage.Options{ListPageSize: 2})
	if err := s.Put(ctx, model.UserKey("spryker"), map[string]any{"username": "spryker", "created": 1760000000}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := s.ListPush(ctx, model.UsersList, storage.Item{"username": "spryker"}); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.ListPush(ctx, model.ScheduleList, storage.Item{"id": fmt.Sprintf("j%d", i), "enabled": 1}); err != nil {
			t.Fatalf("seed schedule: %v", err)
		}
	}
	return s
}

func TestTakeAndRestore(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	snap, err := Take(ctx, s)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if len(snap.Lists[model.ScheduleList]) != 3 || len(snap.Users) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, ok := snap.Lists[model.APIKeysList]; ok {
		t.Fatalf("missing lists must be left out")
	}

	// a bad deploy
	if _, err := s.ListFindUpdate(ctx, model.ScheduleList, map[string]any{"id": "j1"}, map[string]any{"enabled": 0}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.ListUnshift(ctx, model.ScheduleList, storage.Item{"id": "bad"}); err != nil {
		t.Fatalf("unshift: %v", err)
	}

	if err := Restore(ctx, s, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	items, err := s.ListGet(ctx, model.ScheduleList, 0, 0)
	if err != nil {
		t.Fatalf("ListGet: %v", err)
	}
	if len(items) != 3 || items[0]["id"] != "j0" || fmt.Sprint(items[1]["enabled"]) != "1" {
		t.Fatalf("schedule not restored: %v", items)
	}
	h, err := s.ListInfo(ctx, model.ScheduleList)
	if err != nil || h.FirstPage != 0 {
		t.Fatalf("restored list must start at page 0: %+v, %v", h, err)
	}
}

func TestWriteRead_RoundTripKeepsNumbers(t *testing.T) {
	snap, err := Take(context.Background(), seeded(t))
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Fatalf("output is not compressed")
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if fmt.Sprint(got.Users["spryker"]["created"]) != "1760000000" {
		t.Fatalf("timestamp changed: %v", got.Users["spryker"]["created"])
	}
	if got.Version != FormatVersion || len(got.Lists[model.ScheduleList]) != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestWriteFile_AppendsExtension(t *testing.T) {
	dir := t.TempDir()
	snap := &Snapshot{Version: FormatVersion, Lists: map[string][]storage.Item{}, Users: map[string]storage.Item{}}

	path, err := WriteFile(filepath.Join(dir, "sub", "before-deploy.json"), snap)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !strings.HasSuffix(path, ".json.zst") {
		t.Fatalf("unexpected path %s", path)
	}
	if _, err := ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
}

func TestRestore_RejectsUnknownVersion(t *testing.T) {
	s := storage.New(storage.NewMemoryEngine(), storage.Options{})
	if err := Restore(context.Background(), s, &Snapshot{Version: 99}); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestDefaultFileName(t *testing.T) {
	got := DefaultFileName(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))
	if got != "cronicle-hook-backup-20260304-050607.json.zst" {
		t.Fatalf("unexpected name %s", got)
	}
}
