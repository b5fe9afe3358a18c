// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package setup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/security"
	"github.com/spryker/cronicle-hook/internal/storage"
)

func newProvisioner(t *testing.T) (*Provisioner, *storage.Storage) {
	t.Helper()
	s := storage.New(storage.NewMemoryEngine(), storage.Options{})
	p := New(s)
	p.now = func() time.Time { return time.Unix(1760000000, 0) }
	return p, s
}

func TestDefaultUser_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	p, s := newProvisioner(t)
	opts := UserOptions{Username: "Spryker", Password: security.FromString("secret"), Email: "admin@spryker.local"}

	rep, err := p.DefaultUser(ctx, opts)
	if err != nil {
		t.Fatalf("DefaultUser: %v", err)
	}
	if rep.Outcome != Created || rep.ID != "spryker" {
		t.Fatalf("unexpected report: %+v", rep)
	}

	var u model.User
	if err := s.Get(ctx, model.UserKey("spryker"), &u); err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if u.Username != "spryker" || u.FullName != "Spryker" || u.Active != 1 || u.Created != 1760000000 {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(u.Salt) != 64 {
		t.Fatalf("salt must be 64 hex chars, got %d", len(u.Salt))
	}
	if !security.CheckPassword(u.Password, security.FromString("secret"), u.Salt) {
		t.Fatalf("stored hash does not verify")
	}
	if diff := cmp.Diff(model.AdminPrivileges(), u.Privileges); diff != "" {
		t.Fatalf("privileges (-want +got):\n%s", diff)
	}

	rep, err = p.DefaultUser(ctx, opts)
	if err != nil || rep.Outcome != Exists {
		t.Fatalf("second run = %+v, %v", rep, err)
	}
	users, err := s.ListGet(ctx, model.UsersList, 0, 0)
	if err != nil {
		t.Fatalf("ListGet users: %v", err)
	}
	if len(users) != 1 || users[0]["username"] != "spryker" {
		t.Fatalf("expected exactly one user ref, got %v", users)
	}
}

func TestDefaultUser_KeepsExistingUser(t *testing.T) {
	ctx := context.Background()
	p, s := newProvisioner(t)
	if err := s.Put(ctx, model.UserKey("spryker"), map[string]any{"username": "spryker", "full_name": "Changed in UI"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := p.DefaultUser(ctx, UserOptions{Username: "spryker", Password: security.FromString("x")}); err != nil {
		t.Fatalf("DefaultUser: %v", err)
	}
	var u map[string]any
	if err := s.Get(ctx, model.UserKey("spryker"), &u); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u["full_name"] != "Changed in UI" {
		t.Fatalf("existing user was modified: %v", u)
	}
}

func TestDefaultUser_RejectsEmptyPassword(t *testing.T) {
	p, _ := newProvisioner(t)
	if _, err := p.DefaultUser(context.Background(), UserOptions{Username: "spryker"}); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestAPIKey_UpsertsByScheduler(t *testing.T) {
	ctx := context.Background()
	p, s := newProvisioner(t)

	rep, err := p.APIKey(ctx, APIKeyOptions{Scheduler: "cronicle", Key: security.FromString("k1")})
	if err != nil || rep.Outcome != Created {
		t.Fatalf("first run = %+v, %v", rep, err)
	}
	rep, err = p.APIKey(ctx, APIKeyOptions{Scheduler: "cronicle", Key: security.FromString("k2")})
	if err != nil || rep.Outcome != Updated {
		t.Fatalf("second run = %+v, %v", rep, err)
	}

	keys, err := s.ListGet(ctx, model.APIKeysList, 0, 0)
	if err != nil {
		t.Fatalf("ListGet: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected one api key, got %v", keys)
	}
	k := keys[0]
	if k["id"] != "cronicle" || k["title"] != "cronicle" || k["key"] != "k2" || k["username"] != "admin" || fmt.Sprint(k["active"]) != "1" {
		t.Fatalf("unexpected api key: %v", k)
	}
}

func TestAPIKey_SkippedWithoutKey(t *testing.T) {
	ctx := context.Background()
	p, s := newProvisioner(t)
	rep, err := p.APIKey(ctx, APIKeyOptions{Scheduler: "cronicle"})
	if err != nil || rep.Outcome != Skipped {
		t.Fatalf("APIKey = %+v, %v", rep, err)
	}
	if ok, _ := s.Exists(ctx, model.APIKeysList); ok {
		t.Fatalf("no list may be created when skipped")
	}
}

func TestSchedulerGroup_UpsertKeepsOtherGroups(t *testing.T) {
	ctx := context.Background()
	p, s := newProvisioner(t)
	if err := s.ListPush(ctx, model.ServerGroupsList, storage.Item{"id": "workers", "title": "Workers", "regexp": "^worker", "master": 0}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i, want := range []Outcome{Created, Updated} {
		rep, err := p.SchedulerGroup(ctx, "cronicle")
		if err != nil || rep.Outcome != want {
			t.Fatalf("run %d = %+v, %v; want %s", i, rep, err, want)
		}
	}

	groups, err := s.ListGet(ctx, model.ServerGroupsList, 0, 0)
	if err != nil {
		t.Fatalf("ListGet: %v", err)
	}
	if len(groups) != 2 || groups[0]["id"] != "cronicle" || groups[1]["id"] != "workers" {
		t.Fatalf("unexpected groups: %v", groups)
	}
	g := groups[0]
	if g["title"] != "Master Group" || g["regexp"] != ".+" || fmt.Sprint(g["master"]) != "1" {
		t.Fatalf("unexpected master group: %v", g)
	}
}
