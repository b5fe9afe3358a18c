// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/storage"
)

func TestRepository_MissingListsAreEmpty(t *testing.T) {
	r := NewRepository(storage.New(storage.NewMemoryEngine(), storage.Options{}))
	jobs, err := r.ScheduledJobs(context.Background())
	if err != nil || jobs.Len() != 0 {
		t.Fatalf("ScheduledJobs = %v, %v", jobs, err)
	}
	cats, err := r.Categories(context.Background())
	if err != nil || cats.Len() != 0 {
		t.Fatalf("Categories = %v, %v", cats, err)
	}
}

func TestRepository_UpdateAndDisable(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(storage.New(storage.NewMemoryEngine(), storage.Options{}))

	if err := r.CreateJob(ctx, model.NewJob(map[string]any{"id": "j", "enabled": 1, "title": "T"})); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := r.DisableJob(ctx, "j"); err != nil {
		t.Fatalf("DisableJob: %v", err)
	}
	jobs, err := r.ScheduledJobs(ctx)
	if err != nil {
		t.Fatalf("ScheduledJobs: %v", err)
	}
	j, _ := jobs.Get("j")
	if j.Enabled() || j.Record["title"] != "T" {
		t.Fatalf("unexpected job after disable: %v", j.Record)
	}

	merged, err := r.UpdateJob(ctx, model.NewJob(map[string]any{"id": "j", "enabled": 1}))
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if !merged.Enabled() || merged.Record["title"] != "T" {
		t.Fatalf("unexpected merged job: %v", merged.Record)
	}

	if _, err := r.UpdateJob(ctx, model.NewJob(map[string]any{"id": "missing"})); !errors.Is(err, storage.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}
