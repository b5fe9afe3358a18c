// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package schedule reconciles the jobs and categories exported by the
// application with the scheduler's global lists.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/storage"
	"github.com/spryker/cronicle-hook/util/mapst"
)

// Repository reads and writes the schedule and category lists.
type Repository struct {
	store *storage.Storage
}

// NewRepository returns a Repository over store.
func NewRepository(store *storage.Storage) *Repository {
	return &Repository{store: store}
}

// ScheduledJobs returns the stored jobs keyed by id in list order. A missing
// list is treated as empty.
func (r *Repository) ScheduledJobs(ctx context.Context) (*mapst.Ordered[string, model.Job], error) {
	items, err := r.all(ctx, model.ScheduleList)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}
	var jobs mapst.Ordered[string, model.Job]
	for _, it := range items {
		job := model.NewJob(it)
		if id := job.ID(); id != "" {
			jobs.Set(id, job)
		}
	}
	return &jobs, nil
}

// Categories returns the stored categories keyed by id in list order.
func (r *Repository) Categories(ctx context.Context) (*mapst.Ordered[string, model.Category], error) {
	items, err := r.all(ctx, model.CategoriesList)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	var cats mapst.Ordered[string, model.Category]
	for _, it := range items {
		c := model.NewCategory(it)
		if id := c.ID(); id != "" {
			cats.Set(id, c)
		}
	}
	return &cats, nil
}

// CreateJob puts job at the front of the schedule.
func (r *Repository) CreateJob(ctx context.Context, job model.Job) error {
	if err := r.store.ListUnshift(ctx, model.ScheduleList, map[string]any(job.Record)); err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID(), err)
	}
	return nil
}

// UpdateJob merges job's fields into the stored job with the same id and
// returns the merged job.
func (r *Repository) UpdateJob(ctx context.Context, job model.Job) (model.Job, error) {
	merged, err := r.store.ListFindUpdate(ctx, model.ScheduleList, map[string]any{"id": job.ID()}, map[string]any(job.Record))
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to update job %s: %w", job.ID(), err)
	}
	return model.NewJob(merged), nil
}

// DisableJob sets enabled=0 on the stored job with id.
func (r *Repository) DisableJob(ctx context.Context, id string) error {
	if _, err := r.store.ListFindUpdate(ctx, model.ScheduleList, map[string]any{"id": id}, map[string]any{"enabled": 0}); err != nil {
		return fmt.Errorf("failed to disable job %s: %w", id, err)
	}
	return nil
}

// CreateCategory puts c at the front of the category list.
func (r *Repository) CreateCategory(ctx context.Context, c model.Category) error {
	if err := r.store.ListUnshift(ctx, model.CategoriesList, map[string]any(c.Record)); err != nil {
		return fmt.Errorf("failed to create category %s: %w", c.ID(), err)
	}
	return nil
}

func (r *Repository) all(ctx context.Context, key string) ([]storage.Item, error) {
	items, err := r.store.ListGet(ctx, key, 0, 0)
	if errors.Is(err, storage.ErrListNotFound) {
		return nil, nil
	}
	return items, err
}
