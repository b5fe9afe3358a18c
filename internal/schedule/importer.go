// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package schedule

import (
	"context"

	"github.com/spryker/cronicle-hook/internal/export"
	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/util/mapst"
)

// Exporter returns the export of one store.
type Exporter interface {
	Export(ctx context.Context, store string) (*export.Data, error)
}

// Result summarizes an import.
type Result struct {
	Stores            []string
	Created           int
	Updated           int
	Disabled          int
	CategoriesCreated int
	// Jobs and Categories hold the lists' content after the import, keyed by id.
	Jobs       *mapst.Ordered[string, model.Job]
	Categories *mapst.Ordered[string, model.Category]
}

// Importer pulls the exports of every enabled store into the schedule.
type Importer struct {
	repo     *Repository
	exporter Exporter
	stores   []string
}

// NewImporter returns an Importer for stores.
func NewImporter(repo *Repository, exporter Exporter, stores []string) *Importer {
	return &Importer{repo: repo, exporter: exporter, stores: stores}
}

// Run exports every store, then reconciles the stored lists:
// every stored job is disabled first, unknown categories are added,
// unknown jobs are added and known jobs get the exported fields merged in.
// Jobs no store exports anymore therefore stay disabled. The first error
// aborts the run.
func (im *Importer) Run(ctx context.Context) (*Result, error) {
	res := &Result{Stores: im.stores}

	var exportedCategories mapst.Ordered[string, model.Category]
	var exportedJobs mapst.Ordered[string, model.Job]
	for _, store := range im.stores {
		data, err := im.exporter.Export(ctx, store)
		if err != nil {
			return nil, err
		}
		for _, c := range data.Categories {
			if c.ID() == "" {
				logging.Warnf("store %s exported a category without id, skipping", store)
				continue
			}
			exportedCategories.Set(c.ID(), c)
		}
		for _, j := range data.Jobs {
			if j.ID() == "" {
				logging.Warnf("store %s exported a job without id, skipping", store)
				continue
			}
			exportedJobs.Set(j.ID(), j)
		}
	}

	categories, err := im.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := im.repo.ScheduledJobs(ctx)
	if err != nil {
		return nil, err
	}

	err = jobs.Each(func(id string, job model.Job) error {
		if err := im.repo.DisableJob(ctx, id); err != nil {
			return err
		}
		jobs.Set(id, job.Disabled())
		res.Disabled++
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = exportedCategories.Each(func(id string, c model.Category) error {
		if _, ok := categories.Get(id); ok {
			return nil
		}
		if err := im.repo.CreateCategory(ctx, c); err != nil {
			return err
		}
		categories.Set(id, c)
		res.CategoriesCreated++
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = exportedJobs.Each(func(id string, job model.Job) error {
		if _, ok := jobs.Get(id); !ok {
			if err := im.repo.CreateJob(ctx, job); err != nil {
				return err
			}
			jobs.Set(id, job)
			res.Created++
			return nil
		}
		merged, err := im.repo.UpdateJob(ctx, job)
		if err != nil {
			return err
		}
		jobs.Set(id, merged)
		res.Updated++
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Jobs = jobs
	res.Categories = categories
	logging.Debugf("import: %d created, %d updated, %d disabled, %d categories created",
		res.Created, res.Updated, res.Disabled, res.CategoriesCreated)
	return res, nil
}
