// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds fakes shared by tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spryker/cronicle-hook/internal/export"
	"github.com/spryker/cronicle-hook/internal/storage"
)

// Output is a canned command result.
type Output struct {
	Stdout string
	Stderr string
	Err    error
}

// FakeRunner answers export commands from Outputs keyed by APPLICATION_STORE.
type FakeRunner struct {
	mu      sync.Mutex
	Outputs map[string]Output
	Calls   []export.Command
}

// NewFakeRunner returns a runner with no canned outputs.
func NewFakeRunner() *FakeRunner { return &FakeRunner{Outputs: map[string]Output{}} }

// Set registers the output for store.
func (f *FakeRunner) Set(store string, out Output) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Outputs[store] = out
	return f
}

func (f *FakeRunner) Run(_ context.Context, c export.Command) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, c)
	store := ""
	for _, e := range c.Env {
		if v, ok := strings.CutPrefix(e, "APPLICATION_STORE="); ok {
			store = v
		}
	}
	out, ok := f.Outputs[store]
	if !ok {
		return nil, nil, fmt.Errorf("no canned output for store %q", store)
	}
	return []byte(out.Stdout), []byte(out.Stderr), out.Err
}

// MemoryStorage returns a Storage over a fresh in-memory engine.
func MemoryStorage(t testing.TB, pageSize int) *storage.Storage {
	t.Helper()
	s := storage.New(storage.NewMemoryEngine(), storage.Options{ListPageSize: pageSize})
	t.Cleanup(func() { _ = s.Close() })
	return s
}
