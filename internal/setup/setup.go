// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package setup provisions the administrator, the API key and the master
// server group the scheduler needs before it starts.
package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/security"
	"github.com/spryker/cronicle-hook/internal/storage"
)

// Outcome of a setup routine.
type Outcome string

const (
	Created Outcome = "created"
	Updated Outcome = "updated"
	Exists  Outcome = "exists"
	Skipped Outcome = "skipped"
)

// Report describes what a routine did.
type Report struct {
	Outcome Outcome
	ID      string
}

// UserOptions describe the default administrator.
type UserOptions struct {
	Username string
	Password security.Secret
	Email    string
}

// Provisioner runs the setup routines against a store.
type Provisioner struct {
	store *storage.Storage
	now   func() time.Time
}

// New returns a Provisioner writing to store.
func New(store *storage.Storage) *Provisioner {
	return &Provisioner{store: store, now: time.Now}
}

// DefaultUser creates the administrator unless a user record with that name
// exists already. An existing user is never modified.
func (p *Provisioner) DefaultUser(ctx context.Context, opts UserOptions) (Report, error) {
	username := strings.ToLower(opts.Username)
	rep := Report{ID: username}
	if username == "" {
		return rep, fmt.Errorf("username must not be empty")
	}

	exists, err := p.store.Exists(ctx, model.UserKey(username))
	if err != nil {
		return rep, fmt.Errorf("failed to look up user %s: %w", username, err)
	}
	if exists {
		rep.Outcome = Exists
		return rep, nil
	}

	salt := security.NewSalt(username)
	hash, err := security.HashPassword(opts.Password, salt)
	if err != nil {
		return rep, err
	}
	now := p.now().Unix()
	user := model.User{
		Username:   username,
		Password:   hash,
		Salt:       salt,
		FullName:   "Spryker",
		Email:      opts.Email,
		Active:     1,
		Created:    now,
		Modified:   now,
		Privileges: model.AdminPrivileges(),
	}
	if err := p.store.Put(ctx, model.UserKey(username), user); err != nil {
		return rep, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	if err := p.store.ListPush(ctx, model.UsersList, model.UserRef{Username: username}); err != nil {
		return rep, fmt.Errorf("failed to add user %s to %s: %w", username, model.UsersList, err)
	}
	rep.Outcome = Created
	return rep, nil
}

// APIKeyOptions describe the scheduler's API key.
type APIKeyOptions struct {
	// Scheduler is used as id and title.
	Scheduler string
	Key       security.Secret
	// Owner defaults to "admin".
	Owner string
}

// APIKey creates or refreshes the API key named after the scheduler. It is
// skipped when no key is configured.
func (p *Provisioner) APIKey(ctx context.Context, opts APIKeyOptions) (Report, error) {
	rep := Report{ID: opts.Scheduler}
	if opts.Key.IsEmpty() {
		rep.Outcome = Skipped
		return rep, nil
	}
	owner := opts.Owner
	if owner == "" {
		owner = "admin"
	}
	now := p.now().Unix()
	key := model.APIKey{
		ID:         opts.Scheduler,
		Title:      opts.Scheduler,
		Key:        opts.Key.Reveal(),
		Username:   owner,
		Active:     1,
		Created:    now,
		Modified:   now,
		Privileges: model.AdminPrivileges(),
	}
	outcome, err := p.upsert(ctx, model.APIKeysList, opts.Scheduler, key)
	if err != nil {
		return rep, fmt.Errorf("failed to create api_key: %w", err)
	}
	rep.Outcome = outcome
	return rep, nil
}

// SchedulerGroup creates or refreshes the master server group matching every
// hostname.
func (p *Provisioner) SchedulerGroup(ctx context.Context, scheduler string) (Report, error) {
	rep := Report{ID: scheduler}
	group := model.ServerGroup{
		ID:     scheduler,
		Title:  "Master Group",
		Regexp: ".+",
		Master: 1,
	}
	outcome, err := p.upsert(ctx, model.ServerGroupsList, scheduler, group)
	if err != nil {
		return rep, fmt.Errorf("failed to create server group: %w", err)
	}
	rep.Outcome = outcome
	return rep, nil
}

// upsert updates the list item with id in place, or prepends value when the
// list or the item does not exist.
func (p *Provisioner) upsert(ctx context.Context, list, id string, value any) (Outcome, error) {
	_, err := p.store.ListFindUpdate(ctx, list, map[string]any{"id": id}, value)
	if err == nil {
		return Updated, nil
	}
	if !storage.IsNotFound(err) {
		return "", err
	}
	if err := p.store.ListUnshift(ctx, list, value); err != nil {
		return "", err
	}
	return Created, nil
}
