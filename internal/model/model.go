// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the records the hook writes into the scheduler's
// store. Users, API keys and server groups have a fixed shape owned by the
// scheduler; jobs and categories are exported by the application and carry
// fields the hook never interprets.
package model

// Well-known storage keys.
const (
	UsersList        = "global/users"
	APIKeysList      = "global/api_keys"
	ServerGroupsList = "global/server_groups"
	ScheduleList     = "global/schedule"
	CategoriesList   = "global/categories"
)

// UserKey returns the record key of a user.
func UserKey(username string) string { return "users/" + username }

// Privileges maps a privilege name to 1 (granted).
type Privileges map[string]int

// AdminPrivileges grants full access.
func AdminPrivileges() Privileges { return Privileges{"admin": 1} }

// User is the scheduler's user record.
type User struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"` // bcrypt(password + salt)
	Salt       string     `json:"salt"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Active     int        `json:"active"`
	Created    int64      `json:"created"`
	Modified   int64      `json:"modified"`
	Privileges Privileges `json:"privileges"`
}

// UserRef is the entry kept in the global user list.
type UserRef struct {
	Username string `json:"username"`
}

// APIKey is an entry of the global API key list.
type APIKey struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Key        string     `json:"key"`
	Username   string     `json:"username"`
	Active     int        `json:"active"`
	Created    int64      `json:"created"`
	Modified   int64      `json:"modified"`
	Privileges Privileges `json:"privileges"`
}

// ServerGroup is an entry of the global server group list. Servers whose
// hostname matches Regexp join the group.
type ServerGroup struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Regexp string `json:"regexp"`
	Master int    `json:"master"`
}
