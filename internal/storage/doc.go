// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package storage is the key-value layer the hook writes the scheduler's
// state into.
//
// A Storage wraps an Engine (a flat get/put/delete byte store) and adds two
// things on top of it:
//
//   - JSON records addressed by a normalized key (Get, Put, Delete).
//   - Paged lists, laid out the same way the scheduler's own storage library
//     lays them out: a header record at the list key and numbered pages at
//     "<key>/<n>". Page numbers grow downwards on unshift, so negative page
//     numbers are normal.
//
// Engines
//   - FilesystemEngine stores every key as a JSON file below a base directory,
//     hashed into a three level directory tree. It runs over an afero.Fs so the
//     Memory engine is just the same engine on afero.NewMemMapFs.
//   - The SQL engine lives in internal/db and the S3 engine plus the engine
//     factory live in internal/engines.
package storage
