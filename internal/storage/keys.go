// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	keyIllegalChars = regexp.MustCompile(`[^a-z0-9_\-./]+`)
	keySlashRuns    = regexp.MustCompile(`/+`)
)

// NormalizeKey lower-cases key, drops characters outside [a-z0-9_-./],
// collapses repeated slashes and trims leading and trailing slashes.
func NormalizeKey(key string) string {
	k := strings.ToLower(key)
	k = keyIllegalChars.ReplaceAllString(k, "")
	k = keySlashRuns.ReplaceAllString(k, "/")
	return strings.Trim(k, "/")
}

func pageKey(listKey string, page int) string {
	return listKey + "/" + strconv.Itoa(page)
}
