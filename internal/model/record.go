// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is a flat JSON object whose fields are preserved as-is.
type Record map[string]any

// ID returns the record's "id" field as a string, or "" when unset.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(r))
}

func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = m
	return nil
}

// Job is a scheduled event as exported by the application. Only id and
// enabled mean anything to the hook.
type Job struct {
	Record
}

// NewJob wraps fields.
func NewJob(fields map[string]any) Job { return Job{Record: Record(fields)} }

// Enabled reports whether the job's enabled flag is set. The flag may be a
// number, a bool or a numeric string depending on who wrote it.
func (j Job) Enabled() bool { return truthy(j.Record["enabled"]) }

// Disabled returns a copy of the job with enabled set to 0.
func (j Job) Disabled() Job {
	c := j.Record.Clone()
	c["enabled"] = 0
	return Job{Record: c}
}

// Category groups jobs in the scheduler UI.
type Category struct {
	Record
}

// NewCategory wraps fields.
func NewCategory(fields map[string]any) Category { return Category{Record: Record(fields)} }

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
		f, err := strconv.ParseFloat(x, 64)
		return err == nil && f != 0
	default:
		return false
	}
}
