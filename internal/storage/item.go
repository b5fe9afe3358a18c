// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import (
	"encoding/json"
	"fmt"
)

// Item is a single list entry: a flat JSON object.
type Item map[string]any

// ToItem converts v (a struct, map or Item) to an Item via its JSON form.
func ToItem(v any) (Item, error) {
	if it, ok := v.(Item); ok {
		return it.Clone(), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var it Item
	if err := decode(raw, &it); err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("value %T is not a JSON object", v)
	}
	return it, nil
}

// Clone returns a shallow copy.
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Merge copies every field of updates into it, overwriting existing fields.
func (it Item) Merge(updates Item) {
	for k, v := range updates {
		it[k] = v
	}
}

// Matches reports whether every criteria field equals the item's field.
// Values are compared by their string form so that the id "5" matches the
// number 5, the same loose comparison the scheduler applies.
func (it Item) Matches(criteria map[string]any) bool {
	for k, want := range criteria {
		got, ok := it[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
