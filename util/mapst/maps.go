// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package mapst holds small generic map helpers.
package mapst

import "slices"

// Ordered is a map that remembers the order keys were first inserted in.
// Setting an existing key replaces its value but keeps its position.
// The zero value is ready to use.
type Ordered[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// Set stores v at k.
func (o *Ordered[K, V]) Set(k K, v V) {
	if o.values == nil {
		o.values = make(map[K]V)
	}
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

// Get returns the value at k.
func (o *Ordered[K, V]) Get(k K) (V, bool) {
	v, ok := o.values[k]
	return v, ok
}

// Len returns the number of keys.
func (o *Ordered[K, V]) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *Ordered[K, V]) Keys() []K { return slices.Clone(o.keys) }

// Each calls fn for every entry in insertion order, stopping at the first error.
func (o *Ordered[K, V]) Each(fn func(K, V) error) error {
	for _, k := range o.keys {
		if err := fn(k, o.values[k]); err != nil {
			return err
		}
	}
	return nil
}

