/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package columns

import (
	"fmt"
	"slices"

	"github.com/google/tabula/core/tables"
)

// Registry holds the column descriptors of a view session. It is read-only
// once built.
type Registry struct {
	order []string
	byID  map[string]Descriptor
}

// Describe validates descriptors and builds a Registry in declaration order.
func Describe(descs []Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(descs)),
		byID:  make(map[string]Descriptor, len(descs)),
	}
	for _, d := range descs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, d.ID)
		}
		if d.Accessor == "" {
			d.Accessor = d.ID
		}
		if d.Header == "" {
			d.Header = d.ID
		}
		r.order = append(r.order, d.ID)
		r.byID[d.ID] = d
	}
	return r, nil
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
	}
	return d, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns the column ids in declaration order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.order)
}

// Descriptors returns all descriptors in declaration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ValidateShape checks that every accessor names a field declared by ds.
// An empty dataset declares no shape and is accepted.
func (r *Registry) ValidateShape(ds *tables.Dataset) error {
	if ds.Length() == 0 && len(ds.Fields()) == 0 {
		return nil
	}
	for _, id := range r.order {
		d := r.byID[id]
		if !ds.HasField(d.Accessor) {
			return fmt.Errorf("%w: column %q reads field %q", ErrUnresolvedAccessor, id, d.Accessor)
		}
	}
	return nil
}

// VisibleOrdered returns column ids in the given order, followed by the ids
// missing from order in declaration order, dropping hidden columns. Columns
// absent from visibility are visible. Unknown and repeated ids in order are
// ignored.
func (r *Registry) VisibleOrdered(order []string, visibility map[string]bool) []string {
	out := make([]string, 0, len(r.order))
	placed := make(map[string]bool, len(r.order))
	add := func(id string) {
		if placed[id] {
			return
		}
		placed[id] = true
		if visible, ok := visibility[id]; ok && !visible {
			return
		}
		out = append(out, id)
	}
	for _, id := range order {
		if r.Has(id) {
			add(id)
		}
	}
	for _, id := range r.order {
		add(id)
	}
	return out
}

// Resolve reads column id from rec as a typed Value.
func (r *Registry) Resolve(id string, rec tables.Record) (Value, error) {
	d, err := r.Get(id)
	if err != nil {
		return Value{}, err
	}
	return d.Resolve(rec)
}
