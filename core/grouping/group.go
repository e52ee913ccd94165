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

// Package grouping partitions an already sorted row sequence by the values of the
// grouped columns. Group order is the order in which each distinct key first
// appears in the sorted rows, so it always agrees with the active sort.
// Groups whose key has a null component come after all others, again in order
// of first appearance. Rows inside a group keep their sorted order.
package grouping

import (
	"fmt"
	"strings"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/tables"
)

// State is the ordered list of columns to group by. Empty means no grouping.
type State struct {
	ColumnIDs []string
}

// Active reports whether any grouping is configured.
func (s State) Active() bool {
	return len(s.ColumnIDs) > 0
}

// Validate checks that every grouped column exists and appears once.
func Validate(reg *columns.Registry, s State) error {
	seen := make(map[string]bool, len(s.ColumnIDs))
	for _, id := range s.ColumnIDs {
		if _, err := reg.Get(id); err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("%w: %q grouped twice", columns.ErrDuplicateColumn, id)
		}
		seen[id] = true
	}
	return nil
}

type Group struct {
	// Key holds one value per grouped column; nil for the implicit group.
	Key  []columns.Value
	Rows []tables.Record
}

func (g Group) Length() int {
	return len(g.Rows)
}

// HasNullKey reports whether any key component is null.
func (g Group) HasNullKey() bool {
	for _, v := range g.Key {
		if v.Null {
			return true
		}
	}
	return false
}

// Label joins the key components for display, "(null)" for null ones.
func (g Group) Label() string {
	parts := make([]string, len(g.Key))
	for i, v := range g.Key {
		if v.Null {
			parts[i] = "(null)"
		} else {
			parts[i] = v.String()
		}
	}
	return strings.Join(parts, " / ")
}

// Apply partitions records by s. Without grouping it returns one implicit
// group holding every record.
func Apply(records []tables.Record, reg *columns.Registry, s State) ([]Group, error) {
	if err := Validate(reg, s); err != nil {
		return nil, err
	}
	if !s.Active() {
		return []Group{{Rows: records}}, nil
	}

	descs := make([]columns.Descriptor, len(s.ColumnIDs))
	for i, id := range s.ColumnIDs {
		descs[i], _ = reg.Get(id)
	}

	var groups []*Group
	groupByKey := map[string]*Group{}
	for _, rec := range records {
		key := make([]columns.Value, len(descs))
		for i, d := range descs {
			v, err := d.Resolve(rec)
			if err != nil {
				v = columns.NullValue(d.ValueKind)
			}
			key[i] = v
		}
		k := encodeKey(key)
		g, ok := groupByKey[k]
		if !ok {
			g = &Group{Key: key}
			groupByKey[k] = g
			groups = append(groups, g)
		}
		g.Rows = append(g.Rows, rec)
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if !g.HasNullKey() {
			out = append(out, *g)
		}
	}
	for _, g := range groups {
		if g.HasNullKey() {
			out = append(out, *g)
		}
	}
	return out, nil
}

// Flatten concatenates the rows of groups in order.
func Flatten(groups []Group) []tables.Record {
	n := 0
	for _, g := range groups {
		n += len(g.Rows)
	}
	out := make([]tables.Record, 0, n)
	for _, g := range groups {
		out = append(out, g.Rows...)
	}
	return out
}

func encodeKey(key []columns.Value) string {
	var sb strings.Builder
	for _, v := range key {
		if v.Null {
			sb.WriteString("\x00null")
		} else {
			sb.WriteString(v.String())
		}
		sb.WriteByte('\x1f')
	}
	return sb.String()
}
