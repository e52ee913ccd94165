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

package sorting

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/tables"
)

// ErrUnsortableColumn is returned when sorting targets a column declared as not sortable.
var ErrUnsortableColumn = errors.New("column is not sortable")

// Direction specifies the direction of sorting.
type Direction int

const (
	// None indicates no sorting.
	None Direction = iota
	// Ascending indicates ascending sort order.
	Ascending
	// Descending indicates descending sort order.
	Descending
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// ParseDirection parses the names returned by Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return None, fmt.Errorf("unknown sort direction %q", s)
}

// State is the active sort of a view: a single column, or none.
type State struct {
	ColumnID  string
	Direction Direction
}

// IsSorted returns true if this state represents an active sort.
func (s State) IsSorted() bool {
	return s.ColumnID != "" && s.Direction != None
}

// Validate checks that the state targets a known, sortable column.
func Validate(reg *columns.Registry, s State) error {
	if !s.IsSorted() {
		return nil
	}
	d, err := reg.Get(s.ColumnID)
	if err != nil {
		return err
	}
	if !d.Sortable {
		return fmt.Errorf("%w: %q", ErrUnsortableColumn, s.ColumnID)
	}
	return nil
}

// Comparator orders two records. It returns a negative number when a sorts
// first, a positive one when b does and zero for ties.
type Comparator func(a, b tables.Record) int

// ByColumn compares records on column d. Nulls, including values that fail
// to resolve, sort last whatever the direction.
func ByColumn(d columns.Descriptor, dir Direction) Comparator {
	return func(a, b tables.Record) int {
		va, errA := d.Resolve(a)
		vb, errB := d.Resolve(b)
		nullA := errA != nil || va.Null
		nullB := errB != nil || vb.Null
		if nullA || nullB {
			switch {
			case nullA && nullB:
				return 0
			case nullA:
				return 1
			default:
				return -1
			}
		}
		cmp := columns.Compare(va, vb)
		if dir == Descending {
			return -cmp
		}
		return cmp
	}
}

// Chain compares with each comparator in turn until one breaks the tie.
func Chain(cmps ...Comparator) Comparator {
	return func(a, b tables.Record) int {
		for _, cmp := range cmps {
			if c := cmp(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

// Apply returns the records ordered by s. Ties keep their input order. An
// inactive state returns the input order unchanged. The input slice is not
// modified.
func Apply(records []tables.Record, reg *columns.Registry, s State) ([]tables.Record, error) {
	if err := Validate(reg, s); err != nil {
		return nil, err
	}
	out := slices.Clone(records)
	if !s.IsSorted() {
		return out, nil
	}
	d, _ := reg.Get(s.ColumnID)
	SortStable(out, ByColumn(d, s.Direction))
	return out, nil
}

// SortStable sorts records in place with cmp, keeping ties in input order.
func SortStable(records []tables.Record, cmp Comparator) {
	slices.SortStableFunc(records, cmp)
}
