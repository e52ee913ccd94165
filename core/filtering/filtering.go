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

// Package filtering evaluates the global search and per-column predicates of
// a view against dataset records.
package filtering

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/tabula/core/columns"
)

var (
	// ErrInvalidFilterValue is returned when a filter value does not match the column's filter kind.
	ErrInvalidFilterValue = errors.New("invalid filter value")

	// ErrDateParse marks per-record timestamp failures reported as diagnostics.
	ErrDateParse = errors.New("date parse failure")
)

// Value is a per-column filter value. The concrete type selects the
// predicate: Text, Facet, Range or DateRange.
type Value interface {
	Kind() columns.FilterKind
	// Active reports whether the value constrains anything.
	Active() bool
}

// Text matches a case-insensitive substring of the field.
type Text string

func (Text) Kind() columns.FilterKind { return columns.FilterText }
func (t Text) Active() bool { return t != "" }

// Facet matches fields whose value is one of the allowed values. An empty
// set constrains nothing.
type Facet []string

func (Facet) Kind() columns.FilterKind { return columns.FilterFacet }
func (f Facet) Active() bool { return len(f) > 0 }

// Range matches numbers in [Min, Max], both ends inclusive.
type Range struct {
	Min float64
	Max float64
}

func (Range) Kind() columns.FilterKind { return columns.FilterRange }
func (Range) Active() bool { return true }

// DateRange matches timestamps in [Start, End]. A zero bound leaves that
// side open; with both zero the filter is absent.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (DateRange) Kind() columns.FilterKind { return columns.FilterDateRange }
func (r DateRange) Active() bool { return !r.Start.IsZero() || !r.End.IsZero() }

// ParseDateRange builds a DateRange from two optional timestamp strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := columns.ParseDatetime(start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start: %v", ErrInvalidFilterValue, err)
	}
	e, err := columns.ParseDatetime(end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end: %v", ErrInvalidFilterValue, err)
	}
	return DateRange{Start: s.UTC(), End: e.UTC()}, nil
}

// State is the complete filter configuration of a view.
type State struct {
	Global  string
	Columns map[string]Value
}

// Clone returns a copy that shares no mutable data with s.
func (s State) Clone() State {
	c := State{Global: s.Global, Columns: make(map[string]Value, len(s.Columns))}
	for id, v := range s.Columns {
		if f, ok := v.(Facet); ok {
			v = slices.Clone(f)
		}
		c.Columns[id] = v
	}
	return c
}

// ActiveColumns returns the ids of columns with an active filter, sorted.
func (s State) ActiveColumns() []string {
	var ids []string
	for _, id := range slices.Sorted(maps.Keys(s.Columns)) {
		if v := s.Columns[id]; v != nil && v.Active() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate checks that v fits the filter kind declared for column id.
func Validate(reg *columns.Registry, id string, v Value) error {
	d, err := reg.Get(id)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%w: column %q: nil value", ErrInvalidFilterValue, id)
	}
	if d.FilterKind == columns.FilterNone {
		return fmt.Errorf("%w: column %q is not filterable", ErrInvalidFilterValue, id)
	}
	if v.Kind() != d.FilterKind {
		return fmt.Errorf("%w: column %q expects a %s filter, got %s", ErrInvalidFilterValue, id, d.FilterKind, v.Kind())
	}
	switch fv := v.(type) {
	case Range:
		if math.IsNaN(fv.Min) || math.IsNaN(fv.Max) || fv.Min > fv.Max {
			return fmt.Errorf("%w: column %q: range [%v, %v]", ErrInvalidFilterValue, id, fv.Min, fv.Max)
		}
	case DateRange:
		if !fv.Start.IsZero() && !fv.End.IsZero() && fv.Start.After(fv.End) {
			return fmt.Errorf("%w: column %q: start %s after end %s", ErrInvalidFilterValue, id,
				fv.Start.Format(time.RFC3339), fv.End.Format(time.RFC3339))
		}
	}
	return nil
}

// Normalize returns the canonical form of v: facet sets sorted and
// de-duplicated, timestamps in UTC.
func Normalize(v Value) Value {
	switch fv := v.(type) {
	case Facet:
		out := slices.Clone(fv)
		slices.Sort(out)
		return Facet(slices.Compact(out))
	case DateRange:
		return DateRange{Start: fv.Start.UTC(), End: fv.End.UTC()}
	}
	return v
}

// DateParseFailure reports a record excluded because a date-filtered field
// could not be read as a timestamp.
type DateParseFailure struct {
	ColumnID string
	RecordID string
	Raw      string
	Err      error
}

func (f DateParseFailure) Error() string {
	return fmt.Sprintf("column %q, record %q: cannot parse %q as a timestamp: %v", f.ColumnID, f.RecordID, f.Raw, f.Err)
}

func (f DateParseFailure) Unwrap() []error {
	return []error{ErrDateParse, f.Err}
}
