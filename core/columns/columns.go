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
	"strings"
)

// ValueKind is the type of the values held by a column.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseValueKind parses the names returned by ValueKind.String.
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return KindString, nil
	case "number":
		return KindNumber, nil
	case "date", "timestamp":
		return KindDate, nil
	}
	return 0, fmt.Errorf("%w: unknown value kind %q", ErrInvalidDescriptor, s)
}

// FilterKind is the per-column filter capability of a column.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterText
	FilterFacet
	FilterRange
	FilterDateRange
)

func (k FilterKind) String() string {
	switch k {
	case FilterNone:
		return "none"
	case FilterText:
		return "text"
	case FilterFacet:
		return "facet"
	case FilterRange:
		return "range"
	case FilterDateRange:
		return "dateRange"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseFilterKind parses the names returned by FilterKind.String.
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FilterNone, nil
	case "text":
		return FilterText, nil
	case "facet":
		return FilterFacet, nil
	case "range":
		return FilterRange, nil
	case "daterange", "date_range":
		return FilterDateRange, nil
	}
	return 0, fmt.Errorf("%w: unknown filter kind %q", ErrInvalidDescriptor, s)
}

// Descriptor is the static description of a column.
type Descriptor struct {
	ID         string
	Header     string // display name, defaults to ID
	Accessor   string // record field read by the column, defaults to ID
	ValueKind  ValueKind
	FilterKind FilterKind
	Sortable   bool
}

// Filterable reports whether the column takes part in filtering at all.
func (d Descriptor) Filterable() bool {
	return d.FilterKind != FilterNone
}

func (d Descriptor) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty column id", ErrInvalidDescriptor)
	}
	switch d.FilterKind {
	case FilterNone, FilterText, FilterFacet:
	case FilterRange:
		if d.ValueKind != KindNumber {
			return fmt.Errorf("%w: column %q: range filter needs a number column, got %s", ErrInvalidDescriptor, d.ID, d.ValueKind)
		}
	case FilterDateRange:
		if d.ValueKind != KindDate {
			return fmt.Errorf("%w: column %q: date range filter needs a date column, got %s", ErrInvalidDescriptor, d.ID, d.ValueKind)
		}
	default:
		return fmt.Errorf("%w: column %q: unknown filter kind %d", ErrInvalidDescriptor, d.ID, int(d.FilterKind))
	}
	return nil
}
