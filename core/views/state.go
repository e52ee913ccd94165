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

// Package views owns the configuration of a table view and derives the rows
// to display from it.
package views

import (
	"maps"
	"slices"
	"time"

	"github.com/gohugoio/hashstructure"

	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/grouping"
	"github.com/google/tabula/core/paging"
	"github.com/google/tabula/core/sorting"
)

// ViewState is the complete configuration that determines a derived view.
type ViewState struct {
	Filters    filtering.State
	Sort       sorting.State
	Grouping   grouping.State
	Pagination paging.State
	// Visibility lists hidden columns as false. Absent columns are visible.
	Visibility map[string]bool
	// Order is the preferred column order. Columns missing from it follow in
	// declaration order.
	Order []string
}

// Clone returns a deep copy of s.
func (s ViewState) Clone() ViewState {
	return ViewState{
		Filters:    s.Filters.Clone(),
		Sort:       s.Sort,
		Grouping:   grouping.State{ColumnIDs: slices.Clone(s.Grouping.ColumnIDs)},
		Pagination: s.Pagination,
		Visibility: maps.Clone(s.Visibility),
		Order:      slices.Clone(s.Order),
	}
}

// Hash returns a structural hash of s. Equal states hash equally whatever
// the history that produced them.
func (s ViewState) Hash() (uint64, error) {
	return hashKey(s.key())
}

func hashKey(k stateKey) (uint64, error) {
	return hashstructure.Hash(k, nil)
}

type stateKey struct {
	Global        string
	Filters       map[string]filterKey
	SortColumn    string
	SortDirection int
	GroupBy       []string
	PageIndex     int
	PageSize      int
	Hidden        []string
	Order         []string
}

type filterKey struct {
	Kind  int
	Text  string
	Facet []string
	Min   float64
	Max   float64
	Start int64
	End   int64
}

func (s ViewState) key() stateKey {
	k := stateKey{
		Global:    s.Filters.Global,
		Filters:   make(map[string]filterKey, len(s.Filters.Columns)),
		GroupBy:   s.Grouping.ColumnIDs,
		PageIndex: s.Pagination.PageIndex,
		PageSize:  s.Pagination.PageSize,
		Order:     s.Order,
	}
	if s.Sort.IsSorted() {
		k.SortColumn = s.Sort.ColumnID
		k.SortDirection = int(s.Sort.Direction)
	}
	for _, id := range s.Filters.ActiveColumns() {
		v := filtering.Normalize(s.Filters.Columns[id])
		fk := filterKey{Kind: int(v.Kind())}
		switch fv := v.(type) {
		case filtering.Text:
			fk.Text = string(fv)
		case filtering.Facet:
			fk.Facet = fv
		case filtering.Range:
			fk.Min, fk.Max = fv.Min, fv.Max
		case filtering.DateRange:
			fk.Start, fk.End = unixNano(fv.Start), unixNano(fv.End)
		}
		k.Filters[id] = fk
	}
	for _, id := range slices.Sorted(maps.Keys(s.Visibility)) {
		if !s.Visibility[id] {
			k.Hidden = append(k.Hidden, id)
		}
	}
	return k
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
