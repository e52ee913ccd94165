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

package views

import (
	"fmt"
	"slices"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/grouping"
	"github.com/google/tabula/core/paging"
	"github.com/google/tabula/core/sorting"
)

// Change is one validated mutation of a ViewState. Changes are committed
// with Controller.Apply, alone or as a batch.
type Change struct {
	apply func(c *Controller, s *ViewState) error
}

// Reset returns to the default state.
func Reset() Change {
	return Change{func(c *Controller, s *ViewState) error {
		*s = c.defaultState()
		return nil
	}}
}

// GlobalFilter sets the free-text search.
func GlobalFilter(text string) Change {
	return Change{func(c *Controller, s *ViewState) error {
		if s.Filters.Global != text {
			s.Filters.Global = text
			c.resetPage(s)
		}
		return nil
	}}
}

// ColumnFilter sets the filter of one column; an inactive value removes it.
func ColumnFilter(columnID string, value filtering.Value) Change {
	return Change{func(c *Controller, s *ViewState) error {
		if err := filtering.Validate(c.reg, columnID, value); err != nil {
			return err
		}
		value = filtering.Normalize(value)
		if !value.Active() {
			c.clearFilter(s, columnID)
			return nil
		}
		prev := s.Filters.Columns[columnID]
		s.Filters.Columns[columnID] = value
		if !sameFilter(prev, value) {
			c.resetPage(s)
		}
		return nil
	}}
}

// NoColumnFilter removes the filter of one column.
func NoColumnFilter(columnID string) Change {
	return Change{func(c *Controller, s *ViewState) error {
		if _, err := c.reg.Get(columnID); err != nil {
			return err
		}
		c.clearFilter(s, columnID)
		return nil
	}}
}

// SortBy sorts by one column. sorting.None or an empty id removes the sort.
func SortBy(columnID string, dir sorting.Direction) Change {
	return Change{func(c *Controller, s *ViewState) error {
		next := sorting.State{ColumnID: columnID, Direction: dir}
		if columnID != "" {
			if _, err := c.reg.Get(columnID); err != nil {
				return err
			}
		}
		if !next.IsSorted() {
			next = sorting.State{}
		}
		if err := sorting.Validate(c.reg, next); err != nil {
			return err
		}
		if next != s.Sort {
			s.Sort = next
			c.resetPage(s)
		}
		return nil
	}}
}

// GroupBy groups by the given columns, outermost first.
func GroupBy(columnIDs ...string) Change {
	return Change{func(c *Controller, s *ViewState) error {
		next := grouping.State{}
		if len(columnIDs) > 0 {
			next.ColumnIDs = slices.Clone(columnIDs)
		}
		if err := grouping.Validate(c.reg, next); err != nil {
			return err
		}
		if !slices.Equal(next.ColumnIDs, s.Grouping.ColumnIDs) {
			s.Grouping = next
			c.resetPage(s)
		}
		return nil
	}}
}

// Page selects a page; negative indexes select the first one.
func Page(index int) Change {
	return Change{func(_ *Controller, s *ViewState) error {
		s.Pagination.PageIndex = max(index, 0)
		return nil
	}}
}

// PageSize changes the page size and returns to the first page.
func PageSize(n int) Change {
	return Change{func(_ *Controller, s *ViewState) error {
		if err := paging.ValidatePageSize(n); err != nil {
			return err
		}
		s.Pagination = paging.State{PageIndex: 0, PageSize: n}
		return nil
	}}
}

// ColumnVisibility shows or hides one column.
func ColumnVisibility(columnID string, visible bool) Change {
	return Change{func(c *Controller, s *ViewState) error {
		if _, err := c.reg.Get(columnID); err != nil {
			return err
		}
		if visible {
			delete(s.Visibility, columnID)
			return nil
		}
		if s.Visibility == nil {
			s.Visibility = map[string]bool{}
		}
		s.Visibility[columnID] = false
		return nil
	}}
}

// HiddenColumns hides exactly the given columns and shows every other one.
func HiddenColumns(columnIDs ...string) Change {
	return Change{func(c *Controller, s *ViewState) error {
		vis := make(map[string]bool, len(columnIDs))
		for _, id := range columnIDs {
			if _, err := c.reg.Get(id); err != nil {
				return err
			}
			vis[id] = false
		}
		s.Visibility = vis
		return nil
	}}
}

// ColumnOrder sets the preferred column order. Every id must be known and
// appear once.
func ColumnOrder(orderedIDs ...string) Change {
	return Change{func(c *Controller, s *ViewState) error {
		seen := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if _, err := c.reg.Get(id); err != nil {
				return err
			}
			if seen[id] {
				return fmt.Errorf("%w: %q appears twice in column order", columns.ErrDuplicateColumn, id)
			}
			seen[id] = true
		}
		s.Order = nil
		if len(orderedIDs) > 0 {
			s.Order = slices.Clone(orderedIDs)
		}
		return nil
	}}
}

func (c *Controller) clearFilter(s *ViewState, columnID string) {
	if _, ok := s.Filters.Columns[columnID]; ok {
		delete(s.Filters.Columns, columnID)
		c.resetPage(s)
	}
}
