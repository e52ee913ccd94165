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
	"errors"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/grouping"
	"github.com/google/tabula/core/paging"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/tables"
)

// ColumnInfo describes a displayed column.
type ColumnInfo struct {
	ID         string
	Header     string
	ValueKind  columns.ValueKind
	FilterKind columns.FilterKind
	Sortable   bool
	Sorted     sorting.Direction
	Filtered   bool
	Grouped    bool
}

// DerivedView is the result of applying a ViewState to a dataset.
type DerivedView struct {
	// Rows is the current page, in grouped order when grouping is active.
	Rows []tables.Record
	// TotalFilteredCount counts every record that passed the filters.
	TotalFilteredCount int
	PageCount          int
	// PageIndex is the effective page after clamping.
	PageIndex int
	PageSize  int
	// Groups partitions Rows when grouping is active, nil otherwise.
	Groups []grouping.Group
	// GroupCount counts the groups over all pages.
	GroupCount int
	// Columns lists the visible columns in display order.
	Columns []ColumnInfo
	// Diagnostics holds the records excluded because a date-filtered field
	// could not be parsed.
	Diagnostics []filtering.DateParseFailure
}

// Err joins the diagnostics into one error, nil when there are none.
func (v DerivedView) Err() error {
	errs := make([]error, len(v.Diagnostics))
	for i, d := range v.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Derive runs the pipeline filter, sort, group, paginate over ds. It is a
// pure function of its arguments.
func Derive(ds *tables.Dataset, reg *columns.Registry, st ViewState, perGroup bool) (DerivedView, error) {
	visible := reg.VisibleOrdered(st.Order, st.Visibility)

	filtered, err := filtering.Apply(ds.Records(), reg, st.Filters, visible)
	if err != nil {
		return DerivedView{}, err
	}
	sorted, err := sorting.Apply(filtered.Records, reg, st.Sort)
	if err != nil {
		return DerivedView{}, err
	}
	groups, err := grouping.Apply(sorted, reg, st.Grouping)
	if err != nil {
		return DerivedView{}, err
	}

	v := DerivedView{
		TotalFilteredCount: len(filtered.Records),
		Columns:            columnInfos(reg, visible, st),
		Diagnostics:        filtered.Failures,
	}

	pageSize := st.Pagination.PageSize
	if pageSize < 1 {
		pageSize = paging.DefaultPageSize
	}
	v.PageSize = pageSize
	pg := paging.State{PageIndex: st.Pagination.PageIndex, PageSize: pageSize}

	if !st.Grouping.Active() {
		page := paging.Apply(grouping.Flatten(groups), pg)
		v.Rows, v.PageIndex, v.PageCount = page.Rows, page.PageIndex, page.PageCount
		return v, nil
	}

	v.GroupCount = len(groups)
	if perGroup {
		v.PageCount = 1
		for _, g := range groups {
			v.PageCount = max(v.PageCount, paging.PageCount(len(g.Rows), pageSize))
		}
		v.PageIndex = min(max(pg.PageIndex, 0), v.PageCount-1)
		for _, g := range groups {
			rows := paging.Slice(g.Rows, v.PageIndex, pageSize)
			if len(rows) == 0 {
				continue
			}
			v.Groups = append(v.Groups, grouping.Group{Key: g.Key, Rows: rows})
			v.Rows = append(v.Rows, rows...)
		}
		if v.Rows == nil {
			v.Rows = []tables.Record{}
		}
		return v, nil
	}

	flat := grouping.Flatten(groups)
	page := paging.Apply(flat, pg)
	v.Rows, v.PageIndex, v.PageCount = page.Rows, page.PageIndex, page.PageCount
	v.Groups = groupsInRange(groups, page.PageIndex*pageSize, page.PageIndex*pageSize+len(page.Rows))
	return v, nil
}

// groupsInRange cuts groups down to the rows at flattened positions [start, end).
func groupsInRange(groups []grouping.Group, start, end int) []grouping.Group {
	var out []grouping.Group
	offset := 0
	for _, g := range groups {
		lo := max(start, offset)
		hi := min(end, offset+len(g.Rows))
		if lo < hi {
			out = append(out, grouping.Group{Key: g.Key, Rows: g.Rows[lo-offset : hi-offset : hi-offset]})
		}
		offset += len(g.Rows)
	}
	return out
}

func columnInfos(reg *columns.Registry, visible []string, st ViewState) []ColumnInfo {
	grouped := make(map[string]bool, len(st.Grouping.ColumnIDs))
	for _, id := range st.Grouping.ColumnIDs {
		grouped[id] = true
	}
	infos := make([]ColumnInfo, 0, len(visible))
	for _, id := range visible {
		d, _ := reg.Get(id)
		info := ColumnInfo{
			ID:         d.ID,
			Header:     d.Header,
			ValueKind:  d.ValueKind,
			FilterKind: d.FilterKind,
			Sortable:   d.Sortable,
			Grouped:    grouped[id],
		}
		if st.Sort.IsSorted() && st.Sort.ColumnID == id {
			info.Sorted = st.Sort.Direction
		}
		if f, ok := st.Filters.Columns[id]; ok && f != nil && f.Active() {
			info.Filtered = true
		}
		infos = append(infos, info)
	}
	return infos
}
