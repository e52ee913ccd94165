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


// Package query encodes a view state as a shareable URL and back.
//
// Parameters:
//
//	columns=a,b,c        column order
//	hidden=id,x          hidden columns; absent keeps the configured defaults
//	grouped=a,b          group-by columns
//	q=text               global search
//	text:col=value       text filter
//	facet:col=value      facet filter, repeated per selected value
//	range:col=min..max   numeric range, either side may be empty
//	dates:col=start..end date range, either side may be empty
//	sort=col:asc         sort column and direction
//	page=N               1-based page number
//	limit=N              page size
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/safehtml"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/views"
)

const (
	prefixText  = "text:"
	prefixFacet = "facet:"
	prefixRange = "range:"
	prefixDates = "dates:"
	boundSep    = ".."
)

var prefixKinds = map[string]columns.FilterKind{
	"text":  columns.FilterText,
	"facet": columns.FilterFacet,
	"range": columns.FilterRange,
	"dates": columns.FilterDateRange,
}

// ParseFilter builds a filter value of the given kind from its text form.
// Facets take every value; the other kinds take the first. Ranges and date
// ranges are written "min..max" with either side optional.
func ParseFilter(kind columns.FilterKind, values ...string) (filtering.Value, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no value for %s filter", filtering.ErrInvalidFilterValue, kind)
	}
	switch kind {
	case columns.FilterText:
		return filtering.Text(values[0]), nil
	case columns.FilterFacet:
		return filtering.Facet(slices.Clone(values)), nil
	case columns.FilterRange:
		return parseRange(values[0])
	case columns.FilterDateRange:
		start, end, _ := strings.Cut(values[0], boundSep)
		return filtering.ParseDateRange(start, end)
	}
	return nil, fmt.Errorf("%w: column does not accept filters", filtering.ErrInvalidFilterValue)
}

// Query represents the parsed state of a view URL
type Query struct {
	// Base path (e.g., "/products")
	Path string

	Columns        []string                   // Explicit column order
	Hidden         []string                   // Hidden columns, nil keeps the defaults
	GroupedColumns []string                   // Ordered list of columns to group by
	Search         string                     // Global search text
	Filters        map[string]filtering.Value // Column filters (columnName -> value)
	Sort           sorting.State              // Sort column and direction
	Page           int                        // Zero-based page index
	Limit          int                        // Page size, 0 keeps the configured default
}

// NewQuery creates a Query from a URL. Malformed filter values are errors;
// a malformed page or limit is ignored.
func NewQuery(u *url.URL) (*Query, error) {
	s := &Query{
		Path:    u.Path,
		Filters: make(map[string]filtering.Value),
	}

	q := u.Query()

	s.Columns = splitList(q.Get("columns"))
	s.GroupedColumns = splitList(q.Get("grouped"))
	if q.Has("hidden") {
		s.Hidden = splitList(q.Get("hidden"))
		if s.Hidden == nil {
			s.Hidden = []string{}
		}
	}
	s.Search = q.Get("q")

	if sortStr := q.Get("sort"); sortStr != "" {
		col, dirStr, _ := strings.Cut(sortStr, ":")
		if dirStr == "" {
			dirStr = "asc"
		}
		dir, err := sorting.ParseDirection(dirStr)
		if err != nil {
			return nil, err
		}
		s.Sort = sorting.State{ColumnID: col, Direction: dir}
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		s.Page = page - 1
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		s.Limit = limit
	}

	for key, values := range q {
		prefix, col, ok := strings.Cut(key, ":")
		if !ok || len(values) == 0 {
			continue
		}
		kind, ok := prefixKinds[prefix]
		if !ok {
			continue
		}
		v, err := ParseFilter(kind, values...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.Filters[col] = v
	}

	return s, nil
}

// FromState captures a view state as a Query.
func FromState(path string, st views.ViewState) *Query {
	s := &Query{
		Path:           path,
		Columns:        slices.Clone(st.Order),
		Hidden:         []string{},
		GroupedColumns: slices.Clone(st.Grouping.ColumnIDs),
		Search:         st.Filters.Global,
		Filters:        make(map[string]filtering.Value),
		Sort:           st.Sort,
		Page:           st.Pagination.PageIndex,
		Limit:          st.Pagination.PageSize,
	}
	for id, visible := range st.Visibility {
		if !visible {
			s.Hidden = append(s.Hidden, id)
		}
	}
	slices.Sort(s.Hidden)
	for _, id := range st.Filters.ActiveColumns() {
		s.Filters[id] = st.Filters.Columns[id]
	}
	return s
}

// Changes lists the controller changes that rebuild this query's view from
// the default state.
func (s *Query) Changes() []views.Change {
	changes := []views.Change{views.Reset()}
	if len(s.Columns) > 0 {
		changes = append(changes, views.ColumnOrder(s.Columns...))
	}
	if s.Hidden != nil {
		changes = append(changes, views.HiddenColumns(s.Hidden...))
	}
	if len(s.GroupedColumns) > 0 {
		changes = append(changes, views.GroupBy(s.GroupedColumns...))
	}
	changes = append(changes, views.GlobalFilter(s.Search))
	cols := make([]string, 0, len(s.Filters))
	for col := range s.Filters {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	for _, col := range cols {
		changes = append(changes, views.ColumnFilter(col, s.Filters[col]))
	}
	if s.Sort.IsSorted() {
		changes = append(changes, views.SortBy(s.Sort.ColumnID, s.Sort.Direction))
	}
	if s.Limit > 0 {
		changes = append(changes, views.PageSize(s.Limit))
	}
	return append(changes, views.Page(s.Page))
}

// Apply replaces the controller's view with this query's in one step. A
// query that does not fit the controller's columns leaves the view as it was.
func (s *Query) Apply(c *views.Controller) error {
	return c.Apply(s.Changes()...)
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := *s
	clone.Columns = slices.Clone(s.Columns)
	clone.Hidden = slices.Clone(s.Hidden)
	clone.GroupedColumns = slices.Clone(s.GroupedColumns)
	clone.Filters = make(map[string]filtering.Value, len(s.Filters))
	for col, v := range s.Filters {
		if f, ok := v.(filtering.Facet); ok {
			v = slices.Clone(f)
		}
		clone.Filters[col] = v
	}
	return &clone
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()

	if len(s.Columns) > 0 {
		q.Set("columns", strings.Join(s.Columns, ","))
	}
	if s.Hidden != nil {
		q.Set("hidden", strings.Join(s.Hidden, ","))
	}
	if len(s.GroupedColumns) > 0 {
		q.Set("grouped", strings.Join(s.GroupedColumns, ","))
	}
	if s.Search != "" {
		q.Set("q", s.Search)
	}

	for col, v := range s.Filters {
		switch f := v.(type) {
		case filtering.Text:
			q.Set(prefixText+col, string(f))
		case filtering.Facet:
			for _, value := range f {
				q.Add(prefixFacet+col, value)
			}
		case filtering.Range:
			q.Set(prefixRange+col, formatBound(f.Min)+boundSep+formatBound(f.Max))
		case filtering.DateRange:
			q.Set(prefixDates+col, formatTime(f.Start)+boundSep+formatTime(f.End))
		}
	}

	if s.Sort.IsSorted() {
		q.Set("sort", s.Sort.ColumnID+":"+s.Sort.Direction.String())
	}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page+1))
	}
	if s.Limit > 0 {
		q.Set("limit", strconv.Itoa(s.Limit))
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// IsColumnVisible reports whether a column is absent from the hidden list.
func (s *Query) IsColumnVisible(column string) bool {
	return !slices.Contains(s.Hidden, column)
}

// IsColumnGrouped checks if a column is in the grouped columns list
func (s *Query) IsColumnGrouped(column string) bool {
	return slices.Contains(s.GroupedColumns, column)
}

// WithColumnToggled returns a URL with the column's visibility flipped
func (s *Query) WithColumnToggled(column string) safehtml.URL {
	newState := s.Clone()
	if i := slices.Index(newState.Hidden, column); i >= 0 {
		newState.Hidden = slices.Delete(newState.Hidden, i, i+1)
	} else {
		newState.Hidden = append(newState.Hidden, column)
		slices.Sort(newState.Hidden)
	}
	return newState.ToSafeURL()
}

// WithGroupedColumnToggled returns a URL with the grouped column toggled.
// If the column is already grouped, it's removed from grouping; otherwise
// it's added to the end of the grouping order. The page is reset.
func (s *Query) WithGroupedColumnToggled(column string) safehtml.URL {
	newState := s.Clone()
	if i := slices.Index(newState.GroupedColumns, column); i >= 0 {
		newState.GroupedColumns = slices.Delete(newState.GroupedColumns, i, i+1)
	} else {
		newState.GroupedColumns = append(newState.GroupedColumns, column)
	}
	newState.Page = 0
	return newState.ToSafeURL()
}

// WithSortToggled returns a URL cycling the column through ascending,
// descending and unsorted. Sorting a different column starts ascending.
func (s *Query) WithSortToggled(column string) safehtml.URL {
	newState := s.Clone()
	switch {
	case s.Sort.ColumnID != column || !s.Sort.IsSorted():
		newState.Sort = sorting.State{ColumnID: column, Direction: sorting.Ascending}
	case s.Sort.Direction == sorting.Ascending:
		newState.Sort.Direction = sorting.Descending
	default:
		newState.Sort = sorting.State{}
	}
	newState.Page = 0
	return newState.ToSafeURL()
}

// WithFilter returns a URL with the column filter replaced. A nil or
// inactive value removes the filter.
func (s *Query) WithFilter(column string, v filtering.Value) safehtml.URL {
	newState := s.Clone()
	if v == nil || !v.Active() {
		delete(newState.Filters, column)
	} else {
		newState.Filters[column] = v
	}
	newState.Page = 0
	return newState.ToSafeURL()
}

// WithPage returns a URL for another page.
func (s *Query) WithPage(page int) safehtml.URL {
	newState := s.Clone()
	newState.Page = max(page, 0)
	return newState.ToSafeURL()
}

// WithLimit returns a URL with a different page size
func (s *Query) WithLimit(limit int) safehtml.URL {
	newState := s.Clone()
	newState.Limit = limit
	newState.Page = 0
	return newState.ToSafeURL()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseRange(s string) (filtering.Range, error) {
	minStr, maxStr, ok := strings.Cut(s, boundSep)
	if !ok {
		return filtering.Range{}, fmt.Errorf("%w: range %q needs min%smax", filtering.ErrInvalidFilterValue, s, boundSep)
	}
	lo, err := parseBound(minStr, math.Inf(-1))
	if err != nil {
		return filtering.Range{}, err
	}
	hi, err := parseBound(maxStr, math.Inf(1))
	if err != nil {
		return filtering.Range{}, err
	}
	return filtering.Range{Min: lo, Max: hi}, nil
}

func parseBound(s string, open float64) (float64, error) {
	if s == "" {
		return open, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Join(filtering.ErrInvalidFilterValue, err)
	}
	return f, nil
}

func formatBound(f float64) string {
	if math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
