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

package query

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/views"
)

func newController(t *testing.T) *views.Controller {
	t.Helper()
	opts := views.DefaultOptions()
	opts.PageSize = 2
	opts.HiddenColumns = []string{"id"}
	c := views.NewController(opts)
	require.NoError(t, c.ConfigureColumns([]columns.Descriptor{
		{ID: "id"},
		{ID: "name", FilterKind: columns.FilterText, Sortable: true},
		{ID: "category", FilterKind: columns.FilterFacet, Sortable: true},
		{ID: "price", ValueKind: columns.KindNumber, FilterKind: columns.FilterRange, Sortable: true},
		{ID: "createdAt", ValueKind: columns.KindDate, FilterKind: columns.FilterDateRange, Sortable: true},
	}))
	var records []tables.Record
	for i, cat := range []string{"A", "B", "A", "C", "B"} {
		records = append(records, tables.NewRecord(map[string]any{
			"id":        string(rune('0' + i)),
			"name":      "item " + cat,
			"category":  cat,
			"price":     float64(10 * (i + 1)),
			"createdAt": time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
		}))
	}
	require.NoError(t, c.LoadDataset(records))
	return c
}

func mustParse(t *testing.T, raw string) *Query {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q, err := NewQuery(u)
	require.NoError(t, err)
	return q
}

func TestNewQuery(t *testing.T) {
	q := mustParse(t, "/products?columns=name,price&hidden=id&grouped=category&q=desk"+
		"&text:name=lamp&facet:category=A&facet:category=B&range:price=10..20.5"+
		"&dates:createdAt=2024-01-01..&sort=price:desc&page=3&limit=5")

	assert.Equal(t, "/products", q.Path)
	assert.Equal(t, []string{"name", "price"}, q.Columns)
	assert.Equal(t, []string{"id"}, q.Hidden)
	assert.Equal(t, []string{"category"}, q.GroupedColumns)
	assert.Equal(t, "desk", q.Search)
	assert.Equal(t, filtering.Text("lamp"), q.Filters["name"])
	assert.Equal(t, filtering.Facet{"A", "B"}, q.Filters["category"])
	assert.Equal(t, filtering.Range{Min: 10, Max: 20.5}, q.Filters["price"])
	assert.Equal(t, filtering.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, q.Filters["createdAt"])
	assert.Equal(t, sorting.State{ColumnID: "price", Direction: sorting.Descending}, q.Sort)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
}

func TestNewQuery_Defaults(t *testing.T) {
	q := mustParse(t, "/products?page=abc&limit=-1&sort=name")

	assert.Nil(t, q.Hidden, "absent hidden keeps the defaults")
	assert.Equal(t, 0, q.Page)
	assert.Equal(t, 0, q.Limit)
	assert.Equal(t, sorting.Ascending, q.Sort.Direction)

	q = mustParse(t, "/products?hidden=")
	assert.NotNil(t, q.Hidden)
	assert.Empty(t, q.Hidden)
}

func TestNewQuery_OpenRange(t *testing.T) {
	q := mustParse(t, "/p?range:price=..20")
	assert.Equal(t, filtering.Range{Min: math.Inf(-1), Max: 20}, q.Filters["price"])
}

func TestNewQuery_Errors(t *testing.T) {
	tests := map[string]string{
		"range without separator": "/p?range:price=10",
		"range not a number":      "/p?range:price=a..b",
		"bad date":                "/p?dates:createdAt=yesterday-ish..",
		"bad sort direction":      "/p?sort=price:sideways",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			u, err := url.Parse(raw)
			require.NoError(t, err)
			_, err = NewQuery(u)
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	c := newController(t)
	require.NoError(t, c.SetColumnOrder([]string{"price", "name"}))
	require.NoError(t, c.SetColumnVisibility("createdAt", false))
	require.NoError(t, c.SetColumnVisibility("id", true))
	require.NoError(t, c.SetGroupBy([]string{"category"}))
	require.NoError(t, c.SetGlobalFilter("item"))
	require.NoError(t, c.SetColumnFilter("category", filtering.Facet{"B", "A"}))
	require.NoError(t, c.SetColumnFilter("price", filtering.Range{Min: 10, Max: 40}))
	dr, err := filtering.ParseDateRange("2024-01-01T00:00:00Z", "")
	require.NoError(t, err)
	require.NoError(t, c.SetColumnFilter("createdAt", dr))
	require.NoError(t, c.SetSort("price", sorting.Descending))
	require.NoError(t, c.SetPageSize(3))
	require.NoError(t, c.SetPage(1))

	want := c.GetViewState()
	link := FromState("/products", want).ToURL()

	other := newController(t)
	require.NoError(t, mustParse(t, link).Apply(other))
	got := other.GetViewState()

	wantHash, err := want.Hash()
	require.NoError(t, err)
	gotHash, err := got.Hash()
	require.NoError(t, err)
	assert.Equal(t, wantHash, gotHash, "link %s", link)
	assert.Equal(t, 1, got.Pagination.PageIndex)
	assert.Equal(t, 3, got.Pagination.PageSize)
}

func TestApply_DefaultsKeepHiddenColumns(t *testing.T) {
	c := newController(t)
	require.NoError(t, mustParse(t, "/products?sort=name:asc").Apply(c))

	v, err := c.GetDerivedView()
	require.NoError(t, err)
	for _, col := range v.Columns {
		assert.NotEqual(t, "id", col.ID)
	}
}

func TestApply_Errors(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want error
	}{
		"unknown column order": {raw: "/p?columns=nope", want: columns.ErrUnknownColumn},
		"unknown hidden":       {raw: "/p?hidden=nope", want: columns.ErrUnknownColumn},
		"unknown group":        {raw: "/p?grouped=nope", want: columns.ErrUnknownColumn},
		"kind mismatch":        {raw: "/p?text:price=10", want: filtering.ErrInvalidFilterValue},
		"unsortable":           {raw: "/p?sort=id:asc", want: sorting.ErrUnsortableColumn},
		"fails after valid parts": {
			raw:  "/p?q=item&facet:category=B&grouped=category&limit=3&page=2&sort=id:asc",
			want: sorting.ErrUnsortableColumn,
		},
		"unknown filter column": {raw: "/p?columns=name&q=item&text:nope=x", want: columns.ErrUnknownColumn},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := newController(t)
			require.NoError(t, c.SetSort("price", sorting.Descending))
			require.NoError(t, c.SetColumnFilter("category", filtering.Facet{"A"}))
			require.NoError(t, c.SetPage(1))
			before := c.GetViewState()

			err := mustParse(t, tc.raw).Apply(c)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, before, c.GetViewState(), "a rejected link keeps the previous view")
		})
	}
}

func TestApply_NotConfigured(t *testing.T) {
	err := mustParse(t, "/p").Apply(views.NewController(views.DefaultOptions()))
	assert.True(t, errors.Is(err, views.ErrNotConfigured))
}

func TestGroupedColumnToggled(t *testing.T) {
	t.Run("Group then ungroup", func(t *testing.T) {
		q := mustParse(t, "/table?grouped=status&page=4")

		q1 := mustParse(t, q.WithGroupedColumnToggled("region").String())
		assert.Equal(t, []string{"status", "region"}, q1.GroupedColumns)
		assert.Equal(t, 0, q1.Page, "grouping change resets the page")

		q2 := mustParse(t, q1.WithGroupedColumnToggled("status").String())
		assert.Equal(t, []string{"region"}, q2.GroupedColumns)
		assert.True(t, q2.IsColumnGrouped("region"))
		assert.False(t, q2.IsColumnGrouped("status"))
	})
}

func TestSortToggled(t *testing.T) {
	q := mustParse(t, "/p")

	q = mustParse(t, q.WithSortToggled("price").String())
	assert.Equal(t, sorting.State{ColumnID: "price", Direction: sorting.Ascending}, q.Sort)

	q = mustParse(t, q.WithSortToggled("price").String())
	assert.Equal(t, sorting.Descending, q.Sort.Direction)

	q = mustParse(t, q.WithSortToggled("price").String())
	assert.False(t, q.Sort.IsSorted())

	q = mustParse(t, mustParse(t, "/p?sort=price:desc").WithSortToggled("name").String())
	assert.Equal(t, sorting.State{ColumnID: "name", Direction: sorting.Ascending}, q.Sort)
}

func TestColumnToggled(t *testing.T) {
	q := mustParse(t, "/p?hidden=id")
	assert.False(t, q.IsColumnVisible("id"))

	shown := mustParse(t, q.WithColumnToggled("id").String())
	assert.True(t, shown.IsColumnVisible("id"))
	assert.NotNil(t, shown.Hidden)

	hidden := mustParse(t, q.WithColumnToggled("price").String())
	assert.Equal(t, []string{"id", "price"}, hidden.Hidden)
}

func TestWithFilter(t *testing.T) {
	q := mustParse(t, "/p?text:name=x&page=2")

	cleared := mustParse(t, q.WithFilter("name", filtering.Text("")).String())
	assert.NotContains(t, cleared.Filters, "name")
	assert.Equal(t, 0, cleared.Page)

	set := mustParse(t, q.WithFilter("category", filtering.Facet{"A"}).String())
	assert.Equal(t, filtering.Facet{"A"}, set.Filters["category"])
	assert.Equal(t, filtering.Text("x"), set.Filters["name"])
}

func TestWithPageAndLimit(t *testing.T) {
	q := mustParse(t, "/p?limit=10")

	assert.Equal(t, 4, mustParse(t, q.WithPage(4).String()).Page)
	assert.Equal(t, 0, mustParse(t, q.WithPage(-3).String()).Page)

	l := mustParse(t, mustParse(t, "/p?page=3").WithLimit(50).String())
	assert.Equal(t, 50, l.Limit)
	assert.Equal(t, 0, l.Page)
}

func TestClone(t *testing.T) {
	q := mustParse(t, "/p?facet:category=A&grouped=category")
	clone := q.Clone()
	clone.GroupedColumns[0] = "other"
	clone.Filters["category"].(filtering.Facet)[0] = "Z"
	clone.Filters["name"] = filtering.Text("x")

	assert.Equal(t, []string{"category"}, q.GroupedColumns)
	assert.Equal(t, filtering.Facet{"A"}, q.Filters["category"])
	assert.NotContains(t, q.Filters, "name")
}

func TestToSafeURL(t *testing.T) {
	q := mustParse(t, "/products?q=a%20b&text:name=%3Cscript%3E")
	s := q.ToSafeURL().String()
	assert.True(t, strings.HasPrefix(s, "/products?"))
	assert.NotContains(t, s, "<script>")
}

func TestParseFilter(t *testing.T) {
	tests := map[string]struct {
		kind    columns.FilterKind
		values  []string
		want    filtering.Value
		wantErr bool
	}{
		"text":           {kind: columns.FilterText, values: []string{"desk", "ignored"}, want: filtering.Text("desk")},
		"facet":          {kind: columns.FilterFacet, values: []string{"A", "B"}, want: filtering.Facet{"A", "B"}},
		"range":          {kind: columns.FilterRange, values: []string{"-1.5..2"}, want: filtering.Range{Min: -1.5, Max: 2}},
		"open range":     {kind: columns.FilterRange, values: []string{"3.."}, want: filtering.Range{Min: 3, Max: math.Inf(1)}},
		"date range":     {kind: columns.FilterDateRange, values: []string{"..2024-02-01"}, want: filtering.DateRange{End: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}},
		"no values":      {kind: columns.FilterText, wantErr: true},
		"not filterable": {kind: columns.FilterNone, values: []string{"x"}, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseFilter(tc.kind, tc.values...)
			if tc.wantErr {
				assert.True(t, errors.Is(err, filtering.ErrInvalidFilterValue), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
