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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/grouping"
	"github.com/google/tabula/core/paging"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/tables"
)

// TestDerive_PagingNeverReorders checks that the concatenated pages of a
// grouped, sorted, filtered view equal the unpaged sequence.
func TestDerive_PagingNeverReorders(t *testing.T) {
	reg, err := columns.Describe(productColumns)
	require.NoError(t, err)
	rnd := rand.New(rand.NewPCG(7, 11))
	cats := []string{"A", "B", "C", "D"}

	for round := 0; round < 25; round++ {
		var records []tables.Record
		for i := 0; i < 40; i++ {
			records = append(records, product(
				fmt.Sprintf("%02d", i),
				fmt.Sprintf("item %d", rnd.IntN(10)),
				cats[rnd.IntN(len(cats))],
				float64(rnd.IntN(8)),
				"2024-01-01T00:00:00Z",
			))
		}
		ds, err := tables.NewDataset(records)
		require.NoError(t, err)

		st := ViewState{
			Filters: filtering.State{Columns: map[string]filtering.Value{
				"price": filtering.Range{Min: 1, Max: 6},
			}},
			Sort:       sorting.State{ColumnID: "price", Direction: sorting.Direction(1 + rnd.IntN(2))},
			Grouping:   grouping.State{ColumnIDs: []string{"category"}},
			Pagination: paging.State{PageSize: 1000},
		}
		full, err := Derive(ds, reg, st, false)
		require.NoError(t, err)

		st.Pagination.PageSize = 1 + rnd.IntN(7)
		var paged []tables.Record
		for p := 0; ; p++ {
			st.Pagination.PageIndex = p
			v, err := Derive(ds, reg, st, false)
			require.NoError(t, err)
			paged = append(paged, v.Rows...)

			var inGroups []tables.Record
			for _, g := range v.Groups {
				inGroups = append(inGroups, g.Rows...)
			}
			assert.Equal(t, ids(v.Rows), ids(inGroups), "groups partition the page")

			if p >= v.PageCount-1 {
				break
			}
		}
		assert.Equal(t, ids(full.Rows), ids(paged), "round %d", round)
	}
}

func TestDerive_IsPure(t *testing.T) {
	reg, err := columns.Describe(productColumns)
	require.NoError(t, err)
	ds, err := tables.NewDataset(products())
	require.NoError(t, err)
	st := ViewState{
		Sort:       sorting.State{ColumnID: "name", Direction: sorting.Ascending},
		Pagination: paging.State{PageSize: 2},
	}

	a, err := Derive(ds, reg, st, false)
	require.NoError(t, err)
	b, err := Derive(ds, reg, st, false)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, ids(ds.Records()), "input untouched")
}

func TestDerive_DefaultPageSize(t *testing.T) {
	reg, err := columns.Describe(productColumns)
	require.NoError(t, err)
	ds, err := tables.NewDataset(products())
	require.NoError(t, err)

	v, err := Derive(ds, reg, ViewState{}, false)
	require.NoError(t, err)
	assert.Equal(t, paging.DefaultPageSize, v.PageSize)
	assert.Len(t, v.Rows, 5)
	assert.Nil(t, v.Groups)
}
