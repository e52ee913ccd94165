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

package paging

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestApply(t *testing.T) {
	tests := map[string]struct {
		rows      int
		state     State
		wantRows  []int
		wantIndex int
		wantCount int
	}{
		"five rows, page size two, last page": {
			rows: 5, state: State{PageIndex: 2, PageSize: 2},
			wantRows: []int{5}, wantIndex: 2, wantCount: 3,
		},
		"first page": {
			rows: 5, state: State{PageIndex: 0, PageSize: 2},
			wantRows: []int{1, 2}, wantIndex: 0, wantCount: 3,
		},
		"index past the end is clamped": {
			rows: 5, state: State{PageIndex: 9, PageSize: 2},
			wantRows: []int{5}, wantIndex: 2, wantCount: 3,
		},
		"negative index is clamped": {
			rows: 5, state: State{PageIndex: -3, PageSize: 2},
			wantRows: []int{1, 2}, wantIndex: 0, wantCount: 3,
		},
		"empty input has one empty page": {
			rows: 0, state: State{PageIndex: 4, PageSize: 3},
			wantRows: []int{}, wantIndex: 0, wantCount: 1,
		},
		"exact multiple": {
			rows: 6, state: State{PageIndex: 1, PageSize: 3},
			wantRows: []int{4, 5, 6}, wantIndex: 1, wantCount: 2,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			p := Apply(seq(test.rows), test.state)
			assert.Equal(t, test.wantRows, p.Rows)
			assert.Equal(t, test.wantIndex, p.PageIndex)
			assert.Equal(t, test.wantCount, p.PageCount)
			assert.Equal(t, test.rows, p.Total)
		})
	}
}

// Concatenating every page reproduces the input with no gaps or duplicates.
func TestApply_Coverage(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for size := 1; size <= 7; size++ {
			rows := seq(n)
			count := PageCount(n, size)
			var all []int
			for i := 0; i < count; i++ {
				all = append(all, Apply(rows, State{PageIndex: i, PageSize: size}).Rows...)
			}
			if n == 0 {
				assert.Empty(t, all)
				continue
			}
			assert.True(t, slices.Equal(rows, all), "n=%d size=%d", n, size)
		}
	}
}

func TestApply_PageRowsDoNotAlias(t *testing.T) {
	rows := seq(4)
	p := Apply(rows, State{PageIndex: 0, PageSize: 2})
	p.Rows = append(p.Rows, 99)
	assert.Equal(t, 3, rows[2])
}

func TestValidatePageSize(t *testing.T) {
	assert.NoError(t, ValidatePageSize(1))
	assert.ErrorIs(t, ValidatePageSize(0), ErrInvalidPageSize)
	assert.ErrorIs(t, ValidatePageSize(-5), ErrInvalidPageSize)
}

func TestSlice(t *testing.T) {
	rows := seq(5)
	assert.Equal(t, []int{3, 4}, Slice(rows, 1, 2))
	assert.Equal(t, []int{}, Slice(rows, 7, 2))
	assert.Equal(t, []int{}, Slice(rows, -1, 2))
}
