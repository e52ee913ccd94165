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
	"errors"
	"fmt"
)

// ErrInvalidPageSize is returned for page sizes below 1.
var ErrInvalidPageSize = errors.New("invalid page size")

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// State selects one fixed-size page of a row sequence.
type State struct {
	PageIndex int
	PageSize  int
}

// ValidatePageSize rejects page sizes below 1.
func ValidatePageSize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	return nil
}

// Page is one slice of a row sequence.
type Page[T any] struct {
	Rows      []T
	PageIndex int // effective index after clamping
	PageCount int
	Total     int
}

// PageCount returns ceil(total/size), at least 1.
func PageCount(total, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	n := (total + size - 1) / size
	if n < 1 {
		return 1
	}
	return n
}

// Apply returns the page of rows selected by s. An out of range index is
// clamped into [0, PageCount-1] rather than rejected.
func Apply[T any](rows []T, s State) Page[T] {
	size := s.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	count := PageCount(len(rows), size)
	idx := min(max(s.PageIndex, 0), count-1)

	return Page[T]{
		Rows:      Slice(rows, idx, size),
		PageIndex: idx,
		PageCount: count,
		Total:     len(rows),
	}
}

// Slice returns rows[index*size : index*size+size], truncated to the rows
// available and empty past the end. It does not clamp index.
func Slice[T any](rows []T, index, size int) []T {
	if index < 0 || size < 1 {
		return rows[:0:0]
	}
	start := min(index*size, len(rows))
	end := min(start+size, len(rows))
	return rows[start:end:end]
}
