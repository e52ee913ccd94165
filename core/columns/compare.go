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
	"math"
	"strings"
	"time"
)

// Compare orders two values of the same kind: numerically for numbers,
// lexicographically for strings and chronologically for dates.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
// Null values are greater than everything else.
func Compare(a, b Value) int {
	if a.Null || b.Null {
		return compareNulls(a.Null, b.Null)
	}
	switch a.Kind {
	case KindNumber:
		return compareFloat64s(a.Num, b.Num)
	case KindDate:
		return compareTimes(a.Time, b.Time)
	default:
		return strings.Compare(a.Str, b.Str)
	}
}

// Equal reports whether two values compare equal, nulls included.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// compareTimes compares two time.Time values
func compareTimes(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareNulls sorts nulls after non-null values.
func compareNulls(aNull, bNull bool) int {
	if aNull && bNull {
		return 0
	}
	if aNull {
		return 1
	}
	return -1
}
