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
	"strconv"
	"strings"
	"time"

	"github.com/google/tabula/core/tables"
)

// Value is a record field read through a column descriptor. Only the field
// matching Kind is meaningful, and none is when Null is set.
type Value struct {
	Kind ValueKind
	Null bool
	Str  string
	Num  float64
	Time time.Time
}

// NullValue returns the null value of kind k.
func NullValue(k ValueKind) Value {
	return Value{Kind: k, Null: true}
}

// String returns the representation used for text matching and facets.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Time.UTC().Format(time.RFC3339)
	default:
		return v.Str
	}
}

// Resolve reads the descriptor's accessor from rec. Missing fields and nil
// values resolve to a null Value. A date column whose raw value cannot be
// parsed returns a null Value and an error wrapping ErrUnparsableDatetime.
func (d Descriptor) Resolve(rec tables.Record) (Value, error) {
	raw, ok := rec.Get(d.Accessor)
	if !ok || raw == nil {
		return NullValue(d.ValueKind), nil
	}
	switch d.ValueKind {
	case KindNumber:
		return resolveNumber(raw), nil
	case KindDate:
		return resolveDate(raw)
	default:
		return Value{Kind: KindString, Str: rawString(raw)}, nil
	}
}

func resolveNumber(raw any) Value {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return NullValue(KindNumber)
		}
		n = f
	default:
		return NullValue(KindNumber)
	}
	if n == 0 {
		// -0 and 0 compare equal, so they must also print and group the same.
		n = 0
	}
	return Value{Kind: KindNumber, Num: n}
}

func resolveDate(raw any) (Value, error) {
	var t time.Time
	switch v := raw.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := ParseDatetime(v, time.UTC)
		if err != nil {
			return NullValue(KindDate), err
		}
		t = parsed
	case float64:
		t = unixTime(int64(v))
	case int64:
		t = unixTime(v)
	case int:
		t = unixTime(int64(v))
	default:
		return NullValue(KindDate), fmt.Errorf("%w: %T", ErrUnparsableDatetime, raw)
	}
	if t.IsZero() {
		return NullValue(KindDate), nil
	}
	return Value{Kind: KindDate, Time: t.UTC()}, nil
}

func rawString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
