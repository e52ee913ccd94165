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

package filtering

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/tables"
)

// Result is the output of Apply.
type Result struct {
	Records  []tables.Record
	Failures []DateParseFailure
}

// Apply keeps the records that pass the global search and every active
// column filter, in input order. globalColumns names the columns the global
// search looks at, normally the visible filterable ones.
//
// Records whose date-filtered field fails to parse are dropped and reported
// in Result.Failures; they never abort the call.
func Apply(records []tables.Record, reg *columns.Registry, state State, globalColumns []string) (Result, error) {
	active := state.ActiveColumns()
	preds := make([]predicate, 0, len(active))
	for _, id := range active {
		v := state.Columns[id]
		if err := Validate(reg, id, v); err != nil {
			return Result{}, err
		}
		d, _ := reg.Get(id)
		preds = append(preds, newPredicate(d, v))
	}

	var global []columns.Descriptor
	for _, id := range globalColumns {
		d, err := reg.Get(id)
		if err != nil {
			return Result{}, err
		}
		if d.Filterable() {
			global = append(global, d)
		}
	}

	m := newMatcher(state.Global)
	res := Result{Records: make([]tables.Record, 0, len(records))}
	for _, rec := range records {
		pass := m.empty() || m.matchAny(global, rec)
		// Every predicate runs so that parse failures are reported
		// independently of the other filters.
		for _, p := range preds {
			ok, failure := p.eval(rec, m)
			if failure != nil {
				res.Failures = append(res.Failures, *failure)
			}
			pass = pass && ok
		}
		if pass {
			res.Records = append(res.Records, rec)
		}
	}
	return res, nil
}

// Distinct returns the non-null values of column d across records in order
// of first appearance.
func Distinct(records []tables.Record, d columns.Descriptor) []string {
	seen := map[string]bool{}
	var out []string
	for _, rec := range records {
		v, err := d.Resolve(rec)
		if err != nil || v.Null {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

type predicate struct {
	desc  columns.Descriptor
	value Value
	facet map[string]bool
	text  string
}

func newPredicate(d columns.Descriptor, v Value) predicate {
	p := predicate{desc: d, value: v}
	switch fv := v.(type) {
	case Facet:
		p.facet = make(map[string]bool, len(fv))
		for _, s := range fv {
			p.facet[s] = true
		}
	case Text:
		p.text = string(fv)
	}
	return p
}

func (p predicate) eval(rec tables.Record, m *matcher) (bool, *DateParseFailure) {
	val, err := p.desc.Resolve(rec)
	if err != nil {
		if p.desc.FilterKind != columns.FilterDateRange {
			return false, nil
		}
		raw, _ := rec.Get(p.desc.Accessor)
		return false, &DateParseFailure{
			ColumnID: p.desc.ID,
			RecordID: rec.ID(),
			Raw:      fmt.Sprint(raw),
			Err:      err,
		}
	}

	switch fv := p.value.(type) {
	case Text:
		return m.contains(fieldString(p.desc, rec, val, nil), p.text), nil
	case Facet:
		return !val.Null && p.facet[val.String()], nil
	case Range:
		return !val.Null && val.Num >= fv.Min && val.Num <= fv.Max, nil
	case DateRange:
		if val.Null {
			return false, nil
		}
		if !fv.Start.IsZero() && val.Time.Before(fv.Start) {
			return false, nil
		}
		if !fv.End.IsZero() && val.Time.After(fv.End) {
			return false, nil
		}
		return true, nil
	}
	return false, nil
}

// matcher does case-insensitive substring matching with full Unicode case
// folding.
type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(needle string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.needle = m.fold.String(needle)
	return m
}

func (m *matcher) empty() bool {
	return m.needle == ""
}

func (m *matcher) contains(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(m.fold.String(haystack), m.fold.String(needle))
}

func (m *matcher) matchAny(descs []columns.Descriptor, rec tables.Record) bool {
	for _, d := range descs {
		val, err := d.Resolve(rec)
		if strings.Contains(m.fold.String(fieldString(d, rec, val, err)), m.needle) {
			return true
		}
	}
	return false
}

// fieldString is the text a search sees for a field: the typed value when it
// resolved, the raw value otherwise.
func fieldString(d columns.Descriptor, rec tables.Record, val columns.Value, err error) string {
	if err == nil && !val.Null {
		return val.String()
	}
	raw, ok := rec.Get(d.Accessor)
	if !ok || raw == nil {
		return ""
	}
	return fmt.Sprint(raw)
}
