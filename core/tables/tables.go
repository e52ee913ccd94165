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

package tables

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// IDField is the field that uniquely identifies a record.
const IDField = "id"

// Record is one row of a dataset. Values are strings, numbers or timestamps
// (time.Time, or strings that parse as one). A Record is never mutated once
// built.
type Record struct {
	fields map[string]any
}

// NewRecord copies fields into a new Record.
func NewRecord(fields map[string]any) Record {
	return Record{fields: maps.Clone(fields)}
}

// Get returns the raw value of a field and whether the field is present.
func (r Record) Get(field string) (any, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// ID returns the string form of the record's id field.
func (r Record) ID() string {
	v, ok := r.fields[IDField]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

// Fields returns the record's field names, sorted.
func (r Record) Fields() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

// Dataset is the ordered, read-only sequence of records a view is derived from.
type Dataset struct {
	fields  []string
	records []Record
}

// NewDataset builds a Dataset whose declared shape is the union of the fields
// present on its records, in first-appearance order.
func NewDataset(records []Record) (*Dataset, error) {
	seen := map[string]bool{}
	var fields []string
	for _, r := range records {
		for _, f := range r.Fields() {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return NewDatasetWithFields(fields, records)
}

// NewDatasetWithFields builds a Dataset with an explicitly declared shape,
// e.g. a CSV header. Record ids must be unique.
func NewDatasetWithFields(fields []string, records []Record) (*Dataset, error) {
	ids := make(map[string]int, len(records))
	for i, r := range records {
		id := r.ID()
		if id == "" {
			continue
		}
		if prev, ok := ids[id]; ok {
			return nil, fmt.Errorf("%w: id %q at rows %d and %d", ErrDuplicateID, id, prev, i)
		}
		ids[id] = i
	}
	return &Dataset{
		fields:  slices.Clone(fields),
		records: slices.Clone(records),
	}, nil
}

// Length returns the number of records.
func (d *Dataset) Length() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of the record sequence.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Fields returns the declared field names.
func (d *Dataset) Fields() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.fields)
}

// HasField reports whether field is part of the declared shape.
func (d *Dataset) HasField(field string) bool {
	return d != nil && slices.Contains(d.fields, field)
}
