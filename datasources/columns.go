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

package datasources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/google/tabula/core/columns"
)

// ColumnsFile is the YAML layout of a column descriptor file.
//
//	columns:
//	  - id: price
//	    header: Price
//	    value_kind: number
//	    filter_kind: range
//	    sortable: true
type ColumnsFile struct {
	Columns []ColumnEntry `yaml:"columns"`
}

// ColumnEntry is one column in a ColumnsFile.
type ColumnEntry struct {
	ID         string `yaml:"id"`
	Header     string `yaml:"header"`
	Accessor   string `yaml:"accessor"`
	ValueKind  string `yaml:"value_kind"`
	FilterKind string `yaml:"filter_kind"`
	Sortable   bool   `yaml:"sortable"`
}

// LoadColumns reads column descriptors from a YAML file.
func LoadColumns(path string) ([]columns.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns file: %w", err)
	}
	return DecodeColumns(data)
}

// DecodeColumns parses YAML column descriptors. Kinds default to string and none.
func DecodeColumns(data []byte) ([]columns.Descriptor, error) {
	var file ColumnsFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse columns file: %w", err)
	}

	descs := make([]columns.Descriptor, 0, len(file.Columns))
	for i, e := range file.Columns {
		vk, err := columns.ParseValueKind(e.ValueKind)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, e.ID, err)
		}
		fk, err := columns.ParseFilterKind(e.FilterKind)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, e.ID, err)
		}
		descs = append(descs, columns.Descriptor{
			ID:         e.ID,
			Header:     e.Header,
			Accessor:   e.Accessor,
			ValueKind:  vk,
			FilterKind: fk,
			Sortable:   e.Sortable,
		})
	}
	return descs, nil
}
