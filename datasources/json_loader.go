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

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/tabula/core/tables"
)

// JSONLoader implements DatasetLoader for JSON files holding an array of objects.
// Numbers decode as float64, nulls as nil.
//
// Required config keys:
//   - file_path: Path to the JSON file
type JSONLoader struct{}

// NewJSONLoader creates a new JSON loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// SourceType returns "json".
func (l *JSONLoader) SourceType() string {
	return "json"
}

// Load loads a JSON file into a dataset.
func (l *JSONLoader) Load(config map[string]string) (*tables.Dataset, error) {
	filePath := config["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("%w: file_path is required", ErrMissingConfig)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return DecodeJSON(data)
}

// DecodeJSON parses a JSON array of objects into a dataset.
func DecodeJSON(data []byte) (*tables.Dataset, error) {
	list := &structpb.ListValue{}
	if err := protojson.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("failed to parse JSON dataset: %w", err)
	}

	records := make([]tables.Record, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		obj := v.GetStructValue()
		if obj == nil {
			return nil, fmt.Errorf("record %d is not a JSON object", i)
		}
		records = append(records, tables.NewRecord(obj.AsMap()))
	}
	return tables.NewDataset(records)
}
