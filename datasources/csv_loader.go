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
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/google/tabula/core/tables"
)

// CsvLoader implements DatasetLoader for CSV files.
// Cells are loaded as strings; empty cells become nil so they resolve as null.
//
// Required config keys:
//   - file_path: Path to the CSV file
//
// Optional config keys:
//   - has_header: "true" or "false" (default: "true")
//   - delimiter: Field delimiter (default: ",")
type CsvLoader struct{}

// NewCsvLoader creates a new CSV loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Load loads a CSV file into a dataset.
func (l *CsvLoader) Load(config map[string]string) (*tables.Dataset, error) {
	filePath := config["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("%w: file_path is required", ErrMissingConfig)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return l.Decode(file, config)
}

// Decode reads CSV from r using the has_header and delimiter keys of config.
func (l *CsvLoader) Decode(r io.Reader, config map[string]string) (*tables.Dataset, error) {
	hasHeader := config["has_header"] != "false"

	reader := csv.NewReader(r)
	if d := config["delimiter"]; d != "" {
		reader.Comma = []rune(d)[0]
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	var names []string
	dataStart := 0
	if hasHeader {
		names = rows[0]
		dataStart = 1
	} else {
		// Generate column names: col_0, col_1, etc.
		for i := range rows[0] {
			names = append(names, fmt.Sprintf("col_%d", i))
		}
	}

	records := make([]tables.Record, 0, len(rows)-dataStart)
	for _, row := range rows[dataStart:] {
		fields := make(map[string]any, len(names))
		for i, name := range names {
			if i < len(row) && row[i] != "" {
				fields[name] = row[i]
			} else {
				fields[name] = nil
			}
		}
		records = append(records, tables.NewRecord(fields))
	}

	return tables.NewDatasetWithFields(names, records)
}
