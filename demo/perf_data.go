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

package demo

import (
	"fmt"
	"time"

	"github.com/google/tabula/core/tables"
)

// Performance test configuration - easily modifiable cardinality
const (
	PerfNumProducts      = 100_000
	PerfNumCategories    = 20  // Low cardinality: 5000 products per category
	PerfNumSubcategories = 400 // Medium cardinality: 250 products per subcategory
)

var perfEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// CreatePerfProducts generates n products with the sample's shape for
// benchmarks. The data is deterministic.
func CreatePerfProducts(n int) []tables.Record {
	records := make([]tables.Record, n)
	for i := range n {
		category := i % PerfNumCategories
		if i%7 == 0 { // Make category 0 more common
			category = 0
		}
		created := perfEpoch.Add(time.Duration(i) * time.Minute)

		var updated any = created.Add(time.Duration(i%72) * time.Hour).Format(time.RFC3339)
		if i%11 == 0 {
			updated = nil
		}

		records[i] = tables.NewRecord(map[string]any{
			"id":          fmt.Sprintf("p%06d", i),
			"name":        fmt.Sprintf("Product %d", i),
			"category":    fmt.Sprintf("Category %02d", category),
			"subcategory": fmt.Sprintf("Subcategory %03d", i%PerfNumSubcategories),
			"price":       float64(100+(i*37)%10_000) / 100,
			"createdAt":   created.Format(time.RFC3339),
			"updatedAt":   updated,
		})
	}
	return records
}
