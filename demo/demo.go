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


// Package demo bundles a small products dataset and its column descriptors.
package demo

import (
	_ "embed"
	"slices"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/datasources"
)

//go:embed data/products.json
var productsJSON []byte

//go:embed data/columns.yaml
var columnsYAML []byte

// DefaultHiddenColumns are hidden until the user shows them.
var DefaultHiddenColumns = []string{"id"}

// DefaultColumnOrder is the order offered by the "reorder columns" action.
var DefaultColumnOrder = []string{"name", "category", "subcategory", "price", "createdAt", "updatedAt"}

// Products returns the sample dataset.
func Products() (*tables.Dataset, error) {
	return datasources.DecodeJSON(productsJSON)
}

// ProductColumns returns the column descriptors of the sample dataset.
func ProductColumns() ([]columns.Descriptor, error) {
	return datasources.DecodeColumns(columnsYAML)
}

// NewProductsController returns a controller loaded with the sample dataset.
// The sample's hidden columns are added to opts.HiddenColumns.
func NewProductsController(opts views.Options) (*views.Controller, error) {
	descs, err := ProductColumns()
	if err != nil {
		return nil, err
	}
	ds, err := Products()
	if err != nil {
		return nil, err
	}
	for _, id := range DefaultHiddenColumns {
		if !slices.Contains(opts.HiddenColumns, id) {
			opts.HiddenColumns = append(slices.Clone(opts.HiddenColumns), id)
		}
	}

	c := views.NewController(opts)
	if err := c.ConfigureColumns(descs); err != nil {
		return nil, err
	}
	if err := c.SetDataset(ds); err != nil {
		return nil, err
	}
	return c, nil
}
