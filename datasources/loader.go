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

// Package datasources loads datasets and column descriptors from files.
package datasources

import (
	"errors"

	"github.com/google/tabula/core/tables"
)

// ErrMissingConfig is returned when a required loader config key is absent.
var ErrMissingConfig = errors.New("missing loader config")

// DatasetLoader is implemented by every dataset source.
// Built-in loaders handle "json" and "csv".
type DatasetLoader interface {
	// SourceType returns the type identifier used in config (e.g., "json", "csv").
	SourceType() string

	// Load reads the dataset described by config.
	Load(config map[string]string) (*tables.Dataset, error)
}
