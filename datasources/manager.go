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
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/tabula/core/tables"
)

// Source is a named dataset definition.
type Source struct {
	Name       string
	SourceType string
	Config     map[string]string
}

// Manager keeps the registered loaders and sources and caches loaded datasets.
type Manager struct {
	mu      sync.Mutex
	loaders map[string]DatasetLoader
	sources map[string]*Source
	cache   map[string]*tables.Dataset
	baseDir string
}

// NewManager creates a manager with the built-in loaders registered.
func NewManager() *Manager {
	m := &Manager{
		loaders: make(map[string]DatasetLoader),
		sources: make(map[string]*Source),
		cache:   make(map[string]*tables.Dataset),
	}
	m.RegisterLoader(NewJSONLoader())
	m.RegisterLoader(NewCsvLoader())
	return m
}

// RegisterLoader adds or replaces the loader for its source type.
func (m *Manager) RegisterLoader(loader DatasetLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// SetBaseDir sets the directory relative file paths are resolved against.
func (m *Manager) SetBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseDir = dir
}

// AddSource registers a source definition. Loading is deferred to LoadData.
func (m *Manager) AddSource(source *Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source.Name] = source
	delete(m.cache, source.Name)
}

// GetSourceNames returns the registered source names, sorted.
func (m *Manager) GetSourceNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadData returns the dataset of a source, loading it on first use.
func (m *Manager) LoadData(sourceName string) (*tables.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ds, ok := m.cache[sourceName]; ok {
		return ds, nil
	}
	source, ok := m.sources[sourceName]
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", sourceName)
	}
	loader, ok := m.loaders[source.SourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for source type %q", source.SourceType)
	}
	ds, err := loader.Load(m.resolveConfigPaths(source.Config))
	if err != nil {
		return nil, fmt.Errorf("failed to load source %q: %w", sourceName, err)
	}
	m.cache[sourceName] = ds
	return ds, nil
}

// IsLoaded reports whether a source's dataset is cached.
func (m *Manager) IsLoaded(sourceName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cache[sourceName]
	return ok
}

// InvalidateCache drops the cached dataset of one source.
func (m *Manager) InvalidateCache(sourceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, sourceName)
}

// resolveConfigPaths makes a relative file_path absolute against the base dir.
func (m *Manager) resolveConfigPaths(config map[string]string) map[string]string {
	resolved := make(map[string]string, len(config))
	for k, v := range config {
		resolved[k] = v
	}
	if p := resolved["file_path"]; p != "" && m.baseDir != "" && !filepath.IsAbs(p) {
		resolved["file_path"] = filepath.Join(m.baseDir, p)
	}
	return resolved
}

// SourceTypeForPath guesses the source type from a file extension.
func SourceTypeForPath(path string) (string, error) {
	switch filepath.Ext(path) {
	case ".json":
		return "json", nil
	case ".csv", ".tsv":
		return "csv", nil
	}
	return "", fmt.Errorf("cannot infer source type of %q", path)
}
