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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TABULA_LOG_FORMAT", "text")
	t.Setenv("TABULA_LOG_LEVEL", "error")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestView_Defaults(t *testing.T) {
	out, err := run(t, "view")
	require.NoError(t, err)

	l := lines(out)
	assert.True(t, strings.HasPrefix(l[0], "Name"), "id column hidden by default: %q", l[0])
	assert.Contains(t, l[1], "Mechanical Keyboard")
	assert.Equal(t, "page 1/2, 20 matching rows", l[len(l)-1])
}

func TestView_FilterSortPage(t *testing.T) {
	out, err := run(t, "view",
		"--filter", "category=Stationery,Furniture",
		"--filter", "price=..100",
		"--sort", "price:desc",
		"--page-size", "3",
		"--page", "2",
	)
	require.NoError(t, err)

	l := lines(out)
	assert.Contains(t, l[0], "Price v")
	require.Len(t, l, 5)
	assert.Contains(t, l[1], "Desk Lamp")
	assert.Contains(t, l[2], "Gel Pens")
	assert.Contains(t, l[3], "Notebook A5")
	assert.Equal(t, "page 2/3, 8 matching rows", l[4])
}

func TestView_Grouped(t *testing.T) {
	out, err := run(t, "view", "--group", "category", "--filter", "subcategory=Lighting,Paper")
	require.NoError(t, err)

	assert.Contains(t, out, "[Furniture] (2)")
	assert.Contains(t, out, "[Stationery] (2)")
	assert.Contains(t, out, "in 2 groups")
	assert.Less(t, strings.Index(out, "[Furniture]"), strings.Index(out, "[Stationery]"))
}

func TestView_LinkRoundTrip(t *testing.T) {
	out, err := run(t, "view", "--search", "lamp", "--hide", "updatedAt", "--link")
	require.NoError(t, err)
	l := lines(out)
	link := l[len(l)-1]
	assert.True(t, strings.HasPrefix(link, "/view?"), link)

	again, err := run(t, "view", "--url", link)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(l[:len(l)-1], "\n")+"\n", again)
}

func TestView_Errors(t *testing.T) {
	tests := map[string][]string{
		"unknown filter column": {"view", "--filter", "colour=red"},
		"filter without value":  {"view", "--filter", "category"},
		"unsortable":            {"view", "--sort", "id"},
		"bad direction":         {"view", "--sort", "price:up"},
		"unknown group":         {"view", "--group", "nope"},
		"page size":             {"view", "--page-size", "-2", "--page", "1"},
		"bad link":              {"view", "--url", "/v?range:price=abc"},
		"data without columns":  {"view", "--data", "x.json"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestView_CSVData(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "cities.csv")
	cols := filepath.Join(dir, "columns.yaml")
	require.NoError(t, os.WriteFile(data, []byte("id,city,population,founded\n1,Lyon,522000,\n2,Oslo,709000,1040-01-01\n3,Bern,134000,1191-01-01\n"), 0o644))
	require.NoError(t, os.WriteFile(cols, []byte(`columns:
  - id: city
    header: City
    filter_kind: text
    sortable: true
  - id: population
    header: Population
    value_kind: number
    filter_kind: range
    sortable: true
  - id: founded
    header: Founded
    value_kind: date
`), 0o644))

	out, err := run(t, "view", "--data", data, "--columns", cols, "--sort", "population:asc")
	require.NoError(t, err)
	l := lines(out)
	assert.Contains(t, l[1], "Bern")
	assert.Contains(t, l[2], "Lyon")
	assert.Contains(t, l[3], "Oslo")
	assert.Equal(t, "page 1/1, 3 matching rows", l[4])
}

func TestColumns(t *testing.T) {
	out, err := run(t, "columns")
	require.NoError(t, err)
	l := lines(out)
	require.Len(t, l, 8)
	assert.Regexp(t, `^id\s+ID\s+string\s+none\s+false\s+false$`, l[1])
	assert.Regexp(t, `^price\s+Price\s+number\s+range\s+true\s+true$`, l[5])
}

func TestFacets(t *testing.T) {
	out, err := run(t, "facets", "category")
	require.NoError(t, err)
	assert.Equal(t, "Electronics\nFurniture\nStationery\n", out)

	_, err = run(t, "facets", "nope")
	assert.Error(t, err)
}

func TestView_HTML(t *testing.T) {
	out, err := run(t, "view", "--html", "--sort", "price:asc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "Sticky Notes")
	assert.Contains(t, out, `href="/view?`)
}
