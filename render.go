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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/views"
)

func renderView(w io.Writer, reg *columns.Registry, v views.DerivedView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}

	headers := make([]string, len(v.Columns))
	for i, col := range v.Columns {
		headers[i] = col.Header
		switch col.Sorted {
		case sorting.Ascending:
			headers[i] += " ^"
		case sorting.Descending:
			headers[i] += " v"
		}
	}
	writeRow(headers)

	cells := func(rec tables.Record) []string {
		out := make([]string, len(v.Columns))
		for i, col := range v.Columns {
			val, err := reg.Resolve(col.ID, rec)
			if err != nil || val.Null {
				continue
			}
			out[i] = val.String()
		}
		return out
	}

	if v.Groups != nil {
		for _, g := range v.Groups {
			fmt.Fprintf(tw, "[%s] (%d)\n", g.Label(), g.Length())
			for _, rec := range g.Rows {
				writeRow(cells(rec))
			}
		}
	} else {
		for _, rec := range v.Rows {
			writeRow(cells(rec))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("page %d/%d, %d matching rows", v.PageIndex+1, v.PageCount, v.TotalFilteredCount)
	if v.GroupCount > 0 {
		summary += fmt.Sprintf(" in %d groups", v.GroupCount)
	}
	fmt.Fprintln(w, summary)
	for _, d := range v.Diagnostics {
		fmt.Fprintf(w, "skipped: %v\n", d)
	}
	return nil
}

func renderColumns(w io.Writer, reg *columns.Registry, st views.ViewState) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHEADER\tVALUE\tFILTER\tSORTABLE\tVISIBLE")
	for _, d := range reg.Descriptors() {
		visible, ok := st.Visibility[d.ID]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n", d.ID, d.Header, d.ValueKind, d.FilterKind, d.Sortable, !ok || visible)
	}
	return tw.Flush()
}
