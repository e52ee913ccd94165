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


// Package rendering renders a derived view as a static HTML page whose
// controls are links that restore the modified view.
package rendering

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// TableRenderer handles rendering of table view models to HTML
type TableRenderer struct {
	tableTemplate *template.Template
}

// NewTableRenderer creates a new table renderer
func NewTableRenderer() (*TableRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	tableTemplate, err := template.New("table.html").ParseFS(trustedFS, "templates/table.html")
	if err != nil {
		return nil, err
	}
	return &TableRenderer{tableTemplate: tableTemplate}, nil
}

// Render renders a TableViewModel to the provided writer
func (r *TableRenderer) Render(w io.Writer, vm TableViewModel) error {
	return r.tableTemplate.Execute(w, vm)
}

// TableViewModel is the template input for one page of a view.
type TableViewModel struct {
	Title       string
	Headers     []HeaderModel
	Groups      []GroupModel
	Summary     string
	PrevURL     safehtml.URL
	NextURL     safehtml.URL
	HasPrev     bool
	HasNext     bool
	Diagnostics []string
}

// HeaderModel is one column header with its controls.
type HeaderModel struct {
	Label     string
	Indicator string
	Sortable  bool
	SortURL   safehtml.URL
	Grouped   bool
	GroupURL  safehtml.URL
	HideURL   safehtml.URL
}

// GroupModel is a run of rows under an optional group label.
type GroupModel struct {
	Label string
	Count int
	Rows  [][]string
}

// NewTableViewModel builds the template input for v. Links are derived
// from q, which should describe the state v was derived from.
func NewTableViewModel(title string, reg *columns.Registry, v views.DerivedView, q *query.Query) TableViewModel {
	vm := TableViewModel{
		Title:   title,
		Summary: fmt.Sprintf("Page %d of %d, %d matching rows", v.PageIndex+1, v.PageCount, v.TotalFilteredCount),
		HasPrev: v.PageIndex > 0,
		HasNext: v.PageIndex < v.PageCount-1,
		PrevURL: q.WithPage(v.PageIndex - 1),
		NextURL: q.WithPage(v.PageIndex + 1),
	}
	if v.GroupCount > 0 {
		vm.Summary += fmt.Sprintf(" in %d groups", v.GroupCount)
	}

	for _, col := range v.Columns {
		h := HeaderModel{
			Label:    col.Header,
			Sortable: col.Sortable,
			Grouped:  col.Grouped,
			SortURL:  q.WithSortToggled(col.ID),
			GroupURL: q.WithGroupedColumnToggled(col.ID),
			HideURL:  q.WithColumnToggled(col.ID),
		}
		switch col.Sorted {
		case sorting.Ascending:
			h.Indicator = "▲"
		case sorting.Descending:
			h.Indicator = "▼"
		}
		vm.Headers = append(vm.Headers, h)
	}

	row := func(rec tables.Record) []string {
		cells := make([]string, len(v.Columns))
		for i, col := range v.Columns {
			if val, err := reg.Resolve(col.ID, rec); err == nil && !val.Null {
				cells[i] = val.String()
			}
		}
		return cells
	}
	if v.Groups == nil {
		g := GroupModel{Count: len(v.Rows)}
		for _, rec := range v.Rows {
			g.Rows = append(g.Rows, row(rec))
		}
		vm.Groups = []GroupModel{g}
	} else {
		for _, grp := range v.Groups {
			g := GroupModel{Label: grp.Label(), Count: grp.Length()}
			for _, rec := range grp.Rows {
				g.Rows = append(g.Rows, row(rec))
			}
			vm.Groups = append(vm.Groups, g)
		}
	}

	for _, d := range v.Diagnostics {
		vm.Diagnostics = append(vm.Diagnostics, d.Error())
	}
	return vm
}
