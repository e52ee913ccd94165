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
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/rendering"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/views"
)

type viewFlags struct {
	link     string
	search   string
	filters  []string
	sort     string
	group    []string
	order    []string
	show     []string
	hide     []string
	page     int
	pageSize int
	printURL bool
	html     bool
}

func newViewCmd(g *globalFlags) *cobra.Command {
	f := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print one page of the derived view",
		Example: `  tabula view --filter category=Electronics,Furniture --sort price:desc
  tabula view --group category --page-size 5 --page 2
  tabula view --filter price=10..100 --filter createdAt=2023-06-01..
  tabula view --url '/products?facet:category=Stationery&sort=price:asc'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.newController()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, c); err != nil {
				return err
			}
			v, err := c.GetDerivedView()
			if err != nil {
				return err
			}
			q := query.FromState("/view", c.GetViewState())
			if f.html {
				r, err := rendering.NewTableRenderer()
				if err != nil {
					return err
				}
				return r.Render(cmd.OutOrStdout(), rendering.NewTableViewModel("tabula", c.Registry(), v, q))
			}
			if err := renderView(cmd.OutOrStdout(), c.Registry(), v); err != nil {
				return err
			}
			if f.printURL {
				fmt.Fprintln(cmd.OutOrStdout(), q.ToSafeURL().String())
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.link, "url", "", "Start from a view link produced by --link")
	flags.StringVarP(&f.search, "search", "s", "", "Global search over the visible columns")
	flags.StringArrayVarP(&f.filters, "filter", "f", nil, "Column filter col=value; facets take a,b,c and ranges min..max")
	flags.StringVar(&f.sort, "sort", "", "Sort column and direction, col[:asc|desc]")
	flags.StringSliceVarP(&f.group, "group", "g", nil, "Group by these columns, outermost first")
	flags.StringSliceVar(&f.order, "order", nil, "Column order")
	flags.StringSliceVar(&f.show, "show", nil, "Show these columns")
	flags.StringSliceVar(&f.hide, "hide", nil, "Hide these columns")
	flags.IntVarP(&f.page, "page", "p", 1, "Page number, starting at 1")
	flags.IntVar(&f.pageSize, "page-size", 0, "Rows per page (default: the configured page_size)")
	flags.BoolVar(&f.printURL, "link", false, "Print a link that restores this view")
	flags.BoolVar(&f.html, "html", false, "Write the page as HTML with links for sorting, grouping and paging")
	return cmd
}

// apply replays the flags onto c in the order a user would click through them.
func (f *viewFlags) apply(cmd *cobra.Command, c *views.Controller) error {
	if f.link != "" {
		u, err := url.Parse(f.link)
		if err != nil {
			return fmt.Errorf("--url: %w", err)
		}
		q, err := query.NewQuery(u)
		if err != nil {
			return fmt.Errorf("--url: %w", err)
		}
		if err := q.Apply(c); err != nil {
			return fmt.Errorf("--url: %w", err)
		}
	}
	if len(f.order) > 0 {
		if err := c.SetColumnOrder(f.order); err != nil {
			return fmt.Errorf("--order: %w", err)
		}
	}
	for _, id := range f.show {
		if err := c.SetColumnVisibility(id, true); err != nil {
			return fmt.Errorf("--show: %w", err)
		}
	}
	for _, id := range f.hide {
		if err := c.SetColumnVisibility(id, false); err != nil {
			return fmt.Errorf("--hide: %w", err)
		}
	}
	if len(f.group) > 0 {
		if err := c.SetGroupBy(f.group); err != nil {
			return fmt.Errorf("--group: %w", err)
		}
	}
	if f.search != "" {
		if err := c.SetGlobalFilter(f.search); err != nil {
			return err
		}
	}
	for _, raw := range f.filters {
		if err := applyFilter(c, raw); err != nil {
			return fmt.Errorf("--filter %s: %w", raw, err)
		}
	}
	if f.sort != "" {
		col, dirStr, _ := strings.Cut(f.sort, ":")
		if dirStr == "" {
			dirStr = "asc"
		}
		dir, err := sorting.ParseDirection(dirStr)
		if err != nil {
			return fmt.Errorf("--sort: %w", err)
		}
		if err := c.SetSort(col, dir); err != nil {
			return fmt.Errorf("--sort: %w", err)
		}
	}
	if cmd.Flags().Changed("page-size") {
		if err := c.SetPageSize(f.pageSize); err != nil {
			return fmt.Errorf("--page-size: %w", err)
		}
	}
	if cmd.Flags().Changed("page") {
		return c.SetPage(f.page - 1)
	}
	return nil
}

func applyFilter(c *views.Controller, raw string) error {
	col, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("expected col=value")
	}
	d, err := c.Registry().Get(col)
	if err != nil {
		return err
	}
	values := []string{value}
	if d.FilterKind == columns.FilterFacet {
		values = strings.Split(value, ",")
	}
	v, err := query.ParseFilter(d.FilterKind, values...)
	if err != nil {
		return err
	}
	return c.SetColumnFilter(col, v)
}

func newColumnsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the configured columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.newController()
			if err != nil {
				return err
			}
			return renderColumns(cmd.OutOrStdout(), c.Registry(), c.GetViewState())
		},
	}
}

func newFacetsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "facets COLUMN",
		Short: "List the distinct values of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.newController()
			if err != nil {
				return err
			}
			values, err := c.FacetValues(args[0])
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
