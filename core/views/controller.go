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

package views

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/filtering"
	"github.com/google/tabula/core/grouping"
	"github.com/google/tabula/core/logger"
	"github.com/google/tabula/core/paging"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/tables"
)

// ErrNotConfigured is returned when the controller is used before its columns are configured.
var ErrNotConfigured = errors.New("columns not configured")

// Options tunes a Controller.
type Options struct {
	PageSize int
	// PaginatePerGroup pages every group separately instead of the flattened rows.
	PaginatePerGroup bool
	// AutoResetPage returns to the first page when filters, sort or grouping change.
	AutoResetPage bool
	// HiddenColumns are hidden in the default state.
	HiddenColumns []string
	Logger        *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		PageSize:      paging.DefaultPageSize,
		AutoResetPage: true,
	}
}

// Controller owns the ViewState of one view session and is the only way to
// change it. Every setter validates its input and leaves the state untouched
// on failure. The derived view is recomputed lazily, at most once per
// distinct state.
//
// A Controller is safe for concurrent use; readers never observe a state
// in the middle of a mutation.
type Controller struct {
	mu   sync.Mutex
	opts Options
	log  *slog.Logger

	reg     *columns.Registry
	dataset *tables.Dataset
	state   ViewState

	derived     *DerivedView
	derivedKey  uint64
	derivations int
}

// NewController returns a controller with no columns and an empty dataset.
func NewController(opts Options) *Controller {
	if opts.PageSize < 1 {
		opts.PageSize = paging.DefaultPageSize
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	c := &Controller{
		opts: opts,
		log:  log.With("component", "view controller"),
	}
	c.state = c.defaultState()
	return c
}

// ConfigureColumns installs the column descriptors and resets the view state.
func (c *Controller) ConfigureColumns(descs []columns.Descriptor) error {
	reg, err := columns.Describe(descs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dataset != nil {
		if err := reg.ValidateShape(c.dataset); err != nil {
			return err
		}
	}
	c.reg = reg
	c.state = c.defaultState()
	c.invalidate()
	c.log.Debug("columns configured", "columns", len(descs))
	return nil
}

// LoadDataset replaces the dataset the view is derived from.
func (c *Controller) LoadDataset(records []tables.Record) error {
	ds, err := tables.NewDataset(records)
	if err != nil {
		return err
	}
	return c.SetDataset(ds)
}

// SetDataset is LoadDataset for a dataset with an explicitly declared shape.
func (c *Controller) SetDataset(ds *tables.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg != nil {
		if err := c.reg.ValidateShape(ds); err != nil {
			return err
		}
	}
	c.dataset = ds
	c.invalidate()
	c.log.Debug("dataset loaded", "records", ds.Length())
	return nil
}

// Registry returns the configured column registry, nil before ConfigureColumns.
func (c *Controller) Registry() *columns.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg
}

// Apply commits a batch of changes as one mutation. The changes run in
// order against a copy of the state; if any fails the state is left as it
// was and none of them take effect.
func (c *Controller) Apply(changes ...Change) error {
	return c.update(func(s *ViewState) error {
		for _, ch := range changes {
			if ch.apply == nil {
				continue
			}
			if err := ch.apply(c, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetGlobalFilter sets the free-text search applied to all visible filterable columns.
func (c *Controller) SetGlobalFilter(text string) error {
	return c.Apply(GlobalFilter(text))
}

// SetColumnFilter sets the filter of one column. A value that constrains
// nothing, such as an empty facet set, removes the filter.
func (c *Controller) SetColumnFilter(columnID string, value filtering.Value) error {
	return c.Apply(ColumnFilter(columnID, value))
}

// ClearColumnFilter removes the filter of one column.
func (c *Controller) ClearColumnFilter(columnID string) error {
	return c.Apply(NoColumnFilter(columnID))
}

// SetSort sorts by one column. Direction sorting.None, or an empty column
// id, removes the sort.
func (c *Controller) SetSort(columnID string, dir sorting.Direction) error {
	return c.Apply(SortBy(columnID, dir))
}

// SetGroupBy groups by the given columns, outermost first. No ids removes grouping.
func (c *Controller) SetGroupBy(columnIDs []string) error {
	return c.Apply(GroupBy(columnIDs...))
}

// SetPage selects a page. Negative indexes select the first page; indexes
// past the last page are clamped when the view is derived.
func (c *Controller) SetPage(index int) error {
	return c.Apply(Page(index))
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(n int) error {
	return c.Apply(PageSize(n))
}

// SetColumnVisibility shows or hides a column.
func (c *Controller) SetColumnVisibility(columnID string, visible bool) error {
	return c.Apply(ColumnVisibility(columnID, visible))
}

// SetColumnOrder sets the preferred column order. Every id must be known and
// appear once; columns left out follow in declaration order.
func (c *Controller) SetColumnOrder(orderedIDs []string) error {
	return c.Apply(ColumnOrder(orderedIDs...))
}

// ResetAll restores the default state.
func (c *Controller) ResetAll() error {
	return c.Apply(Reset())
}

// GetViewState returns a snapshot of the current state.
func (c *Controller) GetViewState() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// GetDerivedView returns the view for the current state, recomputing it
// only if the state changed since the last derivation.
func (c *Controller) GetDerivedView() (DerivedView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg == nil {
		return DerivedView{}, ErrNotConfigured
	}

	key, hashErr := c.state.Hash()
	if hashErr == nil && c.derived != nil && key == c.derivedKey {
		return c.derived.clone(), nil
	}

	v, err := Derive(c.dataset, c.reg, c.state, c.opts.PaginatePerGroup)
	if err != nil {
		return DerivedView{}, err
	}
	c.derivations++
	c.log.Debug("view derived",
		"filtered", v.TotalFilteredCount,
		"page", v.PageIndex,
		"pages", v.PageCount,
		"groups", v.GroupCount,
	)
	if n := len(v.Diagnostics); n > 0 {
		c.log.Warn("records excluded by unparsable dates", "count", n, "first", v.Diagnostics[0].Error())
	}

	if hashErr == nil {
		c.derived = &v
		c.derivedKey = key
	} else {
		c.log.Warn("view state not hashable, derived view not cached", "err", hashErr)
	}
	return v.clone(), nil
}

// Derivations returns how many times the pipeline has run.
func (c *Controller) Derivations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.derivations
}

// FacetValues returns the distinct values of a column across the whole
// dataset in order of first appearance, for building facet choices.
func (c *Controller) FacetValues(columnID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg == nil {
		return nil, ErrNotConfigured
	}
	d, err := c.reg.Get(columnID)
	if err != nil {
		return nil, err
	}
	return filtering.Distinct(c.dataset.Records(), d), nil
}

// update applies fn to a copy of the state and commits the copy only if fn
// succeeds.
func (c *Controller) update(fn func(s *ViewState) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg == nil {
		return ErrNotConfigured
	}
	next := c.state.Clone()
	if err := fn(&next); err != nil {
		c.log.Debug("view state change rejected", "err", err)
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) resetPage(s *ViewState) {
	if c.opts.AutoResetPage {
		s.Pagination.PageIndex = 0
	}
}

func (c *Controller) invalidate() {
	c.derived = nil
	c.derivedKey = 0
}

func (c *Controller) defaultState() ViewState {
	s := ViewState{
		Filters:    filtering.State{Columns: map[string]filtering.Value{}},
		Pagination: paging.State{PageIndex: 0, PageSize: c.opts.PageSize},
		Visibility: map[string]bool{},
	}
	for _, id := range c.opts.HiddenColumns {
		if c.reg == nil || c.reg.Has(id) {
			s.Visibility[id] = false
		}
	}
	return s
}

func sameFilter(a, b filtering.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ka := ViewState{Filters: filtering.State{Columns: map[string]filtering.Value{"x": a}}}.key()
	kb := ViewState{Filters: filtering.State{Columns: map[string]filtering.Value{"x": b}}}.key()
	ha, errA := hashKey(ka)
	hb, errB := hashKey(kb)
	return errA == nil && errB == nil && ha == hb
}

func (v DerivedView) clone() DerivedView {
	out := v
	out.Rows = slices.Clone(v.Rows)
	out.Columns = slices.Clone(v.Columns)
	out.Diagnostics = slices.Clone(v.Diagnostics)
	if v.Groups != nil {
		out.Groups = make([]grouping.Group, len(v.Groups))
		for i, g := range v.Groups {
			out.Groups[i] = grouping.Group{Key: slices.Clone(g.Key), Rows: slices.Clone(g.Rows)}
		}
	}
	return out
}
