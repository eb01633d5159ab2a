// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package search resolves free-text species names to grid addresses inside a binder
and serves autocomplete suggestions.

Names are always resolved against the national catalog, because users search
by species identity. The resolved id is then relocated in the binder's own
ordering before being converted to an address.
*/
package search

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/slot"
)

// Grid is the binder shape a search result is addressed in.
type Grid struct {
	Rows    int
	Columns int
}

// Result is a located entry.
type Result struct {
	slot.Address
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CatalogProvider supplies ordered catalogs.
type CatalogProvider interface {
	OrderedCatalog(ctx context.Context, mode catalog.OrderingMode) ([]catalog.Entry, error)
}

// # Pure Resolution

// normalizer trims and case-folds names for comparison. A Caser is stateful,
// so every call site builds its own.
type normalizer struct {
	caser cases.Caser
}

func newNormalizer() normalizer {
	return normalizer{caser: cases.Fold()}
}

func (n normalizer) normalize(name string) string {
	return n.caser.String(strings.TrimSpace(name))
}

// ResolveNameToID resolves a name to an entry id.
//
// An exact (case-folded) match wins. Otherwise the first entry, in catalog
// order, whose name starts with the query is taken.
func ResolveNameToID(name string, entries []catalog.Entry) (int, bool) {
	n := newNormalizer()
	query := n.normalize(name)
	if query == "" {
		return 0, false
	}

	prefixMatch := -1
	for i, entry := range entries {
		candidate := n.normalize(entry.Name)
		if candidate == query {
			return entry.ID, true
		}
		if prefixMatch < 0 && strings.HasPrefix(candidate, query) {
			prefixMatch = i
		}
	}

	if prefixMatch < 0 {
		return 0, false
	}
	return entries[prefixMatch].ID, true
}

// Locate resolves query against nameCatalog, finds the id in binderCatalog and
// addresses it on the grid. An id missing from binderCatalog is not found.
func Locate(query string, nameCatalog, binderCatalog []catalog.Entry, grid Grid) (Result, bool) {
	id, ok := ResolveNameToID(query, nameCatalog)
	if !ok {
		return Result{}, false
	}

	index := slot.FindIndexByID(binderCatalog, id)
	if index < 0 {
		return Result{}, false
	}

	entry := binderCatalog[index]
	return Result{
		Address: slot.IndexToAddress(index, grid.Rows, grid.Columns),
		ID:      entry.ID,
		Name:    entry.Name,
	}, true
}

// # Resolver Service

// Resolver runs searches and suggestions against live catalogs.
type Resolver struct {
	catalogs CatalogProvider
}

// NewResolver creates a new search resolver.
func NewResolver(catalogs CatalogProvider) *Resolver {
	return &Resolver{catalogs: catalogs}
}

/*
SearchInBinder locates a species inside a binder.

Parameters:
  - context: context.Context
  - query: string (Free text, exact name or prefix)
  - grid: Grid (Binder rows and columns)
  - mode: catalog.OrderingMode (The binder's ordering)

Returns:
  - *Result: Page, row, column, id and name
  - error: NOT_FOUND when nothing matches, UPSTREAM_UNAVAILABLE when a catalog cannot be read
*/
func (resolver *Resolver) SearchInBinder(context context.Context, query string, grid Grid, mode catalog.OrderingMode) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.ValidationError("Search query is required",
			apperr.FieldError{Field: "q", Message: "This field is required"})
	}

	nameCatalog, err := resolver.catalogs.OrderedCatalog(context, catalog.OrderingNational)
	if err != nil {
		return nil, err
	}

	binderCatalog := nameCatalog
	if mode != catalog.OrderingNational {
		binderCatalog, err = resolver.catalogs.OrderedCatalog(context, mode)
		if err != nil {
			return nil, err
		}
	}

	result, ok := Locate(query, nameCatalog, binderCatalog, grid)
	if !ok {
		return nil, apperr.NotFound("Pokemon")
	}
	return &result, nil
}
