// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package binder owns binder configuration and the collected state laid over it.

A binder is a grid (rows x columns, fixed at creation) over an ordered catalog.
Its state has two independently stored fields: the collected set and the
per-slot card assignments. The transitions in state.go keep them consistent,
the [Draft] tracks uncommitted edits, and [Service.Commit] persists both fields.

# Authorization

Anyone may read any binder. Writes require the caller to own the binder, or
the binder to be shared (the public example binder, writable by everyone).
*/
package binder

import (
	"time"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/search"
)

// # Domain Entities

// Binder is a grid-paginated view over an ordered catalog plus its collected state.
type Binder struct {
	ID        string               `json:"id"`
	Name      *string              `json:"name,omitempty"`
	Rows      int                  `json:"rows"`
	Columns   int                  `json:"columns"`
	Ordering  catalog.OrderingMode `json:"ordering"`
	OwnerID   *string              `json:"owner_id,omitempty"`
	IsShared  bool                 `json:"is_shared"`
	State     State                `json:"state"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// SlotsPerPage returns rows x columns.
func (binder *Binder) SlotsPerPage() int {
	return binder.Rows * binder.Columns
}

// Grid returns the binder shape used to address search results.
func (binder *Binder) Grid() search.Grid {
	return search.Grid{Rows: binder.Rows, Columns: binder.Columns}
}

// IsOwnedBy reports whether userID owns the binder. Anonymous callers own nothing.
func (binder *Binder) IsOwnedBy(userID string) bool {
	return userID != "" && binder.OwnerID != nil && *binder.OwnerID == userID
}

// CanWrite is the authorization gate for every mutating operation.
func (binder *Binder) CanWrite(userID string) bool {
	return binder.IsShared || binder.IsOwnedBy(userID)
}

// # Grid Limits

const (
	MinGridSize = 1
	MaxGridSize = 10
)

// # Example Binder

// The shared example binder is created on first listing when none exists.
const (
	ExampleName    = "Pokedex (Example)"
	ExampleRows    = 4
	ExampleColumns = 5
)

// ExampleOrdering is the ordering of the seeded example binder.
const ExampleOrdering = catalog.OrderingNational

// # Field Identifiers

const (
	FieldID       = "id"
	FieldName     = "name"
	FieldRows     = "rows"
	FieldColumns  = "columns"
	FieldOrdering = "ordering"
	FieldEntryID  = "entry_id"
	FieldCardID   = "card_id"
	FieldQuery    = "q"
)
