// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog provides the ordered lists of collectible entries a binder is laid out over.

Three ordering modes exist:

  - national: the primary catalog, upstream order preserved as received.
  - kanto: a regional sub-catalog, upstream order preserved.
  - alphabetical: the national entry set sorted by English collation, case-insensitive.

Every entry carries its national number as [Entry.ID], regardless of mode, so
an id found in one ordering can be relocated in another.
*/
package catalog

import (
	"fmt"
	"strings"
)

// Entry is one collectible item of a catalog. Identity is ID.
type Entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OrderingMode names the strategy that defines the linear sequence of entries.
type OrderingMode string

const (
	OrderingNational     OrderingMode = "national"
	OrderingAlphabetical OrderingMode = "alphabetical"
	OrderingKanto        OrderingMode = "kanto"
)

// Modes lists every supported ordering, primary first.
var Modes = []OrderingMode{OrderingNational, OrderingAlphabetical, OrderingKanto}

// ModeNames returns the string form of [Modes], for validation messages.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, mode := range Modes {
		names[i] = string(mode)
	}
	return names
}

// ParseOrderingMode parses a mode name, case-insensitively.
func ParseOrderingMode(raw string) (OrderingMode, error) {
	mode := OrderingMode(strings.ToLower(strings.TrimSpace(raw)))
	if !mode.Valid() {
		return "", fmt.Errorf("unknown ordering mode %q", raw)
	}
	return mode, nil
}

// Valid reports whether the mode is supported.
func (mode OrderingMode) Valid() bool {
	switch mode {
	case OrderingNational, OrderingAlphabetical, OrderingKanto:
		return true
	}
	return false
}

// sourceKey is the named upstream sub-catalog backing a mode. Alphabetical has
// none of its own; it reorders the national catalog.
func (mode OrderingMode) sourceKey() string {
	switch mode {
	case OrderingKanto:
		return "kanto"
	default:
		return "national"
	}
}
