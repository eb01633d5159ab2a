// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slot maps between a linear catalog index and a binder grid address.

Slots fill row-major: left to right, top to bottom, page by page. Search results
and rendered pages both go through [IndexToAddress], so they always agree.

Every function is pure. Negative indexes and grids smaller than 1x1 are caller
bugs and panic.
*/
package slot

import (
	"fmt"

	"github.com/taibuivan/binderdex/internal/catalog"
)

// Address locates one grid cell. Page, Row and Column are 1-based.
type Address struct {
	Page   int `json:"page"`
	Row    int `json:"row"`
	Column int `json:"column"`
}

// PerPage returns the number of slots on one page.
func PerPage(rows, columns int) int {
	mustGrid(rows, columns)
	return rows * columns
}

// IndexToAddress converts a 0-based catalog index into its grid address.
func IndexToAddress(index, rows, columns int) Address {
	if index < 0 {
		panic(fmt.Sprintf("slot: negative index %d", index))
	}
	perPage := PerPage(rows, columns)

	within := index % perPage
	return Address{
		Page:   index/perPage + 1,
		Row:    within/columns + 1,
		Column: within%columns + 1,
	}
}

// AddressToIndex is the inverse of [IndexToAddress].
func AddressToIndex(address Address, rows, columns int) int {
	perPage := PerPage(rows, columns)
	if address.Page < 1 || address.Row < 1 || address.Row > rows || address.Column < 1 || address.Column > columns {
		panic(fmt.Sprintf("slot: address %+v outside a %dx%d grid", address, rows, columns))
	}
	return (address.Page-1)*perPage + (address.Row-1)*columns + (address.Column - 1)
}

// FindIndexByID returns the position of the first entry with id, or -1.
func FindIndexByID(entries []catalog.Entry, id int) int {
	for i, entry := range entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

// TotalPages is ceil(count / slots per page), never less than 1.
func TotalPages(count, rows, columns int) int {
	perPage := PerPage(rows, columns)
	if count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// PageSlice returns the items whose computed page equals page. Out of range
// pages yield an empty slice. The result shares the backing array of items.
func PageSlice[T any](items []T, rows, columns, page int) []T {
	perPage := PerPage(rows, columns)
	if page < 1 {
		return []T{}
	}

	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+perPage, len(items))]
}

// ClampPage pulls a requested page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(totalPages, 1)))
}

func mustGrid(rows, columns int) {
	if rows < 1 || columns < 1 {
		panic(fmt.Sprintf("slot: invalid grid %dx%d", rows, columns))
	}
}
