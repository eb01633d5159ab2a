// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses page/limit query parameters and builds the
// metadata returned with paged lists such as the card picker.
package pagination

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	// MaxLimit is the largest page a client may ask for.
	MaxLimit = 100
	// DefaultPage is the first page; pages are 1-based.
	DefaultPage = 1
)

// Params is a requested page window.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the index of the first item on the page.
func (params Params) Offset() int {
	if params.Page <= 1 {
		return 0
	}
	return (params.Page - 1) * params.Limit
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds the metadata for total items split into pages of limit.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// FromRequest reads "page" and "limit" from the query string.
//
// Missing or malformed values fall back to [DefaultPage] and defaultLimit;
// a limit outside 1..[MaxLimit] also falls back to defaultLimit.
func FromRequest(request *http.Request, defaultLimit int) Params {
	page := queryInt(request, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := queryInt(request, "limit", defaultLimit)
	if limit < 1 || limit > MaxLimit {
		limit = defaultLimit
	}

	return Params{Page: page, Limit: limit}
}

func queryInt(request *http.Request, key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(request.URL.Query().Get(key)))
	if err != nil {
		return fallback
	}
	return value
}
