// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/binderdex/internal/catalog"
)

const (
	// MinQueryLength is the shortest trimmed query that yields suggestions.
	MinQueryLength = 2

	// DefaultSuggestLimit and MaxSuggestLimit bound suggestion lists.
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)

// Suggest returns entries whose name contains the query, case-insensitively,
// in catalog order and truncated to limit.
func Suggest(query string, entries []catalog.Entry, limit int) []catalog.Entry {
	n := newNormalizer()
	needle := n.normalize(query)
	if utf8.RuneCountInString(needle) < MinQueryLength || limit <= 0 {
		return []catalog.Entry{}
	}

	matches := make([]catalog.Entry, 0, min(limit, DefaultSuggestLimit))
	for _, entry := range entries {
		if strings.Contains(n.normalize(entry.Name), needle) {
			matches = append(matches, entry)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

// Suggest returns autocomplete candidates from the national catalog.
// A non-positive limit selects the default; larger limits are capped.
func (resolver *Resolver) Suggest(context context.Context, query string, limit int) ([]catalog.Entry, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	limit = min(limit, MaxSuggestLimit)

	// Short queries never reach the catalog
	if utf8.RuneCountInString(newNormalizer().normalize(query)) < MinQueryLength {
		return []catalog.Entry{}, nil
	}

	entries, err := resolver.catalogs.OrderedCatalog(context, catalog.OrderingNational)
	if err != nil {
		return nil, err
	}
	return Suggest(query, entries, limit), nil
}
