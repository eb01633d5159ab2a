// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/search"
)

/*
TestSuggest covers substring matching, ordering, limits and the minimum length.
*/
func TestSuggest(t *testing.T) {
	entries := []catalog.Entry{
		{ID: 1, Name: "bulbasaur"},
		{ID: 2, Name: "ivysaur"},
		{ID: 3, Name: "venusaur"},
		{ID: 25, Name: "Pikachu"},
	}

	tests := []struct {
		name    string
		query   string
		limit   int
		wantIDs []int
	}{
		{"substring in catalog order", "saur", 10, []int{1, 2, 3}},
		{"truncated", "saur", 2, []int{1, 2}},
		{"case insensitive", "PIKA", 10, []int{25}},
		{"trimmed", "  iv  ", 10, []int{2}},
		{"single character", "a", 10, []int{}},
		{"single character padded", "  a ", 10, []int{}},
		{"empty", "", 10, []int{}},
		{"no match", "mew", 10, []int{}},
		{"zero limit", "saur", 0, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := search.Suggest(tt.query, entries, tt.limit)
			ids := make([]int, len(got))
			for i, entry := range got {
				ids[i] = entry.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

/*
TestSuggest_ShortQueryAlwaysEmpty verifies the minimum length across catalog shapes.
*/
func TestSuggest_ShortQueryAlwaysEmpty(t *testing.T) {
	catalogs := [][]catalog.Entry{
		nil,
		{{ID: 1, Name: "a"}},
		{{ID: 1, Name: "abra"}, {ID: 2, Name: "aa"}},
	}

	for _, entries := range catalogs {
		for _, query := range []string{"", " ", "a", "A", "é"} {
			assert.Empty(t, search.Suggest(query, entries, 10))
		}
	}
}

/*
TestResolver_Suggest verifies default and maximum limits, and that short queries skip the catalog.
*/
func TestResolver_Suggest(t *testing.T) {
	entries := make([]catalog.Entry, 100)
	for i := range entries {
		entries[i] = catalog.Entry{ID: i + 1, Name: fmt.Sprintf("mon-%03d", i+1)}
	}

	provider := new(MockCatalogProvider)
	provider.On("OrderedCatalog", mock.Anything, catalog.OrderingNational).Return(entries, nil)
	resolver := search.NewResolver(provider)

	got, err := resolver.Suggest(context.Background(), "mon", 0)
	require.NoError(t, err)
	assert.Len(t, got, search.DefaultSuggestLimit)

	got, err = resolver.Suggest(context.Background(), "mon", 500)
	require.NoError(t, err)
	assert.Len(t, got, search.MaxSuggestLimit)

	got, err = resolver.Suggest(context.Background(), "m", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	provider.AssertNumberOfCalls(t, "OrderedCatalog", 2)
}
