// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/search"
	"github.com/taibuivan/binderdex/internal/slot"
)

var starters = []catalog.Entry{
	{ID: 1, Name: "bulbasaur"},
	{ID: 2, Name: "ivysaur"},
	{ID: 3, Name: "venusaur"},
}

type MockCatalogProvider struct {
	mock.Mock
}

func (m *MockCatalogProvider) OrderedCatalog(ctx context.Context, mode catalog.OrderingMode) ([]catalog.Entry, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Entry), args.Error(1)
}

/*
TestResolveNameToID covers exact matches, prefix fallback and misses.
*/
func TestResolveNameToID(t *testing.T) {
	entries := []catalog.Entry{
		{ID: 1, Name: "bulbasaur"},
		{ID: 2, Name: "ivysaur"},
		{ID: 29, Name: "nidoran-f"},
		{ID: 32, Name: "nidoran-m"},
		{ID: 122, Name: "mr-mime"},
		{ID: 439, Name: "mime-jr"},
		{ID: 866, Name: "mr-rime"},
		{ID: 25, Name: "Pikachu"},
		{ID: 233, Name: "porygon2"},
		{ID: 137, Name: "porygon"},
	}

	tests := []struct {
		name   string
		query  string
		wantID int
		wantOK bool
	}{
		{"exact", "ivysaur", 2, true},
		{"prefix", "ivy", 2, true},
		{"case insensitive", "  PIKACHU ", 25, true},
		{"first prefix in catalog order", "nidoran", 29, true},
		{"exact beats earlier prefix", "porygon", 137, true},
		{"prefix tie-break", "mr", 122, true},
		{"no substring fallback", "saur", 0, false},
		{"unknown", "agumon", 0, false},
		{"blank", "   ", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := search.ResolveNameToID(tt.query, entries)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

/*
TestLocate verifies the example scenario on a 1x2 grid.
*/
func TestLocate(t *testing.T) {
	result, ok := search.Locate("ivy", starters, starters, search.Grid{Rows: 1, Columns: 2})
	require.True(t, ok)
	assert.Equal(t, search.Result{
		Address: slot.Address{Page: 1, Row: 1, Column: 2},
		ID:      2,
		Name:    "ivysaur",
	}, result)

	result, ok = search.Locate("venusaur", starters, starters, search.Grid{Rows: 1, Columns: 2})
	require.True(t, ok)
	assert.Equal(t, slot.Address{Page: 2, Row: 1, Column: 1}, result.Address)
}

/*
TestLocate_MissingFromBinderCatalog verifies that an id absent from the binder ordering is not found.
*/
func TestLocate_MissingFromBinderCatalog(t *testing.T) {
	national := append([]catalog.Entry{}, starters...)
	national = append(national, catalog.Entry{ID: 152, Name: "chikorita"})

	_, ok := search.Locate("chikorita", national, starters, search.Grid{Rows: 3, Columns: 3})
	assert.False(t, ok)
}

/*
TestResolver_SearchInBinder relocates a national match in the binder's alphabetical ordering.
*/
func TestResolver_SearchInBinder(t *testing.T) {
	national := []catalog.Entry{{ID: 1, Name: "bulbasaur"}, {ID: 4, Name: "charmander"}, {ID: 7, Name: "squirtle"}, {ID: 25, Name: "pikachu"}}
	alphabetical := catalog.SortAlphabetically(national)

	provider := new(MockCatalogProvider)
	provider.On("OrderedCatalog", mock.Anything, catalog.OrderingNational).Return(national, nil)
	provider.On("OrderedCatalog", mock.Anything, catalog.OrderingAlphabetical).Return(alphabetical, nil)

	resolver := search.NewResolver(provider)

	result, err := resolver.SearchInBinder(context.Background(), "pika", search.Grid{Rows: 1, Columns: 2}, catalog.OrderingAlphabetical)
	require.NoError(t, err)

	// alphabetical: bulbasaur, charmander, pikachu, squirtle
	assert.Equal(t, 25, result.ID)
	assert.Equal(t, slot.Address{Page: 2, Row: 1, Column: 1}, result.Address)
	provider.AssertExpectations(t)
}

/*
TestResolver_SearchInBinder_Errors covers not found, blank queries and upstream failures.
*/
func TestResolver_SearchInBinder_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		provider := new(MockCatalogProvider)
		provider.On("OrderedCatalog", mock.Anything, catalog.OrderingNational).Return(starters, nil)

		_, err := search.NewResolver(provider).SearchInBinder(context.Background(), "mew", search.Grid{Rows: 3, Columns: 3}, catalog.OrderingNational)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)

		// the national catalog serves both roles
		provider.AssertNumberOfCalls(t, "OrderedCatalog", 1)
	})

	t.Run("blank query", func(t *testing.T) {
		provider := new(MockCatalogProvider)

		_, err := search.NewResolver(provider).SearchInBinder(context.Background(), "  ", search.Grid{Rows: 3, Columns: 3}, catalog.OrderingNational)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		provider.AssertNotCalled(t, "OrderedCatalog", mock.Anything, mock.Anything)
	})

	t.Run("upstream unavailable", func(t *testing.T) {
		provider := new(MockCatalogProvider)
		provider.On("OrderedCatalog", mock.Anything, catalog.OrderingNational).
			Return(nil, apperr.UpstreamUnavailable("Species catalog", errors.New("timeout")))

		_, err := search.NewResolver(provider).SearchInBinder(context.Background(), "ivy", search.Grid{Rows: 3, Columns: 3}, catalog.OrderingKanto)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", appErr.Code)
	})
}
