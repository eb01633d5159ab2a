// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/cache"
)

type fakeSource struct {
	calls   atomic.Int32
	catalog map[string][]catalog.Entry
	err     error
	delay   time.Duration
}

func (source *fakeSource) FetchNamedCatalog(_ context.Context, key string) ([]catalog.Entry, error) {
	source.calls.Add(1)
	if source.delay > 0 {
		time.Sleep(source.delay)
	}
	if source.err != nil {
		return nil, source.err
	}
	return source.catalog[key], nil
}

func newSource() *fakeSource {
	return &fakeSource{catalog: map[string][]catalog.Entry{
		"national": {
			{ID: 1, Name: "bulbasaur"},
			{ID: 2, Name: "ivysaur"},
			{ID: 3, Name: "venusaur"},
			{ID: 4, Name: "Charmander"},
			{ID: 152, Name: "chikorita"},
		},
		"kanto": {
			{ID: 1, Name: "bulbasaur"},
			{ID: 2, Name: "ivysaur"},
			{ID: 3, Name: "venusaur"},
			{ID: 4, Name: "Charmander"},
		},
	}}
}

/*
TestProvider_PreservesUpstreamOrder verifies that national and regional modes keep source order.
*/
func TestProvider_PreservesUpstreamOrder(t *testing.T) {
	source := newSource()
	provider := catalog.NewProvider(source, cache.NewMemory[[]catalog.Entry](16, time.Hour), time.Hour)

	national, err := provider.OrderedCatalog(context.Background(), catalog.OrderingNational)
	require.NoError(t, err)
	assert.Equal(t, source.catalog["national"], national)

	kanto, err := provider.OrderedCatalog(context.Background(), catalog.OrderingKanto)
	require.NoError(t, err)
	assert.Equal(t, source.catalog["kanto"], kanto)
}

/*
TestProvider_Alphabetical verifies that alphabetical ordering is a sorted permutation of the national set.
*/
func TestProvider_Alphabetical(t *testing.T) {
	source := newSource()
	provider := catalog.NewProvider(source, cache.NewMemory[[]catalog.Entry](16, time.Hour), time.Hour)

	alphabetical, err := provider.OrderedCatalog(context.Background(), catalog.OrderingAlphabetical)
	require.NoError(t, err)

	names := make([]string, len(alphabetical))
	ids := make([]int, len(alphabetical))
	for i, entry := range alphabetical {
		names[i] = entry.Name
		ids[i] = entry.ID
	}

	assert.Equal(t, []string{"bulbasaur", "Charmander", "chikorita", "ivysaur", "venusaur"}, names)

	sort.Ints(ids)
	assert.Equal(t, []int{1, 2, 3, 4, 152}, ids)

	// national was fetched once and reused by the alphabetical build
	assert.Equal(t, int32(1), source.calls.Load())
}

/*
TestProvider_CachesWithinWindow verifies that repeated reads hit the cache.
*/
func TestProvider_CachesWithinWindow(t *testing.T) {
	source := newSource()
	provider := catalog.NewProvider(source, cache.NewMemory[[]catalog.Entry](16, time.Hour), time.Hour)

	for i := 0; i < 3; i++ {
		_, err := provider.OrderedCatalog(context.Background(), catalog.OrderingNational)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), source.calls.Load())
}

/*
TestProvider_DisabledCache verifies that a no-op cache fetches every time.
*/
func TestProvider_DisabledCache(t *testing.T) {
	source := newSource()
	provider := catalog.NewProvider(source, cache.NewNoop[[]catalog.Entry](), time.Hour)

	for i := 0; i < 3; i++ {
		_, err := provider.OrderedCatalog(context.Background(), catalog.OrderingKanto)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), source.calls.Load())
}

/*
TestProvider_ReturnsCopies verifies that callers cannot corrupt the cached list.
*/
func TestProvider_ReturnsCopies(t *testing.T) {
	provider := catalog.NewProvider(newSource(), cache.NewMemory[[]catalog.Entry](16, time.Hour), time.Hour)

	first, err := provider.OrderedCatalog(context.Background(), catalog.OrderingNational)
	require.NoError(t, err)
	first[0].Name = "missingno"

	second, err := provider.OrderedCatalog(context.Background(), catalog.OrderingNational)
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", second[0].Name)
}

/*
TestProvider_UpstreamFailure verifies the failure is typed and not cached.
*/
func TestProvider_UpstreamFailure(t *testing.T) {
	source := newSource()
	source.err = errors.New("connection refused")
	provider := catalog.NewProvider(source, cache.NewMemory[[]catalog.Entry](16, time.Hour), time.Hour)

	entries, err := provider.OrderedCatalog(context.Background(), catalog.OrderingAlphabetical)
	require.Error(t, err)
	assert.Nil(t, entries)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", appErr.Code)

	source.err = nil
	entries, err = provider.OrderedCatalog(context.Background(), catalog.OrderingAlphabetical)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

/*
TestProvider_UnknownMode verifies that an unsupported mode is a validation error.
*/
func TestProvider_UnknownMode(t *testing.T) {
	provider := catalog.NewProvider(newSource(), cache.NewNoop[[]catalog.Entry](), time.Hour)

	_, err := provider.OrderedCatalog(context.Background(), catalog.OrderingMode("johto"))
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

/*
TestProvider_ConcurrentMisses verifies that concurrent callers converge on the same list.
*/
func TestProvider_ConcurrentMisses(t *testing.T) {
	source := newSource()
	source.delay = 20 * time.Millisecond
	provider := catalog.NewProvider(source, cache.NewMemory[[]catalog.Entry](16, time.Hour), time.Hour)

	var wg sync.WaitGroup
	results := make([][]catalog.Entry, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries, err := provider.OrderedCatalog(context.Background(), catalog.OrderingNational)
			assert.NoError(t, err)
			results[i] = entries
		}(i)
	}
	wg.Wait()

	for _, entries := range results {
		assert.Equal(t, source.catalog["national"], entries)
	}
	assert.LessOrEqual(t, source.calls.Load(), int32(10))
	assert.GreaterOrEqual(t, source.calls.Load(), int32(1))
}

/*
TestParseOrderingMode verifies mode parsing.
*/
func TestParseOrderingMode(t *testing.T) {
	mode, err := catalog.ParseOrderingMode(" Kanto ")
	require.NoError(t, err)
	assert.Equal(t, catalog.OrderingKanto, mode)

	_, err = catalog.ParseOrderingMode("johto")
	assert.Error(t, err)

	assert.Equal(t, []string{"national", "alphabetical", "kanto"}, catalog.ModeNames())
}
