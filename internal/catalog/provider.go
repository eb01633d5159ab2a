// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/cache"
	"github.com/taibuivan/binderdex/internal/platform/ctxutil"
)

// # Provider Implementation

// Provider serves ordered catalogs per mode through a read-through cache.
type Provider struct {
	source Source
	cache  cache.Cache[[]Entry]
	ttl    time.Duration
	group  singleflight.Group
}

// NewProvider creates a catalog provider. ttl is the revalidation window.
func NewProvider(source Source, store cache.Cache[[]Entry], ttl time.Duration) *Provider {
	return &Provider{source: source, cache: store, ttl: ttl}
}

/*
OrderedCatalog returns the complete ordered catalog for a mode.

Description: Serves the cached list when fresh. On a miss, concurrent callers
share one upstream fetch and all converge on its result. A failed fetch is
never cached and never yields a partial list.

Parameters:
  - context: context.Context
  - mode: OrderingMode

Returns:
  - []Entry: A copy callers may reorder freely
  - error: UPSTREAM_UNAVAILABLE when the source cannot be read
*/
func (provider *Provider) OrderedCatalog(context context.Context, mode OrderingMode) ([]Entry, error) {
	if !mode.Valid() {
		return nil, apperr.ValidationError("Unknown ordering mode",
			apperr.FieldError{Field: "ordering", Message: "Must be one of: national, alphabetical, kanto"})
	}

	entries, err := provider.load(context, mode)
	if err != nil {
		return nil, err
	}
	return slices.Clone(entries), nil
}

func (provider *Provider) load(context context.Context, mode OrderingMode) ([]Entry, error) {
	logger := ctxutil.GetLogger(context)

	cached, ok, err := provider.cache.Get(context, string(mode))
	if err != nil {
		// A broken cache degrades to a direct fetch.
		logger.WarnContext(context, "catalog_cache_read_failed", slog.String("mode", string(mode)), slog.Any("error", err))
	}
	if ok {
		return cached, nil
	}

	result, err, _ := provider.group.Do(string(mode), func() (any, error) {
		entries, err := provider.fetch(context, mode)
		if err != nil {
			return nil, err
		}

		if err := provider.cache.Set(context, string(mode), entries, provider.ttl); err != nil {
			logger.WarnContext(context, "catalog_cache_write_failed", slog.String("mode", string(mode)), slog.Any("error", err))
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]Entry), nil
}

func (provider *Provider) fetch(context context.Context, mode OrderingMode) ([]Entry, error) {
	if mode == OrderingAlphabetical {
		national, err := provider.load(context, OrderingNational)
		if err != nil {
			return nil, err
		}
		return SortAlphabetically(national), nil
	}

	entries, err := provider.source.FetchNamedCatalog(context, mode.sourceKey())
	if err != nil {
		ctxutil.GetLogger(context).ErrorContext(context, "catalog_fetch_failed",
			slog.String("mode", string(mode)),
			slog.Any("error", err),
		)
		return nil, apperr.UpstreamUnavailable("Species catalog", err)
	}

	return entries, nil
}

// SortAlphabetically returns a copy of entries sorted by English collation,
// ignoring case. Equal names keep id order.
func SortAlphabetically(entries []Entry) []Entry {
	collator := collate.New(language.English, collate.IgnoreCase)

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		if order := collator.CompareString(a.Name, b.Name); order != 0 {
			return order
		}
		return a.ID - b.ID
	})
	return sorted
}
