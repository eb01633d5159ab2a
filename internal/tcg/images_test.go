// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/upstream"
	"github.com/taibuivan/binderdex/internal/tcg"
)

type imageUpstream struct {
	calls atomic.Int32
}

func (u *imageUpstream) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	u.calls.Add(1)

	if request.Header.Get("X-API-Key") != "secret" {
		writer.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch request.URL.Path {
	case "/images/base1-58":
		writer.Header().Set("Content-Type", "image/png")
		_, _ = writer.Write([]byte("png:" + request.URL.Query().Get("size")))
	case "/images/broken":
		writer.WriteHeader(http.StatusBadRequest)
	default:
		writer.WriteHeader(http.StatusNotFound)
	}
}

func newImageProxy(t *testing.T, upstreamHandler http.Handler, now *time.Time) *tcg.ImageProxy {
	t.Helper()
	return newImageProxyOn(t, upstreamHandler, now, tcg.NewDiskImageStore(t.TempDir()))
}

func newImageProxyOn(t *testing.T, upstreamHandler http.Handler, now *time.Time, store tcg.ImageStore) *tcg.ImageProxy {
	t.Helper()
	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	client := upstream.NewClient(upstream.Options{
		Name:              "pokewallet",
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Header:            http.Header{"X-Api-Key": []string{"secret"}},
		InitialBackoff:    time.Millisecond,
	})

	return tcg.NewImageProxy(client, store, 24*time.Hour).
		WithClock(func() time.Time { return *now })
}

/*
TestImageProxy_FetchAndCache verifies that images are served from disk within the window.
*/
func TestImageProxy_FetchAndCache(t *testing.T) {
	source := &imageUpstream{}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	proxy := newImageProxy(t, source, &now)
	ctx := context.Background()

	image, err := proxy.Fetch(ctx, "base1-58", "HIGH")
	require.NoError(t, err)
	assert.Equal(t, "image/png", image.ContentType)
	assert.Equal(t, "png:high", string(image.Body))

	// Unknown sizes are low
	image, err = proxy.Fetch(ctx, "base1-58", "huge")
	require.NoError(t, err)
	assert.Equal(t, "png:low", string(image.Body))
	assert.Equal(t, int32(2), source.calls.Load())

	// Cached
	_, err = proxy.Fetch(ctx, "base1-58", "high")
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())

	// Expired after a day
	now = now.Add(25 * time.Hour)
	_, err = proxy.Fetch(ctx, "base1-58", "high")
	require.NoError(t, err)
	assert.Equal(t, int32(3), source.calls.Load())
	assert.Equal(t, 86400, proxy.MaxAgeSeconds())
}

/*
TestImageProxy_Errors verifies the error mapping of the image proxy.
*/
func TestImageProxy_Errors(t *testing.T) {
	now := time.Now()
	proxy := newImageProxy(t, &imageUpstream{}, &now)
	ctx := context.Background()

	_, err := proxy.Fetch(ctx, "base1-999", "low")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = proxy.Fetch(ctx, "broken", "low")
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", apperr.As(err).Code)

	_, err = proxy.Fetch(ctx, "  ", "low")
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	unconfigured := tcg.NewImageProxy(nil, tcg.NewDiskImageStore(t.TempDir()), time.Hour)
	_, err = unconfigured.Fetch(ctx, "base1-58", "low")
	assert.Equal(t, "CONFIGURATION_MISSING", apperr.As(err).Code)
}

/*
TestImageProxy_Prune verifies that stale and undecodable entries are deleted from disk.
*/
func TestImageProxy_Prune(t *testing.T) {
	store := tcg.NewDiskImageStore(t.TempDir())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	proxy := newImageProxyOn(t, &imageUpstream{}, &now, store)
	ctx := context.Background()

	_, err := proxy.Fetch(ctx, "base1-58", "high")
	require.NoError(t, err)
	require.NoError(t, store.Write("zz-corrupt", []byte("not json")))

	now = now.Add(25 * time.Hour)
	_, err = proxy.Fetch(ctx, "base1-58", "low")
	require.NoError(t, err)

	removed, err := proxy.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var remaining []string
	for key := range store.Keys(nil) {
		remaining = append(remaining, key)
	}
	require.Len(t, remaining, 1)
	assert.True(t, strings.HasSuffix(remaining[0], "-low"))
}
