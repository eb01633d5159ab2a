// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/platform/upstream"
)

func newClient(baseURL string) *upstream.Client {
	return upstream.NewClient(upstream.Options{
		Name:              "test",
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
		Burst:             10,
		InitialBackoff:    time.Millisecond,
		Header:            http.Header{"X-Api-Key": []string{"secret"}},
	})
}

/*
TestClient_GetJSON verifies path joining, query encoding, headers and decoding.
*/
func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/pokedex/national", request.URL.Path)
		assert.Equal(t, "pikachu", request.URL.Query().Get("name"))
		assert.Equal(t, "secret", request.Header.Get("X-API-Key"))
		assert.NotEmpty(t, request.Header.Get("User-Agent"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"name":"national"}`))
	}))
	defer server.Close()

	var payload struct {
		Name string `json:"name"`
	}
	err := newClient(server.URL+"/").GetJSON(context.Background(), "/pokedex/national", url.Values{"name": {"pikachu"}}, &payload)

	require.NoError(t, err)
	assert.Equal(t, "national", payload.Name)
}

/*
TestClient_RetriesTransientFailures verifies that 5xx and 429 answers are retried.
*/
func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch calls.Add(1) {
		case 1:
			writer.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			writer.Header().Set("Retry-After", "0")
			writer.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = writer.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	var payload map[string]any
	err := newClient(server.URL).GetJSON(context.Background(), "x", nil, &payload)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

/*
TestClient_NotFoundIsNotRetried verifies that a 404 returns immediately as a StatusError.
*/
func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := newClient(server.URL).GetBytes(context.Background(), "images/abc", nil)

	require.Error(t, err)
	assert.True(t, upstream.IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

/*
TestClient_BodyLimit verifies that a payload over the limit fails instead of being truncated.
*/
func TestClient_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "image/png")
		_, _ = writer.Write([]byte(strings.Repeat("x", len(request.URL.Path))))
	}))
	defer server.Close()

	client := upstream.NewClient(upstream.Options{Name: "test", BaseURL: server.URL, MaxBodyBytes: 8})

	// "/abcdefg" is exactly eight bytes
	body, _, err := client.GetBytes(context.Background(), "abcdefg", nil)
	require.NoError(t, err)
	assert.Len(t, body, 8)

	_, _, err = client.GetBytes(context.Background(), "abcdefgh", nil)
	require.ErrorIs(t, err, upstream.ErrBodyTooLarge)
}

/*
TestClient_GivesUpAfterRetries verifies that a persistently failing upstream surfaces its last status.
*/
func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var payload map[string]any
	err := newClient(server.URL).GetJSON(context.Background(), "x", nil, &payload)

	var statusErr *upstream.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.False(t, upstream.IsNotFound(err))
	assert.Equal(t, int32(4), calls.Load())
}

/*
TestClient_ContextCancel verifies that a cancelled context aborts the retry loop.
*/
func TestClient_ContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var payload map[string]any
	err := newClient(server.URL).GetJSON(ctx, "x", nil, &payload)
	assert.ErrorIs(t, err, context.Canceled)
}
