// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/tcg"
)

func serveCards(handler http.Handler, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

/*
TestHandler_ListCards verifies the default page size and the pagination meta.
*/
func TestHandler_ListCards(t *testing.T) {
	unconfigured := tcg.NewImageProxy(nil, tcg.NewDiskImageStore(t.TempDir()), time.Hour)
	router := tcg.NewHandler(newTCGService(newFakeSource()), unconfigured).Routes()

	recorder := serveCards(router, "/?name=Pikachu")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data []tcg.Card `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Data, tcg.DefaultPageSize)
	assert.Equal(t, 250, body.Meta.Total)
	assert.Equal(t, 11, body.Meta.TotalPages)

	recorder = serveCards(router, "/?name=Pikachu&page=3&limit=100")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Data, 50)
}

/*
TestHandler_Routes verifies languages, card lookups and the unconfigured image proxy.
*/
func TestHandler_Routes(t *testing.T) {
	unconfigured := tcg.NewImageProxy(nil, tcg.NewDiskImageStore(t.TempDir()), time.Hour)
	router := tcg.NewHandler(newTCGService(newFakeSource()), unconfigured).Routes()

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"languages", "/languages", http.StatusOK},
		{"card in french", "/base1-58?lang=fr", http.StatusOK},
		{"unknown card", "/nope-1", http.StatusNotFound},
		{"unsupported language", "/base1-58?lang=xx", http.StatusBadRequest},
		{"set list", "/sets", http.StatusOK},
		{"image without key", "/base1-58/image", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serveCards(router, tt.target).Code)
		})
	}
}

/*
TestHandler_Image verifies that proxied bytes carry the cache window.
*/
func TestHandler_Image(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	proxy := newImageProxy(t, &imageUpstream{}, &now)
	router := tcg.NewHandler(newTCGService(newFakeSource()), proxy).Routes()

	recorder := serveCards(router, "/base1-58/image?size=high")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", recorder.Header().Get("Cache-Control"))
	assert.Equal(t, "png:high", recorder.Body.String())
}
