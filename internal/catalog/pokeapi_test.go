// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/upstream"
)

const kantoPokedex = `{
  "name": "kanto",
  "pokemon_entries": [
    {"entry_number": 1, "pokemon_species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"}},
    {"entry_number": 2, "pokemon_species": {"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon-species/2/"}},
    {"entry_number": 3, "pokemon_species": {"name": "mystery", "url": ""}}
  ]
}`

const johtoPokedex = `{
  "pokemon_entries": [
    {"entry_number": 1, "pokemon_species": {"name": "chikorita", "url": "https://pokeapi.co/api/v2/pokemon-species/152/"}}
  ]
}`

func newPokeAPI(t *testing.T, handler http.HandlerFunc) *catalog.PokeAPIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return catalog.NewPokeAPIClient(upstream.NewClient(upstream.Options{
		Name:              "pokeapi",
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		InitialBackoff:    time.Millisecond,
	}))
}

/*
TestPokeAPIClient_FetchNamedCatalog verifies order and id extraction from species URLs.
*/
func TestPokeAPIClient_FetchNamedCatalog(t *testing.T) {
	client := newPokeAPI(t, func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/pokedex/kanto":
			_, _ = writer.Write([]byte(kantoPokedex))
		case "/pokedex/original-johto":
			_, _ = writer.Write([]byte(johtoPokedex))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	})

	entries, err := client.FetchNamedCatalog(context.Background(), "kanto")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Entry{
		{ID: 1, Name: "bulbasaur"},
		{ID: 2, Name: "ivysaur"},
		{ID: 3, Name: "mystery"},
	}, entries)

	// Regional entry numbers are replaced by national ids
	entries, err = client.FetchNamedCatalog(context.Background(), "original-johto")
	require.NoError(t, err)
	assert.Equal(t, 152, entries[0].ID)
}

/*
TestPokeAPIClient_Failures verifies that non-success statuses and empty payloads fail.
*/
func TestPokeAPIClient_Failures(t *testing.T) {
	client := newPokeAPI(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/pokedex/empty" {
			_, _ = writer.Write([]byte(`{"pokemon_entries": []}`))
			return
		}
		writer.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchNamedCatalog(context.Background(), "missing")
	assert.Error(t, err)

	_, err = client.FetchNamedCatalog(context.Background(), "empty")
	assert.Error(t, err)
}
