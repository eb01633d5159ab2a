// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/binderdex/internal/platform/upstream"
)

// Source fetches a named sub-catalog in authoritative order.
type Source interface {
	FetchNamedCatalog(ctx context.Context, key string) ([]Entry, error)
}

// # PokeAPI

type pokedexResponse struct {
	PokemonEntries []struct {
		EntryNumber    int `json:"entry_number"`
		PokemonSpecies struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"pokemon_species"`
	} `json:"pokemon_entries"`
}

// PokeAPIClient reads pokedexes from PokeAPI ("/pokedex/{key}").
type PokeAPIClient struct {
	client *upstream.Client
}

// NewPokeAPIClient creates a [Source] backed by PokeAPI.
func NewPokeAPIClient(client *upstream.Client) *PokeAPIClient {
	return &PokeAPIClient{client: client}
}

// FetchNamedCatalog returns the pokedex entries in the order PokeAPI lists them.
// The id is the national number taken from the species URL, so regional
// pokedexes share identities with the national one.
func (source *PokeAPIClient) FetchNamedCatalog(ctx context.Context, key string) ([]Entry, error) {
	var payload pokedexResponse
	if err := source.client.GetJSON(ctx, "pokedex/"+url.PathEscape(key), nil, &payload); err != nil {
		return nil, fmt.Errorf("pokeapi_fetch_pokedex_failed: %w", err)
	}

	if len(payload.PokemonEntries) == 0 {
		return nil, fmt.Errorf("pokeapi_fetch_pokedex_failed: pokedex %q is empty", key)
	}

	entries := make([]Entry, 0, len(payload.PokemonEntries))
	for _, raw := range payload.PokemonEntries {
		id, ok := speciesID(raw.PokemonSpecies.URL)
		if !ok {
			id = raw.EntryNumber
		}
		entries = append(entries, Entry{ID: id, Name: raw.PokemonSpecies.Name})
	}

	return entries, nil
}

// speciesID extracts the trailing numeric segment of a species URL
// (".../pokemon-species/25/").
func speciesID(speciesURL string) (int, bool) {
	trimmed := strings.TrimRight(speciesURL, "/")
	slash := strings.LastIndex(trimmed, "/")
	if slash < 0 {
		return 0, false
	}

	id, err := strconv.Atoi(trimmed[slash+1:])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
