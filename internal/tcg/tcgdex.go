// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/taibuivan/binderdex/internal/platform/upstream"
)

// # Source Contract

// CardBrief is a card as TCGdex lists it: no set metadata, image base only.
type CardBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// SetBrief is a set as TCGdex lists it.
type SetBrief struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReleaseDate *string `json:"releaseDate"`
}

// SetDetail is one set with its card list.
type SetDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ReleaseDate *string     `json:"releaseDate"`
	Cards       []CardBrief `json:"cards"`
}

// Source reads card and set data for one language.
//
// Implementations return an error satisfying [upstream.IsNotFound] for
// unknown sets and cards.
type Source interface {
	ListCardsByName(ctx context.Context, language, name string, page, perPage int) ([]CardBrief, error)
	ListSets(ctx context.Context, language string) ([]SetBrief, error)
	GetSet(ctx context.Context, language, id string) (*SetDetail, error)
	GetCard(ctx context.Context, language, id string) (*CardBrief, error)
}

// # TCGdex

// TCGdexClient reads the public TCGdex REST API ("/{lang}/cards", "/{lang}/sets").
type TCGdexClient struct {
	client *upstream.Client
}

// NewTCGdexClient creates a [Source] backed by TCGdex.
func NewTCGdexClient(client *upstream.Client) *TCGdexClient {
	return &TCGdexClient{client: client}
}

// ListCardsByName returns one page of cards whose name matches.
// A 404 is an empty page: TCGdex answers that way when nothing matches.
func (source *TCGdexClient) ListCardsByName(ctx context.Context, language, name string, page, perPage int) ([]CardBrief, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("pagination:page", strconv.Itoa(page))
	query.Set("pagination:itemsPerPage", strconv.Itoa(perPage))

	var cards []CardBrief
	err := source.client.GetJSON(ctx, url.PathEscape(language)+"/cards", query, &cards)
	if upstream.IsNotFound(err) {
		return []CardBrief{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tcgdex_list_cards_failed: %w", err)
	}
	return cards, nil
}

// ListSets returns every set, most recent release first.
func (source *TCGdexClient) ListSets(ctx context.Context, language string) ([]SetBrief, error) {
	query := url.Values{}
	query.Set("sort:field", "releaseDate")
	query.Set("sort:order", "DESC")

	var sets []SetBrief
	if err := source.client.GetJSON(ctx, url.PathEscape(language)+"/sets", query, &sets); err != nil {
		return nil, fmt.Errorf("tcgdex_list_sets_failed: %w", err)
	}
	return sets, nil
}

// GetSet returns one set with its cards.
func (source *TCGdexClient) GetSet(ctx context.Context, language, id string) (*SetDetail, error) {
	var set SetDetail
	if err := source.client.GetJSON(ctx, url.PathEscape(language)+"/sets/"+url.PathEscape(id), nil, &set); err != nil {
		return nil, fmt.Errorf("tcgdex_get_set_failed: %w", err)
	}
	return &set, nil
}

// GetCard returns one card in the given language.
func (source *TCGdexClient) GetCard(ctx context.Context, language, id string) (*CardBrief, error) {
	var card CardBrief
	if err := source.client.GetJSON(ctx, url.PathEscape(language)+"/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return nil, fmt.Errorf("tcgdex_get_card_failed: %w", err)
	}
	return &card, nil
}
