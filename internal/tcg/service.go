// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/cache"
	"github.com/taibuivan/binderdex/internal/platform/ctxutil"
	"github.com/taibuivan/binderdex/internal/platform/upstream"
	"github.com/taibuivan/binderdex/pkg/pagination"
)

// # Lookup Limits

const (
	// fetchPageSize is the TCGdex page size used when walking a card listing.
	fetchPageSize = 100

	// maxCardPages bounds the walk over all cards of one species.
	maxCardPages = 50

	// maxSetScanPages bounds the walk used to discover the sets of one species.
	maxSetScanPages = 5
)

// DefaultPageSize is the picker page size when the caller gives none.
const DefaultPageSize = 24

// # Service Layer

// Service answers card picker queries through read-through caches.
type Service struct {
	source Source
	cards  cache.Cache[[]Card]
	sets   cache.Cache[[]Set]
	ttl    time.Duration
	group  singleflight.Group
}

// NewService constructs a card picker service. ttl is the revalidation window
// of both caches.
func NewService(source Source, cards cache.Cache[[]Card], sets cache.Cache[[]Set], ttl time.Duration) *Service {
	return &Service{source: source, cards: cards, sets: sets, ttl: ttl}
}

// CardFilter narrows a card listing.
type CardFilter struct {
	// Name is the species name the cards must carry.
	Name string
	// SetID restricts the listing to one set when non-empty.
	SetID string
	// Query further filters card names by substring, case-insensitively.
	Query string
}

/*
CardsForSlot lists the cards offered for a binder slot.

Description: Without a set, every card carrying the species name is fetched
once (walking up to 50 TCGdex pages), cached per lower-cased name, then
filtered by the optional query and paginated. With a set, the set's card
list is filtered by the species name instead; an unknown set is an empty page.

Parameters:
  - context: context.Context
  - filter: CardFilter
  - params: pagination.Params

Returns:
  - []Card: The requested page
  - int: Total number of matching cards
  - error: UPSTREAM_UNAVAILABLE when TCGdex cannot be read
*/
func (service *Service) CardsForSlot(context context.Context, filter CardFilter, params pagination.Params) ([]Card, int, error) {
	name := strings.TrimSpace(filter.Name)
	if name == "" {
		return []Card{}, 0, nil
	}

	var (
		matches []Card
		err     error
	)
	if setID := strings.TrimSpace(filter.SetID); setID != "" {
		matches, err = service.setCards(context, setID, name)
	} else {
		matches, err = service.allCards(context, name)
		matches = filterByName(matches, filter.Query)
	}
	if err != nil {
		return nil, 0, err
	}

	page := lo.Subset(matches, params.Offset(), uint(params.Limit))
	return slices.Clone(page), len(matches), nil
}

func (service *Service) allCards(context context.Context, name string) ([]Card, error) {
	key := strings.ToLower(name)

	return readThrough(context, service, service.cards, "cards", key, func() ([]Card, error) {
		var cards []Card
		for page := 1; page <= maxCardPages; page++ {
			briefs, err := service.source.ListCardsByName(context, DefaultLanguage, name, page, fetchPageSize)
			if err != nil {
				return nil, service.unavailable(context, "tcg_cards_fetch_failed", err)
			}

			for _, brief := range briefs {
				cards = append(cards, Card{
					ID:       brief.ID,
					Name:     brief.Name,
					Images:   ImageURLs(brief.Image),
					Language: DefaultLanguage,
				})
			}

			if len(briefs) < fetchPageSize {
				break
			}
		}
		return lo.Ternary(cards == nil, []Card{}, cards), nil
	})
}

func (service *Service) setCards(context context.Context, setID, name string) ([]Card, error) {
	set, err := service.source.GetSet(context, DefaultLanguage, setID)
	if upstream.IsNotFound(err) {
		return []Card{}, nil
	}
	if err != nil {
		return nil, service.unavailable(context, "tcg_set_fetch_failed", err)
	}

	species := strings.ToLower(name)
	return lo.FilterMap(set.Cards, func(brief CardBrief, _ int) (Card, bool) {
		if !strings.Contains(strings.ToLower(brief.Name), species) {
			return Card{}, false
		}
		return Card{
			ID:          brief.ID,
			Name:        brief.Name,
			Images:      ImageURLs(brief.Image),
			Set:         SetRef{Name: set.Name},
			Language:    DefaultLanguage,
			ReleaseDate: set.ReleaseDate,
		}, true
	}), nil
}

/*
Sets returns every set, most recent release first.

Returns:
  - []Set: All sets in the default language
  - error: UPSTREAM_UNAVAILABLE when TCGdex cannot be read
*/
func (service *Service) Sets(context context.Context) ([]Set, error) {
	sets, err := readThrough(context, service, service.sets, "sets", DefaultLanguage, func() ([]Set, error) {
		briefs, err := service.source.ListSets(context, DefaultLanguage)
		if err != nil {
			return nil, service.unavailable(context, "tcg_sets_fetch_failed", err)
		}

		return lo.Map(briefs, func(brief SetBrief, _ int) Set {
			return Set{
				ID:          brief.ID,
				Name:        brief.Name,
				SetCode:     brief.ID,
				ReleaseDate: brief.ReleaseDate,
				Language:    DefaultLanguage,
			}
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(sets), nil
}

/*
SetsForPokemon returns the sets holding at least one card of a species.

Description: Scans up to five pages of the species card listing to collect
set ids, then keeps the matching entries of [Service.Sets] in release order.

Returns:
  - []Set: Matching sets, empty when the name is blank or unknown
  - error: UPSTREAM_UNAVAILABLE when TCGdex cannot be read
*/
func (service *Service) SetsForPokemon(context context.Context, name string) ([]Set, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []Set{}, nil
	}

	setIDs := map[string]struct{}{}
	for page := 1; page <= maxSetScanPages; page++ {
		briefs, err := service.source.ListCardsByName(context, DefaultLanguage, name, page, fetchPageSize)
		if err != nil {
			return nil, service.unavailable(context, "tcg_set_scan_failed", err)
		}

		for _, brief := range briefs {
			if brief.ID != "" {
				setIDs[SetIDFromCardID(brief.ID)] = struct{}{}
			}
		}

		if len(briefs) < fetchPageSize {
			break
		}
	}

	if len(setIDs) == 0 {
		return []Set{}, nil
	}

	sets, err := service.Sets(context)
	if err != nil {
		return nil, err
	}

	return lo.Filter(sets, func(set Set, _ int) bool {
		_, ok := setIDs[set.ID]
		return ok
	}), nil
}

/*
CardInLanguage resolves a card in the requested language.

Description: A card missing in that language falls back to English. The
image URL is the high quality rendition when available.

Parameters:
  - context: context.Context
  - cardID: string (TCGdex card id, e.g. "base1-58")
  - language: string (Empty means English)

Returns:
  - *LocalizedCard: Name and image in the served language
  - error: VALIDATION_ERROR, NOT_FOUND or UPSTREAM_UNAVAILABLE
*/
func (service *Service) CardInLanguage(context context.Context, cardID, language string) (*LocalizedCard, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, apperr.ValidationError("Card id is required",
			apperr.FieldError{Field: "id", Message: "This field is required"})
	}

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = DefaultLanguage
	}
	if !IsSupportedLanguage(language) {
		return nil, apperr.ValidationError("Unsupported card language",
			apperr.FieldError{Field: "lang", Message: "Must be a TCGdex language code"})
	}

	card, err := service.source.GetCard(context, language, cardID)
	if upstream.IsNotFound(err) && language != DefaultLanguage {
		ctxutil.GetLogger(context).DebugContext(context, "tcg_card_language_fallback",
			slog.String("card_id", cardID),
			slog.String("language", language),
		)
		language = DefaultLanguage
		card, err = service.source.GetCard(context, language, cardID)
	}
	if upstream.IsNotFound(err) {
		return nil, apperr.NotFound("Card")
	}
	if err != nil {
		return nil, service.unavailable(context, "tcg_card_fetch_failed", err)
	}

	images := ImageURLs(card.Image)
	return &LocalizedCard{
		ID:       lo.CoalesceOrEmpty(card.ID, cardID),
		Name:     card.Name,
		ImageURL: lo.CoalesceOrEmpty(images.Large, images.Small),
		Language: language,
	}, nil
}

// IsSupportedLanguage reports whether code is one of [Languages].
func IsSupportedLanguage(code string) bool {
	return lo.ContainsBy(Languages, func(language Language) bool { return language.Code == code })
}

// # Internals

func (service *Service) unavailable(context context.Context, event string, err error) error {
	ctxutil.GetLogger(context).ErrorContext(context, event, slog.Any("error", err))
	return apperr.UpstreamUnavailable("Card catalog", err)
}

// readThrough serves key from store, or loads it once for all concurrent
// callers and stores the result. Failed loads are never stored.
func readThrough[T any](context context.Context, service *Service, store cache.Cache[T], flight, key string, load func() (T, error)) (T, error) {
	logger := ctxutil.GetLogger(context)

	cached, ok, err := store.Get(context, key)
	if err != nil {
		logger.WarnContext(context, "tcg_cache_read_failed", slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		return cached, nil
	}

	result, err, _ := service.group.Do(flight+":"+key, func() (any, error) {
		value, err := load()
		if err != nil {
			return nil, err
		}

		if err := store.Set(context, key, value, service.ttl); err != nil {
			logger.WarnContext(context, "tcg_cache_write_failed", slog.String("key", key), slog.Any("error", err))
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func filterByName(cards []Card, query string) []Card {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return cards
	}
	return lo.Filter(cards, func(card Card, _ int) bool {
		return strings.Contains(strings.ToLower(card.Name), query)
	})
}
