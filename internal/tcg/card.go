// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tcg serves the card picker: trading cards and sets for a species,
localized card lookups and proxied card images.

Card and set data comes from TCGdex, which needs no credentials. Images can
also be proxied from PokeWallet, which requires an API key; without one the
image endpoint reports CONFIGURATION_MISSING and nothing else is affected.
*/
package tcg

import (
	"strings"
)

// # Domain Entities

// Images holds the two renditions of a card picture.
type Images struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// SetRef is the set a card belongs to, as far as it is known.
type SetRef struct {
	Name string `json:"name"`
}

// Card is one trading card offered in the picker.
type Card struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Images      Images  `json:"images"`
	Set         SetRef  `json:"set"`
	Language    string  `json:"language,omitempty"`
	ReleaseDate *string `json:"release_date,omitempty"`
}

// Set is one trading card expansion.
type Set struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	SetCode     string  `json:"set_code,omitempty"`
	ReleaseDate *string `json:"release_date,omitempty"`
	Language    string  `json:"language,omitempty"`
}

// LocalizedCard is a card resolved in a specific language.
type LocalizedCard struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Language string `json:"language"`
}

// # Languages

// DefaultLanguage is used when none is requested and as the lookup fallback.
const DefaultLanguage = "en"

// Language is a TCGdex card language.
type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Short string `json:"short"`
}

// Languages lists the card languages TCGdex serves, in picker order.
var Languages = []Language{
	{Code: "en", Label: "English", Short: "EN"},
	{Code: "fr", Label: "French", Short: "FR"},
	{Code: "de", Label: "German", Short: "DE"},
	{Code: "es", Label: "Spanish", Short: "ES"},
	{Code: "it", Label: "Italian", Short: "IT"},
	{Code: "pt", Label: "Portuguese", Short: "PT"},
	{Code: "ja", Label: "Japanese", Short: "JA"},
	{Code: "ko", Label: "Korean", Short: "KO"},
	{Code: "zh", Label: "Chinese (Traditional)", Short: "ZH"},
	{Code: "id", Label: "Indonesian", Short: "ID"},
	{Code: "th", Label: "Thai", Short: "TH"},
}

// ShortLabel returns the badge shown on a binder slot for a language code.
// Unknown codes fall back to their first two letters, upper-cased.
func ShortLabel(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	for _, language := range Languages {
		if language.Code == code {
			return language.Short
		}
	}
	return strings.ToUpper(code[:min(2, len(code))])
}

// # Helpers

// ImageURLs derives the low and high quality webp renditions of a TCGdex
// asset base URL. An empty base yields empty URLs.
func ImageURLs(base string) Images {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return Images{}
	}
	return Images{Small: base + "/low.webp", Large: base + "/high.webp"}
}

// SetIDFromCardID extracts the set id from a card id.
//
//	"base1-58"       -> "base1"
//	"swsh12.5-GG30"  -> "swsh12.5"
func SetIDFromCardID(cardID string) string {
	index := strings.LastIndex(cardID, "-")
	if index == -1 {
		return cardID
	}
	return cardID[:index]
}
