// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/binderdex/internal/tcg"
)

/*
TestShortLabel verifies the slot badge for known and unknown language codes.
*/
func TestShortLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "EN"},
		{" JA ", "JA"},
		{"zh", "ZH"},
		{"", ""},
		{"nl-be", "NL"},
		{"x", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, tcg.ShortLabel(tt.code))
		})
	}
}

/*
TestImageURLs verifies the webp rendition URLs.
*/
func TestImageURLs(t *testing.T) {
	images := tcg.ImageURLs("https://assets.tcgdex.net/en/base/base1/58/")
	assert.Equal(t, "https://assets.tcgdex.net/en/base/base1/58/low.webp", images.Small)
	assert.Equal(t, "https://assets.tcgdex.net/en/base/base1/58/high.webp", images.Large)

	assert.Equal(t, tcg.Images{}, tcg.ImageURLs("  "))
}

/*
TestSetIDFromCardID verifies set id extraction from card ids.
*/
func TestSetIDFromCardID(t *testing.T) {
	assert.Equal(t, "base1", tcg.SetIDFromCardID("base1-58"))
	assert.Equal(t, "swsh12.5", tcg.SetIDFromCardID("swsh12.5-GG30"))
	assert.Equal(t, "promo", tcg.SetIDFromCardID("promo"))
}

/*
TestIsSupportedLanguage verifies membership in the language list.
*/
func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, tcg.IsSupportedLanguage("ko"))
	assert.False(t, tcg.IsSupportedLanguage("nl"))
	assert.Len(t, tcg.Languages, 11)
}
