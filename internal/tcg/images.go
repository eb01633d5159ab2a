// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/peterbourgon/diskv/v3"

	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/constants"
	"github.com/taibuivan/binderdex/internal/platform/ctxutil"
	"github.com/taibuivan/binderdex/internal/platform/upstream"
	"github.com/taibuivan/binderdex/pkg/slug"
)

// # Image Proxy

// Image sizes served by PokeWallet.
const (
	SizeLow  = "low"
	SizeHigh = "high"
)

// defaultContentType is assumed when the upstream omits one.
const defaultContentType = "image/jpeg"

// Image is a proxied card picture.
type Image struct {
	Body        []byte
	ContentType string
}

// ImageStore persists image payloads between requests. [*diskv.Diskv] satisfies it.
type ImageStore interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Has(key string) bool
	Erase(key string) error
	Keys(cancel <-chan struct{}) <-chan string
}

// NewDiskImageStore creates a disk store under dir, spreading files over
// two-character subdirectories.
func NewDiskImageStore(dir string) *diskv.Diskv {
	return diskv.New(diskv.Options{
		BasePath: dir,
		Transform: func(key string) []string {
			if len(key) < 2 {
				return []string{}
			}
			return []string{key[:2]}
		},
		CacheSizeMax: 8 << 20,
	})
}

// storedImage is the on-disk envelope of one image.
type storedImage struct {
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
	Body        []byte    `json:"body"`
}

// ImageProxy fetches card images from PokeWallet and keeps them on disk.
type ImageProxy struct {
	client *upstream.Client
	store  ImageStore
	ttl    time.Duration
	now    func() time.Time
}

// NewImageProxy creates an image proxy. A nil client means no API key is
// configured: every fetch then fails with CONFIGURATION_MISSING.
func NewImageProxy(client *upstream.Client, store ImageStore, ttl time.Duration) *ImageProxy {
	return &ImageProxy{client: client, store: store, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (proxy *ImageProxy) WithClock(now func() time.Time) *ImageProxy {
	proxy.now = now
	return proxy
}

// NormalizeSize maps anything but "high" to "low".
func NormalizeSize(size string) string {
	if strings.EqualFold(strings.TrimSpace(size), SizeHigh) {
		return SizeHigh
	}
	return SizeLow
}

/*
Fetch returns the image of a card at the given size.

Description: A fresh copy on disk is served directly. Otherwise the image is
fetched from PokeWallet with the configured API key and stored for the
cache window. Failed fetches are never stored.

Parameters:
  - context: context.Context
  - cardID: string
  - size: string ("low" or "high", anything else is "low")

Returns:
  - *Image: Bytes and content type
  - error: VALIDATION_ERROR, CONFIGURATION_MISSING, NOT_FOUND or UPSTREAM_UNAVAILABLE
*/
func (proxy *ImageProxy) Fetch(context context.Context, cardID, size string) (*Image, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, apperr.ValidationError("Missing id",
			apperr.FieldError{Field: "id", Message: "This field is required"})
	}
	if proxy.client == nil {
		return nil, apperr.ConfigurationMissing("PokeWallet API not configured")
	}

	size = NormalizeSize(size)
	key := imageKey(cardID, size)
	logger := ctxutil.GetLogger(context)

	if image, ok := proxy.readFresh(key); ok {
		return image, nil
	}

	query := url.Values{}
	query.Set("size", size)

	body, contentType, err := proxy.client.GetBytes(context, "images/"+url.PathEscape(cardID), query)
	if upstream.IsNotFound(err) {
		return nil, apperr.NotFound("Image")
	}
	if err != nil {
		logger.ErrorContext(context, "tcg_image_fetch_failed", slog.String("card_id", cardID), slog.Any("error", err))
		return nil, apperr.UpstreamUnavailable("Image source", err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	image := &Image{Body: body, ContentType: contentType}

	if err := proxy.write(key, image); err != nil {
		logger.WarnContext(context, "tcg_image_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
	return image, nil
}

// MaxAgeSeconds is the client cache window advertised for proxied images.
func (proxy *ImageProxy) MaxAgeSeconds() int {
	if proxy.ttl <= 0 {
		return int(constants.ImageCacheTTL.Seconds())
	}
	return int(proxy.ttl.Seconds())
}

func (proxy *ImageProxy) readFresh(key string) (*Image, bool) {
	if proxy.ttl <= 0 || !proxy.store.Has(key) {
		return nil, false
	}

	raw, err := proxy.store.Read(key)
	if err != nil {
		return nil, false
	}

	var stored storedImage
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false
	}
	if proxy.now().Sub(stored.FetchedAt) >= proxy.ttl {
		return nil, false
	}
	return &Image{Body: stored.Body, ContentType: stored.ContentType}, true
}

func (proxy *ImageProxy) write(key string, image *Image) error {
	if proxy.ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(storedImage{
		ContentType: image.ContentType,
		FetchedAt:   proxy.now().UTC(),
		Body:        image.Body,
	})
	if err != nil {
		return err
	}
	return proxy.store.Write(key, raw)
}

/*
Prune deletes stored images older than the cache window, and any entry that
no longer decodes.

Description: Keys are listed before anything is erased, since erasing prunes
emptied directories under the walk.

Returns:
  - int64: Number of entries removed
  - error: The first erase failure, or ctx.Err() when cancelled
*/
func (proxy *ImageProxy) Prune(context context.Context) (int64, error) {
	cancel := make(chan struct{})
	defer close(cancel)

	var keys []string
	for key := range proxy.store.Keys(cancel) {
		keys = append(keys, key)
	}

	var removed int64
	for _, key := range keys {
		if err := context.Err(); err != nil {
			return removed, err
		}
		if _, fresh := proxy.readFresh(key); fresh {
			continue
		}
		if err := proxy.store.Erase(key); err != nil {
			return removed, fmt.Errorf("tcg_image_prune_failed: %w", err)
		}
		removed++
	}
	return removed, nil
}

// imageKey is a filesystem safe key, e.g. "sv03-5-025-1f2e3d4c-high". The
// hash keeps ids apart that slug to the same text ("sv03.5" and "sv03-5").
func imageKey(cardID, size string) string {
	return fmt.Sprintf("%s-%08x-%s", slug.From(cardID), uint32(xxhash.Sum64String(cardID)), size)
}
