// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, upstream endpoints and cache windows
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Upstreams: Default base URLs and revalidation windows for external catalogs.
  - Security: JWT issuers and cookie configuration.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "binderdex-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Card picker lookups can walk many upstream pages, so this is generous.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 45 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Upstreams

const (
	// DefaultPokeAPIBaseURL serves the ordered species catalogs (pokedexes).
	DefaultPokeAPIBaseURL = "https://pokeapi.co/api/v2"

	// DefaultTCGdexBaseURL serves trading card and set data. No API key required.
	DefaultTCGdexBaseURL = "https://api.tcgdex.net/v2"

	// DefaultPokeWalletBaseURL serves card images behind an API key.
	DefaultPokeWalletBaseURL = "https://api.pokewallet.io"

	// DefaultCatalogTTL is the revalidation window of the ordered species catalogs.
	DefaultCatalogTTL = 1 * time.Hour

	// DefaultCardCacheTTL is the revalidation window of card and set lookups.
	DefaultCardCacheTTL = 1 * time.Hour

	// ImageCacheTTL is how long proxied card images are served from disk.
	ImageCacheTTL = 24 * time.Hour

	// UpstreamUserAgent identifies this service to third-party APIs.
	UpstreamUserAgent = "Binderdex/0.1"
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "binderdex.app"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAPIKey        = "X-API-Key"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixCatalog = "catalog:"
	RedisPrefixCards   = "tcg:cards:"
	RedisPrefixSets    = "tcg:sets:"
)
