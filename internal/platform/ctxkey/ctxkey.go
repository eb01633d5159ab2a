// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the typed keys under which middleware stores
// per-request values. Read them through ctxutil.
package ctxkey

// key is unexported so no other package can build a colliding key.
type key string

const (
	// KeyRequestID holds the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser holds the verified access token claims ([sec.AuthClaims]) of a
	// signed-in owner. Absent for anonymous callers.
	KeyUser key = "user"

	// KeyLogger holds the request scoped [*log/slog.Logger].
	KeyLogger key = "logger"
)
