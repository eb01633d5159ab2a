// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account lets an authenticated owner view and edit their profile and
inspect or revoke their active sessions.

It reuses the [auth.User] entity; only the display name is mutable here.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/binderdex/internal/users/auth"
)

// # Domain Entities

// SessionInfo is a transport-safe view of an active session.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for user profiles.
type AccountRepository interface {

	// FindByID returns the account, or dberr.ErrNotFound.
	FindByID(context context.Context, id string) (*auth.User, error)

	// UpdateName replaces the display name. A nil name clears it.
	UpdateName(context context.Context, id string, name *string) error
}

// SessionRepository exposes the sessions that belong to one user.
type SessionRepository interface {

	// FindActiveByUserID lists unrevoked, unexpired sessions, newest first.
	FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error)

	// Revoke invalidates a session owned by userID. Returns dberr.ErrNotFound
	// when no active session of that user matches.
	Revoke(context context.Context, userID, sessionID string) error
}
