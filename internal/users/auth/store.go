// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound when absent
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account registered under a lowercased email.

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound when absent
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account.

		Returns:
		  - error: apperr.Conflict on a duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	// Create persists a new session for an authenticated login.
	Create(context context.Context, session *Session) error

	// FindByTokenHash returns the unrevoked, unexpired session matching the hash.
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// Revoke marks a session as permanently invalidated.
	Revoke(context context.Context, sessionID string) error

	// DeleteExpired removes sessions whose expiry is in the past.
	DeleteExpired(context context.Context) (int64, error)
}
