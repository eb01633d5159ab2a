// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/binderdex/internal/platform/database"
	"github.com/taibuivan/binderdex/internal/platform/database/schema"
	"github.com/taibuivan/binderdex/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] on users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var (
	accountTable = schema.UserAccount
	sessionTable = schema.UserSession
)

/*
Create persists a new user record into the users.account table.

Description: Initializes timestamps when absent. A duplicate email surfaces as
apperr.Conflict through dberr.Wrap.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Conflict or persistence failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query, args, err := database.QB.
		Insert(accountTable.Table).
		Columns(accountTable.Columns()...).
		Values(user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres_user_repo_build_create_failed: %w", err)
	}

	if _, err := repository.pool.Exec(context, query, args...); err != nil {
		return dberr.Wrap(err, "create_user")
	}
	return nil
}

// FindByEmail retrieves a user record by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, sq.Eq{accountTable.Email: email}, "find_user_by_email")
}

// FindByID retrieves a user record by its primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, sq.Eq{accountTable.ID: id}, "find_user_by_id")
}

func (repository *PostgresUserRepository) findOne(context context.Context, where sq.Eq, action string) (*User, error) {
	query, args, err := database.QB.
		Select(accountTable.Columns()...).
		From(accountTable.Table).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_build_find_failed: %w", err)
	}

	user := &User{}
	err = repository.pool.QueryRow(context, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] on users.session.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

var sessionColumns = []string{
	sessionTable.ID, sessionTable.UserID, sessionTable.TokenHash, sessionTable.UserAgent,
	sessionTable.IPAddress, sessionTable.ExpiresAt, sessionTable.IsRevoked, sessionTable.CreatedAt,
}

// Create persists a new session for an authenticated login.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query, args, err := database.QB.
		Insert(sessionTable.Table).
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.UserID,
			session.TokenHash,
			session.UserAgent,
			session.IPAddress,
			session.ExpiresAt,
			session.IsRevoked,
			session.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres_session_repo_build_create_failed: %w", err)
	}

	if _, err := repository.pool.Exec(context, query, args...); err != nil {
		return dberr.Wrap(err, "create_session")
	}
	return nil
}

/*
FindByTokenHash retrieves an active session by its unique token hash.

Description: Revoked and expired sessions are treated as absent.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session metadata
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query, args, err := activeSessionQuery(tokenHash).ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_build_find_failed: %w", err)
	}

	session := &Session{}
	err = repository.pool.QueryRow(context, query, args...).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_session")
	}
	return session, nil
}

func activeSessionQuery(tokenHash string) sq.SelectBuilder {
	return database.QB.
		Select(sessionColumns...).
		From(sessionTable.Table).
		Where(sq.Eq{sessionTable.TokenHash: tokenHash, sessionTable.IsRevoked: false}).
		Where(sq.Expr(sessionTable.ExpiresAt + " > now()"))
}

// Revoke marks a specific session as revoked.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	query, args, err := database.QB.
		Update(sessionTable.Table).
		Set(sessionTable.IsRevoked, true).
		Set(sessionTable.RevokedAt, sq.Expr("now()")).
		Where(sq.Eq{sessionTable.ID: sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres_session_repo_build_revoke_failed: %w", err)
	}

	if _, err := repository.pool.Exec(context, query, args...); err != nil {
		return dberr.Wrap(err, "revoke_session")
	}
	return nil
}

// DeleteExpired physically removes sessions whose expiry is in the past.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) (int64, error) {
	query, args, err := database.QB.
		Delete(sessionTable.Table).
		Where(sq.Expr(sessionTable.ExpiresAt + " < now()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_build_cleanup_failed: %w", err)
	}

	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_expired_sessions")
	}
	return tag.RowsAffected(), nil
}
