// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/binderdex/internal/platform/database"
	"github.com/taibuivan/binderdex/internal/platform/database/schema"
	"github.com/taibuivan/binderdex/internal/platform/dberr"
	"github.com/taibuivan/binderdex/internal/users/auth"
	"github.com/taibuivan/binderdex/pkg/pointer"
)

var (
	accountTable = schema.UserAccount
	sessionTable = schema.UserSession
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] on users.account.
type PostgresAccountRepository struct {
	users *auth.PostgresUserRepository
	pool  *pgxpool.Pool
}

// NewAccountRepository constructs a PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{users: auth.NewUserRepository(pool), pool: pool}
}

// FindByID delegates to the auth user store so both packages scan rows identically.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	return repository.users.FindByID(context, id)
}

// UpdateName replaces the display name and bumps updatedat.
func (repository *PostgresAccountRepository) UpdateName(context context.Context, id string, name *string) error {
	query, args, err := database.QB.
		Update(accountTable.Table).
		Set(accountTable.Name, name).
		Set(accountTable.UpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{accountTable.ID: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("account_store_build_update_failed: %w", err)
	}

	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_account_name")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] on users.session.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

func activeSessions(userID string) sq.SelectBuilder {
	return database.QB.
		Select(sessionTable.ID, sessionTable.UserAgent, sessionTable.IPAddress, sessionTable.CreatedAt, sessionTable.ExpiresAt).
		From(sessionTable.Table).
		Where(sq.Eq{sessionTable.UserID: userID, sessionTable.IsRevoked: false}).
		Where(sq.Expr(sessionTable.ExpiresAt + " > now()")).
		OrderBy(sessionTable.CreatedAt + " DESC")
}

// FindActiveByUserID lists the caller's live sessions, newest first.
func (repository *PostgresSessionRepository) FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error) {
	query, args, err := activeSessions(userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("account_store_build_sessions_failed: %w", err)
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_sessions")
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var (
			info      SessionInfo
			userAgent *string
			ipAddress *string
		)
		if err := rows.Scan(&info.ID, &userAgent, &ipAddress, &info.CreatedAt, &info.ExpiresAt); err != nil {
			return nil, dberr.Wrap(err, "scan_session")
		}
		info.UserAgent = pointer.Val(userAgent)
		info.IPAddress = pointer.Val(ipAddress)
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_sessions")
	}
	return sessions, nil
}

// Revoke invalidates one of the user's own active sessions.
func (repository *PostgresSessionRepository) Revoke(context context.Context, userID, sessionID string) error {
	query, args, err := database.QB.
		Update(sessionTable.Table).
		Set(sessionTable.IsRevoked, true).
		Set(sessionTable.RevokedAt, sq.Expr("now()")).
		Where(sq.Eq{sessionTable.ID: sessionID, sessionTable.UserID: userID, sessionTable.IsRevoked: false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("account_store_build_revoke_failed: %w", err)
	}

	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "revoke_session")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
