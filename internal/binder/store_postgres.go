// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package binder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/database"
	"github.com/taibuivan/binderdex/internal/platform/database/schema"
	"github.com/taibuivan/binderdex/internal/platform/dberr"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] on the core.binder table.
// Collected ids live in an INTEGER[] column and slot cards in a JSONB array.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed binder store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var binderTable = schema.CoreBinder

func selectBinders() sq.SelectBuilder {
	return database.QB.Select(binderTable.Columns()...).From(binderTable.Table)
}

// FindByID returns one binder.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Binder, error) {
	query, args, err := selectBinders().Where(sq.Eq{binderTable.ID: id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("binder_store_build_find_failed: %w", err)
	}

	binder, err := scanBinder(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, "find_binder")
	}
	return binder, nil
}

// ListVisible returns shared binders and the caller's own binders.
func (repository *PostgresRepository) ListVisible(context context.Context, userID string) ([]*Binder, error) {
	query, args, err := listVisibleQuery(userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("binder_store_build_list_failed: %w", err)
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_binders")
	}
	defer rows.Close()

	var binders []*Binder
	for rows.Next() {
		binder, err := scanBinder(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_binder")
		}
		binders = append(binders, binder)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_binders")
	}
	return binders, nil
}

func listVisibleQuery(userID string) sq.SelectBuilder {
	visible := sq.Or{sq.Eq{binderTable.IsShared: true}}

	// ownerid is a UUID column; an empty string would not even parse
	if userID != "" {
		visible = append(visible, sq.Eq{binderTable.OwnerID: userID})
	}

	return selectBinders().
		Where(visible).
		OrderBy(binderTable.CreatedAt + " DESC")
}

// HasShared reports whether a shared binder exists.
func (repository *PostgresRepository) HasShared(context context.Context) (bool, error) {
	query, args, err := database.QB.
		Select("1").
		From(binderTable.Table).
		Where(sq.Eq{binderTable.IsShared: true}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("binder_store_build_has_shared_failed: %w", err)
	}

	var one int
	err = repository.pool.QueryRow(context, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, dberr.Wrap(err, "has_shared_binder")
	}
	return true, nil
}

// Upsert creates or replaces a binder document.
func (repository *PostgresRepository) Upsert(context context.Context, binder *Binder) error {
	query, args, err := upsertQuery(binder)
	if err != nil {
		return err
	}

	if _, err := repository.pool.Exec(context, query, args...); err != nil {
		return dberr.Wrap(err, "upsert_binder")
	}
	return nil
}

func upsertQuery(binder *Binder) (string, []any, error) {
	cards, err := json.Marshal(binder.State.Cards())
	if err != nil {
		return "", nil, fmt.Errorf("binder_store_encode_cards_failed: %w", err)
	}

	updates := lo.Map([]string{
		binderTable.Name, binderTable.GridRows, binderTable.GridColumns, binderTable.Ordering,
		binderTable.OwnerID, binderTable.IsShared, binderTable.CollectedIDs, binderTable.SlotCards,
		binderTable.UpdatedAt,
	}, func(column string, _ int) string {
		return column + " = EXCLUDED." + column
	})

	query, args, err := database.QB.
		Insert(binderTable.Table).
		Columns(binderTable.Columns()...).
		Values(
			binder.ID,
			binder.Name,
			binder.Rows,
			binder.Columns,
			string(binder.Ordering),
			binder.OwnerID,
			binder.IsShared,
			toInt32(binder.State.Collected.IDs()),
			cards,
			binder.CreatedAt,
			binder.UpdatedAt,
		).
		Suffix("ON CONFLICT (" + binderTable.ID + ") DO UPDATE SET " + strings.Join(updates, ", ")).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("binder_store_build_upsert_failed: %w", err)
	}
	return query, args, nil
}

// SetCollected patches the collected ids field.
func (repository *PostgresRepository) SetCollected(context context.Context, id string, collectedIDs []int) error {
	return repository.patch(context, id, binderTable.CollectedIDs, toInt32(collectedIDs))
}

// SetSlotCards patches the slot cards field.
func (repository *PostgresRepository) SetSlotCards(context context.Context, id string, cards []SlotCard) error {
	if cards == nil {
		cards = []SlotCard{}
	}
	encoded, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("binder_store_encode_cards_failed: %w", err)
	}
	return repository.patch(context, id, binderTable.SlotCards, encoded)
}

func (repository *PostgresRepository) patch(context context.Context, id, column string, value any) error {
	query, args, err := patchQuery(id, column, value).ToSql()
	if err != nil {
		return fmt.Errorf("binder_store_build_patch_failed: %w", err)
	}

	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "patch_binder_"+column)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func patchQuery(id, column string, value any) sq.UpdateBuilder {
	return database.QB.
		Update(binderTable.Table).
		Set(column, value).
		Set(binderTable.UpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{binderTable.ID: id})
}

// # Row Mapping

func scanBinder(row pgx.Row) (*Binder, error) {
	var (
		binder    Binder
		ordering  string
		collected []int32
		cards     []byte
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&binder.ID,
		&binder.Name,
		&binder.Rows,
		&binder.Columns,
		&ordering,
		&binder.OwnerID,
		&binder.IsShared,
		&collected,
		&cards,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	var slotCards []SlotCard
	if len(cards) > 0 {
		if err := json.Unmarshal(cards, &slotCards); err != nil {
			return nil, fmt.Errorf("binder_store_decode_cards_failed: %w", err)
		}
	}

	binder.Ordering = catalog.OrderingMode(ordering)
	binder.State = NewState(lo.Map(collected, func(id int32, _ int) int { return int(id) }), slotCards)
	binder.CreatedAt = createdAt
	binder.UpdatedAt = updatedAt
	return &binder, nil
}

func toInt32(ids []int) []int32 {
	if ids == nil {
		return []int32{}
	}
	return lo.Map(ids, func(id int, _ int) int32 { return int32(id) })
}
