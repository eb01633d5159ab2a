// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package binder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/ctxutil"
	"github.com/taibuivan/binderdex/internal/platform/validate"
	"github.com/taibuivan/binderdex/internal/search"
	"github.com/taibuivan/binderdex/internal/slot"
	"github.com/taibuivan/binderdex/pkg/uuid"
)

// # Collaborators

// CatalogProvider supplies the ordered catalog a binder is laid over.
type CatalogProvider interface {
	OrderedCatalog(ctx context.Context, mode catalog.OrderingMode) ([]catalog.Entry, error)
}

// Locator resolves a free-text query to an address in a binder grid.
type Locator interface {
	SearchInBinder(ctx context.Context, query string, grid search.Grid, mode catalog.OrderingMode) (*search.Result, error)
}

// Options tunes the binder service.
type Options struct {
	// Writable enables every mutating operation. When false, writes fail with
	// CONFIGURATION_MISSING before anything else is checked.
	Writable bool
}

// ErrWritesDisabled is returned by every write on a read-only deployment.
var ErrWritesDisabled = apperr.ConfigurationMissing("Binder writes are not configured on this server")

// Limits on client supplied card data.
const (
	maxCardIDLength   = 128
	maxImageURLLength = 2048
	maxLanguageLength = 8
	maxNameLength     = 100
)

// # Service Layer

// Service orchestrates binder listing, creation, page views and state commits.
type Service struct {
	repository Repository
	catalogs   CatalogProvider
	locator    Locator
	writable   bool
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, catalogs CatalogProvider, locator Locator, options Options) *Service {
	return &Service{
		repository: repository,
		catalogs:   catalogs,
		locator:    locator,
		writable:   options.Writable,
		now:        time.Now,
	}
}

// # Lookups

/*
List returns the binders visible to the caller.

Description: Shared binders are visible to everyone, owned binders only to
their owner. When no shared binder exists yet and writes are enabled, the
example binder is seeded first. The result is deduplicated by id and sorted
by creation time, newest first.

Parameters:
  - context: context.Context
  - callerID: string (Empty for anonymous callers)

Returns:
  - []*Binder: Visible binders
  - error: Storage failures
*/
func (service *Service) List(context context.Context, callerID string) ([]*Binder, error) {
	if service.writable {
		if err := service.ensureExample(context); err != nil {
			return nil, err
		}
	}

	binders, err := service.repository.ListVisible(context, callerID)
	if err != nil {
		return nil, fmt.Errorf("binder_service_list_failed: %w", err)
	}

	binders = lo.UniqBy(binders, func(binder *Binder) string { return binder.ID })
	slices.SortStableFunc(binders, func(a, b *Binder) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return binders, nil
}

func (service *Service) ensureExample(context context.Context) error {
	exists, err := service.repository.HasShared(context)
	if err != nil {
		return fmt.Errorf("binder_service_check_example_failed: %w", err)
	}
	if exists {
		return nil
	}

	now := service.now().UTC()
	example := &Binder{
		ID:        uuid.New(),
		Name:      lo.ToPtr(ExampleName),
		Rows:      ExampleRows,
		Columns:   ExampleColumns,
		Ordering:  ExampleOrdering,
		IsShared:  true,
		State:     NewState(nil, nil),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.repository.Upsert(context, example); err != nil {
		return fmt.Errorf("binder_service_seed_example_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("binder_example_seeded", "binder_id", example.ID)
	return nil
}

/*
Get fetches a binder by id. Anyone may read any binder.

Returns:
  - *Binder: The binder with its committed state
  - error: NOT_FOUND if missing
*/
func (service *Service) Get(context context.Context, id string) (*Binder, error) {
	// Ids are UUIDs; anything else cannot name a stored binder
	if (&validate.Validator{}).UUID(FieldID, id).HasErrors() {
		return nil, apperr.NotFound("Binder")
	}

	binder, err := service.repository.FindByID(context, id)
	if err != nil {
		if ae := apperr.As(err); ae != nil && ae.Code == "NOT_FOUND" {
			return nil, apperr.NotFound("Binder")
		}
		return nil, err
	}
	return binder, nil
}

// # Binder Creation

// CreateInput is the caller supplied configuration of a new binder.
type CreateInput struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Ordering string `json:"ordering"`
}

/*
Create persists a new private binder owned by the caller.

Parameters:
  - context: context.Context
  - callerID: string (Must be an authenticated user)
  - input: CreateInput

Returns:
  - *Binder: The created binder with empty state
  - error: UNAUTHORIZED, CONFIGURATION_MISSING, VALIDATION_ERROR or storage failures
*/
func (service *Service) Create(context context.Context, callerID string, input CreateInput) (*Binder, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Authentication is required to create a binder")
	}
	if !service.writable {
		return nil, ErrWritesDisabled
	}

	name := strings.TrimSpace(input.Name)

	validator := &validate.Validator{}
	validator.
		MaxLen(FieldName, name, maxNameLength).
		Range(FieldRows, input.Rows, MinGridSize, MaxGridSize).
		Range(FieldColumns, input.Columns, MinGridSize, MaxGridSize).
		OneOf(FieldOrdering, input.Ordering, catalog.ModeNames()...)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := service.now().UTC()
	binder := &Binder{
		ID:        uuid.New(),
		Name:      lo.Ternary[*string](name == "", nil, &name),
		Rows:      input.Rows,
		Columns:   input.Columns,
		Ordering:  catalog.OrderingMode(input.Ordering),
		OwnerID:   lo.ToPtr(callerID),
		State:     NewState(nil, nil),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.repository.Upsert(context, binder); err != nil {
		return nil, fmt.Errorf("binder_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("binder_created",
		"binder_id", binder.ID,
		"owner_id", callerID,
		"ordering", binder.Ordering,
	)
	return binder, nil
}

// # State Commit

// CommitResult reports the per-field outcome of a commit.
type CommitResult struct {
	Written []Field         `json:"written"`
	Failed  map[Field]error `json:"-"`
}

// OK reports whether every requested field was written.
func (result *CommitResult) OK() bool {
	return len(result.Failed) == 0
}

/*
Commit persists a binder state as two independent field writes.

Description: The gate runs in a fixed order: writes must be enabled, the
binder must exist, and the caller must be allowed to write it. The state is
then validated and the requested fields (both when none are given) are
written concurrently. Both writes are always awaited. There is no rollback:
when one fails the other may still have been applied, and the returned
result tells which.

Parameters:
  - context: context.Context
  - callerID: string (Empty for anonymous callers)
  - binderID: string
  - state: State (The full state to commit)
  - fields: ...Field (Subset to write)

Returns:
  - *CommitResult: Per-field outcome, also returned alongside a write failure
  - error: CONFIGURATION_MISSING, NOT_FOUND, FORBIDDEN, VALIDATION_ERROR or PERSISTENCE_WRITE_FAILED
*/
func (service *Service) Commit(context context.Context, callerID, binderID string, state State, fields ...Field) (*CommitResult, error) {
	binder, err := service.authorize(context, callerID, binderID)
	if err != nil {
		return nil, err
	}

	if err := validateState(state); err != nil {
		return nil, err
	}

	return service.write(context, binder, state, fields)
}

/*
ToggleCollected flips the collected mark of one entry and commits the change.

Returns:
  - *Binder: The binder with the committed state
  - error: Same classes as [Service.Commit]
*/
func (service *Service) ToggleCollected(context context.Context, callerID, binderID string, entryID int) (*Binder, error) {
	if !validEntryID(entryID) {
		return nil, validate.RequiredError(FieldEntryID, "Must be a positive 32-bit integer")
	}

	return service.mutate(context, callerID, binderID, func(draft *Draft) error {
		return draft.Toggle(entryID)
	})
}

/*
AssignCard sets, or with a nil card clears, the card of one entry and commits.

Returns:
  - *Binder: The binder with the committed state
  - error: Same classes as [Service.Commit]
*/
func (service *Service) AssignCard(context context.Context, callerID, binderID string, entryID int, card *CardRef) (*Binder, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldEntryID, !validEntryID(entryID), "Must be a positive 32-bit integer")
	if card != nil {
		validateCardRef(validator, *card)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.mutate(context, callerID, binderID, func(draft *Draft) error {
		return draft.AssignCard(entryID, card)
	})
}

// mutate applies one edit through a [Draft] and writes only the fields it dirtied.
func (service *Service) mutate(context context.Context, callerID, binderID string, edit func(*Draft) error) (*Binder, error) {
	binder, err := service.authorize(context, callerID, binderID)
	if err != nil {
		return nil, err
	}

	draft := NewDraft(binder.State)
	if err := edit(draft); err != nil {
		return nil, err
	}

	snapshot, fields, err := draft.BeginSave()
	if errors.Is(err, ErrNothingToSave) {
		return binder, nil
	}
	if err != nil {
		return nil, err
	}

	result, commitErr := service.write(context, binder, snapshot, fields)
	if err := draft.Finish(snapshot, result, commitErr); err != nil {
		return nil, err
	}
	if commitErr != nil {
		return nil, commitErr
	}

	binder.State = draft.Baseline()
	return binder, nil
}

// authorize runs the write gate and returns the loaded binder.
func (service *Service) authorize(context context.Context, callerID, binderID string) (*Binder, error) {
	if !service.writable {
		return nil, ErrWritesDisabled
	}

	binder, err := service.Get(context, binderID)
	if err != nil {
		return nil, err
	}

	if !binder.CanWrite(callerID) {
		ctxutil.GetLogger(context).Warn("binder_write_forbidden",
			"binder_id", binderID,
			"caller_id", callerID,
		)
		return nil, apperr.Forbidden("You cannot modify this binder")
	}
	return binder, nil
}

// write issues one concurrent store call per field and waits for all of them.
func (service *Service) write(context context.Context, binder *Binder, state State, fields []Field) (*CommitResult, error) {
	if len(fields) == 0 {
		fields = AllFields
	}
	fields = lo.Uniq(fields)

	var (
		group   errgroup.Group
		mu      sync.Mutex
		results = &CommitResult{Failed: map[Field]error{}}
	)

	for _, field := range fields {
		group.Go(func() error {
			err := service.writeField(context, binder.ID, state, field)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results.Failed[field] = err
				return err
			}
			results.Written = append(results.Written, field)
			return nil
		})
	}

	// Every goroutine has finished once Wait returns, failed or not.
	_ = group.Wait()

	// Keep the reported order stable regardless of completion order
	results.Written = lo.Filter(AllFields, func(field Field, _ int) bool {
		return slices.Contains(results.Written, field)
	})

	logger := ctxutil.GetLogger(context)
	if results.OK() {
		logger.Info("binder_state_committed", "binder_id", binder.ID, "fields", results.Written)
		return results, nil
	}

	details := make([]apperr.FieldError, 0, len(results.Failed))
	var causes []error
	for _, field := range AllFields {
		cause, failed := results.Failed[field]
		if !failed {
			continue
		}
		causes = append(causes, fmt.Errorf("%s: %w", field, cause))
		details = append(details, apperr.FieldError{Field: string(field), Message: failureMessage(cause)})
	}

	cause := errors.Join(causes...)
	logger.Error("binder_state_commit_failed",
		"binder_id", binder.ID,
		"written", results.Written,
		"error", cause,
	)

	return results, apperr.PersistenceWriteFailed(details[0].Message, cause, details...)
}

func (service *Service) writeField(context context.Context, binderID string, state State, field Field) error {
	switch field {
	case FieldCollectedIDs:
		return service.repository.SetCollected(context, binderID, state.Collected.IDs())
	case FieldSlotCards:
		return service.repository.SetSlotCards(context, binderID, state.Cards())
	default:
		return fmt.Errorf("binder: unknown state field %q", field)
	}
}

// failureMessage passes a client-safe store message through when there is one.
func failureMessage(err error) string {
	if ae := apperr.As(err); ae != nil && ae.Code != "INTERNAL_ERROR" {
		return ae.Message
	}
	return "Failed to save binder state"
}

// # Validation

func validateState(state State) error {
	validator := &validate.Validator{}

	for _, id := range state.Collected.IDs() {
		if !validEntryID(id) {
			validator.Custom(string(FieldCollectedIDs), true, fmt.Sprintf("Invalid entry id %d", id))
			break
		}
	}

	for _, card := range state.Cards() {
		if !validEntryID(card.CollectibleID) {
			validator.Custom(string(FieldSlotCards), true, fmt.Sprintf("Invalid entry id %d", card.CollectibleID))
			break
		}
		validateCardRef(validator, CardRef{CardID: card.CardID, ImageURL: card.ImageURL, Language: card.Language})
		if validator.HasErrors() {
			break
		}
	}

	return validator.Err()
}

// validEntryID reports whether id fits the INTEGER columns that store it.
func validEntryID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}

func validateCardRef(validator *validate.Validator, card CardRef) {
	validator.
		Required(FieldCardID, card.CardID).
		MaxLen(FieldCardID, card.CardID, maxCardIDLength).
		MaxLen("image_url", card.ImageURL, maxImageURLLength).
		MaxLen("language", card.Language, maxLanguageLength)
}

// # Page View

// SlotView is one cell of a rendered binder page.
type SlotView struct {
	slot.Address
	Entry       catalog.Entry `json:"entry"`
	Collected   bool          `json:"collected"`
	Card        *SlotCard     `json:"card,omitempty"`
	Highlighted bool          `json:"highlighted"`
}

// PageView is one page of a binder with its slots in row-major order.
type PageView struct {
	BinderID       string         `json:"binder_id"`
	Page           int            `json:"page"`
	TotalPages     int            `json:"total_pages"`
	Rows           int            `json:"rows"`
	Columns        int            `json:"columns"`
	TotalEntries   int            `json:"total_entries"`
	CollectedCount int            `json:"collected_count"`
	Slots          []SlotView     `json:"slots"`
	Highlight      *search.Result `json:"highlight,omitempty"`
}

/*
Page renders one page of a binder.

Description: The requested page is clamped into [1, totalPages]. When
highlightID is positive and present in the binder's ordering, its address
is reported and, if it sits on the rendered page, its slot is flagged.

Parameters:
  - context: context.Context
  - binderID: string
  - page: int (1-based, clamped)
  - highlightID: int (0 for none)

Returns:
  - *PageView: The rendered page
  - error: NOT_FOUND or UPSTREAM_UNAVAILABLE
*/
func (service *Service) Page(context context.Context, binderID string, page, highlightID int) (*PageView, error) {
	binder, err := service.Get(context, binderID)
	if err != nil {
		return nil, err
	}

	entries, err := service.catalogs.OrderedCatalog(context, binder.Ordering)
	if err != nil {
		return nil, err
	}

	totalPages := slot.TotalPages(len(entries), binder.Rows, binder.Columns)
	page = slot.ClampPage(page, totalPages)
	base := (page - 1) * binder.SlotsPerPage()

	view := &PageView{
		BinderID:     binder.ID,
		Page:         page,
		TotalPages:   totalPages,
		Rows:         binder.Rows,
		Columns:      binder.Columns,
		TotalEntries: len(entries),
		CollectedCount: lo.CountBy(entries, func(entry catalog.Entry) bool {
			return binder.State.IsCollected(entry.ID)
		}),
	}

	if highlightID > 0 {
		if index := slot.FindIndexByID(entries, highlightID); index >= 0 {
			view.Highlight = &search.Result{
				Address: slot.IndexToAddress(index, binder.Rows, binder.Columns),
				ID:      entries[index].ID,
				Name:    entries[index].Name,
			}
		}
	}

	pageEntries := slot.PageSlice(entries, binder.Rows, binder.Columns, page)
	view.Slots = make([]SlotView, 0, len(pageEntries))
	for offset, entry := range pageEntries {
		cell := SlotView{
			Address:     slot.IndexToAddress(base+offset, binder.Rows, binder.Columns),
			Entry:       entry,
			Collected:   binder.State.IsCollected(entry.ID),
			Highlighted: view.Highlight != nil && view.Highlight.ID == entry.ID,
		}
		if card, ok := binder.State.Card(entry.ID); ok {
			cell.Card = &card
		}
		view.Slots = append(view.Slots, cell)
	}

	return view, nil
}

// # Search

/*
Search locates a species inside a binder's own grid.

Returns:
  - *search.Result: Page, row and column of the match
  - error: NOT_FOUND for an unknown binder or species
*/
func (service *Service) Search(context context.Context, binderID, query string) (*search.Result, error) {
	binder, err := service.Get(context, binderID)
	if err != nil {
		return nil, err
	}
	return service.locator.SearchInBinder(context, query, binder.Grid(), binder.Ordering)
}
