// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package binder

import "errors"

// # Draft State Machine

// DraftStatus is the lifecycle position of a [Draft].
//
//	clean --edit--> dirty --BeginSave--> saving --ok--> saved --edit--> dirty
//	                  ^                    |
//	                  +------ edit ------ error <--fail--+
type DraftStatus string

const (
	DraftClean  DraftStatus = "clean"
	DraftDirty  DraftStatus = "dirty"
	DraftSaving DraftStatus = "saving"
	DraftSaved  DraftStatus = "saved"
	DraftError  DraftStatus = "error"
)

var (
	// ErrSaveInProgress is returned for edits or saves attempted while saving.
	ErrSaveInProgress = errors.New("binder: a save is already in progress")
	// ErrNothingToSave is returned by BeginSave when no field is dirty.
	ErrNothingToSave = errors.New("binder: nothing to save")
	// ErrNotSaving is returned by Finish outside of the saving state.
	ErrNotSaving = errors.New("binder: no save in progress")
)

// Draft buffers edits over the last committed state.
//
// Edits only touch the working copy. A failed save leaves the working copy
// untouched so it can be retried, and advances the baseline only for the
// fields that were written. Not safe for concurrent use.
type Draft struct {
	baseline State
	working  State
	status   DraftStatus
	lastErr  error
}

// NewDraft starts a clean draft over a committed state.
func NewDraft(committed State) *Draft {
	return &Draft{
		baseline: committed.Clone(),
		working:  committed.Clone(),
		status:   DraftClean,
	}
}

// Status returns the current lifecycle position.
func (draft *Draft) Status() DraftStatus { return draft.status }

// Err returns the failure of the last save, if it failed.
func (draft *Draft) Err() error { return draft.lastErr }

// Working returns a copy of the edited state.
func (draft *Draft) Working() State { return draft.working.Clone() }

// Baseline returns a copy of the last known committed state.
func (draft *Draft) Baseline() State { return draft.baseline.Clone() }

// DirtyFields lists the persisted fields the working copy changed.
func (draft *Draft) DirtyFields() []Field {
	return ChangedFields(draft.baseline, draft.working)
}

// Toggle flips the collected mark of id.
func (draft *Draft) Toggle(id int) error {
	return draft.edit(func(state State) State { return ToggleCollected(state, id) })
}

// AssignCard sets or, with a nil card, clears the card of id.
func (draft *Draft) AssignCard(id int, card *CardRef) error {
	return draft.edit(func(state State) State { return SetSlotCard(state, id, card) })
}

// Replace swaps the whole working copy, as a client-side commit does.
func (draft *Draft) Replace(state State) error {
	return draft.edit(func(State) State { return state.Clone() })
}

func (draft *Draft) edit(transition func(State) State) error {
	if draft.status == DraftSaving {
		return ErrSaveInProgress
	}

	draft.working = transition(draft.working)
	draft.lastErr = nil
	if len(draft.DirtyFields()) == 0 {
		draft.status = DraftClean
	} else {
		draft.status = DraftDirty
	}
	return nil
}

// BeginSave enters the saving state and returns the snapshot and fields to persist.
func (draft *Draft) BeginSave() (State, []Field, error) {
	if draft.status == DraftSaving {
		return State{}, nil, ErrSaveInProgress
	}

	fields := draft.DirtyFields()
	if len(fields) == 0 {
		return State{}, nil, ErrNothingToSave
	}

	draft.status = DraftSaving
	return draft.working.Clone(), fields, nil
}

// Finish leaves the saving state with the outcome of the commit.
// snapshot must be the state returned by BeginSave.
func (draft *Draft) Finish(snapshot State, result *CommitResult, err error) error {
	if draft.status != DraftSaving {
		return ErrNotSaving
	}

	if result != nil {
		for _, field := range result.Written {
			draft.baseline = withField(draft.baseline, snapshot, field)
		}
	}

	if err != nil {
		draft.status = DraftError
		draft.lastErr = err
		return nil
	}

	draft.lastErr = nil
	if len(draft.DirtyFields()) == 0 {
		draft.status = DraftSaved
	} else {
		draft.status = DraftDirty
	}
	return nil
}

// Discard drops every uncommitted edit.
func (draft *Draft) Discard() error {
	if draft.status == DraftSaving {
		return ErrSaveInProgress
	}
	draft.working = draft.baseline.Clone()
	draft.status = DraftClean
	draft.lastErr = nil
	return nil
}

// withField copies one persisted field from source onto target.
func withField(target, source State, field Field) State {
	next := target.Clone()
	switch field {
	case FieldCollectedIDs:
		next.Collected = source.Clone().Collected
	case FieldSlotCards:
		next.SlotCards = source.Clone().SlotCards
	}
	return next
}
