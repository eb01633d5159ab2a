// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package binder

import "context"

// # Binder Data Access

// Repository defines the document store contract for binders.
//
// The two state fields are written by separate calls, each a single-field
// patch on the same record. There is no cross-field transaction.
type Repository interface {

	/*
		FindByID returns the binder with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Binder: The hydrated binder with reconciled state
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Binder, error)

	/*
		ListVisible returns shared binders plus those owned by userID, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string (Empty for anonymous callers)

		Returns:
		  - []*Binder: Matching binders
		  - error: Database retrieval failures
	*/
	ListVisible(context context.Context, userID string) ([]*Binder, error)

	/*
		HasShared reports whether at least one shared binder exists.
	*/
	HasShared(context context.Context) (bool, error)

	/*
		Upsert creates the binder or replaces every column of an existing one.

		Parameters:
		  - context: context.Context
		  - binder: *Binder

		Returns:
		  - error: Storage or constraint failures
	*/
	Upsert(context context.Context, binder *Binder) error

	/*
		SetCollected replaces the collected ids of a binder.

		Returns:
		  - error: ErrNotFound if the binder vanished, otherwise storage failures
	*/
	SetCollected(context context.Context, id string, collectedIDs []int) error

	/*
		SetSlotCards replaces the slot card assignments of a binder.

		Returns:
		  - error: ErrNotFound if the binder vanished, otherwise storage failures
	*/
	SetSlotCards(context context.Context, id string, cards []SlotCard) error
}
