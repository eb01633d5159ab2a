// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package binder

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// # Persisted Fields

// Field names one independently persisted part of a binder's state.
type Field string

const (
	FieldCollectedIDs Field = "collected_ids"
	FieldSlotCards    Field = "slot_cards"
)

// AllFields lists every persisted state field in commit order.
var AllFields = []Field{FieldCollectedIDs, FieldSlotCards}

// # Collected Set

// CollectedSet is the set of entry ids checked off in a binder.
// It serializes as a sorted JSON array.
type CollectedSet map[int]struct{}

// NewCollectedSet builds a set, dropping duplicates.
func NewCollectedSet(ids ...int) CollectedSet {
	return lo.SliceToMap(ids, func(id int) (int, struct{}) {
		return id, struct{}{}
	})
}

// Has reports membership.
func (set CollectedSet) Has(id int) bool {
	_, ok := set[id]
	return ok
}

// IDs returns the members in ascending order.
func (set CollectedSet) IDs() []int {
	ids := lo.Keys(map[int]struct{}(set))
	slices.Sort(ids)
	return ids
}

// Equal reports whether both sets have the same members.
func (set CollectedSet) Equal(other CollectedSet) bool {
	return maps.Equal(set, other)
}

func (set CollectedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.IDs())
}

func (set *CollectedSet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*set = NewCollectedSet(ids...)
	return nil
}

// # Slot Cards

// SlotCard assigns a specific trading card to one catalog entry.
type SlotCard struct {
	CollectibleID int    `json:"collectible_id"`
	CardID        string `json:"card_id"`
	ImageURL      string `json:"image_url,omitempty"`
	Language      string `json:"language,omitempty"`
}

// CardRef is the card half of an assignment, as chosen in the card picker.
type CardRef struct {
	CardID   string `json:"card_id"`
	ImageURL string `json:"image_url,omitempty"`
	Language string `json:"language,omitempty"`
}

// # Combined State

// State is the collected set and the slot card map of one binder.
//
// Invariant: an entry with a card assignment is collected. Every transition
// below preserves it; [NewState] restores it for data read from storage.
type State struct {
	Collected CollectedSet     `json:"collected_ids"`
	SlotCards map[int]SlotCard `json:"-"`
}

// NewState builds a reconciled state from stored fields. Later cards win on
// duplicate collectible ids.
func NewState(collected []int, cards []SlotCard) State {
	state := State{
		Collected: NewCollectedSet(collected...),
		SlotCards: make(map[int]SlotCard, len(cards)),
	}
	for _, card := range cards {
		state.SlotCards[card.CollectibleID] = card
		state.Collected[card.CollectibleID] = struct{}{}
	}
	return state
}

// Clone returns a deep copy.
func (state State) Clone() State {
	return State{
		Collected: lo.Ternary(state.Collected == nil, CollectedSet{}, maps.Clone(state.Collected)),
		SlotCards: lo.Ternary(state.SlotCards == nil, map[int]SlotCard{}, maps.Clone(state.SlotCards)),
	}
}

// IsCollected reports whether id is checked off.
func (state State) IsCollected(id int) bool {
	return state.Collected.Has(id)
}

// Card returns the card assigned to id, if any.
func (state State) Card(id int) (SlotCard, bool) {
	card, ok := state.SlotCards[id]
	return card, ok
}

// Cards returns the assignments ordered by collectible id.
func (state State) Cards() []SlotCard {
	cards := lo.Values(state.SlotCards)
	slices.SortFunc(cards, func(a, b SlotCard) int { return a.CollectibleID - b.CollectibleID })
	return cards
}

// ChangedFields lists the persisted fields that differ between two states.
func ChangedFields(from, to State) []Field {
	var changed []Field
	if !from.Collected.Equal(to.Collected) {
		changed = append(changed, FieldCollectedIDs)
	}
	if !maps.Equal(from.SlotCards, to.SlotCards) {
		changed = append(changed, FieldSlotCards)
	}
	return changed
}

type stateJSON struct {
	Collected CollectedSet `json:"collected_ids"`
	SlotCards []SlotCard   `json:"slot_cards"`
}

func (state State) MarshalJSON() ([]byte, error) {
	collected := state.Collected
	if collected == nil {
		collected = CollectedSet{}
	}
	return json.Marshal(stateJSON{Collected: collected, SlotCards: state.Cards()})
}

func (state *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*state = NewState(raw.Collected.IDs(), raw.SlotCards)
	return nil
}

// # Transitions

// ToggleCollected adds id when absent and removes it when present.
// Applying it twice with the same id restores the original collected set.
// Removing an id also drops its card assignment, since a card implies collected.
func ToggleCollected(state State, id int) State {
	next := state.Clone()
	if next.Collected.Has(id) {
		delete(next.Collected, id)
		delete(next.SlotCards, id)
	} else {
		next.Collected[id] = struct{}{}
	}
	return next
}

// SetSlotCard assigns a card to id and marks it collected. A nil card clears
// the assignment and the collected mark, even one added by an earlier toggle.
func SetSlotCard(state State, id int, card *CardRef) State {
	next := state.Clone()

	if card == nil {
		delete(next.SlotCards, id)
		delete(next.Collected, id)
		return next
	}

	next.SlotCards[id] = SlotCard{
		CollectibleID: id,
		CardID:        card.CardID,
		ImageURL:      card.ImageURL,
		Language:      card.Language,
	}
	next.Collected[id] = struct{}{}
	return next
}
