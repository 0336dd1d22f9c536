// Package storage provides abstractions for the session's recipient and group data.
package storage

import "github.com/mmynk/payouts/internal/models"

// RecipientStore defines the operations on the authoritative recipient list
// and the current multi-selection.
// Unknown IDs are no-ops, never errors.
type RecipientStore interface {
	// Add creates up to count recipients (clamped per call and by capacity)
	// in groupID ("" for ungrouped). It returns how many were created, and an
	// error wrapping models.ErrCapacityExceeded when the request was truncated.
	Add(count int, groupID string) (int, error)

	// Remove deletes the recipient and drops it from the selection.
	Remove(id string)

	// Update applies u to id, or to the whole selection when id is selected
	// along with at least one other recipient.
	Update(id string, u models.RecipientUpdate)

	// ToggleSelection adds or removes id from the selection.
	ToggleSelection(id string)

	// ClearSelection empties the selection.
	ClearSelection()

	// Selection returns the selected IDs, sorted.
	Selection() []string

	// MoveToGroup reassigns id to groupID ("" for ungrouped).
	MoveToGroup(id, groupID string)

	// Reorder moves the recipient at from to to within one scope: the
	// ungrouped list (scope "") or the list of group scope.
	Reorder(scope string, from, to int)

	// Ungroup clears groupID on every member of the group.
	Ungroup(groupID string)

	// Replace swaps in a new recipient list after validation and returns how
	// many were dropped. The selection is cleared.
	Replace(recipients []models.Recipient) int

	// SetPayouts writes derived payouts by recipient ID.
	SetPayouts(payouts map[string]float64)

	// All returns a copy of the recipients in order.
	All() []models.Recipient

	// Get returns the recipient with the given ID.
	Get(id string) (models.Recipient, bool)

	// Len returns the number of live recipients.
	Len() int

	// Clear empties recipients and selection and resets the ID counter.
	Clear()
}

// GroupStore defines the operations on the authoritative group list.
type GroupStore interface {
	// Add creates a group with a default name and a palette color.
	Add() models.Group

	// Remove deletes the group. It reports whether the group existed; members
	// are ungrouped by the caller.
	Remove(id string) bool

	// Update applies u to the group.
	Update(id string, u models.GroupUpdate)

	// ToggleExpanded flips the expanded flag.
	ToggleExpanded(id string)

	// Replace swaps in a new group list after validation and returns how
	// many were dropped.
	Replace(groups []models.Group) int

	// All returns a copy of the groups in order.
	All() []models.Group

	// Get returns the group with the given ID.
	Get(id string) (models.Group, bool)

	// Clear empties the store and resets the ID counter.
	Clear()
}
