// Package memory provides in-memory implementations of the storage interfaces.
// Stores are not safe for concurrent use; a session drives them from one
// goroutine and every call leaves them consistent.
package memory

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/mmynk/payouts/internal/models"
	"github.com/mmynk/payouts/internal/storage"
	"github.com/mmynk/payouts/internal/validate"
)

// Ensure RecipientStore implements storage.RecipientStore
var _ storage.RecipientStore = (*RecipientStore)(nil)

// RecipientStore owns the recipient list and the multi-selection.
type RecipientStore struct {
	recipients []models.Recipient
	selected   map[string]struct{}

	// lastID is the highest numeric ID ever issued. It only moves forward,
	// except on Clear, so removed IDs are never reissued.
	lastID int
}

// NewRecipientStore creates an empty RecipientStore.
func NewRecipientStore() *RecipientStore {
	return &RecipientStore{selected: make(map[string]struct{})}
}

// Add creates up to count share recipients with value 1.
// Names continue from the number of recipients already present.
func (s *RecipientStore) Add(count int, groupID string) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	n := min(count, models.MaxAddPerCall)
	n = min(n, max(models.MaxRecipients-len(s.recipients), 0))

	existing := len(s.recipients)
	for i := range n {
		s.lastID++
		s.recipients = append(s.recipients, models.Recipient{
			ID:      strconv.Itoa(s.lastID),
			Name:    fmt.Sprintf("Recipient %d", existing+i+1),
			Kind:    models.KindShare,
			Value:   1,
			GroupID: groupID,
		})
	}

	if n < count {
		slog.Warn("Recipient add truncated",
			"requested", count,
			"added", n,
			"live", len(s.recipients),
		)
		return n, fmt.Errorf("%w: requested %d, added %d (limits: %d per add, %d total)",
			models.ErrCapacityExceeded, count, n, models.MaxAddPerCall, models.MaxRecipients)
	}

	slog.Debug("Recipients added", "count", n, "group_id", groupID)
	return n, nil
}

// Remove deletes the recipient with the given ID.
func (s *RecipientStore) Remove(id string) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.recipients = slices.Delete(s.recipients, i, i+1)
	delete(s.selected, id)
}

// Update applies u to the edit scope of id: every selected recipient when id
// is part of a multi-selection, otherwise id alone.
func (s *RecipientStore) Update(id string, u models.RecipientUpdate) {
	for _, target := range s.editScope(id) {
		i := s.index(target)
		if i < 0 {
			continue
		}
		applyUpdate(&s.recipients[i], u)
	}
}

// editScope resolves the recipients an update for id applies to.
func (s *RecipientStore) editScope(id string) []string {
	if _, ok := s.selected[id]; ok && len(s.selected) > 1 {
		return s.Selection()
	}
	return []string{id}
}

func applyUpdate(r *models.Recipient, u models.RecipientUpdate) {
	if u.Name != nil {
		r.Name = models.StripTags(*u.Name)
	}
	if u.Kind != nil && u.Kind.Valid() {
		r.Kind = *u.Kind
	}
	if u.Value != nil {
		r.Value = models.SanitizeValue(*u.Value)
	}
	if u.Color != nil {
		switch c := *u.Color; {
		case c == "":
			r.Color = ""
		case validate.Color(c):
			r.Color = c
		default:
			slog.Debug("Ignoring invalid color", "recipient_id", r.ID, "color", c)
		}
	}
	if u.GroupID != nil {
		r.GroupID = *u.GroupID
	}
}

// ToggleSelection adds id to the selection, or removes it if present.
// Unknown IDs are ignored.
func (s *RecipientStore) ToggleSelection(id string) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	if s.index(id) >= 0 {
		s.selected[id] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (s *RecipientStore) ClearSelection() {
	clear(s.selected)
}

// Selection returns the selected IDs in sorted order.
func (s *RecipientStore) Selection() []string {
	return slices.Sorted(maps.Keys(s.selected))
}

// MoveToGroup reassigns the recipient's group.
func (s *RecipientStore) MoveToGroup(id, groupID string) {
	if i := s.index(id); i >= 0 {
		s.recipients[i].GroupID = groupID
	}
}

// Reorder moves an item within its scope. Other scopes keep their positions
// in the overall list.
func (s *RecipientStore) Reorder(scope string, from, to int) {
	var positions []int
	for i, r := range s.recipients {
		if r.GroupID == scope {
			positions = append(positions, i)
		}
	}
	if from < 0 || from >= len(positions) || to < 0 || to >= len(positions) || from == to {
		return
	}

	scoped := make([]models.Recipient, len(positions))
	for i, p := range positions {
		scoped[i] = s.recipients[p]
	}
	moved := scoped[from]
	scoped = slices.Delete(scoped, from, from+1)
	scoped = slices.Insert(scoped, to, moved)

	for i, p := range positions {
		s.recipients[p] = scoped[i]
	}
}

// Ungroup clears the group reference on every member of groupID.
func (s *RecipientStore) Ungroup(groupID string) {
	if groupID == "" {
		return
	}
	for i := range s.recipients {
		if s.recipients[i].GroupID == groupID {
			s.recipients[i].GroupID = ""
		}
	}
}

// Replace swaps in recipients after validation. Names are stripped, values
// coerced, kinds defaulted to share and payouts zeroed. Records past
// models.MaxRecipients are dropped.
func (s *RecipientStore) Replace(recipients []models.Recipient) int {
	kept, dropped := validate.FilterRecipients(recipients)
	if len(kept) > models.MaxRecipients {
		slog.Warn("Recipient list truncated", "received", len(kept), "max", models.MaxRecipients)
		dropped += len(kept) - models.MaxRecipients
		kept = kept[:models.MaxRecipients]
	}

	for i := range kept {
		r := &kept[i]
		r.Name = models.StripTags(r.Name)
		r.Value = models.SanitizeValue(r.Value)
		if r.Kind == "" {
			r.Kind = models.KindShare
		}
		r.Payout = 0
		if n, err := strconv.Atoi(r.ID); err == nil && n > s.lastID {
			s.lastID = n
		}
	}

	s.recipients = kept
	clear(s.selected)
	return dropped
}

// SetPayouts writes payouts by ID. Recipients missing from the map get 0.
func (s *RecipientStore) SetPayouts(payouts map[string]float64) {
	for i := range s.recipients {
		s.recipients[i].Payout = payouts[s.recipients[i].ID]
	}
}

// All returns a copy of the recipients.
func (s *RecipientStore) All() []models.Recipient {
	return slices.Clone(s.recipients)
}

// Get returns the recipient with the given ID.
func (s *RecipientStore) Get(id string) (models.Recipient, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Recipient{}, false
	}
	return s.recipients[i], true
}

// Len returns the number of live recipients.
func (s *RecipientStore) Len() int {
	return len(s.recipients)
}

// Clear empties the store and resets the ID counter.
func (s *RecipientStore) Clear() {
	s.recipients = nil
	clear(s.selected)
	s.lastID = 0
}

func (s *RecipientStore) index(id string) int {
	return slices.IndexFunc(s.recipients, func(r models.Recipient) bool {
		return r.ID == id
	})
}
