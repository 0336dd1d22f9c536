package memory

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/mmynk/payouts/internal/models"
	"github.com/mmynk/payouts/internal/storage"
	"github.com/mmynk/payouts/internal/validate"
)

// Ensure GroupStore implements storage.GroupStore
var _ storage.GroupStore = (*GroupStore)(nil)

const groupIDPrefix = "group-"

// GroupStore owns the group list.
type GroupStore struct {
	groups []models.Group
	lastID int
	color  func() string
}

// GroupOption configures a GroupStore.
type GroupOption func(*GroupStore)

// WithColorSource replaces the random palette pick used for new groups.
func WithColorSource(fn func() string) GroupOption {
	return func(s *GroupStore) {
		if fn != nil {
			s.color = fn
		}
	}
}

// NewGroupStore creates an empty GroupStore.
func NewGroupStore(opts ...GroupOption) *GroupStore {
	s := &GroupStore{color: randomPaletteColor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomPaletteColor() string {
	return models.PaletteColor(rand.IntN(len(models.Palette())))
}

// Add creates an expanded group named "Group N".
func (s *GroupStore) Add() models.Group {
	id := s.nextID()
	g := models.Group{
		ID:       id,
		Name:     fmt.Sprintf("Group %d", len(s.groups)+1),
		Color:    s.color(),
		Expanded: true,
	}
	s.groups = append(s.groups, g)
	return g
}

func (s *GroupStore) nextID() string {
	for {
		s.lastID++
		id := groupIDPrefix + strconv.Itoa(s.lastID)
		if s.index(id) < 0 {
			return id
		}
	}
}

// Remove deletes the group and reports whether it existed.
func (s *GroupStore) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	return true
}

// Update applies u to the group. Invalid colors are ignored.
func (s *GroupStore) Update(id string, u models.GroupUpdate) {
	i := s.index(id)
	if i < 0 {
		return
	}
	g := &s.groups[i]
	if u.Name != nil {
		g.Name = models.StripTags(*u.Name)
	}
	if u.Color != nil && validate.Color(*u.Color) {
		g.Color = *u.Color
	}
	if u.Expanded != nil {
		g.Expanded = *u.Expanded
	}
}

// ToggleExpanded flips the group's expanded flag.
func (s *GroupStore) ToggleExpanded(id string) {
	if i := s.index(id); i >= 0 {
		s.groups[i].Expanded = !s.groups[i].Expanded
	}
}

// Replace swaps in groups after validation. Groups without a color get the
// one derived from their ID. The ID counter moves past any "group-N" IDs so
// later adds do not collide.
func (s *GroupStore) Replace(groups []models.Group) int {
	kept, dropped := validate.FilterGroups(groups)
	for i := range kept {
		g := &kept[i]
		if g.Color == "" {
			g.Color = models.ColorForID(g.ID)
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(g.ID, groupIDPrefix)); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
	s.groups = kept
	return dropped
}

// All returns a copy of the groups.
func (s *GroupStore) All() []models.Group {
	return slices.Clone(s.groups)
}

// Get returns the group with the given ID.
func (s *GroupStore) Get(id string) (models.Group, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Group{}, false
	}
	return s.groups[i], true
}

// Clear empties the store and resets the ID counter.
func (s *GroupStore) Clear() {
	s.groups = nil
	s.lastID = 0
}

func (s *GroupStore) index(id string) int {
	return slices.IndexFunc(s.groups, func(g models.Group) bool {
		return g.ID == id
	})
}
