// Package service exposes the payout session: the command surface the
// presentation layer drives, with payouts recomputed after every change.
package service

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/mmynk/payouts/internal/calculator"
	"github.com/mmynk/payouts/internal/csvcodec"
	"github.com/mmynk/payouts/internal/metrics"
	"github.com/mmynk/payouts/internal/models"
	"github.com/mmynk/payouts/internal/storage"
	"github.com/mmynk/payouts/internal/storage/memory"
)

// Session owns one in-memory distribution: recipients, groups and the total
// amount. Every command leaves a consistent snapshot with payouts already
// recomputed.
//
// A Session is not safe for concurrent use.
type Session struct {
	recipients storage.RecipientStore
	groups     storage.GroupStore
	decoder    *csvcodec.Decoder
	metrics    *metrics.Recorder

	total float64
	dist  calculator.Distribution
}

type config struct {
	metrics    *metrics.Recorder
	idPrefix   func() string
	groupColor func() string
	recipients storage.RecipientStore
	groups     storage.GroupStore
}

// Option configures a Session.
type Option func(*config)

// WithMetrics records session events on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) { c.metrics = r }
}

// WithImportBatchPrefix sets the generator for imported ID prefixes.
func WithImportBatchPrefix(fn func() string) Option {
	return func(c *config) { c.idPrefix = fn }
}

// WithGroupColorSource sets the color picker for new groups.
func WithGroupColorSource(fn func() string) Option {
	return func(c *config) { c.groupColor = fn }
}

// WithStores replaces the default in-memory stores.
func WithStores(recipients storage.RecipientStore, groups storage.GroupStore) Option {
	return func(c *config) {
		c.recipients = recipients
		c.groups = groups
	}
}

// NewSession creates an empty session with a total amount of 0.
func NewSession(opts ...Option) *Session {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.recipients == nil {
		c.recipients = memory.NewRecipientStore()
	}
	if c.groups == nil {
		c.groups = memory.NewGroupStore(memory.WithColorSource(c.groupColor))
	}

	s := &Session{
		recipients: c.recipients,
		groups:     c.groups,
		decoder:    csvcodec.NewDecoder(csvcodec.WithIDPrefix(c.idPrefix)),
		metrics:    c.metrics,
	}
	s.recompute()
	return s
}

// recompute runs the calculator over the full recipient list and writes
// payouts back. It runs after every committed change.
func (s *Session) recompute() {
	recipients := s.recipients.All()

	entries := make([]calculator.Entry, len(recipients))
	for i, r := range recipients {
		entries[i] = calculator.Entry{Fixed: r.IsFixed(), Value: r.Value}
	}
	s.dist = calculator.Distribute(s.total, entries)

	payouts := make(map[string]float64, len(recipients))
	for i, r := range recipients {
		payouts[r.ID] = s.dist.Payouts[i]
	}
	s.recipients.SetPayouts(payouts)
	s.metrics.SetRecipients(len(recipients))
}

// SetTotalAmount sets the amount to distribute, clamped to [0, 1e9].
func (s *Session) SetTotalAmount(amount float64) {
	s.total = models.Clamp(amount, 0, models.MaxTotalAmount)
	s.recompute()
}

// TotalAmount returns the amount being distributed.
func (s *Session) TotalAmount() float64 {
	return s.total
}

// AddRecipients adds count recipients to groupID ("" for ungrouped).
// Unknown groups add ungrouped. When limits truncate the request the
// recipients that fit are kept and the error wraps models.ErrCapacityExceeded.
func (s *Session) AddRecipients(count int, groupID string) (int, error) {
	if groupID != "" && !s.hasGroup(groupID) {
		slog.Warn("AddRecipients: unknown group, adding ungrouped", "group_id", groupID)
		groupID = ""
	}

	n, err := s.recipients.Add(count, groupID)
	if errors.Is(err, models.ErrCapacityExceeded) {
		s.metrics.Truncated()
	}
	s.recompute()
	return n, err
}

// RemoveRecipient deletes a recipient.
func (s *Session) RemoveRecipient(id string) {
	s.recipients.Remove(id)
	s.recompute()
}

// UpdateRecipient applies u to id, or to the whole selection when id is part
// of a multi-selection. A GroupID naming an unknown group is ignored.
func (s *Session) UpdateRecipient(id string, u models.RecipientUpdate) {
	if u.GroupID != nil && *u.GroupID != "" && !s.hasGroup(*u.GroupID) {
		slog.Warn("UpdateRecipient: ignoring unknown group", "recipient_id", id, "group_id", *u.GroupID)
		u.GroupID = nil
	}
	s.recipients.Update(id, u)
	s.recompute()
}

// ToggleSelection adds or removes id from the selection.
func (s *Session) ToggleSelection(id string) {
	s.recipients.ToggleSelection(id)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.recipients.ClearSelection()
}

// Selection returns the selected recipient IDs, sorted.
func (s *Session) Selection() []string {
	return s.recipients.Selection()
}

// MoveToGroup reassigns a recipient. An empty groupID ungroups it; an
// unknown one is a no-op.
func (s *Session) MoveToGroup(id, groupID string) {
	if groupID != "" && !s.hasGroup(groupID) {
		return
	}
	s.recipients.MoveToGroup(id, groupID)
}

// Reorder moves a recipient within a scope: the ungrouped list when scope is
// "", otherwise the members of group scope.
func (s *Session) Reorder(scope string, from, to int) {
	s.recipients.Reorder(scope, from, to)
}

// SetRecipients replaces all recipients. Malformed records are dropped and
// logged; the number dropped is returned. Group references to unknown groups
// are cleared.
func (s *Session) SetRecipients(recipients []models.Recipient) int {
	dropped := s.recipients.Replace(recipients)
	s.metrics.Dropped("recipient", dropped)
	s.clearDanglingGroups()
	s.recompute()
	return dropped
}

// AddGroup creates a group.
func (s *Session) AddGroup() models.Group {
	g := s.groups.Add()
	slog.Debug("Group added", "group_id", g.ID)
	return g
}

// RemoveGroup deletes a group and ungroups its members.
func (s *Session) RemoveGroup(id string) {
	if !s.groups.Remove(id) {
		return
	}
	s.recipients.Ungroup(id)
	slog.Debug("Group removed", "group_id", id)
}

// UpdateGroup applies u to a group.
func (s *Session) UpdateGroup(id string, u models.GroupUpdate) {
	s.groups.Update(id, u)
}

// ToggleExpanded flips a group's expanded flag.
func (s *Session) ToggleExpanded(id string) {
	s.groups.ToggleExpanded(id)
}

// SetGroups replaces all groups and returns how many were dropped.
// Members of groups that no longer exist are ungrouped.
func (s *Session) SetGroups(groups []models.Group) int {
	dropped := s.groups.Replace(groups)
	s.metrics.Dropped("group", dropped)
	s.clearDanglingGroups()
	return dropped
}

// Clear removes all recipients and groups. The total amount is kept.
func (s *Session) Clear() {
	s.recipients.Clear()
	s.groups.Clear()
	s.recompute()
}

// Recipients returns the recipients with current payouts.
func (s *Session) Recipients() []models.Recipient {
	return s.recipients.All()
}

// Recipient returns one recipient.
func (s *Session) Recipient(id string) (models.Recipient, bool) {
	return s.recipients.Get(id)
}

// Groups returns the groups.
func (s *Session) Groups() []models.Group {
	return s.groups.All()
}

// Summary returns the latest distribution.
func (s *Session) Summary() calculator.Distribution {
	d := s.dist
	d.Payouts = slices.Clone(d.Payouts)
	return d
}

// GroupTotals returns payout totals per group, ungrouped first when present,
// with empty groups included.
func (s *Session) GroupTotals() []calculator.GroupTotal {
	recipients := s.recipients.All()
	payouts := make([]calculator.GroupedPayout, len(recipients))
	for i, r := range recipients {
		payouts[i] = calculator.GroupedPayout{GroupID: r.GroupID, Payout: r.Payout}
	}

	groups := s.groups.All()
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return calculator.CalculateGroupTotals(s.total, payouts, ids)
}

// Snapshot returns the full current state.
func (s *Session) Snapshot() models.Snapshot {
	return models.Snapshot{
		Recipients:  s.recipients.All(),
		Groups:      s.groups.All(),
		TotalAmount: s.total,
	}
}

func (s *Session) hasGroup(id string) bool {
	_, ok := s.groups.Get(id)
	return ok
}

// clearDanglingGroups ungroups recipients whose group does not exist.
func (s *Session) clearDanglingGroups() {
	for _, r := range s.recipients.All() {
		if r.GroupID != "" && !s.hasGroup(r.GroupID) {
			s.recipients.MoveToGroup(r.ID, "")
		}
	}
}
