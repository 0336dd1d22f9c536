// Package validate holds the structural checks a record must pass before it
// enters a store. Checks are pure; Filter is the only function that logs.
package validate

import (
	"fmt"
	"log/slog"

	"github.com/mmynk/payouts/internal/models"
)

// Color reports whether c is a "#rrggbb" color or a palette entry.
func Color(c string) bool {
	return models.IsHexColor(c) || models.InPalette(c)
}

// Recipient checks a candidate's structure. The returned error wraps
// models.ErrValidationDropped.
//
// An empty Kind is accepted (the store defaults it to share). A NaN Value is
// accepted here and coerced to 0 by the store.
func Recipient(r models.Recipient) error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", models.ErrValidationDropped)
	}
	if r.Kind != "" && !r.Kind.Valid() {
		return fmt.Errorf("%w: recipient %s has unknown kind %q", models.ErrValidationDropped, r.ID, r.Kind)
	}
	if r.Color != "" && !Color(r.Color) {
		return fmt.Errorf("%w: recipient %s has invalid color %q", models.ErrValidationDropped, r.ID, r.Color)
	}
	return nil
}

// IsValidRecipient is the boolean form of Recipient.
func IsValidRecipient(r models.Recipient) bool {
	return Recipient(r) == nil
}

// Group checks a candidate group's structure.
func Group(g models.Group) error {
	if g.ID == "" {
		return fmt.Errorf("%w: empty group id", models.ErrValidationDropped)
	}
	if g.Color != "" && !Color(g.Color) {
		return fmt.Errorf("%w: group %s has invalid color %q", models.ErrValidationDropped, g.ID, g.Color)
	}
	return nil
}

// FilterRecipients keeps the well-formed recipients with unique IDs, in order.
// Each drop is logged; dropping never fails the call.
func FilterRecipients(candidates []models.Recipient) ([]models.Recipient, int) {
	kept := make([]models.Recipient, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	dropped := 0

	for i, r := range candidates {
		err := Recipient(r)
		if err == nil {
			if _, dup := seen[r.ID]; dup {
				err = fmt.Errorf("%w: duplicate id %s", models.ErrValidationDropped, r.ID)
			}
		}
		if err != nil {
			slog.Warn("Dropping invalid recipient", "index", i, "id", r.ID, "error", err)
			dropped++
			continue
		}
		seen[r.ID] = struct{}{}
		kept = append(kept, r)
	}

	return kept, dropped
}

// FilterGroups is FilterRecipients for groups.
func FilterGroups(candidates []models.Group) ([]models.Group, int) {
	kept := make([]models.Group, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	dropped := 0

	for i, g := range candidates {
		err := Group(g)
		if err == nil {
			if _, dup := seen[g.ID]; dup {
				err = fmt.Errorf("%w: duplicate group id %s", models.ErrValidationDropped, g.ID)
			}
		}
		if err != nil {
			slog.Warn("Dropping invalid group", "index", i, "id", g.ID, "error", err)
			dropped++
			continue
		}
		seen[g.ID] = struct{}{}
		kept = append(kept, g)
	}

	return kept, dropped
}
