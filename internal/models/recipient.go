package models

import "strings"

// Kind is the recipient type.
type Kind string

const (
	// KindFixedAmount pays Value verbatim, before anything else is distributed.
	KindFixedAmount Kind = "fixed"

	// KindPercentage is a percentage recipient. The calculator weights it
	// exactly like a share; only the CSV percentage column reads it as percent.
	KindPercentage Kind = "percentage"

	// KindShare is paid in proportion to its weight among all non-fixed recipients.
	KindShare Kind = "share"
)

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFixedAmount, KindPercentage, KindShare:
		return true
	}
	return false
}

// ParseKind maps a free-form tag to a Kind. Unknown tags return false.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fixedamount", "fixed amount", "fixed_amount":
		return KindFixedAmount, true
	case "percentage", "percent", "%":
		return KindPercentage, true
	case "share", "shares":
		return KindShare, true
	}
	return "", false
}

// MaxValue returns the upper bound accepted for a value of this kind on import.
func (k Kind) MaxValue() float64 {
	switch k {
	case KindFixedAmount:
		return MaxTotalAmount
	case KindPercentage:
		return 100
	default:
		return 1_000_000
	}
}

// Recipient represents an entity entitled to a portion of the total amount.
type Recipient struct {
	// ID is unique within the session. IDs issued by the store are decimal
	// counters; imported IDs carry a batch prefix ("import-1a2b3c4d-3").
	ID string

	// Name is free text with tag-like substrings ("<...>") stripped.
	Name string

	// Kind selects how Value is interpreted.
	Kind Kind

	// Value is dollars, percentage points or share weight depending on Kind.
	// Never negative and never NaN.
	Value float64

	// Payout is derived by the calculator. Callers never set it.
	Payout float64

	// Color is optional: a "#rrggbb" value or a palette entry. When empty the
	// color is derived from ID (see ResolvedColor).
	Color string

	// GroupID references a Group. Empty means ungrouped.
	GroupID string
}

// IsFixed reports whether the recipient is paid a fixed amount.
func (r Recipient) IsFixed() bool {
	return r.Kind == KindFixedAmount
}

// ResolvedColor returns the explicit color or the one derived from the ID.
func (r Recipient) ResolvedColor() string {
	if r.Color != "" {
		return r.Color
	}
	return ColorForID(r.ID)
}

// RecipientUpdate is a partial update for a Recipient. Nil fields are left
// untouched. An empty Color or GroupID clears the field.
type RecipientUpdate struct {
	Name    *string
	Kind    *Kind
	Value   *float64
	Color   *string
	GroupID *string
}

// Snapshot is the full state at one instant, the unit exchanged by the CSV codec.
type Snapshot struct {
	Recipients  []Recipient
	Groups      []Group
	TotalAmount float64
}
