package models

// Group represents a named collection of recipients.
// Groups are organizational only and never affect distribution math.
type Group struct {
	// ID is the unique identifier for the group (e.g., "group-3").
	ID string

	// Name is the display name of the group (e.g., "Group 1", "Contractors").
	Name string

	// Color is cosmetic, drawn at random from the palette at creation.
	Color string

	// Expanded is UI state, kept on the record so it survives a CSV round trip.
	Expanded bool
}

// GroupUpdate is a partial update for a Group. Nil fields are left untouched.
type GroupUpdate struct {
	Name     *string
	Color    *string
	Expanded *bool
}
