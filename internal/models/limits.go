package models

import (
	"errors"
	"math"
)

const (
	// MaxRecipients is the ceiling on live recipients in a session.
	MaxRecipients = 1000

	// MaxAddPerCall is the most recipients a single add creates.
	MaxAddPerCall = 100

	// MaxTotalAmount bounds the total amount and fixed-amount values.
	MaxTotalAmount = 1_000_000_000
)

// Error kinds surfaced to the collaborator. None of them is fatal.
var (
	// ErrValidationDropped marks a record filtered out by validation.
	ErrValidationDropped = errors.New("record failed validation")

	// ErrCapacityExceeded marks a truncated add. The recipients that fit were added.
	ErrCapacityExceeded = errors.New("recipient capacity exceeded")

	// ErrImportFormat marks a file that cannot be imported as-is.
	ErrImportFormat = errors.New("invalid import format")

	// ErrImportIO marks a file that could not be read.
	ErrImportIO = errors.New("import read failed")

	// ErrInvalidInput guards against deeply malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// SanitizeValue coerces NaN, infinities and negatives to 0.
func SanitizeValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
