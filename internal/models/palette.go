package models

import (
	"regexp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// palette is the fixed color table. It must never be mutated.
var palette = [...]string{
	"#3B82F6", // blue
	"#10B981", // emerald
	"#F59E0B", // amber
	"#EF4444", // red
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F97316", // orange
	"#6366F1", // indigo
	"#84CC16", // lime
	"#06B6D4", // cyan
	"#A855F7", // purple
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Palette returns a copy of the fixed color table.
func Palette() []string {
	return slices.Clone(palette[:])
}

// PaletteColor returns the palette entry at i, wrapping around.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// InPalette reports whether c is a palette entry (case-insensitive).
func InPalette(c string) bool {
	return slices.ContainsFunc(palette[:], func(p string) bool {
		return strings.EqualFold(p, c)
	})
}

// IsHexColor reports whether c looks like "#rrggbb".
func IsHexColor(c string) bool {
	return hexColorPattern.MatchString(c)
}

// ColorForID derives a stable palette color from a recipient ID.
func ColorForID(id string) string {
	return palette[xxhash.Sum64String(id)%uint64(len(palette))]
}
