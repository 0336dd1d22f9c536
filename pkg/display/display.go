// Package display formats amounts for people: grouped digits, two decimals.
// It is for rendering only; the CSV codec has its own fixed format.
package display

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency formats v as dollars, e.g. "$1,234.50" or "-$5.00".
func Currency(v float64) string {
	v = finite(v)
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

// Percent formats part as a percentage of total, or "0.00%" when total <= 0.
func Percent(part, total float64) string {
	if !(total > 0) || math.IsInf(total, 1) {
		return printer.Sprintf("%.2f%%", 0.0)
	}
	return printer.Sprintf("%.2f%%", finite(part)/total*100)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
