// Package csvcodec converts a snapshot to and from the CSV interchange format.
//
// Layout:
//
//	Name,Type,Value,Payout ($),Percentage (%),Color,GroupID
//	"Alice",fixed,200,200.00,20.00,#3B82F6,group-1
//	...
//	"Total",,,"1000.00","100.00",
//	"__TOTAL_PAYOUT__",,"1000.00",,
//
//	__GROUP_DATA__,ID,Name,Color,Expanded
//	"__GROUP_DATA__","group-1","Staff","#10B981",true
//
// The totals row is for people. The __TOTAL_PAYOUT__ row carries the total
// amount back on import. The group section is written only when groups exist.
package csvcodec

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/payouts/internal/models"
)

const (
	totalMarker = "__TOTAL_PAYOUT__"
	groupMarker = "__GROUP_DATA__"

	header      = "Name,Type,Value,Payout ($),Percentage (%),Color,GroupID"
	groupHeader = groupMarker + ",ID,Name,Color,Expanded"
)

var hundred = decimal.NewFromInt(100)

// Serialize renders the snapshot as CSV text.
func Serialize(snap models.Snapshot) string {
	var b strings.Builder

	b.WriteString(header)
	for _, r := range snap.Recipients {
		b.WriteByte('\n')
		writeRecipient(&b, r, snap.TotalAmount)
	}

	total := money(snap.TotalAmount)
	b.WriteString("\n" + quote("Total") + ",,," + quote(total) + "," + quote("100.00") + ",")
	b.WriteString("\n" + quote(totalMarker) + ",," + quote(total) + ",,")

	if len(snap.Groups) > 0 {
		b.WriteString("\n\n" + groupHeader)
		for _, g := range snap.Groups {
			b.WriteString("\n" + strings.Join([]string{
				quote(groupMarker),
				quote(g.ID),
				quote(g.Name),
				quote(g.Color),
				strconv.FormatBool(g.Expanded),
			}, ","))
		}
	}

	return b.String()
}

// Encode writes the CSV text for snap to w.
func Encode(w io.Writer, snap models.Snapshot) error {
	_, err := io.WriteString(w, Serialize(snap))
	return err
}

func writeRecipient(b *strings.Builder, r models.Recipient, total float64) {
	b.WriteString(strings.Join([]string{
		quote(r.Name),
		field(string(r.Kind)),
		strconv.FormatFloat(r.Value, 'f', -1, 64),
		money(r.Payout),
		percentOf(r.Payout, total),
		field(r.ResolvedColor()),
		field(r.GroupID),
	}, ","))
}

// money formats v with two decimals.
func money(v float64) string {
	return decimal.NewFromFloat(finite(v)).StringFixed(2)
}

// percentOf formats part/total*100 with two decimals, or "0" for no total.
func percentOf(part, total float64) string {
	if !(total > 0) || math.IsInf(total, 1) {
		return "0"
	}
	d := decimal.NewFromFloat(finite(part)).Div(decimal.NewFromFloat(finite(total))).Mul(hundred)
	return d.StringFixed(2)
}

// finite maps NaN and infinities to 0; decimal cannot represent them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// quote always quotes s, doubling embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// field quotes s only when it would otherwise break the row.
func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
