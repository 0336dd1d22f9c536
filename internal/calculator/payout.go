package calculator

import "math"

// Entry is a recipient with the minimal information needed to compute payouts.
type Entry struct {
	Fixed bool
	Value float64
}

// Distribution is the result of distributing a total amount.
type Distribution struct {
	// Payouts are aligned with the entries passed to Distribute.
	Payouts []float64

	FixedSum         float64
	RemainingAmount  float64 // Left for non-fixed entries after fixed amounts
	TotalShareWeight float64 // Sum of non-fixed values
	ValuePerShare    float64 // RemainingAmount / TotalShareWeight
}

// PayoutSum returns the sum of all payouts. It can exceed the total amount
// when fixed amounts alone exceed it.
func (d Distribution) PayoutSum() float64 {
	var sum float64
	for _, p := range d.Payouts {
		sum += p
	}
	return sum
}

// Distribute computes every entry's payout from the total amount.
// Based on the algorithm:
//
//	remaining       = max(0, total - Σ fixed values)
//	value_per_share = remaining / Σ non-fixed values
//	payout          = value (fixed) or value × value_per_share (non-fixed)
//
// Fixed entries are paid their value even when that exceeds the total; the
// shortfall is not spread back over them. Percentage and share entries are
// both non-fixed and weighted by raw value.
//
// Non-positive, NaN or infinite totals pay nothing. NaN, infinite and negative values
// count as 0. The result depends only on the inputs.
func Distribute(total float64, entries []Entry) Distribution {
	d := Distribution{Payouts: make([]float64, len(entries))}

	if !(total > 0) || math.IsInf(total, 1) {
		return d
	}

	for _, e := range entries {
		v := weight(e.Value)
		if e.Fixed {
			d.FixedSum += v
		} else {
			d.TotalShareWeight += v
		}
	}

	d.RemainingAmount = math.Max(0, total-d.FixedSum)
	if d.TotalShareWeight > 0 {
		d.ValuePerShare = d.RemainingAmount / d.TotalShareWeight
	}

	for i, e := range entries {
		v := weight(e.Value)
		if e.Fixed {
			d.Payouts[i] = v
		} else {
			d.Payouts[i] = v * d.ValuePerShare
		}
	}

	return d
}

func weight(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
