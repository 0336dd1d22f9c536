package calculator

// GroupedPayout is a computed payout with the group it belongs to.
type GroupedPayout struct {
	GroupID string // Empty for ungrouped recipients
	Payout  float64
}

// GroupTotal aggregates payouts for one group.
type GroupTotal struct {
	GroupID string // Empty for the ungrouped bucket
	Members int
	Payout  float64
	Share   float64 // Fraction of the total amount, 0 when total <= 0
}

// CalculateGroupTotals aggregates payouts per group, in order of first
// appearance. Groups listed in groupIDs that have no members are included with
// zero totals, after the ones that appear in payouts.
//
// Algorithm:
// - For each payout: add it to its group's bucket and count the member
// - For each bucket: share = payout / total (total > 0 only)
func CalculateGroupTotals(total float64, payouts []GroupedPayout, groupIDs []string) []GroupTotal {
	index := make(map[string]int)
	var totals []GroupTotal

	bucket := func(groupID string) *GroupTotal {
		i, ok := index[groupID]
		if !ok {
			i = len(totals)
			index[groupID] = i
			totals = append(totals, GroupTotal{GroupID: groupID})
		}
		return &totals[i]
	}

	for _, p := range payouts {
		b := bucket(p.GroupID)
		b.Members++
		b.Payout += p.Payout
	}

	for _, id := range groupIDs {
		bucket(id)
	}

	if total > 0 {
		for i := range totals {
			totals[i].Share = totals[i].Payout / total
		}
	}

	return totals
}
