package scoring

import (
	"cmp"
	"slices"
)

// Compare orders a before b (negative result) when a ranks higher:
//
//  1. higher total score;
//  2. more first-place placements, then more second-place, down to tenth;
//  3. higher jury score.
//
// It returns 0 when every signal is equal.
func Compare(a, b Result) int {
	if c := cmp.Compare(b.Total, a.Total); c != 0 {
		return c
	}
	for pos := range a.Placements {
		if c := cmp.Compare(b.Placements[pos], a.Placements[pos]); c != 0 {
			return c
		}
	}
	return cmp.Compare(b.Jury, a.Jury)
}

// Order returns a copy of results sorted by Compare and assigns ranks from 1.
// Entries that compare equal keep their input order.
func Order(results []Result) []Result {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, Compare)
	for i := range sorted {
		sorted[i].Rank = i + 1
	}
	return sorted
}
