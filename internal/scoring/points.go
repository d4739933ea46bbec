// Package scoring turns ranked ballots into edition results and contest
// leaderboards. Everything here is pure: callers load the records and
// persist the outcome.
package scoring

import "github.com/songcontest/songcontest-api/internal/domain"

// pointsByPosition is indexed by zero-based ballot position.
var pointsByPosition = [domain.MaxBallotEntries]int{12, 10, 8, 7, 6, 5, 4, 3, 2, 1}

// PointsForPosition returns the points a single ballot awards to the entry
// at pos. Positions outside the table, including "not ranked" (-1), score 0.
func PointsForPosition(pos int) int {
	if pos < 0 || pos >= len(pointsByPosition) {
		return 0
	}
	return pointsByPosition[pos]
}

// IsAwardablePoints reports whether p is one of the values a ballot can
// award. Used to validate legacy per-point votes.
func IsAwardablePoints(p int) bool {
	for _, v := range pointsByPosition {
		if v == p {
			return true
		}
	}
	return false
}

// PositionOf returns the index of id in the scoring window of entries, or
// -1 if it is absent or placed past the last scoring position.
func PositionOf(entries []uint, id uint) int {
	for i, e := range window(entries) {
		if e == id {
			return i
		}
	}
	return -1
}

func window(entries []uint) []uint {
	if len(entries) > domain.MaxBallotEntries {
		return entries[:domain.MaxBallotEntries]
	}
	return entries
}
