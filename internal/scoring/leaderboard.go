package scoring

import (
	"cmp"
	"slices"
)

// EditionResults are the ordered results of one scored edition.
type EditionResults struct {
	EditionID uint
	Results   []Result
}

// Standing is one participant's line in a contest leaderboard.
type Standing struct {
	UserID   string `json:"user_id"`
	Total    int    `json:"total"`
	Entries  int    `json:"entries"`
	Wins     int    `json:"wins"`
	BestRank int    `json:"best_rank"`
	Position int    `json:"position"`
}

// ContestLeaderboard sums every participant's scores across all their
// non-rejected submissions in the given editions. Ties on total fall back to
// more edition wins, then best single placement, then user id.
func ContestLeaderboard(editions []EditionResults) []Standing {
	byUser := make(map[string]*Standing)
	for _, ed := range editions {
		for _, r := range ed.Results {
			if !r.Submission.Eligible() {
				continue
			}
			s, ok := byUser[r.Submission.UserID]
			if !ok {
				s = &Standing{UserID: r.Submission.UserID}
				byUser[r.Submission.UserID] = s
			}
			s.Total += r.Total
			s.Entries++
			if r.Rank == 1 {
				s.Wins++
			}
			if r.Rank > 0 && (s.BestRank == 0 || r.Rank < s.BestRank) {
				s.BestRank = r.Rank
			}
		}
	}

	out := make([]Standing, 0, len(byUser))
	for _, s := range byUser {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Standing) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(rankKey(a.BestRank), rankKey(b.BestRank)); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// rankKey sorts "no rank" after every real rank.
func rankKey(rank int) int {
	if rank <= 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}
