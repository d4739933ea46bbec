package response

import (
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
)

type Breakdown struct {
	Jury       int                          `json:"jury"`
	Televote   int                          `json:"televote"`
	VotePoints int                          `json:"vote_points"`
	Placements [domain.MaxBallotEntries]int `json:"placements"`
}

type Result struct {
	Rank       int               `json:"rank"`
	Total      int               `json:"total"`
	Submission domain.Submission `json:"submission"`
	Breakdown  *Breakdown        `json:"breakdown,omitempty"`
}

type EditionResults struct {
	Edition domain.Edition `json:"edition"`
	Results []Result       `json:"results"`
}

type Leaderboard struct {
	ContestID uint               `json:"contest_id"`
	Standings []scoring.Standing `json:"standings"`
}

type RunningOrder struct {
	EditionID   uint                `json:"edition_id"`
	Submissions []domain.Submission `json:"submissions"`
}

// NewResults keeps the scored order. The per-source breakdown is only filled
// in when asked for.
func NewResults(results []scoring.Result, breakdown bool) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		item := Result{
			Rank:       r.Rank,
			Total:      r.Total,
			Submission: r.Submission,
		}
		if breakdown {
			item.Breakdown = &Breakdown{
				Jury:       r.Jury,
				Televote:   r.Televote,
				VotePoints: r.VotePoints,
				Placements: r.Placements,
			}
		}
		out = append(out, item)
	}
	return out
}

func NewEditionResults(edition domain.Edition, results []scoring.Result, breakdown bool) EditionResults {
	return EditionResults{
		Edition: edition,
		Results: NewResults(results, breakdown),
	}
}

type Message struct {
	Message string `json:"message"`
}

type Health struct {
	Status string `json:"status"`
}
