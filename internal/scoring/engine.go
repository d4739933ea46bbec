package scoring

import "github.com/songcontest/songcontest-api/internal/domain"

type Source int

const (
	SourceJury Source = iota
	SourceTelevote
)

// Ballot is the scoring view of a Ranking or a Televote.
type Ballot struct {
	Source  Source
	Entries []uint
}

type Input struct {
	Submissions []domain.Submission
	Rankings    []domain.Ranking
	Televotes   []domain.Televote
	Votes       []domain.Vote
}

// Ballots pools rankings and televotes, jury first.
func (in Input) Ballots() []Ballot {
	out := make([]Ballot, 0, len(in.Rankings)+len(in.Televotes))
	for _, r := range in.Rankings {
		out = append(out, Ballot{Source: SourceJury, Entries: r.Entries})
	}
	for _, t := range in.Televotes {
		out = append(out, Ballot{Source: SourceTelevote, Entries: t.Entries})
	}
	return out
}

// Result is the score of one submission. Total pools jury and televote
// points; Jury and Televote keep the two sides apart for breakdown views.
// VotePoints sums legacy per-point votes and is not part of Total.
type Result struct {
	Submission domain.Submission            `json:"submission"`
	Total      int                          `json:"total"`
	Jury       int                          `json:"jury"`
	Televote   int                          `json:"televote"`
	VotePoints int                          `json:"vote_points"`
	Placements [domain.MaxBallotEntries]int `json:"placements"`
	Rank       int                          `json:"rank"`
}

// Score computes a Result for every non-rejected submission, in input order.
// Ballot entries that match no eligible submission are ignored.
func Score(in Input) []Result {
	eligible := domain.EligibleSubmissions(in.Submissions)
	results := make([]Result, len(eligible))
	index := make(map[uint]int, len(eligible))
	for i, s := range eligible {
		results[i].Submission = s
		index[s.ID] = i
	}

	for _, b := range in.Ballots() {
		for pos, id := range window(b.Entries) {
			i, ok := index[id]
			if !ok {
				continue
			}
			pts := PointsForPosition(pos)
			r := &results[i]
			r.Total += pts
			r.Placements[pos]++
			if b.Source == SourceJury {
				r.Jury += pts
			} else {
				r.Televote += pts
			}
		}
	}

	for _, v := range in.Votes {
		if i, ok := index[v.SubmissionID]; ok {
			results[i].VotePoints += v.Points
		}
	}

	return results
}

// Results scores the input and orders it with the tie-break rules.
func Results(in Input) []Result {
	return Order(Score(in))
}

// Updates converts ordered results into the per-submission writes that
// persist them.
func Updates(ordered []Result) []domain.ScoreUpdate {
	out := make([]domain.ScoreUpdate, len(ordered))
	for i, r := range ordered {
		out[i] = domain.ScoreUpdate{
			SubmissionID: r.Submission.ID,
			Score:        r.Total,
			Rank:         r.Rank,
		}
	}
	return out
}
