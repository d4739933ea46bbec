package domain

import "time"

type Submission struct {
	ID           uint      `json:"id"`
	EditionID    uint      `json:"edition_id"`
	UserID       string    `json:"user_id"`
	SongTitle    string    `json:"song_title"`
	Artist       string    `json:"artist"`
	TrackURL     string    `json:"track_url,omitempty"`
	Country      string    `json:"country,omitempty"`
	Flag         string    `json:"flag,omitempty"`
	RunningOrder *int      `json:"running_order,omitempty"`
	Rejected     bool      `json:"rejected"`
	Score        *int      `json:"score,omitempty"`
	Rank         *int      `json:"rank,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Eligible reports whether the submission takes part in running order and
// scoring.
func (s Submission) Eligible() bool {
	return !s.Rejected
}

// EligibleSubmissions keeps the non-rejected submissions, preserving order.
func EligibleSubmissions(subs []Submission) []Submission {
	out := make([]Submission, 0, len(subs))
	for _, s := range subs {
		if s.Eligible() {
			out = append(out, s)
		}
	}
	return out
}

// ScoreUpdate is the persisted outcome of scoring one submission.
type ScoreUpdate struct {
	SubmissionID uint
	Score        int
	Rank         int
}
