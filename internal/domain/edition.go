package domain

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseUpcoming   Phase = "UPCOMING"
	PhaseSubmission Phase = "SUBMISSION"
	PhaseVoting     Phase = "VOTING"
	PhaseResults    Phase = "RESULTS"
	PhaseComplete   Phase = "COMPLETE"
)

var phaseOrder = []Phase{PhaseUpcoming, PhaseSubmission, PhaseVoting, PhaseResults, PhaseComplete}

func ParsePhase(s string) (Phase, error) {
	for _, p := range phaseOrder {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown phase %q", ErrInvalidInput, s)
}

func (p Phase) index() int {
	for i, q := range phaseOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p. COMPLETE has no successor.
func (p Phase) Next() (Phase, bool) {
	i := p.index()
	if i < 0 || i == len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[i+1], true
}

// AtLeast reports whether p is q or any later phase.
func (p Phase) AtLeast(q Phase) bool {
	return p.index() >= q.index() && q.index() >= 0
}

// CanTransition allows only single forward steps.
func CanTransition(from, to Phase) bool {
	next, ok := from.Next()
	return ok && next == to
}

type ClosePolicy string

const (
	ClosePolicySpecificDate ClosePolicy = "specificDate"
	ClosePolicyAllEntries   ClosePolicy = "allEntries"
	ClosePolicyManually     ClosePolicy = "manually"
)

func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch p := ClosePolicy(s); p {
	case ClosePolicySpecificDate, ClosePolicyAllEntries, ClosePolicyManually:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown close policy %q", ErrInvalidInput, s)
}

type Edition struct {
	ID                 uint        `json:"id"`
	ContestID          uint        `json:"contest_id"`
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	SubmissionsOpen    *time.Time  `json:"submissions_open,omitempty"`
	SubmissionDeadline *time.Time  `json:"submission_deadline,omitempty"`
	VotingDeadline     *time.Time  `json:"voting_deadline,omitempty"`
	SubmissionClose    ClosePolicy `json:"submission_close"`
	VotingClose        ClosePolicy `json:"voting_close"`
	Phase              Phase       `json:"phase"`
	ResultsRevealed    bool        `json:"results_revealed"`
	PlaylistURL        string      `json:"playlist_url,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// EditionCounts are the aggregates the automatic transitions depend on.
type EditionCounts struct {
	Participants int
	Entries      int // non-rejected submissions
	Ballots      int // finalized rankings
}

type TransitionReason string

const (
	ReasonHostAction         TransitionReason = "host_action"
	ReasonSubmissionsOpened  TransitionReason = "submissions_open_reached"
	ReasonSubmissionDeadline TransitionReason = "submission_deadline_reached"
	ReasonAllEntriesIn       TransitionReason = "all_entries_in"
	ReasonVotingDeadline     TransitionReason = "voting_deadline_reached"
	ReasonAllBallotsIn       TransitionReason = "all_ballots_in"
)

// DueTransition evaluates whether the edition should advance on its own at
// now. It never proposes RESULTS -> COMPLETE, which is host-only.
func (e Edition) DueTransition(c EditionCounts, now time.Time) (Phase, TransitionReason, bool) {
	switch e.Phase {
	case PhaseUpcoming:
		if e.SubmissionClose != ClosePolicyManually && reached(e.SubmissionsOpen, now) {
			return PhaseSubmission, ReasonSubmissionsOpened, true
		}
	case PhaseSubmission:
		switch e.SubmissionClose {
		case ClosePolicySpecificDate:
			if reached(e.SubmissionDeadline, now) {
				return PhaseVoting, ReasonSubmissionDeadline, true
			}
		case ClosePolicyAllEntries:
			if c.Participants > 0 && c.Entries >= c.Participants {
				return PhaseVoting, ReasonAllEntriesIn, true
			}
		}
	case PhaseVoting:
		switch e.VotingClose {
		case ClosePolicySpecificDate:
			if reached(e.VotingDeadline, now) {
				return PhaseResults, ReasonVotingDeadline, true
			}
		case ClosePolicyAllEntries:
			if c.Participants > 0 && c.Ballots >= c.Participants {
				return PhaseResults, ReasonAllBallotsIn, true
			}
		}
	}
	return "", "", false
}

// Validate checks the schedule and policies of an edition.
func (e Edition) Validate() error {
	if _, err := ParseClosePolicy(string(e.SubmissionClose)); err != nil {
		return err
	}
	if _, err := ParseClosePolicy(string(e.VotingClose)); err != nil {
		return err
	}
	if e.SubmissionClose == ClosePolicySpecificDate && e.SubmissionDeadline == nil {
		return fmt.Errorf("%w: submission deadline is required when submissions close on a specific date", ErrInvalidInput)
	}
	if e.VotingClose == ClosePolicySpecificDate && e.VotingDeadline == nil {
		return fmt.Errorf("%w: voting deadline is required when voting closes on a specific date", ErrInvalidInput)
	}
	if e.SubmissionsOpen != nil && e.SubmissionDeadline != nil && !e.SubmissionDeadline.After(*e.SubmissionsOpen) {
		return fmt.Errorf("%w: submission deadline must be after submissions open", ErrInvalidInput)
	}
	if e.SubmissionDeadline != nil && e.VotingDeadline != nil && !e.VotingDeadline.After(*e.SubmissionDeadline) {
		return fmt.Errorf("%w: voting deadline must be after the submission deadline", ErrInvalidInput)
	}
	return nil
}

// ResultsVisibleTo reports whether a viewer may read the scored results.
func (e Edition) ResultsVisibleTo(isHost bool) bool {
	if !e.Phase.AtLeast(PhaseResults) {
		return false
	}
	return isHost || e.ResultsRevealed
}

func reached(t *time.Time, now time.Time) bool {
	return t != nil && !t.After(now)
}

// ClosePlan decides the running order at submission close. It receives the
// edition as locked in the datastore, its non-rejected submissions ordered
// by id and the participant count, and returns submission ids in running
// order.
type ClosePlan func(edition Edition, submissions []Submission, participants int) ([]uint, error)

// PhaseChange describes one applied transition.
type PhaseChange struct {
	EditionID uint             `json:"edition_id"`
	ContestID uint             `json:"contest_id"`
	From      Phase            `json:"from"`
	To        Phase            `json:"to"`
	Reason    TransitionReason `json:"reason"`
	At        time.Time        `json:"at"`
}
