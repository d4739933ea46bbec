package domain

import (
	"fmt"
	"time"
)

// MaxBallotEntries is the number of ranked places that earn points.
const MaxBallotEntries = 10

// Ranking is a finalized jury ballot. Entries are submission ids, highest
// preference first.
type Ranking struct {
	ID        uint      `json:"id"`
	EditionID uint      `json:"edition_id"`
	UserID    string    `json:"user_id"`
	Entries   []uint    `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedRanking is a mutable draft of a Ranking. It is locked once the
// Ranking is finalized.
type SavedRanking struct {
	ID        uint      `json:"id"`
	EditionID uint      `json:"edition_id"`
	UserID    string    `json:"user_id"`
	Entries   []uint    `json:"entries"`
	Locked    bool      `json:"locked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Televote is an anonymous ballot.
type Televote struct {
	ID        uint      `json:"id"`
	EditionID uint      `json:"edition_id"`
	GuestName string    `json:"guest_name"`
	Entries   []uint    `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote is a single legacy point award.
type Vote struct {
	ID           uint      `json:"id"`
	EditionID    uint      `json:"edition_id"`
	SubmissionID uint      `json:"submission_id"`
	FromUserID   string    `json:"from_user_id"`
	Points       int       `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidateEntries checks the shape of a ranked ballot: at most
// MaxBallotEntries ids, none zero, none repeated.
func ValidateEntries(entries []uint) error {
	if len(entries) > MaxBallotEntries {
		return fmt.Errorf("%w: a ballot holds at most %d entries, got %d", ErrInvalidInput, MaxBallotEntries, len(entries))
	}
	seen := make(map[uint]struct{}, len(entries))
	for i, id := range entries {
		if id == 0 {
			return fmt.Errorf("%w: entry %d is empty", ErrInvalidInput, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: submission %d appears more than once", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateEntriesAgainst additionally requires every entry to be one of the
// allowed submission ids.
func ValidateEntriesAgainst(entries []uint, allowed map[uint]struct{}) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	for _, id := range entries {
		if _, ok := allowed[id]; !ok {
			return fmt.Errorf("%w: submission %d is not eligible in this edition", ErrInvalidInput, id)
		}
	}
	return nil
}
