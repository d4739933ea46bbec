package service

import (
	"cmp"
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
	"slices"
)

// scorer loads everything an edition's score depends on and runs the
// scoring engine over it.
type scorer struct {
	submissions SubmissionRepository
	ballots     BallotRepository
}

func (s scorer) results(ctx context.Context, editionID uint) ([]scoring.Result, error) {
	subs, err := s.submissions.FindByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("s.submissions.FindByEdition -> %w", err)
	}

	return s.resultsFor(ctx, editionID, subs)
}

// resultsFor scores the given submissions of one edition. Submissions are
// fed to the engine in creation order so full ties keep the earliest entry
// first.
func (s scorer) resultsFor(ctx context.Context, editionID uint, subs []domain.Submission) ([]scoring.Result, error) {
	rankings, err := s.ballots.FindRankingsByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("s.ballots.FindRankingsByEdition -> %w", err)
	}
	televotes, err := s.ballots.FindTelevotesByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("s.ballots.FindTelevotesByEdition -> %w", err)
	}
	votes, err := s.ballots.FindVotesByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("s.ballots.FindVotesByEdition -> %w", err)
	}

	byCreation := slices.Clone(subs)
	slices.SortStableFunc(byCreation, func(a, b domain.Submission) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return scoring.Results(scoring.Input{
		Submissions: byCreation,
		Rankings:    rankings,
		Televotes:   televotes,
		Votes:       votes,
	}), nil
}
