package service

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
	"go.uber.org/zap"
)

type ResultsService struct {
	access
	submissions SubmissionRepository
	scorer      scorer
}

func NewResultsService(contests ContestRepository, editions EditionRepository, submissions SubmissionRepository, ballots BallotRepository) *ResultsService {
	return &ResultsService{
		access:      access{contests: contests, editions: editions},
		submissions: submissions,
		scorer:      scorer{submissions: submissions, ballots: ballots},
	}
}

// GetEditionResults returns the scored entries best first. The host sees
// them as soon as voting closes, everyone else once they are revealed.
func (s *ResultsService) GetEditionResults(ctx context.Context, userID string, editionID uint) (domain.Edition, []scoring.Result, error) {
	edition, contest, err := s.edition(ctx, editionID, userID)
	if err != nil {
		return domain.Edition{}, nil, err
	}
	if !edition.Phase.AtLeast(domain.PhaseResults) {
		return domain.Edition{}, nil, wrongPhase(edition, domain.PhaseResults, domain.PhaseComplete)
	}
	if !edition.ResultsVisibleTo(contest.IsHost(userID)) {
		return domain.Edition{}, nil, ErrResultsHidden
	}

	results, err := s.scorer.results(ctx, editionID)
	if err != nil {
		return domain.Edition{}, nil, err
	}
	if stale := staleScores(results); len(stale) > 0 {
		zap.L().Error("stored scores disagree with the ballots",
			zap.Uint("editionID", editionID),
			zap.Uints("submissionIDs", stale),
		)
	}

	return edition, results, nil
}

// staleScores lists the entries whose stored score or rank differs from the
// freshly computed one. Entries without a stored score are not counted.
func staleScores(results []scoring.Result) []uint {
	var stale []uint
	for _, r := range results {
		stored := r.Submission
		if stored.Score == nil || stored.Rank == nil {
			continue
		}
		if *stored.Score != r.Total || *stored.Rank != r.Rank {
			stale = append(stale, stored.ID)
		}
	}
	return stale
}

// GetLeaderboard sums every participant's scores over the contest's scored
// editions the caller may see.
func (s *ResultsService) GetLeaderboard(ctx context.Context, userID string, contestID uint) ([]scoring.Standing, error) {
	contest, err := s.contest(ctx, contestID, userID)
	if err != nil {
		return nil, err
	}

	editions, err := s.editions.FindByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("s.editions.FindByContest -> %w", err)
	}

	var ids []uint
	for _, e := range editions {
		if e.ResultsVisibleTo(contest.IsHost(userID)) {
			ids = append(ids, e.ID)
		}
	}

	subs, err := s.submissions.FindByEditions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.submissions.FindByEditions -> %w", err)
	}
	byEdition := make(map[uint][]domain.Submission, len(ids))
	for _, sub := range subs {
		byEdition[sub.EditionID] = append(byEdition[sub.EditionID], sub)
	}

	scored := make([]scoring.EditionResults, 0, len(ids))
	for _, id := range ids {
		results, err := s.scorer.resultsFor(ctx, id, byEdition[id])
		if err != nil {
			return nil, err
		}
		scored = append(scored, scoring.EditionResults{EditionID: id, Results: results})
	}

	return scoring.ContestLeaderboard(scored), nil
}
