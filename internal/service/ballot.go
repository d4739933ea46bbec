package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
	"strings"
)

type BallotRepository interface {
	CreateRanking(ctx context.Context, ranking domain.Ranking, phase domain.Phase) (domain.Ranking, error)
	FindRanking(ctx context.Context, editionID uint, userID string) (domain.Ranking, error)
	FindRankingsByEdition(ctx context.Context, editionID uint) ([]domain.Ranking, error)
	CountRankings(ctx context.Context, editionID uint) (int, error)
	SaveDraft(ctx context.Context, draft domain.SavedRanking) (domain.SavedRanking, error)
	FindDraft(ctx context.Context, editionID uint, userID string) (domain.SavedRanking, error)
	CreateTelevote(ctx context.Context, televote domain.Televote, phase domain.Phase) (domain.Televote, error)
	FindTelevotesByEdition(ctx context.Context, editionID uint) ([]domain.Televote, error)
	CreateVotes(ctx context.Context, votes []domain.Vote, phase domain.Phase) ([]domain.Vote, error)
	FindVotesByEdition(ctx context.Context, editionID uint) ([]domain.Vote, error)
	HasVoted(ctx context.Context, editionID uint, userID string) (bool, error)
}

type BallotService struct {
	access
	submissions SubmissionRepository
	ballots     BallotRepository
}

func NewBallotService(contests ContestRepository, editions EditionRepository, submissions SubmissionRepository, ballots BallotRepository) *BallotService {
	return &BallotService{
		access:      access{contests: contests, editions: editions},
		submissions: submissions,
		ballots:     ballots,
	}
}

// SaveDraft stores the caller's in-progress ranking. Drafts may change
// freely until the ranking is submitted.
func (s *BallotService) SaveDraft(ctx context.Context, userID string, editionID uint, entries []uint) (domain.SavedRanking, error) {
	edition, err := s.votingEdition(ctx, editionID, userID)
	if err != nil {
		return domain.SavedRanking{}, err
	}
	if err = s.checkEntries(ctx, edition, userID, entries); err != nil {
		return domain.SavedRanking{}, err
	}

	draft, err := s.ballots.SaveDraft(ctx, domain.SavedRanking{EditionID: editionID, UserID: userID, Entries: entries})
	if err != nil {
		return domain.SavedRanking{}, fmt.Errorf("s.ballots.SaveDraft -> %w", err)
	}

	return draft, nil
}

func (s *BallotService) GetDraft(ctx context.Context, userID string, editionID uint) (domain.SavedRanking, error) {
	if _, _, err := s.edition(ctx, editionID, userID); err != nil {
		return domain.SavedRanking{}, err
	}

	draft, err := s.ballots.FindDraft(ctx, editionID, userID)
	if err != nil {
		return domain.SavedRanking{}, fmt.Errorf("s.ballots.FindDraft -> %w", err)
	}

	return draft, nil
}

// SubmitRanking finalizes the caller's jury ballot. A ranking can be
// submitted once and never changed, and only while voting is open when the
// datastore writes it.
func (s *BallotService) SubmitRanking(ctx context.Context, userID string, editionID uint, entries []uint) (domain.Ranking, error) {
	edition, err := s.votingEdition(ctx, editionID, userID)
	if err != nil {
		return domain.Ranking{}, err
	}

	_, err = s.ballots.FindRanking(ctx, editionID, userID)
	switch {
	case err == nil:
		return domain.Ranking{}, ErrDuplicateRanking
	case !errors.Is(err, ErrRankingNotFound):
		return domain.Ranking{}, fmt.Errorf("s.ballots.FindRanking -> %w", err)
	}

	if len(entries) == 0 {
		return domain.Ranking{}, ErrEmptyBallot
	}
	if err = s.checkEntries(ctx, edition, userID, entries); err != nil {
		return domain.Ranking{}, err
	}

	ranking, err := s.ballots.CreateRanking(ctx, domain.Ranking{EditionID: editionID, UserID: userID, Entries: entries}, domain.PhaseVoting)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("s.ballots.CreateRanking -> %w", phaseMoved(err, editionID, domain.PhaseVoting))
	}

	return ranking, nil
}

func (s *BallotService) GetRanking(ctx context.Context, userID string, editionID uint) (domain.Ranking, error) {
	if _, _, err := s.edition(ctx, editionID, userID); err != nil {
		return domain.Ranking{}, err
	}

	ranking, err := s.ballots.FindRanking(ctx, editionID, userID)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("s.ballots.FindRanking -> %w", err)
	}

	return ranking, nil
}

// SubmitTelevote records an anonymous ballot. Guests are not identified, so
// nothing limits how many televotes one guest casts.
func (s *BallotService) SubmitTelevote(ctx context.Context, editionID uint, guestName string, entries []uint) (domain.Televote, error) {
	edition, err := s.editions.FindByID(ctx, editionID)
	if err != nil {
		return domain.Televote{}, fmt.Errorf("s.editions.FindByID -> %w", err)
	}
	if edition.Phase != domain.PhaseVoting {
		return domain.Televote{}, wrongPhase(edition, domain.PhaseVoting)
	}

	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return domain.Televote{}, fmt.Errorf("%w: guest name is required", domain.ErrInvalidInput)
	}
	if len(entries) == 0 {
		return domain.Televote{}, ErrEmptyBallot
	}
	if err = s.checkEntries(ctx, edition, "", entries); err != nil {
		return domain.Televote{}, err
	}

	televote, err := s.ballots.CreateTelevote(ctx, domain.Televote{EditionID: editionID, GuestName: guestName, Entries: entries}, domain.PhaseVoting)
	if err != nil {
		return domain.Televote{}, fmt.Errorf("s.ballots.CreateTelevote -> %w", phaseMoved(err, editionID, domain.PhaseVoting))
	}

	return televote, nil
}

// SubmitVotes records a legacy batch of point awards. Each award uses a
// distinct value of the points table and a distinct entry, and a user votes
// once per edition.
func (s *BallotService) SubmitVotes(ctx context.Context, userID string, editionID uint, votes []domain.Vote) ([]domain.Vote, error) {
	edition, err := s.votingEdition(ctx, editionID, userID)
	if err != nil {
		return nil, err
	}

	voted, err := s.ballots.HasVoted(ctx, editionID, userID)
	if err != nil {
		return nil, fmt.Errorf("s.ballots.HasVoted -> %w", err)
	}
	if voted {
		return nil, ErrDuplicateVote
	}

	if len(votes) == 0 {
		return nil, ErrEmptyBallot
	}
	entries := make([]uint, len(votes))
	points := make(map[int]struct{}, len(votes))
	for i, v := range votes {
		if !scoring.IsAwardablePoints(v.Points) {
			return nil, fmt.Errorf("%w: %d is not a value of the points table", domain.ErrInvalidInput, v.Points)
		}
		if _, dup := points[v.Points]; dup {
			return nil, fmt.Errorf("%w: %d points awarded more than once", domain.ErrInvalidInput, v.Points)
		}
		points[v.Points] = struct{}{}
		entries[i] = v.SubmissionID
	}
	if err = s.checkEntries(ctx, edition, userID, entries); err != nil {
		return nil, err
	}

	rows := make([]domain.Vote, len(votes))
	for i, v := range votes {
		rows[i] = domain.Vote{EditionID: editionID, SubmissionID: v.SubmissionID, FromUserID: userID, Points: v.Points}
	}

	created, err := s.ballots.CreateVotes(ctx, rows, domain.PhaseVoting)
	if err != nil {
		return nil, fmt.Errorf("s.ballots.CreateVotes -> %w", phaseMoved(err, editionID, domain.PhaseVoting))
	}

	return created, nil
}

func (s *BallotService) votingEdition(ctx context.Context, editionID uint, userID string) (domain.Edition, error) {
	edition, _, err := s.edition(ctx, editionID, userID)
	if err != nil {
		return domain.Edition{}, err
	}
	if edition.Phase != domain.PhaseVoting {
		return domain.Edition{}, wrongPhase(edition, domain.PhaseVoting)
	}
	return edition, nil
}

// checkEntries validates a ballot against the edition's eligible entries.
// voterID, when set, may not appear as the author of a ranked entry.
func (s *BallotService) checkEntries(ctx context.Context, edition domain.Edition, voterID string, entries []uint) error {
	subs, err := s.submissions.FindByEdition(ctx, edition.ID)
	if err != nil {
		return fmt.Errorf("s.submissions.FindByEdition -> %w", err)
	}

	allowed := make(map[uint]struct{}, len(subs))
	own := make(map[uint]struct{})
	for _, sub := range domain.EligibleSubmissions(subs) {
		allowed[sub.ID] = struct{}{}
		if voterID != "" && sub.UserID == voterID {
			own[sub.ID] = struct{}{}
		}
	}

	if err = domain.ValidateEntriesAgainst(entries, allowed); err != nil {
		return err
	}
	for _, id := range entries {
		if _, ok := own[id]; ok {
			return ErrOwnSubmission
		}
	}
	return nil
}
