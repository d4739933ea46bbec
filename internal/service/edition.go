package service

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/batch"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
	"go.uber.org/zap"
	"math/rand/v2"
	"time"
)

// PhaseNotifier is told about every applied phase transition.
type PhaseNotifier interface {
	PhaseChanged(change domain.PhaseChange)
}

type EditionService struct {
	access
	submissions SubmissionRepository
	ballots     BallotRepository
	scorer      scorer
	notifier    PhaseNotifier
	batchLimit  int

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

func NewEditionService(
	contests ContestRepository,
	editions EditionRepository,
	submissions SubmissionRepository,
	ballots BallotRepository,
	notifier PhaseNotifier,
	batchLimit int,
) *EditionService {
	return &EditionService{
		access:      access{contests: contests, editions: editions},
		submissions: submissions,
		ballots:     ballots,
		scorer:      scorer{submissions: submissions, ballots: ballots},
		notifier:    notifier,
		batchLimit:  batchLimit,
		now:         time.Now,
		shuffle:     rand.Shuffle,
	}
}

func (s *EditionService) CreateEdition(ctx context.Context, userID string, edition domain.Edition) (domain.Edition, error) {
	if _, err := s.hostContest(ctx, edition.ContestID, userID); err != nil {
		return domain.Edition{}, err
	}

	edition.ID = 0
	edition.Phase = domain.PhaseUpcoming
	edition.ResultsRevealed = false
	if err := edition.Validate(); err != nil {
		return domain.Edition{}, err
	}

	created, err := s.editions.Create(ctx, edition)
	if err != nil {
		return domain.Edition{}, fmt.Errorf("s.editions.Create -> %w", err)
	}

	return created, nil
}

func (s *EditionService) GetEdition(ctx context.Context, userID string, editionID uint) (domain.Edition, error) {
	edition, _, err := s.edition(ctx, editionID, userID)
	return edition, err
}

func (s *EditionService) GetEditions(ctx context.Context, userID string, contestID uint) ([]domain.Edition, error) {
	if _, err := s.contest(ctx, contestID, userID); err != nil {
		return nil, err
	}

	editions, err := s.editions.FindByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("s.editions.FindByContest -> %w", err)
	}

	return editions, nil
}

// UpdateEdition changes the host editable details. The phase is never
// touched here. Switching voting to close on all entries while the edition
// is voting is refused until every participant has an entry.
func (s *EditionService) UpdateEdition(ctx context.Context, userID string, changes domain.Edition) (domain.Edition, error) {
	current, _, err := s.hostEdition(ctx, changes.ID, userID)
	if err != nil {
		return domain.Edition{}, err
	}
	if current.Phase.AtLeast(domain.PhaseResults) {
		return domain.Edition{}, wrongPhase(current, domain.PhaseUpcoming, domain.PhaseSubmission, domain.PhaseVoting)
	}

	updated := current
	updated.Name = changes.Name
	updated.Description = changes.Description
	updated.SubmissionsOpen = changes.SubmissionsOpen
	updated.SubmissionDeadline = changes.SubmissionDeadline
	updated.VotingDeadline = changes.VotingDeadline
	updated.SubmissionClose = changes.SubmissionClose
	updated.VotingClose = changes.VotingClose
	if err = updated.Validate(); err != nil {
		return domain.Edition{}, err
	}

	if current.Phase == domain.PhaseVoting && updated.VotingClose == domain.ClosePolicyAllEntries {
		counts, err := s.counts(ctx, current)
		if err != nil {
			return domain.Edition{}, err
		}
		if counts.Entries < counts.Participants {
			return domain.Edition{}, fmt.Errorf("%w: %d of %d participants entered", ErrEntriesPending, counts.Entries, counts.Participants)
		}
	}

	saved, err := s.editions.UpdateDetails(ctx, updated)
	if err != nil {
		return domain.Edition{}, fmt.Errorf("s.editions.UpdateDetails -> %w", err)
	}

	return saved, nil
}

func (s *EditionService) OpenSubmissions(ctx context.Context, userID string, editionID uint) (domain.Edition, error) {
	edition, _, err := s.hostEdition(ctx, editionID, userID)
	if err != nil {
		return domain.Edition{}, err
	}
	if edition.Phase != domain.PhaseUpcoming {
		return domain.Edition{}, wrongPhase(edition, domain.PhaseUpcoming)
	}

	if err = s.advance(ctx, edition, domain.PhaseSubmission, domain.ReasonHostAction); err != nil {
		return domain.Edition{}, err
	}

	edition.Phase = domain.PhaseSubmission
	return edition, nil
}

// CloseSubmissions moves the edition to voting and assigns the running
// order. It returns the entries in running order.
func (s *EditionService) CloseSubmissions(ctx context.Context, userID string, editionID uint) ([]domain.Submission, error) {
	edition, _, err := s.hostEdition(ctx, editionID, userID)
	if err != nil {
		return nil, err
	}
	if edition.Phase != domain.PhaseSubmission {
		return nil, wrongPhase(edition, domain.PhaseSubmission)
	}

	return s.closeSubmissions(ctx, edition, domain.ReasonHostAction)
}

// CloseVoting moves the edition to results and persists every entry's score
// and rank. Scores that could not all be written come back together with a
// *domain.PartialBatchError; the sweep finishes them later.
func (s *EditionService) CloseVoting(ctx context.Context, userID string, editionID uint) ([]scoring.Result, error) {
	edition, _, err := s.hostEdition(ctx, editionID, userID)
	if err != nil {
		return nil, err
	}
	if edition.Phase != domain.PhaseVoting {
		return nil, wrongPhase(edition, domain.PhaseVoting)
	}

	return s.closeVoting(ctx, edition, domain.ReasonHostAction)
}

// FinalizeEdition completes an edition. Score writes left over from closing
// voting are retried first; while any entry still lacks a stored score the
// edition stays in results.
func (s *EditionService) FinalizeEdition(ctx context.Context, userID string, editionID uint) (domain.Edition, error) {
	edition, _, err := s.hostEdition(ctx, editionID, userID)
	if err != nil {
		return domain.Edition{}, err
	}
	if edition.Phase != domain.PhaseResults {
		return domain.Edition{}, wrongPhase(edition, domain.PhaseResults)
	}

	if err = s.ensureScored(ctx, editionID); err != nil {
		return domain.Edition{}, err
	}

	if err = s.advance(ctx, edition, domain.PhaseComplete, domain.ReasonHostAction); err != nil {
		return domain.Edition{}, err
	}

	edition.Phase = domain.PhaseComplete
	return edition, nil
}

func (s *EditionService) RevealResults(ctx context.Context, userID string, editionID uint) (domain.Edition, error) {
	edition, _, err := s.hostEdition(ctx, editionID, userID)
	if err != nil {
		return domain.Edition{}, err
	}
	if !edition.Phase.AtLeast(domain.PhaseResults) {
		return domain.Edition{}, wrongPhase(edition, domain.PhaseResults, domain.PhaseComplete)
	}

	if err = s.editions.SetResultsRevealed(ctx, editionID, true); err != nil {
		return domain.Edition{}, fmt.Errorf("s.editions.SetResultsRevealed -> %w", err)
	}

	edition.ResultsRevealed = true
	return edition, nil
}

func (s *EditionService) SetPlaylist(ctx context.Context, userID string, editionID uint, url string) (domain.Edition, error) {
	edition, _, err := s.hostEdition(ctx, editionID, userID)
	if err != nil {
		return domain.Edition{}, err
	}

	if err = s.editions.SetPlaylist(ctx, editionID, url); err != nil {
		return domain.Edition{}, fmt.Errorf("s.editions.SetPlaylist -> %w", err)
	}

	edition.PlaylistURL = url
	return edition, nil
}

func (s *EditionService) counts(ctx context.Context, edition domain.Edition) (domain.EditionCounts, error) {
	participants, err := s.contests.CountParticipants(ctx, edition.ContestID)
	if err != nil {
		return domain.EditionCounts{}, fmt.Errorf("s.contests.CountParticipants -> %w", err)
	}
	entries, err := s.submissions.CountEligible(ctx, edition.ID)
	if err != nil {
		return domain.EditionCounts{}, fmt.Errorf("s.submissions.CountEligible -> %w", err)
	}
	ballots, err := s.ballots.CountRankings(ctx, edition.ID)
	if err != nil {
		return domain.EditionCounts{}, fmt.Errorf("s.ballots.CountRankings -> %w", err)
	}

	return domain.EditionCounts{Participants: participants, Entries: entries, Ballots: ballots}, nil
}

// advance applies a transition that writes nothing but the phase.
func (s *EditionService) advance(ctx context.Context, edition domain.Edition, to domain.Phase, reason domain.TransitionReason) error {
	if !domain.CanTransition(edition.Phase, to) {
		return wrongPhase(edition, to)
	}

	if err := s.editions.AdvancePhase(ctx, edition.ID, edition.Phase, to); err != nil {
		return fmt.Errorf("s.editions.AdvancePhase -> %w", err)
	}

	s.publish(edition, to, reason)
	return nil
}

func (s *EditionService) closeSubmissions(ctx context.Context, edition domain.Edition, reason domain.TransitionReason) ([]domain.Submission, error) {
	ordered, err := s.editions.CloseSubmissions(ctx, edition.ID, s.planRunningOrder)
	if err != nil {
		return nil, fmt.Errorf("s.editions.CloseSubmissions -> %w", err)
	}

	s.publish(edition, domain.PhaseVoting, reason)
	return ordered, nil
}

// planRunningOrder refuses to close an edition holding more entries than
// participants and shuffles the rest with Fisher-Yates.
func (s *EditionService) planRunningOrder(edition domain.Edition, subs []domain.Submission, participants int) ([]uint, error) {
	if len(subs) > participants {
		zap.L().Error("edition has more entries than participants",
			zap.Uint("editionID", edition.ID),
			zap.Int("entries", len(subs)),
			zap.Int("participants", participants),
		)
		return nil, fmt.Errorf("%w: edition %d has %d entries for %d participants", ErrCapacityExceeded, edition.ID, len(subs), participants)
	}

	order := make([]uint, len(subs))
	for i, sub := range subs {
		order[i] = sub.ID
	}
	s.shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	return order, nil
}

func (s *EditionService) closeVoting(ctx context.Context, edition domain.Edition, reason domain.TransitionReason) ([]scoring.Result, error) {
	if err := s.advance(ctx, edition, domain.PhaseResults, reason); err != nil {
		return nil, err
	}

	return s.persistScores(ctx, edition.ID)
}

// persistScores writes score and rank of every entry concurrently. Ballots
// are frozen once voting closed, so running it again yields the same
// values.
func (s *EditionService) persistScores(ctx context.Context, editionID uint) ([]scoring.Result, error) {
	results, err := s.scorer.results(ctx, editionID)
	if err != nil {
		return nil, err
	}

	_, err = batch.Run(ctx, "persist scores", scoring.Updates(results), s.batchLimit,
		func(u domain.ScoreUpdate) uint { return u.SubmissionID },
		s.submissions.UpdateScore,
	)
	if err != nil {
		return results, fmt.Errorf("edition %d -> %w", editionID, err)
	}

	return results, nil
}

// ensureScored persists scores again if any eligible entry of the edition
// has none stored.
func (s *EditionService) ensureScored(ctx context.Context, editionID uint) error {
	subs, err := s.submissions.FindByEdition(ctx, editionID)
	if err != nil {
		return fmt.Errorf("s.submissions.FindByEdition -> %w", err)
	}

	pending := 0
	for _, sub := range domain.EligibleSubmissions(subs) {
		if sub.Rank == nil {
			pending++
		}
	}
	if pending == 0 {
		return nil
	}

	zap.L().Warn("finishing score writes before finalizing", zap.Uint("editionID", editionID), zap.Int("pending", pending))
	if _, err = s.persistScores(ctx, editionID); err != nil {
		return fmt.Errorf("%w: edition %d -> %w", ErrScoresPending, editionID, err)
	}
	return nil
}

func (s *EditionService) publish(edition domain.Edition, to domain.Phase, reason domain.TransitionReason) {
	change := domain.PhaseChange{
		EditionID: edition.ID,
		ContestID: edition.ContestID,
		From:      edition.Phase,
		To:        to,
		Reason:    reason,
		At:        s.now(),
	}

	zap.L().Info("edition phase changed",
		zap.Uint("editionID", change.EditionID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("reason", string(change.Reason)),
	)

	if s.notifier != nil {
		s.notifier.PhaseChanged(change)
	}
}
