package service

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"go.uber.org/zap"
	"strings"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission domain.Submission, phase domain.Phase) (domain.Submission, error)
	FindByID(ctx context.Context, id uint) (domain.Submission, error)
	FindByEdition(ctx context.Context, editionID uint) ([]domain.Submission, error)
	FindByEditions(ctx context.Context, editionIDs []uint) ([]domain.Submission, error)
	FindActiveByOwner(ctx context.Context, editionID uint, userID string) (domain.Submission, bool, error)
	CountEligible(ctx context.Context, editionID uint) (int, error)
	Reject(ctx context.Context, id uint) error
	UpdateScore(ctx context.Context, update domain.ScoreUpdate) error
}

type SubmissionService struct {
	access
	submissions SubmissionRepository
}

func NewSubmissionService(contests ContestRepository, editions EditionRepository, submissions SubmissionRepository) *SubmissionService {
	return &SubmissionService{
		access:      access{contests: contests, editions: editions},
		submissions: submissions,
	}
}

// CreateSubmission enters the caller's song. Each participant holds at most
// one non-rejected entry per edition. The datastore repeats the uniqueness
// and phase checks inside the insert, so a close landing in between wins.
func (s *SubmissionService) CreateSubmission(ctx context.Context, userID string, submission domain.Submission) (domain.Submission, error) {
	edition, _, err := s.edition(ctx, submission.EditionID, userID)
	if err != nil {
		return domain.Submission{}, err
	}
	if edition.Phase != domain.PhaseSubmission {
		return domain.Submission{}, wrongPhase(edition, domain.PhaseSubmission)
	}

	submission.SongTitle = strings.TrimSpace(submission.SongTitle)
	submission.Artist = strings.TrimSpace(submission.Artist)
	if submission.SongTitle == "" || submission.Artist == "" {
		return domain.Submission{}, fmt.Errorf("%w: song title and artist are required", domain.ErrInvalidInput)
	}

	_, exists, err := s.submissions.FindActiveByOwner(ctx, edition.ID, userID)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("s.submissions.FindActiveByOwner -> %w", err)
	}
	if exists {
		return domain.Submission{}, ErrDuplicateSubmission
	}

	submission.ID = 0
	submission.UserID = userID
	submission.RunningOrder = nil
	submission.Rejected = false
	submission.Score = nil
	submission.Rank = nil

	created, err := s.submissions.Create(ctx, submission, domain.PhaseSubmission)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("s.submissions.Create -> %w", phaseMoved(err, edition.ID, domain.PhaseSubmission))
	}

	return created, nil
}

// GetSubmissions lists the edition's entries. Scores and ranks are only
// shown to viewers who may see the results.
func (s *SubmissionService) GetSubmissions(ctx context.Context, userID string, editionID uint) ([]domain.Submission, error) {
	edition, contest, err := s.edition(ctx, editionID, userID)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissions.FindByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("s.submissions.FindByEdition -> %w", err)
	}

	if !edition.ResultsVisibleTo(contest.IsHost(userID)) {
		for i := range subs {
			subs[i].Score = nil
			subs[i].Rank = nil
		}
	}
	return subs, nil
}

// RejectSubmission takes an entry out of running order and scoring and
// frees its author's slot. Rejecting twice is a no-op.
func (s *SubmissionService) RejectSubmission(ctx context.Context, userID string, submissionID uint) (domain.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("s.submissions.FindByID -> %w", err)
	}

	edition, _, err := s.hostEdition(ctx, submission.EditionID, userID)
	if err != nil {
		return domain.Submission{}, err
	}
	if edition.Phase.AtLeast(domain.PhaseResults) {
		return domain.Submission{}, wrongPhase(edition, domain.PhaseSubmission, domain.PhaseVoting)
	}
	if submission.Rejected {
		return submission, nil
	}

	if err = s.submissions.Reject(ctx, submissionID); err != nil {
		return domain.Submission{}, fmt.Errorf("s.submissions.Reject -> %w", err)
	}

	zap.L().Info("submission rejected", zap.Uint("submissionID", submissionID), zap.Uint("editionID", edition.ID))

	submission.Rejected = true
	submission.Score = nil
	submission.Rank = nil
	return submission, nil
}
