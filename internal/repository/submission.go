package repository

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
)

type SubmissionDAO interface {
	Insert(ctx context.Context, submission dao.Submission, phase string) (dao.Submission, error)
	FindByID(ctx context.Context, id uint) (dao.Submission, error)
	FindByEdition(ctx context.Context, editionID uint) ([]dao.Submission, error)
	FindByEditions(ctx context.Context, editionIDs []uint) ([]dao.Submission, error)
	FindActiveByOwner(ctx context.Context, editionID uint, userID string) (dao.Submission, bool, error)
	CountEligible(ctx context.Context, editionID uint) (int, error)
	Reject(ctx context.Context, id uint) error
	UpdateScore(ctx context.Context, id uint, score, rank int) error
}

type SubmissionRepository struct {
	dao SubmissionDAO
}

func NewSubmissionRepository(dao SubmissionDAO) *SubmissionRepository {
	return &SubmissionRepository{
		dao: dao,
	}
}

// Create stores the submission if its edition is still in phase and fails
// with ErrPhaseChanged otherwise.
func (r *SubmissionRepository) Create(ctx context.Context, submission domain.Submission, phase domain.Phase) (domain.Submission, error) {
	created, err := r.dao.Insert(ctx, dao.Submission{
		EditionID: submission.EditionID,
		UserID:    submission.UserID,
		SongTitle: submission.SongTitle,
		Artist:    submission.Artist,
		TrackURL:  submission.TrackURL,
		Country:   submission.Country,
		Flag:      submission.Flag,
	}, string(phase))
	if err != nil {
		return domain.Submission{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return submissionDaoToDomain(created), nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (domain.Submission, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return submissionDaoToDomain(found), nil
}

func (r *SubmissionRepository) FindByEdition(ctx context.Context, editionID uint) ([]domain.Submission, error) {
	found, err := r.dao.FindByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEdition -> %w", err)
	}

	return submissionsDaoToDomain(found), nil
}

func (r *SubmissionRepository) FindByEditions(ctx context.Context, editionIDs []uint) ([]domain.Submission, error) {
	found, err := r.dao.FindByEditions(ctx, editionIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEditions -> %w", err)
	}

	return submissionsDaoToDomain(found), nil
}

func (r *SubmissionRepository) FindActiveByOwner(ctx context.Context, editionID uint, userID string) (domain.Submission, bool, error) {
	found, ok, err := r.dao.FindActiveByOwner(ctx, editionID, userID)
	if err != nil {
		return domain.Submission{}, false, fmt.Errorf("r.dao.FindActiveByOwner -> %w", err)
	}

	return submissionDaoToDomain(found), ok, nil
}

func (r *SubmissionRepository) CountEligible(ctx context.Context, editionID uint) (int, error) {
	n, err := r.dao.CountEligible(ctx, editionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountEligible -> %w", err)
	}
	return n, nil
}

func (r *SubmissionRepository) Reject(ctx context.Context, id uint) error {
	if err := r.dao.Reject(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Reject -> %w", err)
	}
	return nil
}

func (r *SubmissionRepository) UpdateScore(ctx context.Context, update domain.ScoreUpdate) error {
	if err := r.dao.UpdateScore(ctx, update.SubmissionID, update.Score, update.Rank); err != nil {
		return fmt.Errorf("r.dao.UpdateScore -> %w", err)
	}
	return nil
}

func submissionDaoToDomain(s dao.Submission) domain.Submission {
	return domain.Submission{
		ID:           s.ID,
		EditionID:    s.EditionID,
		UserID:       s.UserID,
		SongTitle:    s.SongTitle,
		Artist:       s.Artist,
		TrackURL:     s.TrackURL,
		Country:      s.Country,
		Flag:         s.Flag,
		RunningOrder: s.RunningOrder,
		Rejected:     s.Rejected,
		Score:        s.Score,
		Rank:         s.Rank,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func submissionsDaoToDomain(found []dao.Submission) []domain.Submission {
	submissions := make([]domain.Submission, len(found))
	for i, s := range found {
		submissions[i] = submissionDaoToDomain(s)
	}
	return submissions
}
