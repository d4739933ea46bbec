package repository

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
)

type EditionDAO interface {
	Insert(ctx context.Context, edition dao.Edition) (dao.Edition, error)
	FindByID(ctx context.Context, id uint) (dao.Edition, error)
	FindByContest(ctx context.Context, contestID uint) ([]dao.Edition, error)
	FindInPhases(ctx context.Context, phases []string) ([]dao.Edition, error)
	FindUnscored(ctx context.Context, phase string) ([]dao.Edition, error)
	UpdateDetails(ctx context.Context, edition dao.Edition) error
	SetPlaylist(ctx context.Context, id uint, url string) error
	SetResultsRevealed(ctx context.Context, id uint, revealed bool) error
	AdvancePhase(ctx context.Context, id uint, from, to string) error
	CloseSubmissions(ctx context.Context, id uint, from, to string, plan dao.ClosePlan) ([]dao.Submission, error)
}

type EditionRepository struct {
	dao EditionDAO
}

func NewEditionRepository(dao EditionDAO) *EditionRepository {
	return &EditionRepository{
		dao: dao,
	}
}

func (r *EditionRepository) Create(ctx context.Context, edition domain.Edition) (domain.Edition, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(edition))
	if err != nil {
		return domain.Edition{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created)
}

func (r *EditionRepository) FindByID(ctx context.Context, id uint) (domain.Edition, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Edition{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *EditionRepository) FindByContest(ctx context.Context, contestID uint) ([]domain.Edition, error) {
	found, err := r.dao.FindByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByContest -> %w", err)
	}

	return r.daosToDomain(found)
}

func (r *EditionRepository) FindInPhases(ctx context.Context, phases ...domain.Phase) ([]domain.Edition, error) {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = string(p)
	}

	found, err := r.dao.FindInPhases(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindInPhases -> %w", err)
	}

	return r.daosToDomain(found)
}

func (r *EditionRepository) FindUnscored(ctx context.Context, phase domain.Phase) ([]domain.Edition, error) {
	found, err := r.dao.FindUnscored(ctx, string(phase))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindUnscored -> %w", err)
	}

	return r.daosToDomain(found)
}

func (r *EditionRepository) UpdateDetails(ctx context.Context, edition domain.Edition) (domain.Edition, error) {
	if err := r.dao.UpdateDetails(ctx, r.domainToDao(edition)); err != nil {
		return domain.Edition{}, fmt.Errorf("r.dao.UpdateDetails -> %w", err)
	}

	return r.FindByID(ctx, edition.ID)
}

func (r *EditionRepository) SetPlaylist(ctx context.Context, id uint, url string) error {
	if err := r.dao.SetPlaylist(ctx, id, url); err != nil {
		return fmt.Errorf("r.dao.SetPlaylist -> %w", err)
	}
	return nil
}

func (r *EditionRepository) SetResultsRevealed(ctx context.Context, id uint, revealed bool) error {
	if err := r.dao.SetResultsRevealed(ctx, id, revealed); err != nil {
		return fmt.Errorf("r.dao.SetResultsRevealed -> %w", err)
	}
	return nil
}

func (r *EditionRepository) AdvancePhase(ctx context.Context, id uint, from, to domain.Phase) error {
	if err := r.dao.AdvancePhase(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.AdvancePhase -> %w", err)
	}
	return nil
}

// CloseSubmissions moves the edition from SUBMISSION to VOTING and writes
// the running order chosen by plan, atomically.
func (r *EditionRepository) CloseSubmissions(ctx context.Context, id uint, plan domain.ClosePlan) ([]domain.Submission, error) {
	daoPlan := func(e dao.Edition, subs []dao.Submission, participants int) ([]uint, error) {
		edition, err := r.daoToDomain(e)
		if err != nil {
			return nil, err
		}
		return plan(edition, submissionsDaoToDomain(subs), participants)
	}

	ordered, err := r.dao.CloseSubmissions(ctx, id, string(domain.PhaseSubmission), string(domain.PhaseVoting), daoPlan)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CloseSubmissions -> %w", err)
	}

	return submissionsDaoToDomain(ordered), nil
}

func (r *EditionRepository) domainToDao(e domain.Edition) dao.Edition {
	return dao.Edition{
		ID:                 e.ID,
		ContestID:          e.ContestID,
		Name:               e.Name,
		Description:        e.Description,
		SubmissionsOpen:    e.SubmissionsOpen,
		SubmissionDeadline: e.SubmissionDeadline,
		VotingDeadline:     e.VotingDeadline,
		SubmissionClose:    string(e.SubmissionClose),
		VotingClose:        string(e.VotingClose),
		Phase:              string(e.Phase),
		ResultsRevealed:    e.ResultsRevealed,
		PlaylistURL:        e.PlaylistURL,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// daoToDomain parses the stored enumerations; a row holding an unknown
// phase or policy is reported instead of passed along.
func (r *EditionRepository) daoToDomain(e dao.Edition) (domain.Edition, error) {
	phase, err := domain.ParsePhase(e.Phase)
	if err != nil {
		return domain.Edition{}, fmt.Errorf("edition %d: %w", e.ID, err)
	}
	submissionClose, err := domain.ParseClosePolicy(e.SubmissionClose)
	if err != nil {
		return domain.Edition{}, fmt.Errorf("edition %d: %w", e.ID, err)
	}
	votingClose, err := domain.ParseClosePolicy(e.VotingClose)
	if err != nil {
		return domain.Edition{}, fmt.Errorf("edition %d: %w", e.ID, err)
	}

	return domain.Edition{
		ID:                 e.ID,
		ContestID:          e.ContestID,
		Name:               e.Name,
		Description:        e.Description,
		SubmissionsOpen:    e.SubmissionsOpen,
		SubmissionDeadline: e.SubmissionDeadline,
		VotingDeadline:     e.VotingDeadline,
		SubmissionClose:    submissionClose,
		VotingClose:        votingClose,
		Phase:              phase,
		ResultsRevealed:    e.ResultsRevealed,
		PlaylistURL:        e.PlaylistURL,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}, nil
}

func (r *EditionRepository) daosToDomain(found []dao.Edition) ([]domain.Edition, error) {
	editions := make([]domain.Edition, 0, len(found))
	for _, e := range found {
		edition, err := r.daoToDomain(e)
		if err != nil {
			return nil, err
		}
		editions = append(editions, edition)
	}
	return editions, nil
}
