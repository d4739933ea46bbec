package service

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
)

type ContestRepository interface {
	Create(ctx context.Context, contest domain.Contest) (domain.Contest, error)
	FindByID(ctx context.Context, id uint) (domain.Contest, error)
	FindByParticipant(ctx context.Context, userID string) ([]domain.Contest, error)
	Update(ctx context.Context, contest domain.Contest) (domain.Contest, error)
	AddParticipant(ctx context.Context, contestID uint, userID string) error
	RemoveParticipant(ctx context.Context, contestID uint, userID string) error
	CountParticipants(ctx context.Context, contestID uint) (int, error)
	Delete(ctx context.Context, contestID uint) error
}

type EditionRepository interface {
	Create(ctx context.Context, edition domain.Edition) (domain.Edition, error)
	FindByID(ctx context.Context, id uint) (domain.Edition, error)
	FindByContest(ctx context.Context, contestID uint) ([]domain.Edition, error)
	FindInPhases(ctx context.Context, phases ...domain.Phase) ([]domain.Edition, error)
	FindUnscored(ctx context.Context, phase domain.Phase) ([]domain.Edition, error)
	UpdateDetails(ctx context.Context, edition domain.Edition) (domain.Edition, error)
	SetPlaylist(ctx context.Context, id uint, url string) error
	SetResultsRevealed(ctx context.Context, id uint, revealed bool) error
	AdvancePhase(ctx context.Context, id uint, from, to domain.Phase) error
	CloseSubmissions(ctx context.Context, id uint, plan domain.ClosePlan) ([]domain.Submission, error)
}

// access resolves contests and editions together with the caller's role.
// Every check runs before any write.
type access struct {
	contests ContestRepository
	editions EditionRepository
}

func (a access) contest(ctx context.Context, contestID uint, userID string) (domain.Contest, error) {
	if userID == "" {
		return domain.Contest{}, domain.ErrUnauthenticated
	}

	contest, err := a.contests.FindByID(ctx, contestID)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("a.contests.FindByID -> %w", err)
	}
	if !contest.HasParticipant(userID) {
		return domain.Contest{}, ErrNotParticipant
	}

	return contest, nil
}

func (a access) hostContest(ctx context.Context, contestID uint, userID string) (domain.Contest, error) {
	if userID == "" {
		return domain.Contest{}, domain.ErrUnauthenticated
	}

	contest, err := a.contests.FindByID(ctx, contestID)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("a.contests.FindByID -> %w", err)
	}
	if !contest.IsHost(userID) {
		return domain.Contest{}, ErrNotHost
	}

	return contest, nil
}

func (a access) edition(ctx context.Context, editionID uint, userID string) (domain.Edition, domain.Contest, error) {
	edition, err := a.editions.FindByID(ctx, editionID)
	if err != nil {
		return domain.Edition{}, domain.Contest{}, fmt.Errorf("a.editions.FindByID -> %w", err)
	}

	contest, err := a.contest(ctx, edition.ContestID, userID)
	if err != nil {
		return domain.Edition{}, domain.Contest{}, err
	}

	return edition, contest, nil
}

func (a access) hostEdition(ctx context.Context, editionID uint, userID string) (domain.Edition, domain.Contest, error) {
	edition, err := a.editions.FindByID(ctx, editionID)
	if err != nil {
		return domain.Edition{}, domain.Contest{}, fmt.Errorf("a.editions.FindByID -> %w", err)
	}

	contest, err := a.hostContest(ctx, edition.ContestID, userID)
	if err != nil {
		return domain.Edition{}, domain.Contest{}, err
	}

	return edition, contest, nil
}
