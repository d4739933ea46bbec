package repository

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
)

type ContestDAO interface {
	Insert(ctx context.Context, contest dao.Contest) (dao.Contest, error)
	FindByID(ctx context.Context, id uint) (dao.Contest, error)
	FindByParticipant(ctx context.Context, userID string) ([]dao.Contest, error)
	Update(ctx context.Context, contest dao.Contest) (dao.Contest, error)
	AddParticipant(ctx context.Context, contestID uint, userID string) error
	RemoveParticipant(ctx context.Context, contestID uint, userID string) error
	CountParticipants(ctx context.Context, contestID uint) (int, error)
	DeleteCascade(ctx context.Context, contestID uint) error
}

type ContestRepository struct {
	dao ContestDAO
}

func NewContestRepository(dao ContestDAO) *ContestRepository {
	return &ContestRepository{
		dao: dao,
	}
}

func (r *ContestRepository) Create(ctx context.Context, contest domain.Contest) (domain.Contest, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(contest))
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ContestRepository) FindByID(ctx context.Context, id uint) (domain.Contest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ContestRepository) FindByParticipant(ctx context.Context, userID string) ([]domain.Contest, error) {
	found, err := r.dao.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByParticipant -> %w", err)
	}

	contests := make([]domain.Contest, len(found))
	for i, c := range found {
		contests[i] = r.daoToDomain(c)
	}
	return contests, nil
}

func (r *ContestRepository) Update(ctx context.Context, contest domain.Contest) (domain.Contest, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(contest))
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ContestRepository) AddParticipant(ctx context.Context, contestID uint, userID string) error {
	if err := r.dao.AddParticipant(ctx, contestID, userID); err != nil {
		return fmt.Errorf("r.dao.AddParticipant -> %w", err)
	}
	return nil
}

func (r *ContestRepository) RemoveParticipant(ctx context.Context, contestID uint, userID string) error {
	if err := r.dao.RemoveParticipant(ctx, contestID, userID); err != nil {
		return fmt.Errorf("r.dao.RemoveParticipant -> %w", err)
	}
	return nil
}

func (r *ContestRepository) CountParticipants(ctx context.Context, contestID uint) (int, error) {
	n, err := r.dao.CountParticipants(ctx, contestID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}
	return n, nil
}

func (r *ContestRepository) Delete(ctx context.Context, contestID uint) error {
	if err := r.dao.DeleteCascade(ctx, contestID); err != nil {
		return fmt.Errorf("r.dao.DeleteCascade -> %w", err)
	}
	return nil
}

func (r *ContestRepository) domainToDao(c domain.Contest) dao.Contest {
	return dao.Contest{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		HostID:      c.HostID,
		JoinCode:    c.JoinCode,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r *ContestRepository) daoToDomain(c dao.Contest) domain.Contest {
	participants := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		participants[i] = p.UserID
	}

	return domain.Contest{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		HostID:       c.HostID,
		JoinCode:     c.JoinCode,
		Participants: participants,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
