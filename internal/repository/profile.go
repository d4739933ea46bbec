package repository

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
)

type ProfileDAO interface {
	InsertIfMissing(ctx context.Context, profile dao.Profile) (dao.Profile, error)
	FindByUserID(ctx context.Context, userID string) (dao.Profile, error)
	UpdateDisplayName(ctx context.Context, userID, name string) (dao.Profile, error)
}

type ProfileRepository struct {
	dao ProfileDAO
}

func NewProfileRepository(dao ProfileDAO) *ProfileRepository {
	return &ProfileRepository{
		dao: dao,
	}
}

func (r *ProfileRepository) Confirm(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	stored, err := r.dao.InsertIfMissing(ctx, dao.Profile{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.InsertIfMissing -> %w", err)
	}

	return r.daoToDomain(stored), nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ProfileRepository) Rename(ctx context.Context, userID, name string) (domain.Profile, error) {
	updated, err := r.dao.UpdateDisplayName(ctx, userID, name)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.UpdateDisplayName -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ProfileRepository) daoToDomain(p dao.Profile) domain.Profile {
	return domain.Profile{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
