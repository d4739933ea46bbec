package service

import (
	"context"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"strings"
)

type ProfileRepository interface {
	Confirm(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	FindByUserID(ctx context.Context, userID string) (domain.Profile, error)
	Rename(ctx context.Context, userID, name string) (domain.Profile, error)
}

type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{
		repo: repo,
	}
}

// ConfirmProfile creates the caller's profile on first confirmation and
// returns the stored one on every later call.
func (s *ProfileService) ConfirmProfile(ctx context.Context, userID, displayName string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = userID
	}

	profile, err := s.repo.Confirm(ctx, domain.Profile{UserID: userID, DisplayName: displayName})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("s.repo.Confirm -> %w", err)
	}

	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return profile, nil
}

func (s *ProfileService) RenameProfile(ctx context.Context, userID, displayName string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.Profile{}, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}

	profile, err := s.repo.Rename(ctx, userID, displayName)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("s.repo.Rename -> %w", err)
	}

	return profile, nil
}
