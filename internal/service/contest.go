package service

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/songcontest/songcontest-api/internal/domain"
	"go.uber.org/zap"
	"strings"
)

const joinCodeLength = 8

type ContestService struct {
	access
	newJoinCode func() string
}

func NewContestService(contests ContestRepository, editions EditionRepository) *ContestService {
	return &ContestService{
		access:      access{contests: contests, editions: editions},
		newJoinCode: generateJoinCode,
	}
}

func generateJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:joinCodeLength])
}

// CreateContest stores a new contest hosted by the caller, who also becomes
// its first participant. A join code is generated unless one is given.
func (s *ContestService) CreateContest(ctx context.Context, hostID string, contest domain.Contest) (domain.Contest, error) {
	if hostID == "" {
		return domain.Contest{}, domain.ErrUnauthenticated
	}

	contest.ID = 0
	contest.HostID = hostID
	contest.Participants = nil
	if contest.JoinCode == "" {
		contest.JoinCode = s.newJoinCode()
	}

	created, err := s.contests.Create(ctx, contest)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.contests.Create -> %w", err)
	}

	zap.L().Info("contest created", zap.Uint("contestID", created.ID), zap.String("hostID", hostID))

	return created.ForViewer(hostID), nil
}

func (s *ContestService) GetContest(ctx context.Context, userID string, contestID uint) (domain.Contest, error) {
	contest, err := s.contest(ctx, contestID, userID)
	if err != nil {
		return domain.Contest{}, err
	}

	return contest.ForViewer(userID), nil
}

func (s *ContestService) GetMyContests(ctx context.Context, userID string) ([]domain.Contest, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	contests, err := s.contests.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.contests.FindByParticipant -> %w", err)
	}

	for i := range contests {
		contests[i] = contests[i].ForViewer(userID)
	}
	return contests, nil
}

// UpdateContest lets the host change the name, description and join code.
// Empty fields keep their current value.
func (s *ContestService) UpdateContest(ctx context.Context, userID string, changes domain.Contest) (domain.Contest, error) {
	contest, err := s.hostContest(ctx, changes.ID, userID)
	if err != nil {
		return domain.Contest{}, err
	}

	if changes.Name != "" {
		contest.Name = changes.Name
	}
	if changes.Description != "" {
		contest.Description = changes.Description
	}
	if changes.JoinCode != "" {
		contest.JoinCode = changes.JoinCode
	}

	updated, err := s.contests.Update(ctx, contest)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.contests.Update -> %w", err)
	}

	return updated.ForViewer(userID), nil
}

// DeleteContest removes the contest with all its editions and their
// submissions and ballots.
func (s *ContestService) DeleteContest(ctx context.Context, userID string, contestID uint) error {
	if _, err := s.hostContest(ctx, contestID, userID); err != nil {
		return err
	}

	if err := s.contests.Delete(ctx, contestID); err != nil {
		return fmt.Errorf("s.contests.Delete -> %w", err)
	}

	zap.L().Info("contest deleted", zap.Uint("contestID", contestID))

	return nil
}

func (s *ContestService) JoinContest(ctx context.Context, userID string, contestID uint, joinCode string) (domain.Contest, error) {
	if userID == "" {
		return domain.Contest{}, domain.ErrUnauthenticated
	}

	contest, err := s.contests.FindByID(ctx, contestID)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.contests.FindByID -> %w", err)
	}
	if joinCode != contest.JoinCode {
		return domain.Contest{}, ErrJoinCodeMismatch
	}
	if contest.HasParticipant(userID) {
		return domain.Contest{}, ErrAlreadyParticipant
	}

	if err = s.contests.AddParticipant(ctx, contestID, userID); err != nil {
		return domain.Contest{}, fmt.Errorf("s.contests.AddParticipant -> %w", err)
	}

	contest.Participants = append(contest.Participants, userID)
	return contest.ForViewer(userID), nil
}

func (s *ContestService) LeaveContest(ctx context.Context, userID string, contestID uint) error {
	contest, err := s.contest(ctx, contestID, userID)
	if err != nil {
		return err
	}
	if contest.IsHost(userID) {
		return ErrHostCannotLeave
	}

	if err = s.contests.RemoveParticipant(ctx, contestID, userID); err != nil {
		return fmt.Errorf("s.contests.RemoveParticipant -> %w", err)
	}
	return nil
}
