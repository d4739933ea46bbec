package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/batch"
	"github.com/songcontest/songcontest-api/internal/domain"
	"go.uber.org/zap"
)

// Sweep applies every automatic transition that is due and finishes score
// writes left incomplete by an earlier close. Each edition is handled on
// its own: a failure is logged and reported, and the others proceed.
// Running it twice in a row is the same as running it once.
func (s *EditionService) Sweep(ctx context.Context, concurrency int) error {
	unscored, err := s.editions.FindUnscored(ctx, domain.PhaseResults)
	if err != nil {
		return fmt.Errorf("s.editions.FindUnscored -> %w", err)
	}

	resumed, _ := batch.Run(ctx, "resume scores", unscored, concurrency, editionID, func(ctx context.Context, e domain.Edition) error {
		if _, err := s.persistScores(ctx, e.ID); err != nil {
			zap.L().Error("failed to resume scores", zap.Uint("editionID", e.ID), zap.Error(err))
			return err
		}
		zap.L().Info("resumed scores", zap.Uint("editionID", e.ID))
		return nil
	})

	open, err := s.editions.FindInPhases(ctx, domain.PhaseUpcoming, domain.PhaseSubmission, domain.PhaseVoting)
	if err != nil {
		return fmt.Errorf("s.editions.FindInPhases -> %w", err)
	}

	advanced, _ := batch.Run(ctx, "advance editions", open, concurrency, editionID, func(ctx context.Context, e domain.Edition) error {
		if err := s.sweepEdition(ctx, e); err != nil {
			zap.L().Error("failed to advance edition", zap.Uint("editionID", e.ID), zap.String("phase", string(e.Phase)), zap.Error(err))
			return err
		}
		return nil
	})

	return batch.Summarize("sweep editions", append(resumed, advanced...))
}

func editionID(e domain.Edition) uint { return e.ID }

func (s *EditionService) sweepEdition(ctx context.Context, edition domain.Edition) error {
	counts, err := s.counts(ctx, edition)
	if err != nil {
		return err
	}

	to, reason, due := edition.DueTransition(counts, s.now())
	if !due {
		return nil
	}

	switch to {
	case domain.PhaseVoting:
		_, err = s.closeSubmissions(ctx, edition, reason)
	case domain.PhaseResults:
		_, err = s.closeVoting(ctx, edition, reason)
	default:
		err = s.advance(ctx, edition, to, reason)
	}

	if errors.Is(err, ErrPhaseChanged) {
		zap.L().Debug("edition already advanced", zap.Uint("editionID", edition.ID))
		return nil
	}
	return err
}
