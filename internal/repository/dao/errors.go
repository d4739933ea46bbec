package dao

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/songcontest/songcontest-api/internal/domain"
)

const (
	activeSubmissionIndex = "idx_submissions_active_owner"
	rankingOwnerIndex     = "idx_rankings_edition_user"
	voteOwnerIndex        = "idx_votes_edition_user_submission"
	participantPrimaryKey = "contest_participants_pkey"
)

var (
	ErrContestNotFound    = fmt.Errorf("contest %w", domain.ErrNotFound)
	ErrEditionNotFound    = fmt.Errorf("edition %w", domain.ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", domain.ErrNotFound)
	ErrRankingNotFound    = fmt.Errorf("ranking %w", domain.ErrNotFound)
	ErrDraftNotFound      = fmt.Errorf("saved ranking %w", domain.ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("profile %w", domain.ErrNotFound)

	ErrDuplicateSubmission = fmt.Errorf("%w: user already has a submission in this edition", domain.ErrConflict)
	ErrDuplicateRanking    = fmt.Errorf("%w: user already submitted a ranking for this edition", domain.ErrConflict)
	ErrDuplicateVote       = fmt.Errorf("%w: user already voted in this edition", domain.ErrConflict)
	ErrAlreadyParticipant  = fmt.Errorf("%w: user already participates in this contest", domain.ErrConflict)
	ErrDraftLocked         = fmt.Errorf("%w: ranking is already finalized", domain.ErrConflict)
	ErrPhaseChanged        = fmt.Errorf("%w: edition phase changed concurrently", domain.ErrConflict)
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		(constraint == "" || pgErr.ConstraintName == constraint)
}
