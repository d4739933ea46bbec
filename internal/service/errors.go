package service

import (
	"errors"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/repository"
)

var (
	ErrContestNotFound    = repository.ErrContestNotFound
	ErrEditionNotFound    = repository.ErrEditionNotFound
	ErrSubmissionNotFound = repository.ErrSubmissionNotFound
	ErrRankingNotFound    = repository.ErrRankingNotFound
	ErrDraftNotFound      = repository.ErrDraftNotFound
	ErrProfileNotFound    = repository.ErrProfileNotFound

	ErrDuplicateSubmission = repository.ErrDuplicateSubmission
	ErrDuplicateRanking    = repository.ErrDuplicateRanking
	ErrDuplicateVote       = repository.ErrDuplicateVote
	ErrAlreadyParticipant  = repository.ErrAlreadyParticipant
	ErrDraftLocked         = repository.ErrDraftLocked
	ErrPhaseChanged        = repository.ErrPhaseChanged
)

var (
	ErrNotHost          = fmt.Errorf("%w: only the contest host can do this", domain.ErrUnauthorized)
	ErrNotParticipant   = fmt.Errorf("%w: caller does not participate in this contest", domain.ErrUnauthorized)
	ErrResultsHidden    = fmt.Errorf("%w: results are not revealed yet", domain.ErrUnauthorized)
	ErrJoinCodeMismatch = fmt.Errorf("%w: join code does not match", domain.ErrConflict)
	ErrHostCannotLeave  = fmt.Errorf("%w: the host cannot leave their own contest", domain.ErrConflict)
	ErrWrongPhase       = fmt.Errorf("%w: edition is not in the required phase", domain.ErrConflict)
	ErrEntriesPending   = fmt.Errorf("%w: voting cannot close on all entries while entries are missing", domain.ErrConflict)
	ErrCapacityExceeded = fmt.Errorf("%w: %w: more entries than participants", domain.ErrConflict, domain.ErrIntegrity)
	ErrScoresPending    = fmt.Errorf("%w: %w: entries without a stored score", domain.ErrConflict, domain.ErrIntegrity)
	ErrOwnSubmission    = fmt.Errorf("%w: a voter cannot rank their own submission", domain.ErrInvalidInput)
	ErrEmptyBallot      = fmt.Errorf("%w: a ballot needs at least one entry", domain.ErrInvalidInput)
)

func wrongPhase(e domain.Edition, want ...domain.Phase) error {
	return fmt.Errorf("%w: edition %d is %s, want %v", ErrWrongPhase, e.ID, e.Phase, want)
}

// phaseMoved turns a write refused by the datastore's phase guard into
// ErrWrongPhase. Other errors pass through.
func phaseMoved(err error, editionID uint, want domain.Phase) error {
	if errors.Is(err, ErrPhaseChanged) {
		return fmt.Errorf("%w: edition %d left %s", ErrWrongPhase, editionID, want)
	}
	return err
}
