package repository

import "github.com/songcontest/songcontest-api/internal/repository/dao"

var (
	ErrContestNotFound    = dao.ErrContestNotFound
	ErrEditionNotFound    = dao.ErrEditionNotFound
	ErrSubmissionNotFound = dao.ErrSubmissionNotFound
	ErrRankingNotFound    = dao.ErrRankingNotFound
	ErrDraftNotFound      = dao.ErrDraftNotFound
	ErrProfileNotFound    = dao.ErrProfileNotFound

	ErrDuplicateSubmission = dao.ErrDuplicateSubmission
	ErrDuplicateRanking    = dao.ErrDuplicateRanking
	ErrDuplicateVote       = dao.ErrDuplicateVote
	ErrAlreadyParticipant  = dao.ErrAlreadyParticipant
	ErrDraftLocked         = dao.ErrDraftLocked
	ErrPhaseChanged        = dao.ErrPhaseChanged
)
