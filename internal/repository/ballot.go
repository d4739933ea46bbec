package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
	"gorm.io/datatypes"
)

type BallotDAO interface {
	InsertRanking(ctx context.Context, ranking dao.Ranking, phase string) (dao.Ranking, error)
	FindRanking(ctx context.Context, editionID uint, userID string) (dao.Ranking, error)
	FindRankingsByEdition(ctx context.Context, editionID uint) ([]dao.Ranking, error)
	CountRankings(ctx context.Context, editionID uint) (int, error)
	UpsertDraft(ctx context.Context, draft dao.SavedRanking) (dao.SavedRanking, error)
	FindDraft(ctx context.Context, editionID uint, userID string) (dao.SavedRanking, error)
	InsertTelevote(ctx context.Context, televote dao.Televote, phase string) (dao.Televote, error)
	FindTelevotesByEdition(ctx context.Context, editionID uint) ([]dao.Televote, error)
	InsertVotes(ctx context.Context, votes []dao.Vote, phase string) ([]dao.Vote, error)
	FindVotesByEdition(ctx context.Context, editionID uint) ([]dao.Vote, error)
	HasVoted(ctx context.Context, editionID uint, userID string) (bool, error)
}

type BallotRepository struct {
	dao BallotDAO
}

func NewBallotRepository(dao BallotDAO) *BallotRepository {
	return &BallotRepository{
		dao: dao,
	}
}

func (r *BallotRepository) CreateRanking(ctx context.Context, ranking domain.Ranking, phase domain.Phase) (domain.Ranking, error) {
	entries, err := encodeEntries(ranking.Entries)
	if err != nil {
		return domain.Ranking{}, err
	}

	created, err := r.dao.InsertRanking(ctx, dao.Ranking{
		EditionID: ranking.EditionID,
		UserID:    ranking.UserID,
		Entries:   entries,
	}, string(phase))
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("r.dao.InsertRanking -> %w", err)
	}

	return r.rankingDaoToDomain(created)
}

func (r *BallotRepository) FindRanking(ctx context.Context, editionID uint, userID string) (domain.Ranking, error) {
	found, err := r.dao.FindRanking(ctx, editionID, userID)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("r.dao.FindRanking -> %w", err)
	}

	return r.rankingDaoToDomain(found)
}

func (r *BallotRepository) FindRankingsByEdition(ctx context.Context, editionID uint) ([]domain.Ranking, error) {
	found, err := r.dao.FindRankingsByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRankingsByEdition -> %w", err)
	}

	rankings := make([]domain.Ranking, 0, len(found))
	for _, f := range found {
		ranking, err := r.rankingDaoToDomain(f)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}
	return rankings, nil
}

func (r *BallotRepository) CountRankings(ctx context.Context, editionID uint) (int, error) {
	n, err := r.dao.CountRankings(ctx, editionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountRankings -> %w", err)
	}
	return n, nil
}

func (r *BallotRepository) SaveDraft(ctx context.Context, draft domain.SavedRanking) (domain.SavedRanking, error) {
	entries, err := encodeEntries(draft.Entries)
	if err != nil {
		return domain.SavedRanking{}, err
	}

	saved, err := r.dao.UpsertDraft(ctx, dao.SavedRanking{
		EditionID: draft.EditionID,
		UserID:    draft.UserID,
		Entries:   entries,
	})
	if err != nil {
		return domain.SavedRanking{}, fmt.Errorf("r.dao.UpsertDraft -> %w", err)
	}

	return r.draftDaoToDomain(saved)
}

func (r *BallotRepository) FindDraft(ctx context.Context, editionID uint, userID string) (domain.SavedRanking, error) {
	found, err := r.dao.FindDraft(ctx, editionID, userID)
	if err != nil {
		return domain.SavedRanking{}, fmt.Errorf("r.dao.FindDraft -> %w", err)
	}

	return r.draftDaoToDomain(found)
}

func (r *BallotRepository) CreateTelevote(ctx context.Context, televote domain.Televote, phase domain.Phase) (domain.Televote, error) {
	entries, err := encodeEntries(televote.Entries)
	if err != nil {
		return domain.Televote{}, err
	}

	created, err := r.dao.InsertTelevote(ctx, dao.Televote{
		EditionID: televote.EditionID,
		GuestName: televote.GuestName,
		Entries:   entries,
	}, string(phase))
	if err != nil {
		return domain.Televote{}, fmt.Errorf("r.dao.InsertTelevote -> %w", err)
	}

	return r.televoteDaoToDomain(created)
}

func (r *BallotRepository) FindTelevotesByEdition(ctx context.Context, editionID uint) ([]domain.Televote, error) {
	found, err := r.dao.FindTelevotesByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTelevotesByEdition -> %w", err)
	}

	televotes := make([]domain.Televote, 0, len(found))
	for _, f := range found {
		televote, err := r.televoteDaoToDomain(f)
		if err != nil {
			return nil, err
		}
		televotes = append(televotes, televote)
	}
	return televotes, nil
}

func (r *BallotRepository) CreateVotes(ctx context.Context, votes []domain.Vote, phase domain.Phase) ([]domain.Vote, error) {
	rows := make([]dao.Vote, len(votes))
	for i, v := range votes {
		rows[i] = dao.Vote{
			EditionID:    v.EditionID,
			FromUserID:   v.FromUserID,
			SubmissionID: v.SubmissionID,
			Points:       v.Points,
		}
	}

	created, err := r.dao.InsertVotes(ctx, rows, string(phase))
	if err != nil {
		return nil, fmt.Errorf("r.dao.InsertVotes -> %w", err)
	}

	return r.votesDaoToDomain(created), nil
}

func (r *BallotRepository) FindVotesByEdition(ctx context.Context, editionID uint) ([]domain.Vote, error) {
	found, err := r.dao.FindVotesByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindVotesByEdition -> %w", err)
	}

	return r.votesDaoToDomain(found), nil
}

func (r *BallotRepository) HasVoted(ctx context.Context, editionID uint, userID string) (bool, error) {
	voted, err := r.dao.HasVoted(ctx, editionID, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasVoted -> %w", err)
	}
	return voted, nil
}

func (r *BallotRepository) rankingDaoToDomain(row dao.Ranking) (domain.Ranking, error) {
	entries, err := decodeEntries(row.Entries)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("ranking %d: %w", row.ID, err)
	}

	return domain.Ranking{
		ID:        row.ID,
		EditionID: row.EditionID,
		UserID:    row.UserID,
		Entries:   entries,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *BallotRepository) draftDaoToDomain(row dao.SavedRanking) (domain.SavedRanking, error) {
	entries, err := decodeEntries(row.Entries)
	if err != nil {
		return domain.SavedRanking{}, fmt.Errorf("saved ranking %d: %w", row.ID, err)
	}

	return domain.SavedRanking{
		ID:        row.ID,
		EditionID: row.EditionID,
		UserID:    row.UserID,
		Entries:   entries,
		Locked:    row.Locked,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *BallotRepository) televoteDaoToDomain(row dao.Televote) (domain.Televote, error) {
	entries, err := decodeEntries(row.Entries)
	if err != nil {
		return domain.Televote{}, fmt.Errorf("televote %d: %w", row.ID, err)
	}

	return domain.Televote{
		ID:        row.ID,
		EditionID: row.EditionID,
		GuestName: row.GuestName,
		Entries:   entries,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *BallotRepository) votesDaoToDomain(rows []dao.Vote) []domain.Vote {
	votes := make([]domain.Vote, len(rows))
	for i, v := range rows {
		votes[i] = domain.Vote{
			ID:           v.ID,
			EditionID:    v.EditionID,
			SubmissionID: v.SubmissionID,
			FromUserID:   v.FromUserID,
			Points:       v.Points,
			CreatedAt:    v.CreatedAt,
		}
	}
	return votes
}

func encodeEntries(entries []uint) (datatypes.JSON, error) {
	if entries == nil {
		entries = []uint{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal -> %w", err)
	}
	return datatypes.JSON(raw), nil
}

// decodeEntries parses a stored ballot and rejects shapes no write path
// could have produced.
func decodeEntries(raw datatypes.JSON) ([]uint, error) {
	var entries []uint
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: malformed ballot entries: %v", domain.ErrIntegrity, err)
	}
	if err := domain.ValidateEntries(entries); err != nil {
		return nil, fmt.Errorf("%w: stored ballot: %v", domain.ErrIntegrity, err)
	}
	if entries == nil {
		entries = []uint{}
	}
	return entries, nil
}
