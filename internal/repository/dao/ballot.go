package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entries columns hold a JSON array of submission ids, best first.

type Ranking struct {
	ID        uint           `gorm:"primaryKey"`
	EditionID uint           `gorm:"not null;uniqueIndex:idx_rankings_edition_user"`
	UserID    string         `gorm:"not null;uniqueIndex:idx_rankings_edition_user"`
	Entries   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

type SavedRanking struct {
	ID        uint           `gorm:"primaryKey"`
	EditionID uint           `gorm:"not null;uniqueIndex:idx_saved_rankings_edition_user"`
	UserID    string         `gorm:"not null;uniqueIndex:idx_saved_rankings_edition_user"`
	Entries   datatypes.JSON `gorm:"type:jsonb;not null"`
	Locked    bool           `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Televote struct {
	ID        uint           `gorm:"primaryKey"`
	EditionID uint           `gorm:"not null;index"`
	GuestName string         `gorm:"not null"`
	Entries   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

type Vote struct {
	ID           uint   `gorm:"primaryKey"`
	EditionID    uint   `gorm:"not null;uniqueIndex:idx_votes_edition_user_submission"`
	FromUserID   string `gorm:"not null;uniqueIndex:idx_votes_edition_user_submission"`
	SubmissionID uint   `gorm:"not null;uniqueIndex:idx_votes_edition_user_submission"`
	Points       int    `gorm:"not null"`
	CreatedAt    time.Time
}

type BallotDAO struct {
	base
}

func NewBallotDAO(db *gorm.DB, timeout time.Duration) *BallotDAO {
	return &BallotDAO{base: newBase(db, timeout)}
}

// InsertRanking stores a finalized ranking and locks the author's draft, if
// there is one, in the same transaction. The edition must still be in phase.
func (d *BallotDAO) InsertRanking(ctx context.Context, ranking Ranking, phase string) (Ranking, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockPhase(tx, ranking.EditionID, phase); err != nil {
			return err
		}
		if err := tx.Create(&ranking).Error; err != nil {
			return err
		}
		return tx.Model(&SavedRanking{}).
			Where("edition_id = ? AND user_id = ?", ranking.EditionID, ranking.UserID).
			Updates(map[string]any{"locked": true, "entries": ranking.Entries}).Error
	})
	if err != nil {
		if isUniqueViolation(err, rankingOwnerIndex) {
			return Ranking{}, ErrDuplicateRanking
		}
		return Ranking{}, err
	}
	return ranking, nil
}

func (d *BallotDAO) FindRanking(ctx context.Context, editionID uint, userID string) (Ranking, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var ranking Ranking
	if err := db.Where("edition_id = ? AND user_id = ?", editionID, userID).First(&ranking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ranking{}, ErrRankingNotFound
		}
		return Ranking{}, err
	}
	return ranking, nil
}

func (d *BallotDAO) FindRankingsByEdition(ctx context.Context, editionID uint) ([]Ranking, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var rankings []Ranking
	if err := db.Where("edition_id = ?", editionID).Order("id").Find(&rankings).Error; err != nil {
		return nil, err
	}
	return rankings, nil
}

func (d *BallotDAO) CountRankings(ctx context.Context, editionID uint) (int, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&Ranking{}).Where("edition_id = ?", editionID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// UpsertDraft creates or replaces the user's draft unless it is locked.
func (d *BallotDAO) UpsertDraft(ctx context.Context, draft SavedRanking) (SavedRanking, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	now := time.Now()
	draft.CreatedAt, draft.UpdatedAt = now, now
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "edition_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{"entries": draft.Entries, "updated_at": now}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "saved_rankings", Name: "locked"}, Value: false},
		}},
	}).Create(&draft)
	if result.Error != nil {
		return SavedRanking{}, result.Error
	}
	if result.RowsAffected == 0 {
		return SavedRanking{}, ErrDraftLocked
	}

	return d.FindDraft(ctx, draft.EditionID, draft.UserID)
}

func (d *BallotDAO) FindDraft(ctx context.Context, editionID uint, userID string) (SavedRanking, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var draft SavedRanking
	if err := db.Where("edition_id = ? AND user_id = ?", editionID, userID).First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SavedRanking{}, ErrDraftNotFound
		}
		return SavedRanking{}, err
	}
	return draft, nil
}

func (d *BallotDAO) InsertTelevote(ctx context.Context, televote Televote, phase string) (Televote, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockPhase(tx, televote.EditionID, phase); err != nil {
			return err
		}
		return tx.Create(&televote).Error
	})
	if err != nil {
		return Televote{}, err
	}
	return televote, nil
}

func (d *BallotDAO) FindTelevotesByEdition(ctx context.Context, editionID uint) ([]Televote, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var televotes []Televote
	if err := db.Where("edition_id = ?", editionID).Order("id").Find(&televotes).Error; err != nil {
		return nil, err
	}
	return televotes, nil
}

// InsertVotes stores one user's whole legacy vote batch atomically while
// the edition is in phase.
func (d *BallotDAO) InsertVotes(ctx context.Context, votes []Vote, phase string) ([]Vote, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(votes) == 0 {
			return nil
		}
		if err := lockPhase(tx, votes[0].EditionID, phase); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&Vote{}).
			Where("edition_id = ? AND from_user_id = ?", votes[0].EditionID, votes[0].FromUserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateVote
		}
		return tx.Create(&votes).Error
	})
	if err != nil {
		if isUniqueViolation(err, voteOwnerIndex) {
			return nil, ErrDuplicateVote
		}
		return nil, err
	}
	return votes, nil
}

func (d *BallotDAO) FindVotesByEdition(ctx context.Context, editionID uint) ([]Vote, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var votes []Vote
	if err := db.Where("edition_id = ?", editionID).Order("id").Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (d *BallotDAO) HasVoted(ctx context.Context, editionID uint, userID string) (bool, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&Vote{}).Where("edition_id = ? AND from_user_id = ?", editionID, userID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
