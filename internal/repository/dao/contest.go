package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Contest struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Description  string
	HostID       string               `gorm:"not null;index"`
	JoinCode     string               `gorm:"not null"`
	Participants []ContestParticipant `gorm:"foreignKey:ContestID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ContestParticipant rows form the membership set; the composite primary
// key keeps it duplicate free.
type ContestParticipant struct {
	ContestID uint   `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	JoinedAt  time.Time
}

type ContestDAO struct {
	base
}

func NewContestDAO(db *gorm.DB, timeout time.Duration) *ContestDAO {
	return &ContestDAO{base: newBase(db, timeout)}
}

// Insert stores the contest and enrolls its host as the first participant.
func (d *ContestDAO) Insert(ctx context.Context, contest Contest) (Contest, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		contest.Participants = nil
		if err := tx.Create(&contest).Error; err != nil {
			return err
		}
		host := ContestParticipant{ContestID: contest.ID, UserID: contest.HostID, JoinedAt: time.Now()}
		if err := tx.Create(&host).Error; err != nil {
			return err
		}
		contest.Participants = []ContestParticipant{host}
		return nil
	})
	if err != nil {
		return Contest{}, err
	}

	return contest, nil
}

func (d *ContestDAO) FindByID(ctx context.Context, id uint) (Contest, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var contest Contest
	err := db.Preload("Participants", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("joined_at, user_id")
	}).First(&contest, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Contest{}, ErrContestNotFound
		}
		return Contest{}, err
	}

	return contest, nil
}

func (d *ContestDAO) FindByParticipant(ctx context.Context, userID string) ([]Contest, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var contests []Contest
	err := db.Preload("Participants").
		Joins("JOIN contest_participants cp ON cp.contest_id = contests.id").
		Where("cp.user_id = ?", userID).
		Order("contests.created_at DESC").
		Find(&contests).Error
	if err != nil {
		return nil, err
	}

	return contests, nil
}

func (d *ContestDAO) Update(ctx context.Context, contest Contest) (Contest, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Contest{ID: contest.ID}).Updates(map[string]any{
		"name":        contest.Name,
		"description": contest.Description,
		"join_code":   contest.JoinCode,
	})
	if result.Error != nil {
		return Contest{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Contest{}, ErrContestNotFound
	}

	return d.FindByID(ctx, contest.ID)
}

func (d *ContestDAO) AddParticipant(ctx context.Context, contestID uint, userID string) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	err := db.Create(&ContestParticipant{ContestID: contestID, UserID: userID, JoinedAt: time.Now()}).Error
	if err != nil {
		if isUniqueViolation(err, participantPrimaryKey) {
			return ErrAlreadyParticipant
		}
		return err
	}

	return nil
}

func (d *ContestDAO) RemoveParticipant(ctx context.Context, contestID uint, userID string) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	return db.Where("contest_id = ? AND user_id = ?", contestID, userID).Delete(&ContestParticipant{}).Error
}

func (d *ContestDAO) CountParticipants(ctx context.Context, contestID uint) (int, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&ContestParticipant{}).Where("contest_id = ?", contestID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeleteCascade removes the contest and every record below it in one
// transaction.
func (d *ContestDAO) DeleteCascade(ctx context.Context, contestID uint) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		var editionIDs []uint
		if err := tx.Model(&Edition{}).Where("contest_id = ?", contestID).Pluck("id", &editionIDs).Error; err != nil {
			return err
		}

		if len(editionIDs) > 0 {
			for _, model := range []any{&Vote{}, &Televote{}, &SavedRanking{}, &Ranking{}, &Submission{}} {
				if err := tx.Where("edition_id IN ?", editionIDs).Delete(model).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("id IN ?", editionIDs).Delete(&Edition{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("contest_id = ?", contestID).Delete(&ContestParticipant{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Contest{}, contestID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContestNotFound
		}
		return nil
	})
}
