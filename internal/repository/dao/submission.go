package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Submission struct {
	ID           uint   `gorm:"primaryKey"`
	EditionID    uint   `gorm:"not null;index"`
	UserID       string `gorm:"not null;index"`
	SongTitle    string `gorm:"not null"`
	Artist       string `gorm:"not null"`
	TrackURL     string
	Country      string
	Flag         string
	RunningOrder *int
	Rejected     bool `gorm:"not null;default:false"`
	Score        *int
	Rank         *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SubmissionDAO struct {
	base
}

func NewSubmissionDAO(db *gorm.DB, timeout time.Duration) *SubmissionDAO {
	return &SubmissionDAO{base: newBase(db, timeout)}
}

// Insert stores the submission only while its edition is in phase.
func (d *SubmissionDAO) Insert(ctx context.Context, submission Submission, phase string) (Submission, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockPhase(tx, submission.EditionID, phase); err != nil {
			return err
		}
		return tx.Create(&submission).Error
	})
	if err != nil {
		if isUniqueViolation(err, activeSubmissionIndex) {
			return Submission{}, ErrDuplicateSubmission
		}
		return Submission{}, err
	}
	return submission, nil
}

func (d *SubmissionDAO) FindByID(ctx context.Context, id uint) (Submission, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var submission Submission
	if err := db.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	return submission, nil
}

// FindByEdition returns every submission of the edition, rejected ones
// included, in running order once assigned and by id otherwise.
func (d *SubmissionDAO) FindByEdition(ctx context.Context, editionID uint) ([]Submission, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var submissions []Submission
	err := db.Where("edition_id = ?", editionID).
		Order("running_order ASC NULLS LAST").
		Order("id").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (d *SubmissionDAO) FindByEditions(ctx context.Context, editionIDs []uint) ([]Submission, error) {
	if len(editionIDs) == 0 {
		return nil, nil
	}
	db, cancel := d.conn(ctx)
	defer cancel()

	var submissions []Submission
	if err := db.Where("edition_id IN ?", editionIDs).Order("id").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// FindActiveByOwner returns the user's non-rejected submission, if any.
func (d *SubmissionDAO) FindActiveByOwner(ctx context.Context, editionID uint, userID string) (Submission, bool, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var submission Submission
	err := db.Where("edition_id = ? AND user_id = ? AND rejected = ?", editionID, userID, false).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Submission{}, false, nil
		}
		return Submission{}, false, err
	}
	return submission, true, nil
}

func (d *SubmissionDAO) CountEligible(ctx context.Context, editionID uint) (int, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&Submission{}).Where("edition_id = ? AND rejected = ?", editionID, false).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (d *SubmissionDAO) Reject(ctx context.Context, id uint) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Submission{ID: id}).Updates(map[string]any{"rejected": true, "score": nil, "rank": nil})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (d *SubmissionDAO) UpdateScore(ctx context.Context, id uint, score, rank int) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Submission{ID: id}).Updates(map[string]any{"score": score, "rank": rank})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
