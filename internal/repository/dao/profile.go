package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Profile struct {
	UserID      string `gorm:"primaryKey"`
	DisplayName string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProfileDAO struct {
	base
}

func NewProfileDAO(db *gorm.DB, timeout time.Duration) *ProfileDAO {
	return &ProfileDAO{base: newBase(db, timeout)}
}

// InsertIfMissing creates the profile unless one already exists and returns
// the stored row either way.
func (d *ProfileDAO) InsertIfMissing(ctx context.Context, profile Profile) (Profile, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
		return Profile{}, err
	}
	return d.FindByUserID(ctx, profile.UserID)
}

func (d *ProfileDAO) FindByUserID(ctx context.Context, userID string) (Profile, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var profile Profile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return profile, nil
}

func (d *ProfileDAO) UpdateDisplayName(ctx context.Context, userID, name string) (Profile, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Profile{}).Where("user_id = ?", userID).Update("display_name", name)
	if result.Error != nil {
		return Profile{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Profile{}, ErrProfileNotFound
	}
	return d.FindByUserID(ctx, userID)
}
