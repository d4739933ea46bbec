package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Profile{},
		&Contest{},
		&ContestParticipant{},
		&Edition{},
		&Submission{},
		&Ranking{},
		&SavedRanking{},
		&Televote{},
		&Vote{},
	); err != nil {
		return err
	}

	// At most one non-rejected submission per user and edition. Rejected
	// entries free the slot, so this cannot be a plain unique index.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeSubmissionIndex +
		` ON submissions (edition_id, user_id) WHERE rejected = false`).Error
}

// base carries the handle and the per-call deadline shared by every DAO.
type base struct {
	db      *gorm.DB
	timeout time.Duration
}

func newBase(db *gorm.DB, timeout time.Duration) base {
	return base{db: db, timeout: timeout}
}

// conn returns a session bound to a context that expires after the call
// timeout.
func (b base) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if b.timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return b.db.WithContext(ctx), cancel
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}
