package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Edition struct {
	ID                 uint   `gorm:"primaryKey"`
	ContestID          uint   `gorm:"not null;index"`
	Name               string `gorm:"not null"`
	Description        string
	SubmissionsOpen    *time.Time
	SubmissionDeadline *time.Time
	VotingDeadline     *time.Time
	SubmissionClose    string `gorm:"not null"`
	VotingClose        string `gorm:"not null"`
	Phase              string `gorm:"not null;index"`
	ResultsRevealed    bool   `gorm:"not null;default:false"`
	PlaylistURL        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ClosePlan decides the running order once the edition row is locked. It
// receives the locked edition, its non-rejected submissions ordered by id
// and the participant count, and returns submission ids in running order.
type ClosePlan func(edition Edition, submissions []Submission, participants int) ([]uint, error)

type EditionDAO struct {
	base
}

func NewEditionDAO(db *gorm.DB, timeout time.Duration) *EditionDAO {
	return &EditionDAO{base: newBase(db, timeout)}
}

func (d *EditionDAO) Insert(ctx context.Context, edition Edition) (Edition, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	if err := db.Create(&edition).Error; err != nil {
		return Edition{}, err
	}
	return edition, nil
}

func (d *EditionDAO) FindByID(ctx context.Context, id uint) (Edition, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var edition Edition
	if err := db.First(&edition, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Edition{}, ErrEditionNotFound
		}
		return Edition{}, err
	}
	return edition, nil
}

func (d *EditionDAO) FindByContest(ctx context.Context, contestID uint) ([]Edition, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var editions []Edition
	if err := db.Where("contest_id = ?", contestID).Order("id").Find(&editions).Error; err != nil {
		return nil, err
	}
	return editions, nil
}

// FindInPhases lists editions whose phase is one of phases.
func (d *EditionDAO) FindInPhases(ctx context.Context, phases []string) ([]Edition, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var editions []Edition
	if err := db.Where("phase IN ?", phases).Order("id").Find(&editions).Error; err != nil {
		return nil, err
	}
	return editions, nil
}

// FindUnscored lists editions in the given phase that still have an
// eligible submission without a rank.
func (d *EditionDAO) FindUnscored(ctx context.Context, phase string) ([]Edition, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var editions []Edition
	err := db.Where("phase = ?", phase).
		Where("EXISTS (SELECT 1 FROM submissions s WHERE s.edition_id = editions.id AND s.rejected = false AND s.rank IS NULL)").
		Order("id").
		Find(&editions).Error
	if err != nil {
		return nil, err
	}
	return editions, nil
}

// UpdateDetails writes the host editable fields. Phase, reveal flag and
// playlist have their own paths.
func (d *EditionDAO) UpdateDetails(ctx context.Context, edition Edition) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Edition{ID: edition.ID}).Updates(map[string]any{
		"name":                edition.Name,
		"description":         edition.Description,
		"submissions_open":    edition.SubmissionsOpen,
		"submission_deadline": edition.SubmissionDeadline,
		"voting_deadline":     edition.VotingDeadline,
		"submission_close":    edition.SubmissionClose,
		"voting_close":        edition.VotingClose,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEditionNotFound
	}
	return nil
}

func (d *EditionDAO) SetPlaylist(ctx context.Context, id uint, url string) error {
	return d.updateColumn(ctx, id, "playlist_url", url)
}

func (d *EditionDAO) SetResultsRevealed(ctx context.Context, id uint, revealed bool) error {
	return d.updateColumn(ctx, id, "results_revealed", revealed)
}

func (d *EditionDAO) updateColumn(ctx context.Context, id uint, column string, value any) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Edition{ID: id}).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEditionNotFound
	}
	return nil
}

// AdvancePhase moves the edition from one phase to the next only if it is
// still in from. ErrPhaseChanged means somebody else got there first.
func (d *EditionDAO) AdvancePhase(ctx context.Context, id uint, from, to string) error {
	db, cancel := d.conn(ctx)
	defer cancel()

	result := db.Model(&Edition{}).
		Where("id = ? AND phase = ?", id, from).
		Updates(map[string]any{"phase": to, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhaseChanged
	}
	return nil
}

// lockPhase takes a shared lock on the edition row and checks that it is
// still in phase. Phase changes wait for the caller's transaction to end.
func lockPhase(tx *gorm.DB, editionID uint, phase string) error {
	var edition Edition
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id", "phase").
		First(&edition, editionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEditionNotFound
		}
		return err
	}
	if edition.Phase != phase {
		return ErrPhaseChanged
	}
	return nil
}

// CloseSubmissions locks the edition, lets plan pick the running order,
// writes it and moves the edition to voting, all in one transaction. The
// running order is therefore written exactly once.
func (d *EditionDAO) CloseSubmissions(ctx context.Context, id uint, from, to string, plan ClosePlan) ([]Submission, error) {
	db, cancel := d.conn(ctx)
	defer cancel()

	var ordered []Submission
	err := db.Transaction(func(tx *gorm.DB) error {
		var edition Edition
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&edition, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEditionNotFound
			}
			return err
		}
		if edition.Phase != from {
			return ErrPhaseChanged
		}

		var submissions []Submission
		if err := tx.Where("edition_id = ? AND rejected = ?", id, false).Order("id").Find(&submissions).Error; err != nil {
			return err
		}

		var participants int64
		if err := tx.Model(&ContestParticipant{}).Where("contest_id = ?", edition.ContestID).Count(&participants).Error; err != nil {
			return err
		}

		order, err := plan(edition, submissions, int(participants))
		if err != nil {
			return err
		}

		byID := make(map[uint]Submission, len(submissions))
		for _, s := range submissions {
			byID[s.ID] = s
		}
		for i, subID := range order {
			position := i + 1
			if err := tx.Model(&Submission{}).Where("id = ?", subID).Update("running_order", position).Error; err != nil {
				return err
			}
			s := byID[subID]
			s.RunningOrder = &position
			ordered = append(ordered, s)
		}

		return tx.Model(&Edition{}).Where("id = ?", id).
			Updates(map[string]any{"phase": to, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	return ordered, nil
}
