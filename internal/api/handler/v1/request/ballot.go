package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/songcontest/songcontest-api/internal/domain"
)

func entriesShape(value interface{}) error {
	entries, _ := value.([]uint)
	return domain.ValidateEntries(entries)
}

// DraftRequest may hold an empty list; a draft is work in progress.
type DraftRequest struct {
	Entries []uint `json:"entries"`
}

func (req *DraftRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Entries, validation.By(entriesShape)),
	)
}

type RankingRequest struct {
	Entries []uint `json:"entries" binding:"required"`
}

func (req *RankingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Entries, validation.Required, validation.By(entriesShape)),
	)
}

type TelevoteRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
	Entries   []uint `json:"entries" binding:"required"`
}

func (req *TelevoteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.GuestName, validation.Required, validation.Length(1, 60)),
		validation.Field(&req.Entries, validation.Required, validation.By(entriesShape)),
	)
}

type VoteItem struct {
	SubmissionID uint `json:"submission_id"`
	Points       int  `json:"points"`
}

func (v VoteItem) Validate() error {
	return validation.ValidateStruct(
		&v,
		validation.Field(&v.SubmissionID, validation.Required),
		validation.Field(&v.Points, validation.Required, validation.Min(1), validation.Max(12)),
	)
}

type VotesRequest struct {
	Votes []VoteItem `json:"votes" binding:"required"`
}

func (req *VotesRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Votes, validation.Required, validation.Length(1, domain.MaxBallotEntries)),
	)
}

func (req *VotesRequest) ToDomain(editionID uint) []domain.Vote {
	votes := make([]domain.Vote, 0, len(req.Votes))
	for _, v := range req.Votes {
		votes = append(votes, domain.Vote{
			EditionID:    editionID,
			SubmissionID: v.SubmissionID,
			Points:       v.Points,
		})
	}
	return votes
}
