package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/songcontest/songcontest-api/internal/domain"
)

var closePolicies = []interface{}{
	string(domain.ClosePolicySpecificDate),
	string(domain.ClosePolicyAllEntries),
	string(domain.ClosePolicyManually),
}

// EditionRequest is used for both creating and updating an edition. Times are
// RFC 3339.
type EditionRequest struct {
	Name               string     `json:"name" binding:"required"`
	Description        string     `json:"description"`
	SubmissionsOpen    *time.Time `json:"submissions_open"`
	SubmissionDeadline *time.Time `json:"submission_deadline"`
	VotingDeadline     *time.Time `json:"voting_deadline"`
	SubmissionClose    string     `json:"submission_close" binding:"required"`
	VotingClose        string     `json:"voting_close" binding:"required"`
}

func (req *EditionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 80)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.SubmissionClose, validation.Required, validation.In(closePolicies...)),
		validation.Field(&req.VotingClose, validation.Required, validation.In(closePolicies...)),
	)
}

func (req *EditionRequest) ToDomain(id, contestID uint) domain.Edition {
	return domain.Edition{
		ID:                 id,
		ContestID:          contestID,
		Name:               req.Name,
		Description:        req.Description,
		SubmissionsOpen:    req.SubmissionsOpen,
		SubmissionDeadline: req.SubmissionDeadline,
		VotingDeadline:     req.VotingDeadline,
		SubmissionClose:    domain.ClosePolicy(req.SubmissionClose),
		VotingClose:        domain.ClosePolicy(req.VotingClose),
	}
}

type PlaylistRequest struct {
	URL string `json:"url" binding:"required"`
}

func (req *PlaylistRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.URL, validation.Required, is.URL),
	)
}
