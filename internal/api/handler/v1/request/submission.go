package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/songcontest/songcontest-api/internal/domain"
)

type CreateSubmissionRequest struct {
	SongTitle string `json:"song_title" binding:"required"`
	Artist    string `json:"artist" binding:"required"`
	TrackURL  string `json:"track_url"`
	Country   string `json:"country"`
	Flag      string `json:"flag"`
}

func (req *CreateSubmissionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SongTitle, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Artist, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.TrackURL, is.URL),
		validation.Field(&req.Country, validation.Length(0, 60)),
		validation.Field(&req.Flag, validation.Length(0, 16)),
	)
}

func (req *CreateSubmissionRequest) ToDomain(editionID uint) domain.Submission {
	return domain.Submission{
		EditionID: editionID,
		SongTitle: req.SongTitle,
		Artist:    req.Artist,
		TrackURL:  req.TrackURL,
		Country:   req.Country,
		Flag:      req.Flag,
	}
}
