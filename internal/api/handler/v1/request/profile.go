package request

import validation "github.com/go-ozzo/ozzo-validation"

type ConfirmProfileRequest struct {
	DisplayName string `json:"display_name"`
}

func (req *ConfirmProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DisplayName, validation.Length(0, 50)),
	)
}

type RenameProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

func (req *RenameProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DisplayName, validation.Required, validation.Length(1, 50)),
	)
}
