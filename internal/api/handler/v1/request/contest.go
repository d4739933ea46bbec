package request

import (
	"errors"
	"fmt"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/songcontest/songcontest-api/internal/domain"
)

// Custom join codes are 6 to 12 upper case letters and digits with at least
// one of each.
const joinCodePattern = `^(?=.*[A-Z])(?=.*\d)[A-Z0-9]{6,12}$`

var (
	joinCodeExp = regexp2.MustCompile(joinCodePattern, regexp2.None)

	errInvalidJoinCode = errors.New("must be 6 to 12 upper case letters and digits, with at least one of each")
)

func validJoinCode(value interface{}) error {
	code, _ := value.(string)
	if code == "" {
		return nil
	}
	ok, err := joinCodeExp.MatchString(code)
	if err != nil {
		return fmt.Errorf("joinCodeExp.MatchString -> %w", err)
	}
	if !ok {
		return errInvalidJoinCode
	}
	return nil
}

type CreateContestRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	JoinCode    string `json:"join_code,omitempty"`
}

func (req *CreateContestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 80)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.JoinCode, validation.By(validJoinCode)),
	)
}

func (req *CreateContestRequest) ToDomain() domain.Contest {
	return domain.Contest{
		Name:        req.Name,
		Description: req.Description,
		JoinCode:    req.JoinCode,
	}
}

// UpdateContestRequest leaves fields that are omitted unchanged.
type UpdateContestRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	JoinCode    string `json:"join_code"`
}

func (req *UpdateContestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(2, 80)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.JoinCode, validation.By(validJoinCode)),
	)
}

func (req *UpdateContestRequest) ToDomain(contestID uint) domain.Contest {
	return domain.Contest{
		ID:          contestID,
		Name:        req.Name,
		Description: req.Description,
		JoinCode:    req.JoinCode,
	}
}

type JoinContestRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
}

func (req *JoinContestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.JoinCode, validation.Required, validation.Length(1, 32)),
	)
}
