package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/songcontest/songcontest-api/internal/domain"
)

// Err is the JSON body of every failed request.
type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	FailedIDs  []uint `json:"failed_ids,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}
	return e.Err.Error()
}

func newErr(status int, err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
	}
	if err != nil {
		e.ErrorText = err.Error()
	}
	return e
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrUnauthenticated(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrNotFound(resource, key string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s=%v not found", resource, key, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

func ErrUnprocessable(err error) *Err {
	return newErr(http.StatusUnprocessableEntity, err)
}

func ErrPartialWrite(err *domain.PartialBatchError) *Err {
	e := newErr(http.StatusBadGateway, err)
	e.FailedIDs = err.FailedIDs
	return e
}

// ErrInternalServerError hides the cause from the client; it is only logged.
func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, err)
	e.ErrorText = "internal server error"
	return e
}

// FromError maps a service error onto its HTTP rendering by error kind.
func FromError(err error) *Err {
	var partial *domain.PartialBatchError
	var rendered *Err

	switch {
	case errors.As(err, &rendered):
		return rendered
	case errors.As(err, &partial):
		return ErrPartialWrite(partial)
	case errors.Is(err, domain.ErrUnauthenticated):
		return ErrUnauthenticated(err)
	case errors.Is(err, domain.ErrUnauthorized):
		return ErrPermissionDenied(err)
	case errors.Is(err, domain.ErrNotFound):
		return newErr(http.StatusNotFound, err)
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict(err)
	case errors.Is(err, domain.ErrIntegrity):
		return ErrUnprocessable(err)
	case errors.Is(err, domain.ErrInvalidInput):
		return ErrBadRequest(err)
	default:
		return ErrInternalServerError(err)
	}
}

// RenderErr logs the error with the request id and aborts the request with
// its JSON body.
func RenderErr(ctx *gin.Context, e *Err) {
	e.RequestID = requestid.Get(ctx)

	fields := []zap.Field{
		zap.String("requestID", e.RequestID),
		zap.Int("status", e.HTTPStatusCode),
		zap.String("path", ctx.FullPath()),
		zap.Error(e.Err),
	}
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed", fields...)
	} else {
		zap.L().Debug("request rejected", fields...)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}
