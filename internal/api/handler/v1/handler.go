package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/response"
)

type validatable interface {
	Validate() error
}

// bind decodes and validates a JSON body. It renders the error itself and
// reports whether the handler may go on.
func bind(ctx *gin.Context, input validatable) bool {
	if err := ctx.ShouldBindJSON(input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}
	return true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, ctx.Param(name))))
		return 0, false
	}
	return uint(id), true
}

// renderErr renders a service error by kind. The client sees the service
// message while the log keeps the call path.
func renderErr(ctx *gin.Context, op string, err error) {
	e := response.FromError(err)
	e.Err = fmt.Errorf("%s -> %w", op, err)
	response.RenderErr(ctx, e)
}

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.Health{Status: "ok"})
}
