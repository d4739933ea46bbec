package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/response"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
)

type ResultsService interface {
	GetEditionResults(ctx context.Context, userID string, editionID uint) (domain.Edition, []scoring.Result, error)
	GetLeaderboard(ctx context.Context, userID string, contestID uint) ([]scoring.Standing, error)
}

type ResultsHandler struct {
	svc ResultsService
}

func NewResultsHandler(svc ResultsService) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// HandleGetEditionResults godoc
// @Summary      Get edition results
// @Description  Scored and ordered submissions. Hosts always see them, other participants once revealed.
// @Tags         results
// @Produce      json
// @Param        editionID  path      int   true   "Edition ID"
// @Param        breakdown  query     bool  false  "Include jury, televote and placement details"
// @Success      200        {object}  response.EditionResults
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/results [get]
// @Security     BearerAuth
func (h *ResultsHandler) HandleGetEditionResults(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	breakdown, err := strconv.ParseBool(ctx.DefaultQuery("breakdown", "false"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	edition, results, err := h.svc.GetEditionResults(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetEditionResults -> h.svc.GetEditionResults", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEditionResults(edition, results, breakdown))
}

// HandleGetLeaderboard godoc
// @Summary      Get the contest leaderboard
// @Description  Totals across every edition whose results the caller can see.
// @Tags         results
// @Produce      json
// @Param        contestID  path      int  true  "Contest ID"
// @Success      200        {object}  response.Leaderboard
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /contests/{contestID}/leaderboard [get]
// @Security     BearerAuth
func (h *ResultsHandler) HandleGetLeaderboard(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	standings, err := h.svc.GetLeaderboard(ctx.Request.Context(), middleware.UserID(ctx), contestID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetLeaderboard -> h.svc.GetLeaderboard", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Leaderboard{ContestID: contestID, Standings: standings})
}
