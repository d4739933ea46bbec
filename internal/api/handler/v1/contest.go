package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/request"
	"github.com/songcontest/songcontest-api/internal/api/handler/v1/response"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
)

type ContestService interface {
	CreateContest(ctx context.Context, hostID string, contest domain.Contest) (domain.Contest, error)
	GetContest(ctx context.Context, userID string, contestID uint) (domain.Contest, error)
	GetMyContests(ctx context.Context, userID string) ([]domain.Contest, error)
	UpdateContest(ctx context.Context, userID string, changes domain.Contest) (domain.Contest, error)
	DeleteContest(ctx context.Context, userID string, contestID uint) error
	JoinContest(ctx context.Context, userID string, contestID uint, joinCode string) (domain.Contest, error)
	LeaveContest(ctx context.Context, userID string, contestID uint) error
}

type ContestHandler struct {
	svc ContestService
}

func NewContestHandler(svc ContestService) *ContestHandler {
	return &ContestHandler{svc: svc}
}

// HandleCreateContest godoc
// @Summary      Create a contest
// @Description  The caller becomes host and first participant. A join code is generated unless a custom one is given.
// @Tags         contests
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateContestRequest  true  "Contest details"
// @Success      201    {object}  domain.Contest
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /contests [post]
// @Security     BearerAuth
func (h *ContestHandler) HandleCreateContest(ctx *gin.Context) {
	var input request.CreateContestRequest
	if !bind(ctx, &input) {
		return
	}

	contest, err := h.svc.CreateContest(ctx.Request.Context(), middleware.UserID(ctx), input.ToDomain())
	if err != nil {
		renderErr(ctx, "v1.HandleCreateContest -> h.svc.CreateContest", err)
		return
	}

	ctx.JSON(http.StatusCreated, contest)
}

// HandleGetMyContests godoc
// @Summary      List the caller's contests
// @Tags         contests
// @Produce      json
// @Success      200  {array}   domain.Contest
// @Failure      401  {object}  response.Err
// @Router       /contests [get]
// @Security     BearerAuth
func (h *ContestHandler) HandleGetMyContests(ctx *gin.Context) {
	contests, err := h.svc.GetMyContests(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		renderErr(ctx, "v1.HandleGetMyContests -> h.svc.GetMyContests", err)
		return
	}

	ctx.JSON(http.StatusOK, contests)
}

// HandleGetContest godoc
// @Summary      Get a contest
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "Contest ID"
// @Success      200        {object}  domain.Contest
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /contests/{contestID} [get]
// @Security     BearerAuth
func (h *ContestHandler) HandleGetContest(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	contest, err := h.svc.GetContest(ctx.Request.Context(), middleware.UserID(ctx), contestID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetContest -> h.svc.GetContest", err)
		return
	}

	ctx.JSON(http.StatusOK, contest)
}

// HandleUpdateContest godoc
// @Summary      Update a contest
// @Description  Host only. Omitted fields keep their value.
// @Tags         contests
// @Accept       json
// @Produce      json
// @Param        contestID  path      int                           true  "Contest ID"
// @Param        input      body      request.UpdateContestRequest  true  "Changes"
// @Success      200        {object}  domain.Contest
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /contests/{contestID} [put]
// @Security     BearerAuth
func (h *ContestHandler) HandleUpdateContest(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	var input request.UpdateContestRequest
	if !bind(ctx, &input) {
		return
	}

	contest, err := h.svc.UpdateContest(ctx.Request.Context(), middleware.UserID(ctx), input.ToDomain(contestID))
	if err != nil {
		renderErr(ctx, "v1.HandleUpdateContest -> h.svc.UpdateContest", err)
		return
	}

	ctx.JSON(http.StatusOK, contest)
}

// HandleDeleteContest godoc
// @Summary      Delete a contest
// @Description  Host only. Removes every edition, submission and ballot of the contest.
// @Tags         contests
// @Param        contestID  path  int  true  "Contest ID"
// @Success      204
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /contests/{contestID} [delete]
// @Security     BearerAuth
func (h *ContestHandler) HandleDeleteContest(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	if err := h.svc.DeleteContest(ctx.Request.Context(), middleware.UserID(ctx), contestID); err != nil {
		renderErr(ctx, "v1.HandleDeleteContest -> h.svc.DeleteContest", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleJoinContest godoc
// @Summary      Join a contest
// @Tags         contests
// @Accept       json
// @Produce      json
// @Param        contestID  path      int                         true  "Contest ID"
// @Param        input      body      request.JoinContestRequest  true  "Join code"
// @Success      200        {object}  domain.Contest
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /contests/{contestID}/join [post]
// @Security     BearerAuth
func (h *ContestHandler) HandleJoinContest(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	var input request.JoinContestRequest
	if !bind(ctx, &input) {
		return
	}

	contest, err := h.svc.JoinContest(ctx.Request.Context(), middleware.UserID(ctx), contestID, input.JoinCode)
	if err != nil {
		renderErr(ctx, "v1.HandleJoinContest -> h.svc.JoinContest", err)
		return
	}

	ctx.JSON(http.StatusOK, contest)
}

// HandleLeaveContest godoc
// @Summary      Leave a contest
// @Description  The host cannot leave their own contest.
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "Contest ID"
// @Success      200        {object}  response.Message
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /contests/{contestID}/leave [post]
// @Security     BearerAuth
func (h *ContestHandler) HandleLeaveContest(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	if err := h.svc.LeaveContest(ctx.Request.Context(), middleware.UserID(ctx), contestID); err != nil {
		renderErr(ctx, "v1.HandleLeaveContest -> h.svc.LeaveContest", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "left the contest"})
}
