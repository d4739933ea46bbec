package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/request"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
)

type SubmissionService interface {
	CreateSubmission(ctx context.Context, userID string, submission domain.Submission) (domain.Submission, error)
	GetSubmissions(ctx context.Context, userID string, editionID uint) ([]domain.Submission, error)
	RejectSubmission(ctx context.Context, userID string, submissionID uint) (domain.Submission, error)
}

type SubmissionHandler struct {
	svc SubmissionService
}

func NewSubmissionHandler(svc SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// HandleCreateSubmission godoc
// @Summary      Submit a song
// @Description  Participants only, while the edition accepts submissions. One active submission per participant.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                              true  "Edition ID"
// @Param        input      body      request.CreateSubmissionRequest  true  "Song"
// @Success      201        {object}  domain.Submission
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/submissions [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleCreateSubmission(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.CreateSubmissionRequest
	if !bind(ctx, &input) {
		return
	}

	submission, err := h.svc.CreateSubmission(ctx.Request.Context(), middleware.UserID(ctx), input.ToDomain(editionID))
	if err != nil {
		renderErr(ctx, "v1.HandleCreateSubmission -> h.svc.CreateSubmission", err)
		return
	}

	ctx.JSON(http.StatusCreated, submission)
}

// HandleGetSubmissions godoc
// @Summary      List an edition's submissions
// @Description  Ordered by running order once it is assigned. Scores stay hidden until results are visible to the caller.
// @Tags         submissions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {array}   domain.Submission
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /editions/{editionID}/submissions [get]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleGetSubmissions(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	submissions, err := h.svc.GetSubmissions(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetSubmissions -> h.svc.GetSubmissions", err)
		return
	}

	ctx.JSON(http.StatusOK, submissions)
}

// HandleRejectSubmission godoc
// @Summary      Reject a submission
// @Description  Host only. A rejected submission is left out of scoring and frees its author's slot.
// @Tags         submissions
// @Produce      json
// @Param        submissionID  path      int  true  "Submission ID"
// @Success      200           {object}  domain.Submission
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /submissions/{submissionID}/reject [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleRejectSubmission(ctx *gin.Context) {
	submissionID, ok := pathID(ctx, "submissionID")
	if !ok {
		return
	}

	submission, err := h.svc.RejectSubmission(ctx.Request.Context(), middleware.UserID(ctx), submissionID)
	if err != nil {
		renderErr(ctx, "v1.HandleRejectSubmission -> h.svc.RejectSubmission", err)
		return
	}

	ctx.JSON(http.StatusOK, submission)
}
