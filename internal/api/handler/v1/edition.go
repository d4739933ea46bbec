package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/request"
	"github.com/songcontest/songcontest-api/internal/api/handler/v1/response"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
)

type EditionService interface {
	CreateEdition(ctx context.Context, userID string, edition domain.Edition) (domain.Edition, error)
	GetEdition(ctx context.Context, userID string, editionID uint) (domain.Edition, error)
	GetEditions(ctx context.Context, userID string, contestID uint) ([]domain.Edition, error)
	UpdateEdition(ctx context.Context, userID string, changes domain.Edition) (domain.Edition, error)
	OpenSubmissions(ctx context.Context, userID string, editionID uint) (domain.Edition, error)
	CloseSubmissions(ctx context.Context, userID string, editionID uint) ([]domain.Submission, error)
	CloseVoting(ctx context.Context, userID string, editionID uint) ([]scoring.Result, error)
	FinalizeEdition(ctx context.Context, userID string, editionID uint) (domain.Edition, error)
	RevealResults(ctx context.Context, userID string, editionID uint) (domain.Edition, error)
	SetPlaylist(ctx context.Context, userID string, editionID uint, url string) (domain.Edition, error)
}

type EditionHandler struct {
	svc EditionService
}

func NewEditionHandler(svc EditionService) *EditionHandler {
	return &EditionHandler{svc: svc}
}

// HandleCreateEdition godoc
// @Summary      Create an edition
// @Description  Host only. New editions start UPCOMING.
// @Tags         editions
// @Accept       json
// @Produce      json
// @Param        contestID  path      int                     true  "Contest ID"
// @Param        input      body      request.EditionRequest  true  "Edition details"
// @Success      201        {object}  domain.Edition
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /contests/{contestID}/editions [post]
// @Security     BearerAuth
func (h *EditionHandler) HandleCreateEdition(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	var input request.EditionRequest
	if !bind(ctx, &input) {
		return
	}

	edition, err := h.svc.CreateEdition(ctx.Request.Context(), middleware.UserID(ctx), input.ToDomain(0, contestID))
	if err != nil {
		renderErr(ctx, "v1.HandleCreateEdition -> h.svc.CreateEdition", err)
		return
	}

	ctx.JSON(http.StatusCreated, edition)
}

// HandleGetEditions godoc
// @Summary      List a contest's editions
// @Tags         editions
// @Produce      json
// @Param        contestID  path      int  true  "Contest ID"
// @Success      200        {array}   domain.Edition
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /contests/{contestID}/editions [get]
// @Security     BearerAuth
func (h *EditionHandler) HandleGetEditions(ctx *gin.Context) {
	contestID, ok := pathID(ctx, "contestID")
	if !ok {
		return
	}

	editions, err := h.svc.GetEditions(ctx.Request.Context(), middleware.UserID(ctx), contestID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetEditions -> h.svc.GetEditions", err)
		return
	}

	ctx.JSON(http.StatusOK, editions)
}

// HandleGetEdition godoc
// @Summary      Get an edition
// @Tags         editions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  domain.Edition
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /editions/{editionID} [get]
// @Security     BearerAuth
func (h *EditionHandler) HandleGetEdition(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	edition, err := h.svc.GetEdition(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetEdition -> h.svc.GetEdition", err)
		return
	}

	ctx.JSON(http.StatusOK, edition)
}

// HandleUpdateEdition godoc
// @Summary      Update an edition
// @Description  Host only. Refused once results are in. Voting cannot switch to close on all entries while participants are missing an entry.
// @Tags         editions
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                     true  "Edition ID"
// @Param        input      body      request.EditionRequest  true  "Edition details"
// @Success      200        {object}  domain.Edition
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID} [put]
// @Security     BearerAuth
func (h *EditionHandler) HandleUpdateEdition(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.EditionRequest
	if !bind(ctx, &input) {
		return
	}

	edition, err := h.svc.UpdateEdition(ctx.Request.Context(), middleware.UserID(ctx), input.ToDomain(editionID, 0))
	if err != nil {
		renderErr(ctx, "v1.HandleUpdateEdition -> h.svc.UpdateEdition", err)
		return
	}

	ctx.JSON(http.StatusOK, edition)
}

// HandleOpenSubmissions godoc
// @Summary      Open submissions
// @Description  Host only. Moves an UPCOMING edition to SUBMISSION.
// @Tags         editions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  domain.Edition
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/open-submissions [post]
// @Security     BearerAuth
func (h *EditionHandler) HandleOpenSubmissions(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	edition, err := h.svc.OpenSubmissions(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleOpenSubmissions -> h.svc.OpenSubmissions", err)
		return
	}

	ctx.JSON(http.StatusOK, edition)
}

// HandleCloseSubmissions godoc
// @Summary      Close submissions
// @Description  Host only. Shuffles the running order and moves the edition to VOTING.
// @Tags         editions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  response.RunningOrder
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/close-submissions [post]
// @Security     BearerAuth
func (h *EditionHandler) HandleCloseSubmissions(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	submissions, err := h.svc.CloseSubmissions(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleCloseSubmissions -> h.svc.CloseSubmissions", err)
		return
	}

	ctx.JSON(http.StatusOK, response.RunningOrder{EditionID: editionID, Submissions: submissions})
}

// HandleCloseVoting godoc
// @Summary      Close voting
// @Description  Host only. Scores every ballot and moves the edition to RESULTS. A partially persisted result answers 502 with the failed submission ids.
// @Tags         editions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {array}   response.Result
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      502        {object}  response.Err
// @Router       /editions/{editionID}/close-voting [post]
// @Security     BearerAuth
func (h *EditionHandler) HandleCloseVoting(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	results, err := h.svc.CloseVoting(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleCloseVoting -> h.svc.CloseVoting", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewResults(results, true))
}

// HandleFinalizeEdition godoc
// @Summary      Finalize an edition
// @Description  Host only. Moves a RESULTS edition to COMPLETE.
// @Tags         editions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  domain.Edition
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/finalize [post]
// @Security     BearerAuth
func (h *EditionHandler) HandleFinalizeEdition(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	edition, err := h.svc.FinalizeEdition(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleFinalizeEdition -> h.svc.FinalizeEdition", err)
		return
	}

	ctx.JSON(http.StatusOK, edition)
}

// HandleRevealResults godoc
// @Summary      Reveal results
// @Description  Host only. Makes the results visible to every participant.
// @Tags         editions
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  domain.Edition
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/reveal [post]
// @Security     BearerAuth
func (h *EditionHandler) HandleRevealResults(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	edition, err := h.svc.RevealResults(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleRevealResults -> h.svc.RevealResults", err)
		return
	}

	ctx.JSON(http.StatusOK, edition)
}

// HandleSetPlaylist godoc
// @Summary      Set the edition playlist
// @Tags         editions
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                      true  "Edition ID"
// @Param        input      body      request.PlaylistRequest  true  "Playlist URL"
// @Success      200        {object}  domain.Edition
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Router       /editions/{editionID}/playlist [put]
// @Security     BearerAuth
func (h *EditionHandler) HandleSetPlaylist(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.PlaylistRequest
	if !bind(ctx, &input) {
		return
	}

	edition, err := h.svc.SetPlaylist(ctx.Request.Context(), middleware.UserID(ctx), editionID, input.URL)
	if err != nil {
		renderErr(ctx, "v1.HandleSetPlaylist -> h.svc.SetPlaylist", err)
		return
	}

	ctx.JSON(http.StatusOK, edition)
}
