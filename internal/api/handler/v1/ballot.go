package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/request"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
)

type BallotService interface {
	SaveDraft(ctx context.Context, userID string, editionID uint, entries []uint) (domain.SavedRanking, error)
	GetDraft(ctx context.Context, userID string, editionID uint) (domain.SavedRanking, error)
	SubmitRanking(ctx context.Context, userID string, editionID uint, entries []uint) (domain.Ranking, error)
	GetRanking(ctx context.Context, userID string, editionID uint) (domain.Ranking, error)
	SubmitTelevote(ctx context.Context, editionID uint, guestName string, entries []uint) (domain.Televote, error)
	SubmitVotes(ctx context.Context, userID string, editionID uint, votes []domain.Vote) ([]domain.Vote, error)
}

type BallotHandler struct {
	svc BallotService
}

func NewBallotHandler(svc BallotService) *BallotHandler {
	return &BallotHandler{svc: svc}
}

// HandleSaveDraft godoc
// @Summary      Save a ranking draft
// @Description  The draft can be changed until the ranking is submitted.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                   true  "Edition ID"
// @Param        input      body      request.DraftRequest  true  "Entries, favourite first"
// @Success      200        {object}  domain.SavedRanking
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/ranking/draft [put]
// @Security     BearerAuth
func (h *BallotHandler) HandleSaveDraft(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.DraftRequest
	if !bind(ctx, &input) {
		return
	}

	draft, err := h.svc.SaveDraft(ctx.Request.Context(), middleware.UserID(ctx), editionID, input.Entries)
	if err != nil {
		renderErr(ctx, "v1.HandleSaveDraft -> h.svc.SaveDraft", err)
		return
	}

	ctx.JSON(http.StatusOK, draft)
}

// HandleGetDraft godoc
// @Summary      Get the caller's ranking draft
// @Tags         ballots
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  domain.SavedRanking
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /editions/{editionID}/ranking/draft [get]
// @Security     BearerAuth
func (h *BallotHandler) HandleGetDraft(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	draft, err := h.svc.GetDraft(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetDraft -> h.svc.GetDraft", err)
		return
	}

	ctx.JSON(http.StatusOK, draft)
}

// HandleSubmitRanking godoc
// @Summary      Submit a ranking
// @Description  One final ranking per participant per edition. Entries must be eligible submissions of the edition and not the caller's own.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                     true  "Edition ID"
// @Param        input      body      request.RankingRequest  true  "Entries, favourite first"
// @Success      201        {object}  domain.Ranking
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/ranking [post]
// @Security     BearerAuth
func (h *BallotHandler) HandleSubmitRanking(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.RankingRequest
	if !bind(ctx, &input) {
		return
	}

	ranking, err := h.svc.SubmitRanking(ctx.Request.Context(), middleware.UserID(ctx), editionID, input.Entries)
	if err != nil {
		renderErr(ctx, "v1.HandleSubmitRanking -> h.svc.SubmitRanking", err)
		return
	}

	ctx.JSON(http.StatusCreated, ranking)
}

// HandleGetRanking godoc
// @Summary      Get the caller's submitted ranking
// @Tags         ballots
// @Produce      json
// @Param        editionID  path      int  true  "Edition ID"
// @Success      200        {object}  domain.Ranking
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /editions/{editionID}/ranking [get]
// @Security     BearerAuth
func (h *BallotHandler) HandleGetRanking(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	ranking, err := h.svc.GetRanking(ctx.Request.Context(), middleware.UserID(ctx), editionID)
	if err != nil {
		renderErr(ctx, "v1.HandleGetRanking -> h.svc.GetRanking", err)
		return
	}

	ctx.JSON(http.StatusOK, ranking)
}

// HandleSubmitTelevote godoc
// @Summary      Submit a televote
// @Description  Open to guests without an account while the edition is voting.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                      true  "Edition ID"
// @Param        input      body      request.TelevoteRequest  true  "Guest ballot"
// @Success      201        {object}  domain.Televote
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/televotes [post]
func (h *BallotHandler) HandleSubmitTelevote(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.TelevoteRequest
	if !bind(ctx, &input) {
		return
	}

	televote, err := h.svc.SubmitTelevote(ctx.Request.Context(), editionID, input.GuestName, input.Entries)
	if err != nil {
		renderErr(ctx, "v1.HandleSubmitTelevote -> h.svc.SubmitTelevote", err)
		return
	}

	ctx.JSON(http.StatusCreated, televote)
}

// HandleSubmitVotes godoc
// @Summary      Submit point votes
// @Description  Awards distinct table points (12, 10, 8..1) to submissions. Once per participant per edition.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Param        editionID  path      int                   true  "Edition ID"
// @Param        input      body      request.VotesRequest  true  "Votes"
// @Success      201        {array}   domain.Vote
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /editions/{editionID}/votes [post]
// @Security     BearerAuth
func (h *BallotHandler) HandleSubmitVotes(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	var input request.VotesRequest
	if !bind(ctx, &input) {
		return
	}

	votes, err := h.svc.SubmitVotes(ctx.Request.Context(), middleware.UserID(ctx), editionID, input.ToDomain(editionID))
	if err != nil {
		renderErr(ctx, "v1.HandleSubmitVotes -> h.svc.SubmitVotes", err)
		return
	}

	ctx.JSON(http.StatusCreated, votes)
}
