package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/request"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
)

type ProfileService interface {
	ConfirmProfile(ctx context.Context, userID, displayName string) (domain.Profile, error)
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	RenameProfile(ctx context.Context, userID, displayName string) (domain.Profile, error)
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// HandleConfirmProfile godoc
// @Summary      Confirm the caller's profile
// @Description  Creates a profile for the authenticated user if none exists yet. Calling it again returns the stored profile.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        input  body      request.ConfirmProfileRequest  false  "Display name"
// @Success      200    {object}  domain.Profile
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /profiles/confirm [post]
// @Security     BearerAuth
func (h *ProfileHandler) HandleConfirmProfile(ctx *gin.Context) {
	var input request.ConfirmProfileRequest
	if ctx.Request.ContentLength != 0 && !bind(ctx, &input) {
		return
	}

	profile, err := h.svc.ConfirmProfile(ctx.Request.Context(), middleware.UserID(ctx), input.DisplayName)
	if err != nil {
		renderErr(ctx, "v1.HandleConfirmProfile -> h.svc.ConfirmProfile", err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// HandleGetMyProfile godoc
// @Summary      Get the caller's profile
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /profiles/me [get]
// @Security     BearerAuth
func (h *ProfileHandler) HandleGetMyProfile(ctx *gin.Context) {
	profile, err := h.svc.GetProfile(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		renderErr(ctx, "v1.HandleGetMyProfile -> h.svc.GetProfile", err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// HandleRenameMyProfile godoc
// @Summary      Rename the caller's profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        input  body      request.RenameProfileRequest  true  "New display name"
// @Success      200    {object}  domain.Profile
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Router       /profiles/me [put]
// @Security     BearerAuth
func (h *ProfileHandler) HandleRenameMyProfile(ctx *gin.Context) {
	var input request.RenameProfileRequest
	if !bind(ctx, &input) {
		return
	}

	profile, err := h.svc.RenameProfile(ctx.Request.Context(), middleware.UserID(ctx), input.DisplayName)
	if err != nil {
		renderErr(ctx, "v1.HandleRenameMyProfile -> h.svc.RenameProfile", err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}
