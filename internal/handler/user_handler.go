package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/middleware"
	"github.com/mbeoliero/parley/internal/service"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/response"
)

// UserHandler handles user-related requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SyncUserResponse is returned after a profile sync
type SyncUserResponse struct {
	UserId entity.UserId `json:"user_id"`
}

// Sync handles the post-login profile sync. Profile fields missing from the body fall back to the token claims.
func (h *UserHandler) Sync(ctx context.Context, c *app.RequestContext) {
	var req service.SyncUserRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam.Wrap(err))
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		if req.Name == "" {
			req.Name = claims.Name
		}
		if req.Email == "" {
			req.Email = claims.Email
		}
		if req.AvatarImageUrl == "" {
			req.AvatarImageUrl = claims.Picture
		}
	}

	userId, err := h.userService.UpsertFromAuth(ctx, middleware.GetPrincipal(c), &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, SyncUserResponse{UserId: userId})
}

// GetMe handles get current user request. Data is null for anonymous or unsynced callers.
func (h *UserHandler) GetMe(ctx context.Context, c *app.RequestContext) {
	me, err := h.userService.GetMe(ctx, middleware.GetPrincipal(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, me)
}

// List handles list other users request
func (h *UserHandler) List(ctx context.Context, c *app.RequestContext) {
	users, err := h.userService.ListOthers(ctx, middleware.GetPrincipal(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, users)
}

// Search handles user search request
func (h *UserHandler) Search(ctx context.Context, c *app.RequestContext) {
	users, err := h.userService.Search(ctx, middleware.GetPrincipal(c), c.Query("q"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, users)
}

// SetOnlineRequest represents online status request
type SetOnlineRequest struct {
	IsOnline bool `json:"is_online"`
}

// SetOnline handles online status request
func (h *UserHandler) SetOnline(ctx context.Context, c *app.RequestContext) {
	var req SetOnlineRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam.Wrap(err))
		return
	}

	if err := h.userService.SetOnlineStatus(ctx, middleware.GetPrincipal(c), req.IsOnline); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}
