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

// ReactionHandler handles reaction requests
type ReactionHandler struct {
	reactionService *service.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// ToggleReactionRequest represents toggle reaction request
type ToggleReactionRequest struct {
	MessageId entity.MessageId `json:"message_id"`
	Emoji     string           `json:"emoji"`
}

// ToggleReactionResponse reports whether the reaction exists after the toggle
type ToggleReactionResponse struct {
	Added bool `json:"added"`
}

// Toggle handles toggle reaction request
func (h *ReactionHandler) Toggle(ctx context.Context, c *app.RequestContext) {
	var req ToggleReactionRequest
	if err := c.BindAndValidate(&req); err != nil || req.MessageId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	added, err := h.reactionService.Toggle(ctx, middleware.GetPrincipal(c), req.MessageId, req.Emoji)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, ToggleReactionResponse{Added: added})
}
