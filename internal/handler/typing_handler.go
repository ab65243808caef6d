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

// TypingHandler handles typing presence requests
type TypingHandler struct {
	typingService *service.TypingService
}

// NewTypingHandler creates a new TypingHandler
func NewTypingHandler(typingService *service.TypingService) *TypingHandler {
	return &TypingHandler{typingService: typingService}
}

// UpdateTypingRequest represents typing update request
type UpdateTypingRequest struct {
	ConversationId entity.ConversationId `json:"conversation_id"`
	IsTyping       bool                  `json:"is_typing"`
}

// Update handles typing update request
func (h *TypingHandler) Update(ctx context.Context, c *app.RequestContext) {
	var req UpdateTypingRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.typingService.SetTyping(ctx, middleware.GetPrincipal(c), req.ConversationId, req.IsTyping); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// List handles list typists request
func (h *TypingHandler) List(ctx context.Context, c *app.RequestContext) {
	convId, ok := conversationIdQuery(ctx, c)
	if !ok {
		return
	}

	users, err := h.typingService.ListActive(ctx, middleware.GetPrincipal(c), convId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, users)
}
