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

// MessageHandler handles message-related requests
type MessageHandler struct {
	msgService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(msgService *service.MessageService) *MessageHandler {
	return &MessageHandler{msgService: msgService}
}

// SendMessageResponse is returned after a message is stored
type SendMessageResponse struct {
	MessageId entity.MessageId `json:"message_id"`
}

// MessageRequest identifies a message in a request body
type MessageRequest struct {
	MessageId entity.MessageId `json:"message_id"`
}

// EditMessageRequest represents edit message request
type EditMessageRequest struct {
	MessageId entity.MessageId `json:"message_id"`
	Content   string           `json:"content"`
}

// PinMessageRequest represents pin message request
type PinMessageRequest struct {
	MessageId entity.MessageId `json:"message_id"`
	IsPinned  bool             `json:"is_pinned"`
}

// Send handles send message request
func (h *MessageHandler) Send(ctx context.Context, c *app.RequestContext) {
	var req service.SendMessageRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	msgId, err := h.msgService.Send(ctx, middleware.GetPrincipal(c), &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, SendMessageResponse{MessageId: msgId})
}

// List handles list messages request
func (h *MessageHandler) List(ctx context.Context, c *app.RequestContext) {
	convId, ok := conversationIdQuery(ctx, c)
	if !ok {
		return
	}

	msgs, err := h.msgService.List(ctx, middleware.GetPrincipal(c), convId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msgs)
}

// ListPinned handles list pinned messages request
func (h *MessageHandler) ListPinned(ctx context.Context, c *app.RequestContext) {
	convId, ok := conversationIdQuery(ctx, c)
	if !ok {
		return
	}

	msgs, err := h.msgService.ListPinned(ctx, middleware.GetPrincipal(c), convId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msgs)
}

// Edit handles edit message request
func (h *MessageHandler) Edit(ctx context.Context, c *app.RequestContext) {
	var req EditMessageRequest
	if err := c.BindAndValidate(&req); err != nil || req.MessageId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.msgService.Edit(ctx, middleware.GetPrincipal(c), req.MessageId, req.Content); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// Delete handles delete message request
func (h *MessageHandler) Delete(ctx context.Context, c *app.RequestContext) {
	var req MessageRequest
	if err := c.BindAndValidate(&req); err != nil || req.MessageId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.msgService.Delete(ctx, middleware.GetPrincipal(c), req.MessageId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// Pin handles pin and unpin request
func (h *MessageHandler) Pin(ctx context.Context, c *app.RequestContext) {
	var req PinMessageRequest
	if err := c.BindAndValidate(&req); err != nil || req.MessageId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.msgService.Pin(ctx, middleware.GetPrincipal(c), req.MessageId, req.IsPinned); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}
