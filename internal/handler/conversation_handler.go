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

// ConversationHandler handles conversation-related requests
type ConversationHandler struct {
	convService *service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(convService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convService: convService}
}

// ConversationIdResponse is returned by every creating endpoint
type ConversationIdResponse struct {
	ConversationId entity.ConversationId `json:"conversation_id"`
}

// ConversationRequest identifies a conversation in a request body
type ConversationRequest struct {
	ConversationId entity.ConversationId `json:"conversation_id"`
}

// CreateDirectRequest represents create direct conversation request
type CreateDirectRequest struct {
	UserId entity.UserId `json:"user_id"`
}

// CreateGroupRequest represents create group request
type CreateGroupRequest struct {
	Name           string          `json:"name"`
	ParticipantIds []entity.UserId `json:"participant_ids"`
}

// AddMemberRequest represents add group member request
type AddMemberRequest struct {
	ConversationId entity.ConversationId `json:"conversation_id"`
	UserId         entity.UserId         `json:"user_id"`
}

// Create handles the combined create request, direct or group depending on is_group
func (h *ConversationHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req service.CreateConversationRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam.Wrap(err))
		return
	}

	convId, err := h.convService.Create(ctx, middleware.GetPrincipal(c), &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, ConversationIdResponse{ConversationId: convId})
}

// CreateDirect handles create-or-get direct conversation request
func (h *ConversationHandler) CreateDirect(ctx context.Context, c *app.RequestContext) {
	var req CreateDirectRequest
	if err := c.BindAndValidate(&req); err != nil || req.UserId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	convId, err := h.convService.CreateOrGetDirect(ctx, middleware.GetPrincipal(c), req.UserId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, ConversationIdResponse{ConversationId: convId})
}

// CreateGroup handles create group request
func (h *ConversationHandler) CreateGroup(ctx context.Context, c *app.RequestContext) {
	var req CreateGroupRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam.Wrap(err))
		return
	}

	convId, err := h.convService.CreateGroup(ctx, middleware.GetPrincipal(c), req.Name, req.ParticipantIds)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, ConversationIdResponse{ConversationId: convId})
}

// List handles get conversation list request
func (h *ConversationHandler) List(ctx context.Context, c *app.RequestContext) {
	convs, err := h.convService.List(ctx, middleware.GetPrincipal(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, convs)
}

// Get handles get single conversation request
func (h *ConversationHandler) Get(ctx context.Context, c *app.RequestContext) {
	convId, ok := conversationIdQuery(ctx, c)
	if !ok {
		return
	}

	conv, err := h.convService.Get(ctx, middleware.GetPrincipal(c), convId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, conv)
}

// ListMembers handles list conversation members request
func (h *ConversationHandler) ListMembers(ctx context.Context, c *app.RequestContext) {
	convId, ok := conversationIdQuery(ctx, c)
	if !ok {
		return
	}

	members, err := h.convService.ListMembers(ctx, middleware.GetPrincipal(c), convId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, members)
}

// MarkRead handles mark conversation as read request
func (h *ConversationHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	var req ConversationRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.convService.MarkAsRead(ctx, middleware.GetPrincipal(c), req.ConversationId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// Delete handles delete conversation request
func (h *ConversationHandler) Delete(ctx context.Context, c *app.RequestContext) {
	var req ConversationRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.convService.Delete(ctx, middleware.GetPrincipal(c), req.ConversationId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// AddMember handles add group member request
func (h *ConversationHandler) AddMember(ctx context.Context, c *app.RequestContext) {
	var req AddMemberRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" || req.UserId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.convService.AddMember(ctx, middleware.GetPrincipal(c), req.ConversationId, req.UserId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// conversationIdQuery reads the required conversation_id query parameter, answering the request when it is missing
func conversationIdQuery(ctx context.Context, c *app.RequestContext) (entity.ConversationId, bool) {
	convId := c.Query("conversation_id")
	if convId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return "", false
	}
	return entity.ConversationId(convId), true
}
