package service

import (
	"context"
	"strings"

	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/metrics"
)

// MessageService handles message-related business logic
type MessageService struct {
	msgRepo      *repository.MessageRepo
	convRepo     *repository.ConversationRepo
	userRepo     *repository.UserRepo
	reactionRepo *repository.ReactionRepo
	identity     *IdentityResolver
	opts         options
}

// NewMessageService creates a new MessageService
func NewMessageService(repos *repository.Repositories, identity *IdentityResolver, opts ...Option) *MessageService {
	return &MessageService{
		msgRepo:      repos.Message,
		convRepo:     repos.Conversation,
		userRepo:     repos.User,
		reactionRepo: repos.Reaction,
		identity:     identity,
		opts:         newOptions(opts),
	}
}

// SendMessageRequest represents message send request
type SendMessageRequest struct {
	ConversationId entity.ConversationId `json:"conversation_id"`
	Content        string                `json:"content"`
	Type           entity.MessageType    `json:"type"`
	ReplyToId      *entity.MessageId     `json:"reply_to_id,omitempty"`
}

// Send stores a text or image message from the caller.
// Membership is not checked; the conversation and any reply target must exist.
func (s *MessageService) Send(ctx context.Context, principal string, req *SendMessageRequest) (entity.MessageId, error) {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return "", err
	}
	if req.Type == "" {
		req.Type = entity.MessageTypeText
	}
	if !req.Type.IsUserSendable() {
		return "", errcode.ErrInvalidMsgType
	}

	conv, err := s.convRepo.GetById(ctx, req.ConversationId)
	if err != nil {
		return "", internalError(ctx, "get conversation", err)
	}
	if conv == nil {
		return "", errcode.ErrConvNotFound
	}

	if req.ReplyToId != nil {
		target, err := s.msgRepo.GetById(ctx, *req.ReplyToId)
		if err != nil {
			return "", internalError(ctx, "get reply target", err)
		}
		if target == nil || target.ConversationId != conv.Id {
			return "", errcode.ErrReplyNotFound
		}
	}

	id, err := entity.NewId[entity.MessageId]()
	if err != nil {
		return "", internalError(ctx, "generate message id", err)
	}
	msg := &entity.Message{
		Id:             id,
		ConversationId: conv.Id,
		SenderId:       me.Id,
		Content:        req.Content,
		Type:           req.Type,
		ReplyToId:      req.ReplyToId,
		CreatedAt:      s.opts.now(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return "", internalError(ctx, "create message", err)
	}

	metrics.MessagesSent.WithLabelValues(string(msg.Type)).Inc()
	log.CtxDebug(ctx, "message sent: message_id=%s, conversation_id=%s, sender_id=%s", id, conv.Id, me.Id)
	return id, nil
}

// List returns every message of a conversation in send order with sender, reactions and reply summary
func (s *MessageService) List(ctx context.Context, principal string, convId entity.ConversationId) ([]*entity.MessageView, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return []*entity.MessageView{}, nil
	}

	msgs, err := s.msgRepo.ListByConversation(ctx, convId)
	if err != nil {
		return nil, internalError(ctx, "list messages", err)
	}
	return s.enrich(ctx, msgs, true)
}

// ListPinned returns the pinned messages of a conversation with their senders
func (s *MessageService) ListPinned(ctx context.Context, principal string, convId entity.ConversationId) ([]*entity.MessageView, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return []*entity.MessageView{}, nil
	}

	msgs, err := s.msgRepo.ListPinned(ctx, convId)
	if err != nil {
		return nil, internalError(ctx, "list pinned messages", err)
	}
	return s.enrich(ctx, msgs, false)
}

// enrich resolves senders, and with full set also reactions and reply summaries
func (s *MessageService) enrich(ctx context.Context, msgs []*entity.Message, full bool) ([]*entity.MessageView, error) {
	views := make([]*entity.MessageView, 0, len(msgs))
	if len(msgs) == 0 {
		return views, nil
	}

	var (
		msgIds   = make([]entity.MessageId, 0, len(msgs))
		replyIds []entity.MessageId
		userIds  []entity.UserId
	)
	for _, m := range msgs {
		msgIds = append(msgIds, m.Id)
		userIds = append(userIds, m.SenderId)
		if full && m.ReplyToId != nil {
			replyIds = append(replyIds, *m.ReplyToId)
		}
	}

	var (
		replies   map[entity.MessageId]*entity.Message
		reactions map[entity.MessageId][]*entity.Reaction
		err       error
	)
	if full {
		replies, err = s.msgRepo.GetByIds(ctx, replyIds)
		if err != nil {
			return nil, internalError(ctx, "get reply targets", err)
		}
		for _, r := range replies {
			userIds = append(userIds, r.SenderId)
		}
		reactions, err = s.reactionRepo.ListByMessages(ctx, msgIds)
		if err != nil {
			return nil, internalError(ctx, "list reactions", err)
		}
	}

	users, err := s.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		return nil, internalError(ctx, "get senders", err)
	}

	for _, m := range msgs {
		view := &entity.MessageView{
			Message:   m,
			Sender:    users[m.SenderId].ToUserInfo(),
			Reactions: []*entity.Reaction{},
		}
		if full {
			if rs := reactions[m.Id]; rs != nil {
				view.Reactions = rs
			}
			if m.ReplyToId != nil {
				if target := replies[*m.ReplyToId]; target != nil {
					view.ReplyTo = entity.NewReplySummary(target, users[target.SenderId])
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// loadForChange fetches a message that is about to be modified
func (s *MessageService) loadForChange(ctx context.Context, messageId entity.MessageId) (*entity.Message, error) {
	msg, err := s.msgRepo.GetById(ctx, messageId)
	if err != nil {
		return nil, internalError(ctx, "get message", err)
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}
	return msg, nil
}

// Delete soft-deletes a message: the row stays, flagged, with its content replaced by a placeholder.
// Reactions and replies pointing at it are kept.
func (s *MessageService) Delete(ctx context.Context, principal string, messageId entity.MessageId) error {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return err
	}
	msg, err := s.loadForChange(ctx, messageId)
	if err != nil {
		return err
	}
	if msg.SenderId != me.Id {
		return errcode.ErrNotSender
	}

	if err := s.msgRepo.Update(ctx, messageId, map[string]interface{}{
		"is_deleted": true,
		"content":    constant.DeletedMessagePlaceholder,
	}); err != nil {
		return internalError(ctx, "delete message", err)
	}
	return nil
}

// Edit replaces the content of the caller's own message and stamps edited_at
func (s *MessageService) Edit(ctx context.Context, principal string, messageId entity.MessageId, content string) error {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return err
	}
	msg, err := s.loadForChange(ctx, messageId)
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return errcode.ErrMessageDeleted
	}
	if msg.SenderId != me.Id {
		return errcode.ErrNotSender
	}
	content = strings.TrimSpace(content)

	if err := s.msgRepo.Update(ctx, messageId, map[string]interface{}{
		"content":   content,
		"edited_at": s.opts.now(),
	}); err != nil {
		return internalError(ctx, "edit message", err)
	}
	return nil
}

// Pin sets or clears the pinned flag. Any resolved caller may pin.
func (s *MessageService) Pin(ctx context.Context, principal string, messageId entity.MessageId, isPinned bool) error {
	if _, err := s.identity.Resolve(ctx, principal); err != nil {
		return err
	}
	if _, err := s.loadForChange(ctx, messageId); err != nil {
		return err
	}

	if err := s.msgRepo.Update(ctx, messageId, map[string]interface{}{"is_pinned": isPinned}); err != nil {
		return internalError(ctx, "pin message", err)
	}
	return nil
}
