package service

import (
	"context"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/pkg/errcode"
)

// TypingService tracks who is typing. Entries are never swept; staleness is filtered at read time.
type TypingService struct {
	typingRepo *repository.TypingRepo
	convRepo   *repository.ConversationRepo
	userRepo   *repository.UserRepo
	identity   *IdentityResolver
	opts       options
}

// NewTypingService creates a new TypingService
func NewTypingService(repos *repository.Repositories, identity *IdentityResolver, opts ...Option) *TypingService {
	return &TypingService{
		typingRepo: repos.Typing,
		convRepo:   repos.Conversation,
		userRepo:   repos.User,
		identity:   identity,
		opts:       newOptions(opts),
	}
}

// SetTyping refreshes the caller's typing entry, or removes it when isTyping is false
func (s *TypingService) SetTyping(ctx context.Context, principal string, convId entity.ConversationId, isTyping bool) error {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return err
	}

	if !isTyping {
		if err := s.typingRepo.Delete(ctx, convId, me.Id); err != nil {
			return internalError(ctx, "clear typing", err)
		}
		return nil
	}

	conv, err := s.convRepo.GetById(ctx, convId)
	if err != nil {
		return internalError(ctx, "get conversation", err)
	}
	if conv == nil {
		return errcode.ErrConvNotFound
	}

	id, err := entity.NewId[entity.TypingStatusId]()
	if err != nil {
		return internalError(ctx, "generate typing id", err)
	}
	if err := s.typingRepo.Upsert(ctx, &entity.TypingStatus{
		Id:             id,
		ConversationId: convId,
		UserId:         me.Id,
		LastUpdatedAt:  s.opts.now(),
	}); err != nil {
		return internalError(ctx, "set typing", err)
	}
	return nil
}

// ListActive returns the users whose typing entry is younger than the freshness window
func (s *TypingService) ListActive(ctx context.Context, principal string, convId entity.ConversationId) ([]*entity.UserInfo, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return []*entity.UserInfo{}, nil
	}

	threshold := s.opts.now() - s.opts.typingWindow.Milliseconds()
	statuses, err := s.typingRepo.ListActive(ctx, convId, threshold)
	if err != nil {
		return nil, internalError(ctx, "list typing", err)
	}

	userIds := make([]entity.UserId, 0, len(statuses))
	for _, st := range statuses {
		userIds = append(userIds, st.UserId)
	}
	users, err := s.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		return nil, internalError(ctx, "get typists", err)
	}

	result := make([]*entity.UserInfo, 0, len(statuses))
	for _, st := range statuses {
		if u := users[st.UserId]; u != nil {
			result = append(result, u.ToUserInfo())
		}
	}
	return result, nil
}
