package service

import (
	"context"
	"strings"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/metrics"
)

// ReactionService toggles emoji reactions
type ReactionService struct {
	reactionRepo *repository.ReactionRepo
	msgRepo      *repository.MessageRepo
	identity     *IdentityResolver
}

// NewReactionService creates a new ReactionService
func NewReactionService(repos *repository.Repositories, identity *IdentityResolver) *ReactionService {
	return &ReactionService{
		reactionRepo: repos.Reaction,
		msgRepo:      repos.Message,
		identity:     identity,
	}
}

// Toggle removes the caller's emoji reaction on a message if present, otherwise adds it.
// It reports whether the reaction exists afterwards.
func (s *ReactionService) Toggle(ctx context.Context, principal string, messageId entity.MessageId, emoji string) (bool, error) {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return false, err
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return false, errcode.ErrEmptyEmoji
	}

	msg, err := s.msgRepo.GetById(ctx, messageId)
	if err != nil {
		return false, internalError(ctx, "get message", err)
	}
	if msg == nil {
		return false, errcode.ErrMessageNotFound
	}

	existing, err := s.reactionRepo.Find(ctx, messageId, me.Id, emoji)
	if err != nil {
		return false, internalError(ctx, "find reaction", err)
	}
	if existing != nil {
		if err := s.reactionRepo.Delete(ctx, existing.Id); err != nil {
			return false, internalError(ctx, "delete reaction", err)
		}
		metrics.ReactionsToggled.WithLabelValues(metrics.DirectionRemoved).Inc()
		return false, nil
	}

	id, err := entity.NewId[entity.ReactionId]()
	if err != nil {
		return false, internalError(ctx, "generate reaction id", err)
	}
	if err := s.reactionRepo.Create(ctx, &entity.Reaction{
		Id:        id,
		MessageId: messageId,
		UserId:    me.Id,
		Emoji:     emoji,
	}); err != nil {
		return false, internalError(ctx, "create reaction", err)
	}
	metrics.ReactionsToggled.WithLabelValues(metrics.DirectionAdded).Inc()
	return true, nil
}
