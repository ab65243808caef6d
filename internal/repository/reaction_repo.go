package repository

import (
	"context"
	"errors"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepo is the repository for reaction operations
type ReactionRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewReactionRepo creates a new ReactionRepo
func NewReactionRepo(db *gorm.DB, rdb *redis.Client) *ReactionRepo {
	return &ReactionRepo{db: db, rdb: rdb}
}

// Find gets the reaction of userId with emoji on a message, nil when absent
func (r *ReactionRepo) Find(ctx context.Context, messageId entity.MessageId, userId entity.UserId, emoji string) (*entity.Reaction, error) {
	var reaction entity.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageId, userId, emoji).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}

// Create inserts a reaction; a concurrent identical insert is absorbed
func (r *ReactionRepo) Create(ctx context.Context, reaction *entity.Reaction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}, {Name: "emoji"}},
		DoNothing: true,
	}).Create(reaction).Error
}

// Delete removes a reaction by id
func (r *ReactionRepo) Delete(ctx context.Context, id entity.ReactionId) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Reaction{}).Error
}

// ListByMessages gets the reactions of the given messages grouped by message id
func (r *ReactionRepo) ListByMessages(ctx context.Context, messageIds []entity.MessageId) (map[entity.MessageId][]*entity.Reaction, error) {
	result := make(map[entity.MessageId][]*entity.Reaction, len(messageIds))
	if len(messageIds) == 0 {
		return result, nil
	}

	var reactions []*entity.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIds).
		Order("id ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	for _, re := range reactions {
		result[re.MessageId] = append(result[re.MessageId], re)
	}
	return result, nil
}

// DeleteByConversationWithTx removes every reaction on any message of a conversation
func (r *ReactionRepo) DeleteByConversationWithTx(ctx context.Context, tx *gorm.DB, conversationId entity.ConversationId) error {
	sub := tx.Model(&entity.Message{}).Select("id").Where("conversation_id = ?", conversationId)
	return tx.WithContext(ctx).
		Where("message_id IN (?)", sub).
		Delete(&entity.Reaction{}).Error
}
