package repository

import (
	"context"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TypingRepo is the repository for typing presence
type TypingRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewTypingRepo creates a new TypingRepo
func NewTypingRepo(db *gorm.DB, rdb *redis.Client) *TypingRepo {
	return &TypingRepo{db: db, rdb: rdb}
}

// Upsert records status, refreshing last_updated_at when the user already has an entry
func (r *TypingRepo) Upsert(ctx context.Context, status *entity.TypingStatus) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_updated_at"}),
	}).Create(status).Error
}

// Delete removes a user's entry in a conversation, if any
func (r *TypingRepo) Delete(ctx context.Context, conversationId entity.ConversationId, userId entity.UserId) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Delete(&entity.TypingStatus{}).Error
}

// ListActive lists entries of a conversation updated strictly after threshold
func (r *TypingRepo) ListActive(ctx context.Context, conversationId entity.ConversationId, threshold int64) ([]*entity.TypingStatus, error) {
	var statuses []*entity.TypingStatus
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND last_updated_at > ?", conversationId, threshold).
		Order("last_updated_at ASC, id ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// DeleteByConversationWithTx removes every entry of a conversation
func (r *TypingRepo) DeleteByConversationWithTx(ctx context.Context, tx *gorm.DB, conversationId entity.ConversationId) error {
	return tx.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Delete(&entity.TypingStatus{}).Error
}
