package repository

import (
	"context"
	"errors"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MessageRepo is the repository for message operations
type MessageRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewMessageRepo creates a new MessageRepo
func NewMessageRepo(db *gorm.DB, rdb *redis.Client) *MessageRepo {
	return &MessageRepo{db: db, rdb: rdb}
}

// Create creates a new message
func (r *MessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	return r.CreateWithTx(ctx, r.db, msg)
}

// CreateWithTx creates a new message with transaction
func (r *MessageRepo) CreateWithTx(ctx context.Context, tx *gorm.DB, msg *entity.Message) error {
	return tx.WithContext(ctx).Create(msg).Error
}

// GetById gets a message, nil when absent
func (r *MessageRepo) GetById(ctx context.Context, id entity.MessageId) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetByIds gets messages keyed by id
func (r *MessageRepo) GetByIds(ctx context.Context, ids []entity.MessageId) (map[entity.MessageId]*entity.Message, error) {
	result := make(map[entity.MessageId]*entity.Message, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var msgs []*entity.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for _, m := range msgs {
		result[m.Id] = m
	}
	return result, nil
}

// ListByConversation lists every message of a conversation in creation order
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationId entity.ConversationId) ([]*entity.Message, error) {
	var msgs []*entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListPinned lists the pinned messages of a conversation in creation order
func (r *MessageRepo) ListPinned(ctx context.Context, conversationId entity.ConversationId) ([]*entity.Message, error) {
	var msgs []*entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND is_pinned = ?", conversationId, true).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// GetLatest gets the most recent message of a conversation, nil when empty
func (r *MessageRepo) GetLatest(ctx context.Context, conversationId entity.ConversationId) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at DESC, id DESC").
		Take(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// CountUnread counts messages not sent by userId and created strictly after since.
// A nil since counts the whole conversation.
func (r *MessageRepo) CountUnread(ctx context.Context, conversationId entity.ConversationId, userId entity.UserId, since *int64) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationId, userId)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update patches message fields
func (r *MessageRepo) Update(ctx context.Context, id entity.MessageId, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.Message{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteByConversationWithTx removes every message of a conversation
func (r *MessageRepo) DeleteByConversationWithTx(ctx context.Context, tx *gorm.DB, conversationId entity.ConversationId) error {
	return tx.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Delete(&entity.Message{}).Error
}
