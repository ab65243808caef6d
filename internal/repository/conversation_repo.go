package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepo is the repository for conversations and their members
type ConversationRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewConversationRepo creates a new ConversationRepo
func NewConversationRepo(db *gorm.DB, rdb *redis.Client) *ConversationRepo {
	return &ConversationRepo{db: db, rdb: rdb}
}

// CreateWithTx creates a conversation
func (r *ConversationRepo) CreateWithTx(ctx context.Context, tx *gorm.DB, conv *entity.Conversation) error {
	return tx.WithContext(ctx).Create(conv).Error
}

// GetById gets a conversation, nil when absent
func (r *ConversationRepo) GetById(ctx context.Context, id entity.ConversationId) (*entity.Conversation, error) {
	return r.GetByIdWithTx(ctx, r.db, id)
}

// GetByIdWithTx gets a conversation with transaction, nil when absent
func (r *ConversationRepo) GetByIdWithTx(ctx context.Context, tx *gorm.DB, id entity.ConversationId) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := tx.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetByIds gets conversations keyed by id
func (r *ConversationRepo) GetByIds(ctx context.Context, ids []entity.ConversationId) (map[entity.ConversationId]*entity.Conversation, error) {
	result := make(map[entity.ConversationId]*entity.Conversation, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var convs []*entity.Conversation
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&convs).Error; err != nil {
		return nil, err
	}
	for _, c := range convs {
		result[c.Id] = c
	}
	return result, nil
}

// FindDirectWithTx finds a non-group conversation both users belong to.
// The first match in userA's membership order wins.
func (r *ConversationRepo) FindDirectWithTx(ctx context.Context, tx *gorm.DB, userA, userB entity.UserId) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := tx.WithContext(ctx).
		Table("conversations c").
		Select("c.*").
		Joins("JOIN conversation_members a ON a.conversation_id = c.id AND a.user_id = ?", userA).
		Joins("JOIN conversation_members b ON b.conversation_id = c.id AND b.user_id = ?", userB).
		Where("c.is_group = ?", false).
		Order("a.joined_at ASC, a.id ASC").
		Limit(1).
		Take(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// AddMembersWithTx inserts memberships, skipping pairs that already exist
func (r *ConversationRepo) AddMembersWithTx(ctx context.Context, tx *gorm.DB, members []*entity.ConversationMember) error {
	if len(members) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&members).Error
}

// GetMember gets a user's membership in a conversation, nil when absent
func (r *ConversationRepo) GetMember(ctx context.Context, conversationId entity.ConversationId, userId entity.UserId) (*entity.ConversationMember, error) {
	return r.GetMemberWithTx(ctx, r.db, conversationId, userId)
}

// GetMemberWithTx gets a membership with transaction, nil when absent
func (r *ConversationRepo) GetMemberWithTx(ctx context.Context, tx *gorm.DB, conversationId entity.ConversationId, userId entity.UserId) (*entity.ConversationMember, error) {
	var member entity.ConversationMember
	err := tx.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListMembershipsByUser lists a user's memberships in join order
func (r *ConversationRepo) ListMembershipsByUser(ctx context.Context, userId entity.UserId) ([]*entity.ConversationMember, error) {
	var members []*entity.ConversationMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembers lists every membership of a conversation in join order
func (r *ConversationRepo) ListMembers(ctx context.Context, conversationId entity.ConversationId) ([]*entity.ConversationMember, error) {
	var members []*entity.ConversationMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateLastSeen points a membership at the last message the member has seen
func (r *ConversationRepo) UpdateLastSeen(ctx context.Context, memberId entity.MemberId, messageId entity.MessageId) error {
	return r.db.WithContext(ctx).
		Model(&entity.ConversationMember{}).
		Where("id = ?", memberId).
		Update("last_seen_message_id", messageId).Error
}

// DeleteMembersWithTx removes every membership of a conversation
func (r *ConversationRepo) DeleteMembersWithTx(ctx context.Context, tx *gorm.DB, conversationId entity.ConversationId) error {
	return tx.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Delete(&entity.ConversationMember{}).Error
}

// DeleteWithTx removes the conversation row itself
func (r *ConversationRepo) DeleteWithTx(ctx context.Context, tx *gorm.DB, id entity.ConversationId) error {
	return tx.WithContext(ctx).Where("id = ?", id).Delete(&entity.Conversation{}).Error
}

// directLockKey is the same for both orderings of the pair
func (r *ConversationRepo) directLockKey(userA, userB entity.UserId) string {
	pair := []string{string(userA), string(userB)}
	sort.Strings(pair)
	return fmt.Sprintf(constant.RedisKeyDirectLock(), pair[0], pair[1])
}

// LockDirectPair serializes direct-conversation creation for a pair of users across processes.
// It polls every DirectLockPoll for up to wait. acquired is false when the wait ran out; the caller may still proceed.
// The returned release func is always safe to call.
func (r *ConversationRepo) LockDirectPair(ctx context.Context, userA, userB entity.UserId, wait time.Duration) (release func(), acquired bool, err error) {
	key := r.directLockKey(userA, userB)
	token := uuid.NewString()
	noop := func() {}

	deadline := time.Now().Add(wait)
	for {
		ok, err := r.rdb.SetNX(ctx, key, token, constant.DirectLockTTL).Result()
		if err != nil {
			return noop, false, err
		}
		if ok {
			return func() { r.unlock(context.WithoutCancel(ctx), key, token) }, true, nil
		}
		if time.Now().After(deadline) {
			return noop, false, nil
		}

		pause := constant.DirectLockPoll
		if remaining := time.Until(deadline); remaining < pause {
			pause = remaining
		}
		select {
		case <-ctx.Done():
			return noop, false, ctx.Err()
		case <-time.After(pause):
		}
	}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *ConversationRepo) unlock(ctx context.Context, key, token string) {
	_ = unlockScript.Run(ctx, r.rdb, []string{key}, token).Err()
}
