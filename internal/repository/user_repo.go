package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UserRepo is the repository for user operations.
// Lookups by external auth id go through a redis cache-aside; every write invalidates it.
type UserRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(db *gorm.DB, rdb *redis.Client) *UserRepo {
	return &UserRepo{db: db, rdb: rdb}
}

func (r *UserRepo) authKey(externalAuthId string) string {
	return fmt.Sprintf(constant.RedisKeyUserByAuth(), externalAuthId)
}

// Create creates a new user
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}
	r.invalidate(ctx, user.ExternalAuthId)
	return nil
}

// GetById gets user by Id, nil when absent
func (r *UserRepo) GetById(ctx context.Context, id entity.UserId) (*entity.User, error) {
	return r.getById(ctx, r.db, id)
}

// GetByIdWithTx gets user by Id with transaction
func (r *UserRepo) GetByIdWithTx(ctx context.Context, tx *gorm.DB, id entity.UserId) (*entity.User, error) {
	return r.getById(ctx, tx, id)
}

func (r *UserRepo) getById(ctx context.Context, db *gorm.DB, id entity.UserId) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIds gets users by Ids as a map keyed by id
func (r *UserRepo) GetByIds(ctx context.Context, ids []entity.UserId) (map[entity.UserId]*entity.User, error) {
	result := make(map[entity.UserId]*entity.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.Id] = u
	}
	return result, nil
}

// CountByIdsWithTx counts how many of ids exist
func (r *UserRepo) CountByIdsWithTx(ctx context.Context, tx *gorm.DB, ids []entity.UserId) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&entity.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// GetByExternalAuthId gets the user synced from the given principal, nil when absent.
// Redis failures fall through to the database.
func (r *UserRepo) GetByExternalAuthId(ctx context.Context, externalAuthId string) (*entity.User, error) {
	key := r.authKey(externalAuthId)
	if data, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
		var user entity.User
		if err := json.Unmarshal(data, &user); err == nil {
			return &user, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.CtxWarn(ctx, "user cache get failed: key=%s, error=%v", key, err)
	}

	var user entity.User
	err := r.db.WithContext(ctx).Where("external_auth_id = ?", externalAuthId).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if data, err := json.Marshal(&user); err == nil {
		if err := r.rdb.Set(ctx, key, data, constant.UserCacheTTL).Err(); err != nil {
			log.CtxWarn(ctx, "user cache set failed: key=%s, error=%v", key, err)
		}
	}
	return &user, nil
}

// Update patches user fields and drops the cached copy
func (r *UserRepo) Update(ctx context.Context, user *entity.User, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", user.Id).Updates(updates).Error; err != nil {
		return err
	}
	r.invalidate(ctx, user.ExternalAuthId)
	return nil
}

// ListExcept lists every user other than id, ordered by name
func (r *UserRepo) ListExcept(ctx context.Context, id entity.UserId) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", id).
		Order("name ASC, id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SearchExcept lists users other than id whose name or email contains query, case-insensitively.
// This is an unindexed scan.
func (r *UserRepo) SearchExcept(ctx context.Context, id entity.UserId, query string) ([]*entity.User, error) {
	if query == "" {
		return r.ListExcept(ctx, id)
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", id).
		Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!')", pattern, pattern).
		Order("name ASC, id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListByConversation lists the users who are members of a conversation
func (r *UserRepo) ListByConversation(ctx context.Context, conversationId entity.ConversationId) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_members cm ON cm.user_id = users.id").
		Where("cm.conversation_id = ?", conversationId).
		Order("cm.joined_at ASC, cm.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) invalidate(ctx context.Context, externalAuthId string) {
	if err := r.rdb.Del(ctx, r.authKey(externalAuthId)).Err(); err != nil {
		log.CtxWarn(ctx, "user cache invalidate failed: external_auth_id=%s, error=%v", externalAuthId, err)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
