package service

import (
	"context"
	"strings"

	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/pkg/errcode"
)

// UserService handles the user directory
type UserService struct {
	userRepo *repository.UserRepo
	identity *IdentityResolver
	opts     options
}

// NewUserService creates a new UserService
func NewUserService(repos *repository.Repositories, identity *IdentityResolver, opts ...Option) *UserService {
	return &UserService{
		userRepo: repos.User,
		identity: identity,
		opts:     newOptions(opts),
	}
}

// SyncUserRequest is the profile pushed by a client after login
type SyncUserRequest struct {
	ExternalAuthId string `json:"external_auth_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	AvatarImageUrl string `json:"avatar_image_url"`
}

// UpsertFromAuth creates the caller's user on first sync, and afterwards patches name and avatar when they change.
// Email is fixed at creation.
func (s *UserService) UpsertFromAuth(ctx context.Context, principal string, req *SyncUserRequest) (entity.UserId, error) {
	if principal == "" {
		return "", errcode.ErrUnauthenticated
	}
	if req.ExternalAuthId == "" {
		req.ExternalAuthId = principal
	}
	if req.ExternalAuthId != principal {
		return "", errcode.ErrSubjectMismatch
	}

	existing, err := s.userRepo.GetByExternalAuthId(ctx, principal)
	if err != nil {
		return "", internalError(ctx, "get user by auth id", err)
	}
	if existing != nil {
		return existing.Id, s.patchProfile(ctx, existing, req)
	}

	id, err := entity.NewId[entity.UserId]()
	if err != nil {
		return "", internalError(ctx, "generate user id", err)
	}
	user := &entity.User{
		Id:             id,
		ExternalAuthId: principal,
		Name:           req.Name,
		Email:          req.Email,
		AvatarImageUrl: req.AvatarImageUrl,
		IsOnline:       true,
		CreatedAt:      s.opts.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent first sync may have won the unique external_auth_id
		if winner, getErr := s.userRepo.GetByExternalAuthId(ctx, principal); getErr == nil && winner != nil {
			return winner.Id, s.patchProfile(ctx, winner, req)
		}
		return "", internalError(ctx, "create user", err)
	}

	log.CtxInfo(ctx, "user synced: user_id=%s, external_auth_id=%s", user.Id, principal)
	return user.Id, nil
}

func (s *UserService) patchProfile(ctx context.Context, user *entity.User, req *SyncUserRequest) error {
	updates := make(map[string]interface{})
	if user.Name != req.Name {
		updates["name"] = req.Name
	}
	if user.AvatarImageUrl != req.AvatarImageUrl {
		updates["avatar_image_url"] = req.AvatarImageUrl
	}
	if len(updates) == 0 {
		return nil
	}
	if err := s.userRepo.Update(ctx, user, updates); err != nil {
		return internalError(ctx, "update user profile", err)
	}
	return nil
}

// GetMe returns the caller, or nil when unauthenticated or not yet synced
func (s *UserService) GetMe(ctx context.Context, principal string) (*entity.UserInfo, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil || me == nil {
		return nil, err
	}
	return me.ToUserInfo(), nil
}

// ListOthers lists every user except the caller
func (s *UserService) ListOthers(ctx context.Context, principal string) ([]*entity.UserInfo, error) {
	return s.Search(ctx, principal, "")
}

// Search lists users other than the caller whose name or email contains query, ignoring case.
// An empty query matches everyone.
func (s *UserService) Search(ctx context.Context, principal, query string) ([]*entity.UserInfo, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return []*entity.UserInfo{}, nil
	}

	users, err := s.userRepo.SearchExcept(ctx, me.Id, strings.TrimSpace(query))
	if err != nil {
		return nil, internalError(ctx, "search users", err)
	}
	return entity.ToUserInfos(users), nil
}

// SetOnlineStatus patches the caller's online flag. A principal that was never synced is a no-op.
func (s *UserService) SetOnlineStatus(ctx context.Context, principal string, isOnline bool) error {
	if principal == "" {
		return errcode.ErrUnauthenticated
	}
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return err
	}
	if me == nil || me.IsOnline == isOnline {
		return nil
	}
	if err := s.userRepo.Update(ctx, me, map[string]interface{}{"is_online": isOnline}); err != nil {
		return internalError(ctx, "set online status", err)
	}
	return nil
}
