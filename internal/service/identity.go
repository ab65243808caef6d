package service

import (
	"context"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/pkg/errcode"
)

// IdentityResolver maps an authenticated principal (the identity provider subject) to a User
type IdentityResolver struct {
	userRepo *repository.UserRepo
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(repos *repository.Repositories) *IdentityResolver {
	return &IdentityResolver{userRepo: repos.User}
}

// Resolve returns the caller for mutations.
// An empty principal is ErrUnauthenticated; a principal that was never synced is ErrUserNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, principal string) (*entity.User, error) {
	if principal == "" {
		return nil, errcode.ErrUnauthenticated
	}
	user, err := r.userRepo.GetByExternalAuthId(ctx, principal)
	if err != nil {
		return nil, internalError(ctx, "resolve caller", err)
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}
	return user, nil
}

// Lookup returns the caller for queries, or nil when there is none to resolve
func (r *IdentityResolver) Lookup(ctx context.Context, principal string) (*entity.User, error) {
	user, err := r.Resolve(ctx, principal)
	if err != nil {
		if e, ok := errcode.As(err); ok && (e.Kind == errcode.KindUnauthenticated || e.Kind == errcode.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
