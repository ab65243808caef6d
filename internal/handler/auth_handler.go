package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/middleware"
	"github.com/mbeoliero/parley/internal/service"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/jwt"
	"github.com/mbeoliero/parley/pkg/response"
)

// AuthHandler handles session requests. Tokens are issued by the identity provider, so only logout lives here.
type AuthHandler struct {
	tokenStore  *jwt.TokenStore
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler. tokenStore may be nil when revocation is disabled.
func NewAuthHandler(tokenStore *jwt.TokenStore, userService *service.UserService) *AuthHandler {
	return &AuthHandler{tokenStore: tokenStore, userService: userService}
}

// Logout revokes the presented token and marks the caller offline
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthenticated)
		return
	}

	if h.tokenStore != nil && claims.ExpiresAt != nil {
		if err := h.tokenStore.Revoke(ctx, claims.TokenId(middleware.GetToken(c)), claims.ExpiresAt.Time); err != nil {
			log.CtxError(ctx, "revoke token failed: subject=%s, error=%v", claims.Subject, err)
			response.ErrorWithCode(ctx, c, errcode.ErrInternalServer)
			return
		}
	}

	if err := h.userService.SetOnlineStatus(ctx, claims.Principal(), false); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}
