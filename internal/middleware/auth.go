package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/parley/internal/config"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/jwt"
	"github.com/mbeoliero/parley/pkg/response"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer token
	BearerPrefix = "Bearer "
	// PrincipalKey is the context key for the external auth id of the caller
	PrincipalKey = "principal"
	// ClaimsKey is the context key for the verified token claims
	ClaimsKey = "claims"
	// TokenKey is the context key for the raw bearer token
	TokenKey = "token"
)

// Authenticate attaches the caller when a valid, unrevoked bearer token is present.
// Requests without one continue anonymously. store may be nil when revocation is disabled.
func Authenticate(store *jwt.TokenStore) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		claims, raw, err := verify(ctx, c, store)
		if err != nil {
			if !errcode.ErrTokenMissing.Is(err) {
				log.CtxDebug(ctx, "ignoring bearer token: %v", err)
			}
			c.Next(ctx)
			return
		}
		attach(c, claims, raw)
		c.Next(ctx)
	}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token
func RequireAuth(store *jwt.TokenStore) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		claims, raw, err := verify(ctx, c, store)
		if err != nil {
			response.ErrorWithCode(ctx, c, err)
			c.Abort()
			return
		}
		attach(c, claims, raw)
		c.Next(ctx)
	}
}

func verify(ctx context.Context, c *app.RequestContext, store *jwt.TokenStore) (*jwt.Claims, string, *errcode.Error) {
	authHeader := string(c.GetHeader(AuthorizationHeader))
	if authHeader == "" {
		return nil, "", errcode.ErrTokenMissing
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return nil, "", errcode.ErrTokenInvalid
	}

	raw := strings.TrimPrefix(authHeader, BearerPrefix)
	cfg := config.GlobalConfig.Auth
	claims, err := jwt.ParseToken(raw, cfg.Secret, cfg.Issuer)
	if err != nil {
		if e, ok := errcode.As(err); ok {
			return nil, "", e
		}
		return nil, "", errcode.ErrTokenInvalid
	}

	if store != nil {
		revoked, err := store.IsRevoked(ctx, claims.TokenId(raw))
		if err != nil {
			log.CtxError(ctx, "check token revocation failed: subject=%s, error=%v", claims.Subject, err)
			return nil, "", errcode.ErrInternalServer
		}
		if revoked {
			return nil, "", errcode.ErrTokenRevoked
		}
	}
	return claims, raw, nil
}

func attach(c *app.RequestContext, claims *jwt.Claims, raw string) {
	c.Set(PrincipalKey, claims.Principal())
	c.Set(ClaimsKey, claims)
	c.Set(TokenKey, raw)
}

// GetPrincipal gets the caller's external auth id from context, or "" for anonymous requests
func GetPrincipal(c *app.RequestContext) string {
	return c.GetString(PrincipalKey)
}

// GetClaims gets the verified token claims from context
func GetClaims(c *app.RequestContext) *jwt.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		return v.(*jwt.Claims)
	}
	return nil
}

// GetToken gets the raw bearer token from context
func GetToken(c *app.RequestContext) string {
	return c.GetString(TokenKey)
}
