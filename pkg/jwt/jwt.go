package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mbeoliero/parley/pkg/errcode"
)

// Claims are the identity provider claims carried by a bearer token.
// The subject is the external auth id of the principal.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the external auth id the token was issued for
func (c *Claims) Principal() string {
	return c.Subject
}

// TokenId returns the jti claim, or a digest of the raw token when the issuer omits it
func (c *Claims) TokenId(raw string) string {
	if c.ID != "" {
		return c.ID
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Identity is the profile data used to mint a token
type Identity struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// GenerateToken signs a token for identity. Used by local tooling and tests standing in for the provider.
func GenerateToken(identity Identity, secret, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:    identity.Name,
		Email:   identity.Email,
		Picture: identity.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.Subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken parses and validates a token. An empty issuer skips the issuer check.
func ParseToken(tokenString, secret, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errcode.ErrTokenExpired
		}
		return nil, errcode.ErrTokenInvalid.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errcode.ErrTokenInvalid
	}
	return claims, nil
}
