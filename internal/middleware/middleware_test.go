package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/app"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/parley/internal/config"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/jwt"
	"github.com/mbeoliero/parley/pkg/metrics"
	"github.com/mbeoliero/parley/pkg/response"
)

const (
	testSecret = "test-secret"
	testIssuer = "parley-test"
)

func setup(t *testing.T) (*route.Engine, *jwt.TokenStore) {
	t.Helper()
	config.GlobalConfig = &config.Config{Auth: config.AuthConfig{Secret: testSecret, Issuer: testIssuer, Revocation: true}}

	mr := miniredis.RunT(t)
	store := jwt.NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	engine := route.NewEngine(hertzconfig.NewOptions(nil))
	whoami := func(ctx context.Context, c *app.RequestContext) {
		response.Success(ctx, c, GetPrincipal(c))
	}
	engine.GET("/optional", Authenticate(store), whoami)
	engine.GET("/required", RequireAuth(store), whoami)
	return engine, store
}

func token(t *testing.T, subject, secret string, ttl time.Duration) string {
	t.Helper()
	tok, err := jwt.GenerateToken(jwt.Identity{Subject: subject}, secret, testIssuer, ttl)
	require.NoError(t, err)
	return tok
}

func do(engine *route.Engine, path, tok string) (int, response.Response) {
	var headers []ut.Header
	if tok != "" {
		headers = append(headers, ut.Header{Key: AuthorizationHeader, Value: BearerPrefix + tok})
	}
	w := ut.PerformRequest(engine, http.MethodGet, path, nil, headers...)
	resp := w.Result()

	var body response.Response
	_ = json.Unmarshal(resp.Body(), &body)
	return resp.StatusCode(), body
}

func TestRequireAuth(t *testing.T) {
	engine, _ := setup(t)

	status, body := do(engine, "/required", token(t, "auth|alice", testSecret, time.Hour))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "auth|alice", body.Data)

	cases := map[string]struct {
		tok  string
		code int
	}{
		"missing":     {"", errcode.ErrTokenMissing.Code},
		"bad secret":  {token(t, "auth|alice", "other", time.Hour), errcode.ErrTokenInvalid.Code},
		"expired":     {token(t, "auth|alice", testSecret, -time.Minute), errcode.ErrTokenExpired.Code},
		"empty sub":   {token(t, "", testSecret, time.Hour), errcode.ErrTokenInvalid.Code},
		"not a token": {"garbage", errcode.ErrTokenInvalid.Code},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := do(engine, "/required", tc.tok)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestRequireAuthRejectsNonBearer(t *testing.T) {
	engine, _ := setup(t)

	w := ut.PerformRequest(engine, http.MethodGet, "/required", nil, ut.Header{Key: AuthorizationHeader, Value: "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode())
}

func TestAuthenticateIsOptional(t *testing.T) {
	engine, _ := setup(t)

	status, body := do(engine, "/optional", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Data)

	status, body = do(engine, "/optional", token(t, "auth|bob", "other", time.Hour))
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Data)

	status, body = do(engine, "/optional", token(t, "auth|bob", testSecret, time.Hour))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "auth|bob", body.Data)
}

func TestRevokedTokenIsAbsent(t *testing.T) {
	engine, store := setup(t)
	tok := token(t, "auth|carol", testSecret, time.Hour)

	claims, err := jwt.ParseToken(tok, testSecret, testIssuer)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(context.Background(), claims.TokenId(tok), claims.ExpiresAt.Time))

	status, body := do(engine, "/required", tok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, errcode.ErrTokenRevoked.Code, body.Code)

	status, body = do(engine, "/optional", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Data)
}

func TestCORS(t *testing.T) {
	engine := route.NewEngine(hertzconfig.NewOptions(nil))
	engine.Use(CORS([]string{"https://chat.example.com"}))
	engine.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "pong")
	})

	w := ut.PerformRequest(engine, http.MethodGet, "/ping", nil, ut.Header{Key: "Origin", Value: "https://chat.example.com"})
	assert.Equal(t, "https://chat.example.com", string(w.Result().Header.Peek("Access-Control-Allow-Origin")))

	w = ut.PerformRequest(engine, http.MethodGet, "/ping", nil, ut.Header{Key: "Origin", Value: "https://evil.example.com"})
	assert.Empty(t, w.Result().Header.Peek("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())

	w = ut.PerformRequest(engine, http.MethodOptions, "/ping", nil, ut.Header{Key: "Origin", Value: "https://chat.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode())

	assert.True(t, checkOrigin("https://a.example", []string{"*"}))
	assert.False(t, checkOrigin("https://a.example", nil))
}

func TestRequestIdAndMetrics(t *testing.T) {
	engine := route.NewEngine(hertzconfig.NewOptions(nil))
	engine.Use(RequestId(), Metrics())
	engine.GET("/items/:id", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "ok")
	})

	before := testutil.CollectAndCount(metrics.RequestLatency)
	w := ut.PerformRequest(engine, http.MethodGet, "/items/42", nil)
	assert.NotEmpty(t, w.Result().Header.Peek(RequestIdHeader))
	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.RequestLatency))

	w = ut.PerformRequest(engine, http.MethodGet, "/items/43", nil, ut.Header{Key: RequestIdHeader, Value: "req-1"})
	assert.Equal(t, "req-1", string(w.Result().Header.Peek(RequestIdHeader)))
	// same route template, same series
	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.RequestLatency))
}
