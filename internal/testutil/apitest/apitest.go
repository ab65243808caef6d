// Package apitest assembles the full HTTP stack over test stores for in-process requests.
package apitest

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/parley/internal/config"
	"github.com/mbeoliero/parley/internal/handler"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/internal/router"
	"github.com/mbeoliero/parley/internal/service"
	"github.com/mbeoliero/parley/internal/testutil"
	"github.com/mbeoliero/parley/pkg/jwt"
)

const (
	Secret = "apitest-secret"
	Issuer = "apitest"
)

// Server is a routed hertz engine backed by sqlite and miniredis
type Server struct {
	Engine *route.Engine
	Repos  *repository.Repositories
	Redis  *miniredis.Miniredis
	Clock  *testutil.Clock
}

// New builds the server with revocation enabled
func New(t testing.TB) *Server {
	t.Helper()
	config.GlobalConfig = &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Auth:   config.AuthConfig{Secret: Secret, Issuer: Issuer, Revocation: true},
	}

	repos, mr := testutil.NewRepositories(t)
	clock := testutil.NewClock(time.Now().UnixMilli())
	identity := service.NewIdentityResolver(repos)
	opts := []service.Option{service.WithClock(clock.Now), service.WithLockWait(0)}
	userService := service.NewUserService(repos, identity, opts...)
	tokenStore := jwt.NewTokenStore(repos.Redis)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.SetupRouter(h, &router.Handlers{
		Auth:         handler.NewAuthHandler(tokenStore, userService),
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(service.NewConversationService(repos, identity, opts...)),
		Message:      handler.NewMessageHandler(service.NewMessageService(repos, identity, opts...)),
		Reaction:     handler.NewReactionHandler(service.NewReactionService(repos, identity)),
		Typing:       handler.NewTypingHandler(service.NewTypingService(repos, identity, opts...)),
	}, tokenStore)

	return &Server{Engine: h.Engine, Repos: repos, Redis: mr, Clock: clock}
}

// Token mints a bearer token for the user called name, with external auth id testutil.AuthId(name)
func Token(t testing.TB, name string) string {
	t.Helper()
	tok, err := jwt.GenerateToken(jwt.Identity{
		Subject: testutil.AuthId(name),
		Name:    name,
		Email:   name + "@example.com",
	}, Secret, Issuer, time.Hour)
	require.NoError(t, err)
	return tok
}

// Reply is a decoded response
type Reply struct {
	Status int
	Code   int
	Msg    string
	Data   json.RawMessage
}

// Decode unmarshals the data field into v. Omitted data, as for empty lists, decodes as null.
func (r *Reply) Decode(t testing.TB, v interface{}) {
	t.Helper()
	data := r.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	require.NoError(t, json.Unmarshal(data, v))
}

// Do performs a request. body is JSON-encoded when not nil; token may be empty.
func (s *Server) Do(t testing.TB, method, path, token string, body interface{}) *Reply {
	t.Helper()

	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	var reqBody *ut.Body
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
	}

	resp := ut.PerformRequest(s.Engine, method, path, reqBody, headers...).Result()
	reply := &Reply{Status: resp.StatusCode()}

	var envelope struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &envelope), string(resp.Body()))
	reply.Code, reply.Msg, reply.Data = envelope.Code, envelope.Msg, envelope.Data
	return reply
}
