// Package testutil provides shared fixtures for package tests: an in-memory sqlite store,
// a miniredis instance and a controllable clock.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewRepositories returns migrated repositories backed by sqlite in memory and miniredis
func NewRepositories(t testing.TB) (*repository.Repositories, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every connection to ":memory:" is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repos := repository.NewRepositoriesWith(db, rdb)
	require.NoError(t, repos.Migrate(context.Background()))
	t.Cleanup(func() { _ = repos.Close() })

	return repos, mr
}

// CreateUser inserts a user whose external auth id is "auth|"+name
func CreateUser(t testing.TB, repos *repository.Repositories, name string) *entity.User {
	t.Helper()

	id, err := entity.NewId[entity.UserId]()
	require.NoError(t, err)
	user := &entity.User{
		Id:             id,
		ExternalAuthId: AuthId(name),
		Name:           name,
		Email:          name + "@example.com",
		IsOnline:       true,
	}
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user
}

// AuthId is the external auth id CreateUser assigns to name
func AuthId(name string) string {
	return "auth|" + name
}

// Clock is a manual clock in unix milliseconds. Each Now call advances it by Step.
type Clock struct {
	mu   sync.Mutex
	now  int64
	Step int64
}

// NewClock starts a clock at start that ticks one millisecond per reading
func NewClock(start int64) *Clock {
	return &Clock{now: start, Step: 1}
}

// Now returns the current reading, then advances by Step
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now += c.Step
	return now
}

// Advance moves the clock forward by ms
func (c *Clock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}
