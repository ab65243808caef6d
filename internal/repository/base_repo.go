package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/config"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repositories holds all repositories
type Repositories struct {
	DB           *gorm.DB
	Redis        *redis.Client
	User         *UserRepo
	Conversation *ConversationRepo
	Message      *MessageRepo
	Reaction     *ReactionRepo
	Typing       *TypingRepo
}

// NewRepositories opens the configured database and redis and creates all repositories
func NewRepositories(cfg *config.Config) (*Repositories, error) {
	db, err := initDB(cfg)
	if err != nil {
		return nil, err
	}

	rdb := initRedis(cfg)

	repos := NewRepositoriesWith(db, rdb)
	if cfg.Database.AutoMigrate {
		if err := repos.Migrate(context.Background()); err != nil {
			return nil, err
		}
	}
	return repos, nil
}

// NewRepositoriesWith creates all repositories on top of existing connections
func NewRepositoriesWith(db *gorm.DB, rdb *redis.Client) *Repositories {
	return &Repositories{
		DB:           db,
		Redis:        rdb,
		User:         NewUserRepo(db, rdb),
		Conversation: NewConversationRepo(db, rdb),
		Message:      NewMessageRepo(db, rdb),
		Reaction:     NewReactionRepo(db, rdb),
		Typing:       NewTypingRepo(db, rdb),
	}
}

// initDB initializes the relational store for the configured driver
func initDB(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Warn
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Database.DSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.Database.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// initRedis initializes Redis connection
func initRedis(cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rdb.AddHook(MetricsHook{})
	return rdb
}

// MetricsHook counts failed redis commands. Cache misses are not failures.
type MetricsHook struct{}

func (MetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (MetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.StoreErrors.WithLabelValues("redis_" + cmd.Name()).Inc()
		}
		return err
	}
}

func (MetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.StoreErrors.WithLabelValues("redis_pipeline").Inc()
		}
		return err
	}
}

// Migrate creates or updates every table and index
func (r *Repositories) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(entity.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes all connections
func (r *Repositories) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	return r.Redis.Close()
}

// Transaction executes fn in a transaction
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

// CheckConnection checks if database and redis connections are alive
func (r *Repositories) CheckConnection(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.CtxError(ctx, "database ping failed: %v", err)
		return err
	}

	if err := r.Redis.Ping(ctx).Err(); err != nil {
		log.CtxError(ctx, "redis ping failed: %v", err)
		return err
	}

	return nil
}
