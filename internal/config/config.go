package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbeoliero/parley/pkg/idgen"
	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds all configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Typing   TypingConfig   `mapstructure:"typing"`
	IdGen    IdGenConfig    `mapstructure:"idgen"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	HTTPPort       int      `mapstructure:"http_port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds relational store configuration
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Charset      string `mapstructure:"charset"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// DSN returns the data source name for the configured driver
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds the identity provider token settings
type AuthConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	Revocation bool   `mapstructure:"revocation"`
}

// TypingConfig holds typing presence settings
type TypingConfig struct {
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
}

// IdGenConfig holds id generator settings
type IdGenConfig struct {
	Kind      string `mapstructure:"kind"`
	MachineId uint16 `mapstructure:"machine_id"`
}

// Global config instance
var GlobalConfig *Config

// Load loads configuration from file. PARLEY_* environment variables override file values,
// e.g. PARLEY_DATABASE_PASSWORD.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("parley")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverMySQL
	}
	if cfg.Database.Charset == "" {
		cfg.Database.Charset = "utf8mb4"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "parley:"
	}
	if cfg.Typing.FreshnessWindow == 0 {
		cfg.Typing.FreshnessWindow = 5 * time.Second
	}
	if cfg.IdGen.Kind == "" {
		cfg.IdGen.Kind = idgen.KindSonyflake
	}
	if cfg.IdGen.MachineId == 0 {
		cfg.IdGen.MachineId = 1
	}
}

func (cfg *Config) validate() error {
	switch cfg.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	switch cfg.IdGen.Kind {
	case idgen.KindSonyflake, idgen.KindUUID:
	default:
		return fmt.Errorf("unsupported id generator: %s", cfg.IdGen.Kind)
	}
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	return nil
}
