// internal/pkg/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Item store
	Store StoreConfig

	// Redis
	Redis RedisConfig

	// Asynq
	Asynq AsynqConfig

	// AWS
	AWS AWSConfig

	// Exports
	Export ExportConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host                string `required:"true"`
	Port                string `required:"true"`
	User                string `required:"true"`
	Password            string
	Name                string `required:"true"`
	SSLMode             string
	MaxConnections      int32
	MinConnections      int32
	MaxConnLifetime     time.Duration
	MaxConnIdleTime     time.Duration
	HealthCheckPeriod   time.Duration
	ConnectTimeout      time.Duration
	EnableQueryLogging  bool
	DestructiveMigrate  bool // drop and recreate an incompatible schema
	MigrationMaxRetries int
}

// StoreConfig holds item store configuration
type StoreConfig struct {
	Driver        string  // postgres, memory
	WatchExternal bool    // follow writes made by other processes via LISTEN/NOTIFY
	RefreshRate   float64 // max query refreshes per second per subscriber, 0 = unlimited
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	TTL          time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	ShutdownTimeout time.Duration
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string // For MinIO in development
	UsePathStyle    bool   // For MinIO compatibility
	SecretName      string // Secrets Manager secret holding DB_PASSWORD
}

// ExportConfig holds inventory export configuration
type ExportConfig struct {
	StorageDriver   string // s3, local
	LocalDir        string
	Schedule        string // cron spec or @every/@daily descriptor
	CleanupSchedule string
	Retention       time.Duration
}

// SecretsManager resolves secrets by key
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// Load loads configuration from environment variables, an optional
// inventory.{yaml,json,toml} file and, when AWS_SECRET_NAME is set,
// AWS Secrets Manager
func Load(logger *slog.Logger) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	v.SetConfigName("inventory")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/inventory")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Info("config file loaded", slog.String("file", v.ConfigFileUsed()))
	}

	cfg := build(&source{v: v}, env)

	if cfg.AWS.SecretName != "" {
		sm, err := NewAWSSecretsManager(context.Background(), cfg.AWS.Region, cfg.AWS.SecretName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager: %w", err)
		}
		if err := cfg.ApplySecrets(context.Background(), sm); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func build(src *source, env string) *Config {
	redisHost := src.str("REDIS_HOST", "localhost")
	redisPort := src.str("REDIS_PORT", "6379")

	return &Config{
		App: AppConfig{
			Name:        src.str("APP_NAME", "inventory-tracker"),
			Environment: env,
			Version:     src.str("APP_VERSION", "dev"),
			LogLevel:    src.str("LOG_LEVEL", "info"),
			LogFormat:   src.str("LOG_FORMAT", "json"),
			Debug:       src.boolean("APP_DEBUG", env == "development"),
		},
		Database: DatabaseConfig{
			Host:                src.str("DB_HOST", "localhost"),
			Port:                src.str("DB_PORT", "5432"),
			User:                src.str("DB_USER", "inventory"),
			Password:            src.str("DB_PASSWORD", "inventory_dev"),
			Name:                src.str("DB_NAME", "inventory"),
			SSLMode:             src.str("DB_SSL_MODE", "disable"),
			MaxConnections:      int32(src.integer("DB_MAX_CONNECTIONS", 10)),
			MinConnections:      int32(src.integer("DB_MIN_CONNECTIONS", 2)),
			MaxConnLifetime:     src.duration("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:     src.duration("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod:   src.duration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:      src.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
			EnableQueryLogging:  src.boolean("DB_QUERY_LOGGING", false),
			DestructiveMigrate:  src.boolean("DB_DESTRUCTIVE_MIGRATION", true),
			MigrationMaxRetries: src.integer("DB_MIGRATION_RETRIES", 5),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(src.str("STORE_DRIVER", "postgres")),
			WatchExternal: src.boolean("STORE_WATCH_EXTERNAL", false),
			RefreshRate:   src.float("STORE_REFRESH_RATE", 0),
		},
		Redis: RedisConfig{
			Enabled:      src.boolean("REDIS_ENABLED", false),
			Host:         redisHost,
			Port:         redisPort,
			Password:     src.str("REDIS_PASSWORD", ""),
			DB:           src.integer("REDIS_DB", 0),
			MaxRetries:   src.integer("REDIS_MAX_RETRIES", 3),
			DialTimeout:  src.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  src.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: src.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     src.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: src.integer("REDIS_MIN_IDLE_CONNS", 2),
			TTL:          src.duration("REDIS_TTL", 10*time.Minute),
		},
		Asynq: AsynqConfig{
			RedisAddr:       src.str("ASYNQ_REDIS_ADDR", redisHost+":"+redisPort),
			RedisPassword:   src.str("REDIS_PASSWORD", ""),
			RedisDB:         src.integer("ASYNQ_REDIS_DB", 0),
			Concurrency:     src.integer("ASYNQ_CONCURRENCY", 4),
			Queues:          parseQueues(src.str("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
			StrictPriority:  src.boolean("ASYNQ_STRICT_PRIORITY", false),
			ShutdownTimeout: src.duration("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		AWS: AWSConfig{
			Region:          src.str("AWS_REGION", "us-east-1"),
			AccessKeyID:     src.str("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: src.str("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        src.str("AWS_S3_BUCKET", "inventory-exports"),
			S3Endpoint:      src.str("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    src.boolean("AWS_S3_PATH_STYLE", env == "development"),
			SecretName:      src.str("AWS_SECRET_NAME", ""),
		},
		Export: ExportConfig{
			StorageDriver:   strings.ToLower(src.str("STORAGE_DRIVER", "local")),
			LocalDir:        src.str("EXPORT_DIR", "./data"),
			Schedule:        src.str("EXPORT_SCHEDULE", "@daily"),
			CleanupSchedule: src.str("EXPORT_CLEANUP_SCHEDULE", "@hourly"),
			Retention:       src.duration("EXPORT_RETENTION", 720*time.Hour),
		},
	}
}

// ApplySecrets overrides the database password with the value held by sm
func (c *Config) ApplySecrets(ctx context.Context, sm SecretsManager) error {
	password, err := sm.GetSecret(ctx, "DB_PASSWORD")
	if err != nil {
		return fmt.Errorf("failed to load database password: %w", err)
	}
	c.Database.Password = password
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := (&BasicValidator{}).Validate(c); err != nil {
		return err
	}
	if c.IsProduction() {
		return (&ProductionValidator{}).Validate(c)
	}
	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// RedisAddr returns the host:port of the cache server
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// source reads typed values through viper, falling back to defaults
// when a key is unset or does not parse
type source struct {
	v *viper.Viper
}

func (s *source) str(key, defaultValue string) string {
	if value := strings.TrimSpace(s.v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

func (s *source) boolean(key string, defaultValue bool) bool {
	if value := s.v.GetString(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func (s *source) integer(key string, defaultValue int) int {
	if value := s.v.GetString(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func (s *source) float(key string, defaultValue float64) float64 {
	if value := s.v.GetString(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func (s *source) duration(key string, defaultValue time.Duration) time.Duration {
	if value := s.v.GetString(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	for _, pair := range strings.Split(queuesStr, ",") {
		name, priority, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		p, err := strconv.Atoi(strings.TrimSpace(priority))
		if err == nil && p > 0 {
			queues[strings.TrimSpace(name)] = p
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
