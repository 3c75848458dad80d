package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeHS256    = "hs256"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Sync     SyncConfig
	Audit    AuditConfig
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles the redis backed read caches.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AuthConfig selects how bearer credentials are verified.
type AuthConfig struct {
	Mode              string
	FirebaseProjectID string
	FirebaseCertsURL  string
	JWTSecret         string
	HTTPTimeout       time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// SyncConfig bounds sync push batches and selects the unknown operation policy.
type SyncConfig struct {
	MaxOps     int
	UnknownOps string
}

// AuditConfig sizes the asynchronous audit writer.
type AuditConfig struct {
	Workers    int
	MaxRetries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 2*time.Minute),
	}

	cfg.Auth = AuthConfig{
		Mode:              strings.ToLower(strings.TrimSpace(v.GetString("AUTH_MODE"))),
		FirebaseProjectID: v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCertsURL:  v.GetString("FIREBASE_CERTS_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		HTTPTimeout:       parseDuration(v.GetString("AUTH_HTTP_TIMEOUT"), 5*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
	}

	cfg.Sync = SyncConfig{
		MaxOps:     v.GetInt("SYNC_MAX_OPS"),
		UnknownOps: strings.ToLower(strings.TrimSpace(v.GetString("SYNC_UNKNOWN_OPS"))),
	}

	cfg.Audit = AuditConfig{
		Workers:    v.GetInt("AUDIT_WORKERS"),
		MaxRetries: v.GetInt("AUDIT_MAX_RETRIES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects combinations that cannot serve traffic safely.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeFirebase:
		if c.Auth.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when AUTH_MODE=firebase")
		}
	case AuthModeHS256:
		if c.Env == EnvProduction {
			return errors.New("AUTH_MODE=hs256 is not allowed in production")
		}
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=hs256")
		}
	default:
		return errors.New("AUTH_MODE must be one of firebase, hs256")
	}
	switch c.Sync.UnknownOps {
	case "accept", "reject":
	default:
		return errors.New("SYNC_UNKNOWN_OPS must be accept or reject")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "2m")

	v.SetDefault("AUTH_MODE", AuthModeFirebase)
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_CERTS_URL", "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("AUTH_HTTP_TIMEOUT", "5s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)

	v.SetDefault("SYNC_MAX_OPS", 500)
	v.SetDefault("SYNC_UNKNOWN_OPS", "accept")

	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
