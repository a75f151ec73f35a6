package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Leave    LeaveConfig
}

type AppConfig struct {
	Env string
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// AllowedOrigins may send credentialed cross-origin requests.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	MaxRetries int
}

type RedisConfig struct {
	Addr       string
	MaxRetries int
}

type KafkaConfig struct {
	Broker             string
	GroupID            string
	MaxRetries         int
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

type JWTConfig struct {
	Secret     string
	TTL        time.Duration
	RefreshTTL time.Duration
}

type LeaveConfig struct {
	StatisticsCacheTTL time.Duration
	DefaultPageSize    int
	MaxPageSize        int
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", "development"),
		},
		HTTP: HTTPConfig{
			Port:           getEnv("PORT", "3000"),
			ReadTimeout:    getDuration("HTTP_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:   getDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:    getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "ace_hrm"),
			Port:       getEnv("DB_PORT", "5432"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			MaxRetries: getInt("DB_MAX_RETRIES", 5),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			MaxRetries: getInt("REDIS_MAX_RETRIES", 5),
		},
		Kafka: KafkaConfig{
			Broker:             getEnv("KAFKA_BROKER", ""),
			GroupID:            getEnv("KAFKA_GROUP_ID", "ace-hrm-leave-audit"),
			MaxRetries:         getInt("KAFKA_MAX_RETRIES", 5),
			OutboxPollInterval: getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
			OutboxBatchSize:    getInt("OUTBOX_BATCH_SIZE", 50),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			TTL:        getDuration("JWT_TTL", 15*time.Minute),
			RefreshTTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Leave: LeaveConfig{
			StatisticsCacheTTL: getDuration("LEAVE_STATS_CACHE_TTL", 5*time.Minute),
			DefaultPageSize:    getInt("LEAVE_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:        getInt("LEAVE_MAX_PAGE_SIZE", 100),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Leave.DefaultPageSize < 1 || c.Leave.MaxPageSize < c.Leave.DefaultPageSize {
		return errors.New("LEAVE_DEFAULT_PAGE_SIZE must be between 1 and LEAVE_MAX_PAGE_SIZE")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getList splits a comma separated value, dropping empty entries.
func getList(key string, fallback []string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
