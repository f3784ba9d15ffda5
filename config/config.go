package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultPort = "8080"

type Config struct {
	Port string

	DB struct {
		User            string
		Password        string
		Host            string
		Port            string
		Name            string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		ConnMaxIdleTime time.Duration
	}

	Redis struct {
		Address     string
		LockTTL     time.Duration
		LockRetry   int
		LockBackoff time.Duration
		CacheTTL    time.Duration
	}

	Auth struct {
		Secret            string
		TokenHourLifespan int
	}

	PubSub struct {
		ProjectID       string
		Topic           string
		CredentialsJSON string
	}

	LogLevel      string
	ServerTimeout time.Duration
	CORSOrigins   []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// a missing .env is fine in Cloud Run / containers
	_ = godotenv.Load()

	var cfg Config
	cfg.Port = stringFromEnv("PORT", defaultPort)

	cfg.DB.User = os.Getenv("DB_USER")
	cfg.DB.Password = os.Getenv("DB_PASSWORD")
	cfg.DB.Host = stringFromEnv("DB_HOST", "127.0.0.1")
	cfg.DB.Port = stringFromEnv("DB_PORT", "3306")
	cfg.DB.Name = os.Getenv("DB_NAME")
	cfg.DB.MaxOpenConns = intFromEnv("DB_MAX_OPEN_CONNS", 50)
	cfg.DB.MaxIdleConns = intFromEnv("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = durationFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	cfg.DB.ConnMaxIdleTime = durationFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)

	cfg.Redis.Address = os.Getenv("REDIS_ADDRESS")
	cfg.Redis.LockTTL = durationFromEnv("LOCK_TTL_SECONDS", 30)
	cfg.Redis.LockRetry = intFromEnv("LOCK_RETRY_COUNT", 50)
	cfg.Redis.LockBackoff = time.Duration(intFromEnv("LOCK_RETRY_BACKOFF_MS", 100)) * time.Millisecond
	cfg.Redis.CacheTTL = time.Duration(intFromEnv("CACHE_LIFESPAN", 1)) * time.Hour

	cfg.Auth.Secret = os.Getenv("API_SECRET")
	cfg.Auth.TokenHourLifespan = intFromEnv("TOKEN_HOUR_LIFESPAN", 24)

	cfg.PubSub.ProjectID = firstNonEmpty(os.Getenv("PUBSUB_PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT"), os.Getenv("GCP_PROJECT"))
	cfg.PubSub.Topic = os.Getenv("PUBSUB_TOPIC")
	cfg.PubSub.CredentialsJSON = os.Getenv("PUBSUB_CREDENTIALS_JSON")

	cfg.LogLevel = stringFromEnv("LOG_LEVEL", "error")
	cfg.ServerTimeout = durationFromEnv("SERVER_TIMEOUT_SECONDS", 30)
	cfg.CORSOrigins = listFromEnv("CORS_ORIGINS")

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("API_SECRET is required")
	}
	return &cfg, nil
}

// DSN builds the MySQL data source name.
// DB_HOST may be "/cloudsql/<CONNECTION_NAME>" to use the Cloud SQL unix socket.
func (c *Config) DSN() string {
	network := "tcp"
	address := fmt.Sprintf("%s:%s", c.DB.Host, c.DB.Port)
	if strings.HasPrefix(c.DB.Host, "/cloudsql/") {
		network = "unix"
		address = c.DB.Host
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?parseTime=true&loc=UTC",
		c.DB.User,
		c.DB.Password,
		network,
		address,
		c.DB.Name,
	)
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durationFromEnv(key string, defSeconds int) time.Duration {
	return time.Duration(intFromEnv(key, defSeconds)) * time.Second
}

func listFromEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
