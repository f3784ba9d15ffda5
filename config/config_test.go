package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("LOCK_TTL_SECONDS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 24, cfg.Auth.TokenHourLifespan)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("API_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestIntFromEnv_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	assert.Equal(t, 50, intFromEnv("DB_MAX_OPEN_CONNS", 50))

	t.Setenv("DB_MAX_OPEN_CONNS", " 12 ")
	assert.Equal(t, 12, intFromEnv("DB_MAX_OPEN_CONNS", 50))
}

func TestListFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test ")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, listFromEnv("CORS_ORIGINS"))
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	cfg.DB.User = "pos"
	cfg.DB.Password = "pw"
	cfg.DB.Host = "db"
	cfg.DB.Port = "3306"
	cfg.DB.Name = "pos"
	assert.Equal(t, "pos:pw@tcp(db:3306)/pos?parseTime=true&loc=UTC", cfg.DSN())

	cfg.DB.Host = "/cloudsql/proj:region:inst"
	assert.Equal(t, "pos:pw@unix(/cloudsql/proj:region:inst)/pos?parseTime=true&loc=UTC", cfg.DSN())
}
