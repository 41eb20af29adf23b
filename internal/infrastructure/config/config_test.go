package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"DS_APP_NAME":           os.Getenv("DS_APP_NAME"),
		"DS_APP_ENV":            os.Getenv("DS_APP_ENV"),
		"DS_APP_PORT":           os.Getenv("DS_APP_PORT"),
		"DS_DATABASE_HOST":      os.Getenv("DS_DATABASE_HOST"),
		"DS_DATABASE_PASSWORD":  os.Getenv("DS_DATABASE_PASSWORD"),
		"DS_DATABASE_SSLMODE":   os.Getenv("DS_DATABASE_SSLMODE"),
		"DS_JWT_SECRET":         os.Getenv("DS_JWT_SECRET"),
		"DS_CJ_API_KEY":         os.Getenv("DS_CJ_API_KEY"),
		"DS_CJ_API_SECRET":      os.Getenv("DS_CJ_API_SECRET"),
		"DS_CJ_TIMEOUT":         os.Getenv("DS_CJ_TIMEOUT"),
		"DS_KORAPAY_SECRET_KEY": os.Getenv("DS_KORAPAY_SECRET_KEY"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "dropship-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "dropship", cfg.Database.DBName)

		assert.Equal(t, 3500*time.Second, cfg.CJ.TokenTTL)
		assert.Equal(t, 10*time.Second, cfg.CJ.Timeout)
		assert.Equal(t, 2, cfg.CJ.Retries)
		assert.Equal(t, 200*time.Millisecond, cfg.CJ.RetryWait)

		assert.Equal(t, 30*time.Second, cfg.Messaging.PollInterval)
		assert.Equal(t, 587, cfg.Messaging.SMTPPort)
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("DS_APP_PORT", "9090")
		os.Setenv("DS_DATABASE_HOST", "db.internal")
		os.Setenv("DS_CJ_API_KEY", "test-key")
		os.Setenv("DS_CJ_TIMEOUT", "3s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "test-key", cfg.CJ.APIKey)
		assert.Equal(t, 3*time.Second, cfg.CJ.Timeout)
	})

	t.Run("production requires secrets", func(t *testing.T) {
		clearEnv()
		os.Setenv("DS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production accepts complete configuration", func(t *testing.T) {
		clearEnv()
		os.Setenv("DS_APP_ENV", "production")
		os.Setenv("DS_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("DS_DATABASE_PASSWORD", "secret")
		os.Setenv("DS_DATABASE_SSLMODE", "require")
		os.Setenv("DS_CJ_API_KEY", "cj-key")
		os.Setenv("DS_KORAPAY_SECRET_KEY", "sk_test")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestCJConfig_SigningSecret(t *testing.T) {
	withSecret := CJConfig{APIKey: "key", APISecret: "secret"}
	assert.Equal(t, "secret", withSecret.SigningSecret())

	withoutSecret := CJConfig{APIKey: "key"}
	assert.Equal(t, "key", withoutSecret.SigningSecret())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "dropship",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
