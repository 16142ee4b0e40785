package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 0.6, cfg.Sync.DuplicateThreshold)
	assert.Equal(t, 0.8, cfg.Sync.CategoryReuseThreshold)
	assert.Equal(t, 30*time.Second, cfg.Sync.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Sync.RequestTimeout)
	assert.Equal(t, 100, cfg.Sync.MaxErrors)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Sync.DuplicateThreshold = 0.75
	cfg.Sync.CategoryReuseThreshold = 0.9
	applyDefaults(cfg)

	assert.Equal(t, 0.75, cfg.Sync.DuplicateThreshold)
	assert.Equal(t, 0.9, cfg.Sync.CategoryReuseThreshold)
}

func TestValidate(t *testing.T) {
	t.Run("accepts defaults", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		require.NoError(t, cfg.validate())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.validate())
	})

	t.Run("rejects threshold out of range", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Sync.DuplicateThreshold = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		d := DatabaseConfig{
			Driver: "postgres", Host: "db", Port: 5432,
			User: "menu", Password: "pw", DBName: "menucloud", SSLMode: "disable",
		}
		assert.Equal(t, "host=db port=5432 user=menu password=pw dbname=menucloud sslmode=disable", d.DSN())
	})

	t.Run("sqlite", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", Path: "local.db"}
		assert.Equal(t, "local.db", d.DSN())
	})
}

func TestRedisConfig(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6379}
	assert.True(t, r.Enabled())
	assert.Equal(t, "cache:6379", r.Addr())

	assert.False(t, RedisConfig{}.Enabled())
}
