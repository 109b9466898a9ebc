package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.HTTPPort)
	assert.False(t, cfg.App.GRPCEnabled)
	assert.Equal(t, "short", cfg.App.FieldStyle)
	assert.Equal(t, "uuidv7", cfg.App.IDScheme)
	assert.Equal(t, "My API", cfg.Docs.Title)
	assert.Equal(t, "1.0.0", cfg.Docs.Version)
	assert.Equal(t, "3.0.0", cfg.Docs.OpenAPIVersion)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, DriverNone, cfg.DB.Driver)
	assert.True(t, cfg.Metrics.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_ProductionDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "HTTP_PORT=4000\nAPI_FIELD_STYLE=long\nID_SCHEME=ulid\nDOCS_TITLE=Users\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	// Environment wins over the file
	t.Setenv("HTTP_PORT", "5000")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.App.HTTPPort)
	assert.Equal(t, "long", cfg.App.FieldStyle)
	assert.Equal(t, "ulid", cfg.App.IDScheme)
	assert.Equal(t, "Users", cfg.Docs.Title)
}

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			HTTPPort:               "3000",
			GRPCPort:               "50051",
			ShutdownTimeoutSeconds: 10,
			FieldStyle:             "short",
			IDScheme:               "uuidv7",
		},
		Redis: RedisConfig{IdempotencyTTLSeconds: 60},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstCapacity:     20,
		},
		DB: DatabaseConfig{Driver: DriverNone},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:     "bad http port",
			mutate:   func(c *Config) { c.App.HTTPPort = "http" },
			errorMsg: "HTTP_PORT",
		},
		{
			name: "grpc port clash",
			mutate: func(c *Config) {
				c.App.GRPCEnabled = true
				c.App.GRPCPort = "3000"
			},
			errorMsg: "GRPC_PORT must differ",
		},
		{
			name:     "unknown style",
			mutate:   func(c *Config) { c.App.FieldStyle = "camel" },
			errorMsg: "API_FIELD_STYLE",
		},
		{
			name:     "unknown id scheme",
			mutate:   func(c *Config) { c.App.IDScheme = "snowflake" },
			errorMsg: "ID_SCHEME",
		},
		{
			name:     "rate limit without redis",
			mutate:   func(c *Config) { c.RateLimit.Enabled = true },
			errorMsg: "RATE_LIMIT_ENABLED requires REDIS_ENABLED",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.RateLimit.Enabled = true
				c.RateLimit.BurstCapacity = 0
			},
			errorMsg: "RATE_LIMIT_BURST",
		},
		{
			name:     "unknown driver",
			mutate:   func(c *Config) { c.DB.Driver = "mysql" },
			errorMsg: "AUDIT_DB_DRIVER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", c.DSN())
}
