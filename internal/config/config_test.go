package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("", envMap(map[string]string{
		"DATABASE_URL": "postgres://localhost/storefront",
		"JWT_SECRET":   "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "product-images", cfg.Minio.ImageBucket)
	assert.Equal(t, 10*time.Second, cfg.Checkout.Timeout.Duration)
	assert.Equal(t, 10, cfg.Checkout.RateLimit)
	assert.Equal(t, 5*time.Minute, cfg.AdminCacheTTL.Duration)
	assert.True(t, cfg.MigrateOnStart)
}

func TestLoadFrom_FileThenEnvironment(t *testing.T) {
	path := writeConfig(t, `
port = 9090
database_url = "postgres://file/storefront"
admin_cache_ttl = "90s"
low_stock_threshold = 3

[auth]
jwks_url = "https://idp.example.com/.well-known/jwks.json"

[redis]
addr = "redis.internal:6379"
db = 2

[minio]
endpoint = "minio.internal:9000"
use_ssl = true

[checkout]
timeout = "4s"
`)

	cfg, err := LoadFrom(path, envMap(map[string]string{
		"DATABASE_URL":     "postgres://env/storefront",
		"REDIS_DB":         "5",
		"MIGRATE_ON_START": "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://env/storefront", cfg.DatabaseURL)
	assert.Equal(t, "https://idp.example.com/.well-known/jwks.json", cfg.Auth.JWKSURL)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Redis.DB)
	assert.True(t, cfg.Minio.UseSSL)
	assert.Equal(t, "minioadmin", cfg.Minio.AccessKey)
	assert.Equal(t, 4*time.Second, cfg.Checkout.Timeout.Duration)
	assert.Equal(t, 90*time.Second, cfg.AdminCacheTTL.Duration)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"JWT_SECRET": "secret"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "missing key material",
			env:     map[string]string{"DATABASE_URL": "postgres://x"},
			wantErr: "either JWT_SECRET or JWKS_URL is required",
		},
		{
			name:    "bad number",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s", "PORT": "eighty"},
			wantErr: "PORT",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s", "CHECKOUT_TIMEOUT": "soon"},
			wantErr: "CHECKOUT_TIMEOUT",
		},
		{
			name:    "malformed file",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"},
			file:    "port = [",
			wantErr: "failed to load config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			_, err := LoadFrom(path, envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://process/storefront")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres://process/storefront", cfg.DatabaseURL)
}
