package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, defaultServerAddress, cfg.ServerAddress)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, defaultTableName, cfg.TableName)
	assert.Equal(t, 6, cfg.CodeLength)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "https", cfg.ShortURLScheme)
	assert.Equal(t, "example.com", cfg.DefaultHost)
	assert.Empty(t, cfg.AllowedHosts)
	assert.False(t, cfg.ExposeErrors)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, LogFormatConsole, cfg.LogFormat)
}

func TestNewConfig_Sources(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		file   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "environment",
			env: map[string]string{
				"STORAGE_BACKEND": "Postgres",
				"DATABASE_DSN":    "postgres://u:p@db:5432/links",
				"CODE_LENGTH":     "8",
				"ALLOWED_HOSTS":   "sho.rt, s.example ,",
				"EXPOSE_ERRORS":   "true",
				"CACHE_ENABLED":   "true",
				"CACHE_TTL":       "1h",
			},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendPostgres, cfg.StorageBackend)
				assert.Equal(t, "postgres://u:p@db:5432/links", cfg.DatabaseDSN)
				assert.Equal(t, 8, cfg.CodeLength)
				assert.Equal(t, []string{"sho.rt", "s.example"}, cfg.AllowedHosts)
				assert.True(t, cfg.ExposeErrors)
				assert.True(t, cfg.CacheEnabled)
				assert.Equal(t, time.Hour, cfg.CacheTTL)
			},
		},
		{
			name: "flag beats environment",
			env:  map[string]string{"CODE_LENGTH": "8", "PUBLIC_HOST": "env.example"},
			args: []string{"--code-length=10", "--public-host", "flag.example"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10, cfg.CodeLength)
				assert.Equal(t, "flag.example", cfg.PublicHost)
			},
		},
		{
			name: "env file",
			file: "STORAGE_BACKEND=file\nFILE_STORAGE_PATH=links.jsonl\nMAX_ATTEMPTS=7\n",
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendFile, cfg.StorageBackend)
				assert.True(t, filepath.IsAbs(cfg.FileStoragePath))
				assert.Equal(t, "links.jsonl", filepath.Base(cfg.FileStoragePath))
				assert.Equal(t, 7, cfg.MaxAttempts)
			},
		},
		{
			name: "environment beats env file",
			env:  map[string]string{"MAX_ATTEMPTS": "3"},
			file: "MAX_ATTEMPTS=7\nTABLE_NAME=from_file\n",
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.MaxAttempts)
				assert.Equal(t, "from_file", cfg.TableName)
			},
		},
		{
			name: "missing env file is ignored",
			args: []string{"--env-file", "/nonexistent/.env"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendMemory, cfg.StorageBackend)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := tt.args
			if tt.file != "" {
				args = append(args, "--env-file", writeEnvFile(t, tt.file))
			}

			cfg, err := NewConfig(args)
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestNewConfig_Errors(t *testing.T) {
	t.Run("unknown flag", func(t *testing.T) {
		_, err := NewConfig([]string{"--no-such-flag"})
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "postgres")
		_, err := NewConfig(nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func validConfig() Config {
	return Config{
		ServerAddress:  defaultServerAddress,
		StorageBackend: BackendMemory,
		RedisAddr:      defaultRedisAddr,
		CacheTTL:       time.Hour,
		TableName:      defaultTableName,
		CodeLength:     6,
		MaxAttempts:    5,
		ShortURLScheme: "https",
		LogLevel:       "info",
		LogFormat:      LogFormatConsole,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "code length too short", mutate: func(c *Config) { c.CodeLength = 3 }, wantErr: true},
		{name: "code length too long", mutate: func(c *Config) { c.CodeLength = 33 }, wantErr: true},
		{name: "code length bounds", mutate: func(c *Config) { c.CodeLength = 32 }},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "mongo" }, wantErr: true},
		{name: "file without path", mutate: func(c *Config) { c.StorageBackend = BackendFile }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StorageBackend = BackendPostgres }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.StorageBackend = BackendRedis; c.RedisAddr = "" }, wantErr: true},
		{name: "dynamodb without table", mutate: func(c *Config) { c.StorageBackend = BackendDynamoDB; c.TableName = "" }, wantErr: true},
		{name: "dynamodb", mutate: func(c *Config) { c.StorageBackend = BackendDynamoDB }},
		{name: "cache in front of redis", mutate: func(c *Config) { c.StorageBackend = BackendRedis; c.CacheEnabled = true }, wantErr: true},
		{name: "cache in front of memory", mutate: func(c *Config) { c.CacheEnabled = true }},
		{name: "cache without ttl", mutate: func(c *Config) { c.CacheEnabled = true; c.CacheTTL = 0 }, wantErr: true},
		{name: "ftp scheme", mutate: func(c *Config) { c.ShortURLScheme = "ftp" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLambdaConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		wantBackend string
		wantErr     bool
	}{
		{
			name:        "only table name set",
			env:         map[string]string{"TABLE_NAME": "short_links"},
			wantBackend: BackendDynamoDB,
		},
		{
			name:        "postgres is allowed",
			env:         map[string]string{"STORAGE_BACKEND": "postgres", "DATABASE_DSN": "postgres://u:p@db:5432/links"},
			wantBackend: BackendPostgres,
		},
		{
			name:    "memory is refused",
			env:     map[string]string{"STORAGE_BACKEND": "memory"},
			wantErr: true,
		},
		{
			name:    "file flag is refused",
			args:    []string{"--storage", "file", "--file-storage-path", "links.jsonl"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := NewLambdaConfig(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBackend, cfg.StorageBackend)
			assert.Equal(t, "short_links", cfg.TableName)
		})
	}
}
