package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"shortener/internal/domain/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envServerAddress   = "SERVER_ADDRESS"
	envStorageBackend  = "STORAGE_BACKEND"
	envFileStoragePath = "FILE_STORAGE_PATH"
	envDatabaseDSN     = "DATABASE_DSN"
	envRedisAddr       = "REDIS_ADDR"
	envRedisPassword   = "REDIS_PASSWORD"
	envRedisDB         = "REDIS_DB"
	envCacheEnabled    = "CACHE_ENABLED"
	envCacheTTL        = "CACHE_TTL"
	envTableName       = "TABLE_NAME"
	envAWSRegion       = "AWS_REGION"
	envDynamoEndpoint  = "DYNAMODB_ENDPOINT"
	envCodeLength      = "CODE_LENGTH"
	envMaxAttempts     = "MAX_ATTEMPTS"
	envShortURLScheme  = "SHORT_URL_SCHEME"
	envPublicHost      = "PUBLIC_HOST"
	envDefaultHost     = "DEFAULT_HOST"
	envAllowedHosts    = "ALLOWED_HOSTS"
	envExposeErrors    = "EXPOSE_ERRORS"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
	envLogFile         = "LOG_FILE"
	envLogMaxSizeMB    = "LOG_MAX_SIZE_MB"
	envLogMaxBackups   = "LOG_MAX_BACKUPS"
	envLogMaxAgeDays   = "LOG_MAX_AGE_DAYS"
)

const (
	defaultServerAddress  = "localhost:8080"
	defaultStorageBackend = BackendMemory
	defaultRedisAddr      = "localhost:6379"
	defaultCacheTTL       = 24 * time.Hour
	defaultTableName      = "short_links"
	defaultCodeLength     = 6
	defaultMaxAttempts    = 5
	defaultShortURLScheme = "https"
	defaultDefaultHost    = "example.com"
	defaultLogLevel       = "info"
	defaultLogFormat      = LogFormatConsole
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 28
	defaultEnvFile        = ".env"

	minCodeLength = models.MinCodeLength
	maxCodeLength = models.MaxCodeLength
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	ServerAddress string

	StorageBackend  string
	FileStoragePath string
	DatabaseDSN     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool
	CacheTTL      time.Duration

	TableName      string
	AWSRegion      string
	DynamoEndpoint string

	CodeLength     int
	MaxAttempts    int
	ShortURLScheme string
	PublicHost     string
	DefaultHost    string
	AllowedHosts   []string
	ExposeErrors   bool

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

type loadOptions struct {
	defaultBackend string
	backends       []string
}

type Option func(*loadOptions)

// WithDefaultBackend replaces the memory default for STORAGE_BACKEND.
func WithDefaultBackend(backend string) Option {
	return func(o *loadOptions) {
		o.defaultBackend = backend
	}
}

// WithBackends restricts STORAGE_BACKEND to the given set.
func WithBackends(backends ...string) Option {
	return func(o *loadOptions) {
		o.backends = backends
	}
}

// NewConfig parses args and loads the config. Later sources win: defaults,
// then an optional .env file, then the environment, then flags.
func NewConfig(args []string, opts ...Option) (*Config, error) {
	flags := FlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	return Load(flags, opts...)
}

// NewLambdaConfig loads the config for the Lambda function. Containers share
// nothing, so only the networked backends are accepted and DynamoDB is the
// default, as a function configured with just TABLE_NAME expects.
func NewLambdaConfig(args []string) (*Config, error) {
	return NewConfig(args,
		WithDefaultBackend(BackendDynamoDB),
		WithBackends(BackendDynamoDB, BackendPostgres, BackendRedis),
	)
}

// Load builds the config from an already parsed flag set, e.g. a cobra
// command's flags carrying FlagSet.
func Load(flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	setDefaults(v)
	if o.defaultBackend != "" {
		v.SetDefault(envStorageBackend, o.defaultBackend)
	}
	v.AutomaticEnv()

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	envFile := defaultEnvFile
	if f := flags.Lookup("env-file"); f != nil {
		envFile = f.Value.String()
	}
	if err := loadEnvFile(v, envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddress:   v.GetString(envServerAddress),
		StorageBackend:  strings.ToLower(strings.TrimSpace(v.GetString(envStorageBackend))),
		FileStoragePath: v.GetString(envFileStoragePath),
		DatabaseDSN:     v.GetString(envDatabaseDSN),
		RedisAddr:       v.GetString(envRedisAddr),
		RedisPassword:   v.GetString(envRedisPassword),
		RedisDB:         v.GetInt(envRedisDB),
		CacheEnabled:    v.GetBool(envCacheEnabled),
		CacheTTL:        v.GetDuration(envCacheTTL),
		TableName:       v.GetString(envTableName),
		AWSRegion:       v.GetString(envAWSRegion),
		DynamoEndpoint:  v.GetString(envDynamoEndpoint),
		CodeLength:      v.GetInt(envCodeLength),
		MaxAttempts:     v.GetInt(envMaxAttempts),
		ShortURLScheme:  strings.ToLower(v.GetString(envShortURLScheme)),
		PublicHost:      v.GetString(envPublicHost),
		DefaultHost:     v.GetString(envDefaultHost),
		AllowedHosts:    splitList(v.GetString(envAllowedHosts)),
		ExposeErrors:    v.GetBool(envExposeErrors),
		LogLevel:        v.GetString(envLogLevel),
		LogFormat:       strings.ToLower(v.GetString(envLogFormat)),
		LogFile:         v.GetString(envLogFile),
		LogMaxSizeMB:    v.GetInt(envLogMaxSizeMB),
		LogMaxBackups:   v.GetInt(envLogMaxBackups),
		LogMaxAgeDays:   v.GetInt(envLogMaxAgeDays),
	}

	if cfg.FileStoragePath != "" {
		cfg.FileStoragePath = resolveFilePath(cfg.FileStoragePath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(o.backends) > 0 && !slices.Contains(o.backends, cfg.StorageBackend) {
		return nil, fmt.Errorf("%w: %s %q is not supported here, use one of %s",
			ErrInvalidConfig, envStorageBackend, cfg.StorageBackend, strings.Join(o.backends, ", "))
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(envServerAddress, defaultServerAddress)
	v.SetDefault(envStorageBackend, defaultStorageBackend)
	v.SetDefault(envFileStoragePath, "")
	v.SetDefault(envDatabaseDSN, "")
	v.SetDefault(envRedisAddr, defaultRedisAddr)
	v.SetDefault(envRedisPassword, "")
	v.SetDefault(envRedisDB, 0)
	v.SetDefault(envCacheEnabled, false)
	v.SetDefault(envCacheTTL, defaultCacheTTL)
	v.SetDefault(envTableName, defaultTableName)
	v.SetDefault(envAWSRegion, "")
	v.SetDefault(envDynamoEndpoint, "")
	v.SetDefault(envCodeLength, defaultCodeLength)
	v.SetDefault(envMaxAttempts, defaultMaxAttempts)
	v.SetDefault(envShortURLScheme, defaultShortURLScheme)
	v.SetDefault(envPublicHost, "")
	v.SetDefault(envDefaultHost, defaultDefaultHost)
	v.SetDefault(envAllowedHosts, "")
	v.SetDefault(envExposeErrors, false)
	v.SetDefault(envLogLevel, defaultLogLevel)
	v.SetDefault(envLogFormat, defaultLogFormat)
	v.SetDefault(envLogFile, "")
	v.SetDefault(envLogMaxSizeMB, defaultLogMaxSizeMB)
	v.SetDefault(envLogMaxBackups, defaultLogMaxBackups)
	v.SetDefault(envLogMaxAgeDays, defaultLogMaxAgeDays)
}

// flagNames maps each flag to the setting it overrides.
var flagNames = map[string]string{
	"server-address":    envServerAddress,
	"storage":           envStorageBackend,
	"file-storage-path": envFileStoragePath,
	"database-dsn":      envDatabaseDSN,
	"redis-addr":        envRedisAddr,
	"cache":             envCacheEnabled,
	"table-name":        envTableName,
	"code-length":       envCodeLength,
	"public-host":       envPublicHost,
	"log-level":         envLogLevel,
	"log-format":        envLogFormat,
}

// FlagSet returns the flags understood by Load.
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("shortener", pflag.ContinueOnError)
	flags.String("env-file", defaultEnvFile, "Path to an optional .env file")
	flags.String("server-address", defaultServerAddress, "Server address")
	flags.String("storage", defaultStorageBackend, "Storage backend: memory, file, postgres, redis, dynamodb")
	flags.String("file-storage-path", "", "File storage path")
	flags.String("database-dsn", "", "Database DSN")
	flags.String("redis-addr", defaultRedisAddr, "Redis address")
	flags.Bool("cache", false, "Enable the Redis read-through cache")
	flags.String("table-name", defaultTableName, "DynamoDB table name")
	flags.Int("code-length", defaultCodeLength, "Short code length")
	flags.String("public-host", "", "Host used in short URLs regardless of the Host header")
	flags.String("log-level", defaultLogLevel, "Log level")
	flags.String("log-format", defaultLogFormat, "Log format: console or json")
	return flags
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagNames {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loadEnvFile feeds the .env file in as viper's config layer, so real
// environment variables still take precedence over it.
func loadEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	m := make(map[string]any, len(values))
	for k, val := range values {
		m[k] = val
	}
	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if c.FileStoragePath == "" {
			errs = append(errs, fmt.Errorf("%s is required for the %s backend", envFileStoragePath, BackendFile))
		}
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("%s is required for the %s backend", envDatabaseDSN, BackendPostgres))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("%s is required for the %s backend", envRedisAddr, BackendRedis))
		}
	case BackendDynamoDB:
		if c.TableName == "" {
			errs = append(errs, fmt.Errorf("%s is required for the %s backend", envTableName, BackendDynamoDB))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown %s %q", envStorageBackend, c.StorageBackend))
	}

	if c.CacheEnabled {
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("%s is required when the cache is enabled", envRedisAddr))
		}
		if c.StorageBackend == BackendRedis {
			errs = append(errs, fmt.Errorf("the cache cannot front the %s backend", BackendRedis))
		}
		if c.CacheTTL <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", envCacheTTL))
		}
	}

	if c.CodeLength < minCodeLength || c.CodeLength > maxCodeLength {
		errs = append(errs, fmt.Errorf("%s must be between %d and %d", envCodeLength, minCodeLength, maxCodeLength))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", envMaxAttempts))
	}
	if c.ShortURLScheme != "http" && c.ShortURLScheme != "https" {
		errs = append(errs, fmt.Errorf("%s must be http or https", envShortURLScheme))
	}
	if c.ServerAddress == "" {
		errs = append(errs, fmt.Errorf("%s is required", envServerAddress))
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", envLogLevel, err))
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("%s must be %s or %s", envLogFormat, LogFormatConsole, LogFormatJSON))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func resolveFilePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return absPath
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
