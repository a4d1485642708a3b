// Package config loads planner settings from defaults, an optional YAML
// file, a .env file and WBPLAN_ environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wbplanner/internal/automapper"
)

// EnvPrefix prefixes every environment override, e.g. WBPLAN_BASE_TABLE.
const EnvPrefix = "WBPLAN"

// Config keys.
const (
	KeySchema          = "schema"
	KeyRules           = "rules"
	KeyBaseTable       = "base_table"
	KeyMaxDepth        = "max_depth"
	KeyScope           = "scope"
	KeyCacheLocalPath  = "cache.local_path"
	KeyCacheRedisURL   = "cache.redis_url"
	KeyCacheSessionTTL = "cache.session_ttl"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeySession         = "session"
)

const (
	defaultMaxDepth    = 6
	defaultSessionTTL  = 24 * time.Hour
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultCacheFile   = ".wbplanner/cache.db"
	defaultConfigName  = ".wbplanner"
	defaultEnvFileName = ".env"
	configFileType     = "yaml"
)

// Config holds the resolved settings.
type Config struct {
	Schema    string
	Rules     string
	BaseTable string
	MaxDepth  int
	Scope     automapper.Scope
	// Session reuses a cache session across runs. Empty starts a fresh
	// session that ends with the run.
	Session   string
	Cache     CacheConfig
	Log       LogConfig
}

// CacheConfig selects the cache stores.
type CacheConfig struct {
	// LocalPath is the SQLite file holding durable buckets. Empty keeps
	// them in memory.
	LocalPath string
	// RedisURL points at the session store. Empty keeps session buckets in
	// memory.
	RedisURL   string
	SessionTTL time.Duration
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string
	Format string
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. When empty, .wbplanner.yaml is
	// searched in the working directory and it is fine if none exists.
	File string
	// EnvFile is loaded into the environment before reading variables.
	// Missing files are ignored.
	EnvFile string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyMaxDepth, defaultMaxDepth)
	v.SetDefault(KeyScope, string(automapper.ScopeAutomapper))
	v.SetDefault(KeyCacheLocalPath, defaultCacheFile)
	v.SetDefault(KeyCacheRedisURL, "")
	v.SetDefault(KeyCacheSessionTTL, defaultSessionTTL)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyLogFormat, defaultLogFormat)

	// Keys without a default must still be known to AutomaticEnv.
	v.SetDefault(KeySchema, "")
	v.SetDefault(KeyRules, "")
	v.SetDefault(KeyBaseTable, "")
	v.SetDefault(KeySession, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads settings into v and decodes them.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFileName
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return Decode(v)
}

// Decode builds a Config from v and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Schema:    v.GetString(KeySchema),
		Rules:     v.GetString(KeyRules),
		BaseTable: v.GetString(KeyBaseTable),
		MaxDepth:  v.GetInt(KeyMaxDepth),
		Scope:     automapper.Scope(v.GetString(KeyScope)),
		Session:   v.GetString(KeySession),
		Cache: CacheConfig{
			LocalPath:  v.GetString(KeyCacheLocalPath),
			RedisURL:   v.GetString(KeyCacheRedisURL),
			SessionTTL: v.GetDuration(KeyCacheSessionTTL),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be checked by type alone.
func (c *Config) Validate() error {
	if !c.Scope.IsValid() {
		return fmt.Errorf("%s: %w: %q", KeyScope, automapper.ErrUnknownScope, c.Scope)
	}

	if c.Session != "" {
		if _, err := uuid.Parse(c.Session); err != nil {
			return fmt.Errorf("%s: %w", KeySession, err)
		}
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxDepth, c.MaxDepth)
	}

	if c.Cache.SessionTTL < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyCacheSessionTTL, c.Cache.SessionTTL)
	}

	return nil
}
