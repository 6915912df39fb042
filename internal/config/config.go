package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/scanvoca/scanvoca/internal/validation"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Generation GenerationConfig `mapstructure:"generation"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite3  = "sqlite3"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite3"`

	// mysql
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`

	// postgres
	DSN string `mapstructure:"dsn" validate:"required_if=Driver postgres"`

	// sqlite3
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite3"`
}

const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

type CacheConfig struct {
	Driver    string        `mapstructure:"driver" validate:"oneof=redis memory none"`
	RedisURL  string        `mapstructure:"redis_url" validate:"required_if=Driver redis"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gt=0"`
	Size      int           `mapstructure:"size" validate:"gt=0"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

type GenerationConfig struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=openai anthropic gemini"`
	Model           string        `mapstructure:"model"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	MaxAttempts     uint          `mapstructure:"max_attempts" validate:"min=1"`
	MaxConcurrency  int           `mapstructure:"max_concurrency" validate:"min=1"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// APIKey returns the credential of the selected provider.
func (c GenerationConfig) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

type ResolverConfig struct {
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxBatchSize int           `mapstructure:"max_batch_size" validate:"min=1"`
}

type ConfigLoader struct {
	viper     *viper.Viper
	validator *validation.Validator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, err := validation.New("mapstructure")
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/scanvoca")
	}

	return &ConfigLoader{
		viper:     v,
		validator: validate,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", DriverSQLite3)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "scanvoca")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.path", "scanvoca.db")
	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.size", 10000)
	v.SetDefault("cache.key_prefix", "word:")
	v.SetDefault("generation.provider", ProviderOpenAI)
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.max_concurrency", 8)
	v.SetDefault("generation.timeout", 0)
	v.SetDefault("resolver.batch_timeout", 0)
	v.SetDefault("resolver.max_batch_size", 100)

	// Secrets are read from the environment only
	envBindings := []struct {
		key string
		env string
	}{
		{"database.password", "DB_PASSWORD"},
		{"cache.redis_url", "REDIS_URL"},
		{"generation.openai_api_key", "OPENAI_API_KEY"},
		{"generation.anthropic_api_key", "ANTHROPIC_API_KEY"},
		{"generation.gemini_api_key", "GEMINI_API_KEY"},
	}
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", b.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	fieldErrors, err := loader.validator.Struct(cfg)
	if err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}
	if len(fieldErrors) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", validation.Messages(fieldErrors))
	}

	return &cfg, nil
}

// Load reads the configuration from configFile, or from the default locations when empty.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
