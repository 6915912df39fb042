package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{
			Driver:   DriverSQLite3,
			Host:     "localhost",
			Port:     3306,
			Database: "scanvoca",
			Username: "user",
			Path:     "scanvoca.db",
		},
		Cache: CacheConfig{
			Driver:    CacheMemory,
			TTL:       24 * time.Hour,
			Size:      10000,
			KeyPrefix: "word:",
		},
		Generation: GenerationConfig{
			Provider:       ProviderOpenAI,
			MaxAttempts:    3,
			MaxConcurrency: 8,
		},
		Resolver: ResolverConfig{MaxBatchSize: 100},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `server:
  port: 9090
log:
  level: debug
  format: json
database:
  driver: postgres
  dsn: postgres://localhost:5432/scanvoca
cache:
  driver: redis
  redis_url: redis://localhost:6379/0
  ttl: 1h
generation:
  provider: anthropic
  model: claude-haiku
  max_attempts: 2
  max_concurrency: 4
  timeout: 30s
resolver:
  batch_timeout: 2m
  max_batch_size: 50
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9090
				cfg.Log = LogConfig{Level: "debug", Format: "json"}
				cfg.Database.Driver = DriverPostgres
				cfg.Database.DSN = "postgres://localhost:5432/scanvoca"
				cfg.Cache.Driver = CacheRedis
				cfg.Cache.RedisURL = "redis://localhost:6379/0"
				cfg.Cache.TTL = time.Hour
				cfg.Generation.Provider = ProviderAnthropic
				cfg.Generation.Model = "claude-haiku"
				cfg.Generation.MaxAttempts = 2
				cfg.Generation.MaxConcurrency = 4
				cfg.Generation.Timeout = 30 * time.Second
				cfg.Resolver = ResolverConfig{BatchTimeout: 2 * time.Minute, MaxBatchSize: 50}
				return cfg
			},
		},
		{
			name: "secrets come from the environment",
			configContent: `cache:
  driver: redis
`,
			env: map[string]string{
				"DB_PASSWORD":       "secret",
				"REDIS_URL":         "redis://cache:6379/1",
				"OPENAI_API_KEY":    "sk-openai",
				"ANTHROPIC_API_KEY": "sk-ant",
				"GEMINI_API_KEY":    "gm-key",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.Password = "secret"
				cfg.Cache.Driver = CacheRedis
				cfg.Cache.RedisURL = "redis://cache:6379/1"
				cfg.Generation.OpenAIAPIKey = "sk-openai"
				cfg.Generation.AnthropicAPIKey = "sk-ant"
				cfg.Generation.GeminiAPIKey = "gm-key"
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `generation:
  provider: gemini
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Generation.Provider = ProviderGemini
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  port: 8080
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "postgres without dsn",
			configContent: `database:
  driver: postgres
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "dsn"},
		},
		{
			name: "unknown cache driver",
			configContent: `cache:
  driver: memcached
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "driver"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_PASSWORD", "REDIS_URL", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY"} {
				t.Setenv(key, tt.env[key])
			}
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "scanvoca.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				if tt.configContent != "" {
					err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644)
					require.NoError(t, err)
				}
				t.Chdir(tempDir)
			}

			got, err := Load(configPath)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestGenerationConfig_APIKey(t *testing.T) {
	cfg := GenerationConfig{
		OpenAIAPIKey:    "openai",
		AnthropicAPIKey: "anthropic",
		GeminiAPIKey:    "gemini",
	}
	tests := []struct {
		provider string
		want     string
	}{
		{ProviderOpenAI, "openai"},
		{ProviderAnthropic, "anthropic"},
		{ProviderGemini, "gemini"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c := cfg
			c.Provider = tt.provider
			assert.Equal(t, tt.want, c.APIKey())
		})
	}
}
