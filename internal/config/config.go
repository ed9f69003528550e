package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// Config is the process configuration. Values come from an optional YAML
// file, overridden by environment variables.
type Config struct {
	Port          int    `mapstructure:"port" validate:"required|int|min:1|max:65535"`
	DatabaseURL   string `mapstructure:"database_url" validate:"required"`
	RedisURL      string `mapstructure:"redis_url" validate:"required"`
	BearerToken   string `mapstructure:"bearer_token" validate:"required"`
	LogLevel      string `mapstructure:"log_level" validate:"required|in:debug,info,warn,error"`
	PublicBaseURL string `mapstructure:"public_base_url" validate:"required"`

	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	GeminiTextModel   string `mapstructure:"gemini_text_model"`
	GeminiSpeechModel string `mapstructure:"gemini_speech_model"`
	GeminiVoice       string `mapstructure:"gemini_voice"`
	MapsAPIKey        string `mapstructure:"maps_api_key"`

	AudioDir      string `mapstructure:"audio_dir" validate:"required"`
	SnapshotDir   string `mapstructure:"snapshot_dir" validate:"required"`
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`

	GenerationAttempts int           `mapstructure:"generation_attempts" validate:"required|int|min:1|max:10"`
	GenerationDelay    time.Duration `mapstructure:"generation_delay"`
	LocalCacheMB       int           `mapstructure:"local_cache_mb" validate:"int|min:0"`
	DBMaxConns         int32         `mapstructure:"db_max_conns"`
}

var envKeys = []string{
	"port",
	"database_url",
	"redis_url",
	"bearer_token",
	"log_level",
	"public_base_url",
	"gemini_api_key",
	"gemini_text_model",
	"gemini_speech_model",
	"gemini_voice",
	"maps_api_key",
	"audio_dir",
	"snapshot_dir",
	"migrations_dir",
	"generation_attempts",
	"generation_delay",
	"local_cache_mb",
	"db_max_conns",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("audio_dir", "data/audio")
	v.SetDefault("snapshot_dir", "data/profiles")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("generation_attempts", 3)
	v.SetDefault("generation_delay", 1500*time.Millisecond)
	v.SetDefault("local_cache_mb", 16)
	v.SetDefault("db_max_conns", 10)
}

// Load reads configuration from path (optional) and the environment, then
// validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, key := range envKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct rules plus constraints the rules cannot express.
func (c *Config) Validate() error {
	val := validate.Struct(c)
	if !val.Validate() {
		return fmt.Errorf("invalid config: %w", val.Errors)
	}
	if c.GenerationDelay < 0 {
		return fmt.Errorf("invalid config: generation_delay must not be negative")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
