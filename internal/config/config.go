// Package config loads application configuration from a YAML file and
// LEADSCOUT-prefixed environment variables, and initializes the global
// logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/leadscout/internal/mission"
	"github.com/sells-group/leadscout/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     store.Config    `yaml:"store" mapstructure:"store"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Mission   mission.Config  `yaml:"mission" mapstructure:"mission"`
	Audit     AuditConfig     `yaml:"audit" mapstructure:"audit"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
}

// AnthropicConfig holds Anthropic API settings for the mission planner.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// NotionConfig holds Notion export credentials.
type NotionConfig struct {
	Token      string `yaml:"token" mapstructure:"token"`
	DatabaseID string `yaml:"database_id" mapstructure:"database_id"`
}

// AuditConfig configures website inspection timeouts.
type AuditConfig struct {
	FetchTimeoutSecs int `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	BodyTimeoutSecs  int `yaml:"body_timeout_secs" mapstructure:"body_timeout_secs"`
}

// ScoringConfig points at an optional tables file; empty uses the built-in
// defaults.
type ScoringConfig struct {
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.max_results", 20)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("mission.max_leads", 10)
	v.SetDefault("mission.min_score", 0)
	v.SetDefault("mission.enrich_limit", 15)
	v.SetDefault("mission.parallelism", 5)
	v.SetDefault("audit.fetch_timeout_secs", 10)
	v.SetDefault("audit.body_timeout_secs", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command actually needs are present.
// Mode is the command: "mission", "export", or "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	needStore := func() {
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	}

	switch mode {
	case "mission":
		needStore()
		if c.Places.APIKey == "" {
			problems = append(problems, "places.api_key is required")
		}
	case "export":
		needStore()
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.DatabaseID == "" {
			problems = append(problems, "notion.database_id is required")
		}
	case "serve":
		needStore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Places.APIKey == "" {
			problems = append(problems, "places.api_key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
