package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	RefSets  RefSetsConfig  `yaml:"refsets" mapstructure:"refsets"`
	Reviewer ReviewerConfig `yaml:"reviewer" mapstructure:"reviewer"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the audit database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EngineConfig configures the decision and duplicate engines.
type EngineConfig struct {
	ExcludeRoleAccounts bool        `yaml:"exclude_role_accounts" mapstructure:"exclude_role_accounts" json:"exclude_role_accounts"`
	ConfidenceThreshold float64     `yaml:"confidence_threshold" mapstructure:"confidence_threshold" json:"confidence_threshold"`
	ProviderAwareDedup  bool        `yaml:"provider_aware_dedup" mapstructure:"provider_aware_dedup" json:"provider_aware_dedup"`
	NearDupeCeiling     int         `yaml:"near_dupe_ceiling" mapstructure:"near_dupe_ceiling" json:"near_dupe_ceiling"`
	Fuzzy               FuzzyConfig `yaml:"fuzzy" mapstructure:"fuzzy" json:"fuzzy"`
}

// FuzzyConfig selects and tunes the nearest-match provider.
type FuzzyConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider" json:"provider"` // "levenshtein" or "prefix"
	MinScore int    `yaml:"min_score" mapstructure:"min_score" json:"min_score"`
}

// RefSetsConfig points at external reference-set files. Each list falls
// back to a small embedded default when the path is empty or missing.
type RefSetsConfig struct {
	DisposablePath string `yaml:"disposable_path" mapstructure:"disposable_path"`
	RolePath       string `yaml:"role_path" mapstructure:"role_path"`
	TopDomainsPath string `yaml:"top_domains_path" mapstructure:"top_domains_path"`
	TLDPath        string `yaml:"tld_path" mapstructure:"tld_path"`
	TypoTablePath  string `yaml:"typo_table_path" mapstructure:"typo_table_path"`
}

// ReviewerConfig configures the optional LLM reviewer for review-action
// records.
type ReviewerConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
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
	v.SetEnvPrefix("MAILCLEAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "mailclean.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.exclude_role_accounts", true)
	v.SetDefault("engine.confidence_threshold", 0.85)
	v.SetDefault("engine.provider_aware_dedup", true)
	v.SetDefault("engine.near_dupe_ceiling", 1000)
	v.SetDefault("engine.fuzzy.provider", "levenshtein")
	v.SetDefault("engine.fuzzy.min_score", 90)
	v.SetDefault("reviewer.enabled", false)
	v.SetDefault("reviewer.model", "claude-haiku-4-5-20251001")
	v.SetDefault("reviewer.max_tokens", 500)
	v.SetDefault("reviewer.rate_limit", 10.0)

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
