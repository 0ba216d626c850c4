// Package config loads the nlq configuration from defaults, an optional
// file and NLQ_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

// Config is the full configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Parser    ParserConfig    `mapstructure:"parser"`
	Translate TranslateConfig `mapstructure:"translate"`
	Schema    SchemaConfig    `mapstructure:"schema"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	BatchWorkers int           `mapstructure:"batch_workers"`
}

type ParserConfig struct {
	Segmenter    string            `mapstructure:"segmenter"` // dict or whitespace
	StopWords    []string          `mapstructure:"stop_words"`
	KeywordsFile string            `mapstructure:"keywords_file"`
	Keywords     keyword.Overrides `mapstructure:"keywords"` // inline, merged over KeywordsFile
}

type TranslateConfig struct {
	DefaultIndex string `mapstructure:"default_index"`
	TimeField    string `mapstructure:"time_field"`
	DefaultSize  int    `mapstructure:"default_size"`
	MaxSize      int    `mapstructure:"max_size"`
}

type SchemaConfig struct {
	File string `mapstructure:"file"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_ttl", 5*time.Minute)
	v.SetDefault("server.batch_workers", 8)

	v.SetDefault("parser.segmenter", "dict")
	v.SetDefault("parser.stop_words", []string{})
	v.SetDefault("parser.keywords_file", "")

	v.SetDefault("translate.default_index", "")
	v.SetDefault("translate.time_field", "created_at")
	v.SetDefault("translate.default_size", 10)
	v.SetDefault("translate.max_size", 1000)

	v.SetDefault("schema.file", "")
	v.SetDefault("database.dsn", "file:nlquery?mode=memory&cache=shared")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and NLQ_* environment
// binding. "server.port" reads NLQ_SERVER_PORT.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("NLQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads path (if not empty) over the defaults and environment.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	switch c.Parser.Segmenter {
	case "dict", "whitespace":
	default:
		return errors.Errorf("parser.segmenter must be dict or whitespace, got %q", c.Parser.Segmenter)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Translate.DefaultSize <= 0 || c.Translate.MaxSize < c.Translate.DefaultSize {
		return errors.Errorf("translate sizes invalid: default %d, max %d", c.Translate.DefaultSize, c.Translate.MaxSize)
	}
	return nil
}

// LoadKeywords loads KeywordsFile, if set, and layers the inline overrides on
// top.
func (p ParserConfig) LoadKeywords() (keyword.Overrides, error) {
	var ov keyword.Overrides
	if p.KeywordsFile != "" {
		var err error
		if ov, err = keyword.LoadOverridesFile(p.KeywordsFile); err != nil {
			return keyword.Overrides{}, err
		}
	}
	return ov.Merge(p.Keywords), nil
}
