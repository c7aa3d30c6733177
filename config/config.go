// Package config loads vecmatch settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/viant/vecmatch/classify"
	"github.com/viant/vecmatch/index/gaussian"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvGalleryDSN = "VECMATCH_GALLERY_DSN"
	EnvMetric     = "VECMATCH_METRIC"
	EnvK          = "VECMATCH_K"
	EnvLogLevel   = "VECMATCH_LOG_LEVEL"
)

// Config is the complete vecmatch configuration.
type Config struct {
	Gallery GalleryConfig `yaml:"gallery"`
	Ranking RankingConfig `yaml:"ranking"`
	Log     LogConfig     `yaml:"log"`
}

// GalleryConfig locates the gallery database.
type GalleryConfig struct {
	DSN string `yaml:"dsn"`
}

// RankingConfig holds rank defaults used when flags are not given.
type RankingConfig struct {
	Metric         string  `yaml:"metric"`
	K              int     `yaml:"k"`
	Regularization float64 `yaml:"regularization"`
}

// LogConfig selects the slog level and handler (text or json).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the settings used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Gallery: GalleryConfig{DSN: "vecmatch.db"},
		Ranking: RankingConfig{
			Metric:         string(classify.Euclidean),
			K:              5,
			Regularization: gaussian.DefaultRegularization,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path over DefaultConfig, then applies
// environment overrides. A .env file in the working directory is loaded
// first if present. An empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvGalleryDSN); v != "" {
		c.Gallery.DSN = v
	}
	if v := os.Getenv(EnvMetric); v != "" {
		c.Ranking.Metric = v
	}
	if v := os.Getenv(EnvK); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvK, err)
		}
		c.Ranking.K = k
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks settings for consistency.
func (c *Config) Validate() error {
	if c.Gallery.DSN == "" {
		return fmt.Errorf("config: gallery.dsn is required")
	}
	if _, err := classify.ParseMetric(c.Ranking.Metric); err != nil {
		return fmt.Errorf("config: ranking.metric: %w", err)
	}
	if c.Ranking.K < 0 {
		return fmt.Errorf("config: ranking.k must be non-negative, got %d", c.Ranking.K)
	}
	if c.Ranking.Regularization <= 0 {
		return fmt.Errorf("config: ranking.regularization must be positive, got %g", c.Ranking.Regularization)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}

// Logger builds a slog.Logger writing to w at the configured level and
// format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Log.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
