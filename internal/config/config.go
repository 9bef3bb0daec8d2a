// Package config loads hanzicam settings from config.yaml, HANZICAM_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/hanzicam/internal/frame"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. HANZICAM_LLM_MODEL.
const EnvPrefix = "HANZICAM"

// Config holds all settings.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Scan    ScanConfig    `mapstructure:"scan"`
	History HistoryConfig `mapstructure:"history"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Log     LogConfig     `mapstructure:"log"`
}

// LLMConfig configures the recognition service.
type LLMConfig struct {
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
}

// ScanConfig configures manual captures and live scanning.
type ScanConfig struct {
	// MinInterval is the least time between two live scans.
	MinInterval time.Duration `mapstructure:"min_interval"`
	// PollInterval is how often the live scanner asks whether it may scan.
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	CaptureGroupSize int           `mapstructure:"capture_group_size"`
	LiveGroupSize    int           `mapstructure:"live_group_size"`
	JPEGQuality      int           `mapstructure:"jpeg_quality"`
	LiveJPEGQuality  int           `mapstructure:"live_jpeg_quality"`
	MaxDimension     int           `mapstructure:"max_dimension"`
	LiveRegion       frame.Region  `mapstructure:"live_region"`
}

// CaptureOptions returns frame options for a manual capture.
func (s ScanConfig) CaptureOptions() frame.Options {
	return frame.Options{Quality: s.JPEGQuality, MaxDimension: s.MaxDimension}
}

// LiveOptions returns frame options for a live scan.
func (s ScanConfig) LiveOptions() frame.Options {
	return frame.Options{Region: s.LiveRegion, Quality: s.LiveJPEGQuality, MaxDimension: s.MaxDimension}
}

// HistoryConfig locates the history database.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// EnrichConfig controls local fallbacks for incomplete results.
type EnrichConfig struct {
	PinyinFallback bool   `mapstructure:"pinyin_fallback"`
	Dictionary     string `mapstructure:"dictionary"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultDir returns $HOME/.config/hanzicam.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hanzicam"), nil
}

// Default returns the built-in settings for a config directory.
func Default(dir string) Config {
	return Config{
		LLM: LLMConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 2048,
			Timeout:   30 * time.Second,
		},
		Scan: ScanConfig{
			MinInterval:      3 * time.Second,
			PollInterval:     4 * time.Second,
			CaptureGroupSize: 8,
			LiveGroupSize:    6,
			JPEGQuality:      90,
			LiveJPEGQuality:  80,
			MaxDimension:     1600,
			LiveRegion:       frame.Region{Padding: 0.08, Height: 0.4},
		},
		History: HistoryConfig{Path: filepath.Join(dir, "history.db")},
		Enrich:  EnrichConfig{PinyinFallback: true},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads dir/config.yaml if present, applies environment overrides and
// validates the result. ANTHROPIC_API_KEY is used when no key is configured.
func Load(dir string) (*Config, error) {
	v := viper.New()
	for key, value := range flatten(Default(dir)) {
		v.SetDefault(key, value)
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, setting, format string, args ...any) {
		if !ok {
			errs = append(errs, hanzi.InvalidConfigf(setting, format, args...))
		}
	}

	check(c.LLM.MaxTokens > 0, "llm.max_tokens", "must be positive, got %d", c.LLM.MaxTokens)
	check(c.LLM.Timeout > 0, "llm.timeout", "must be positive, got %s", c.LLM.Timeout)
	check(c.Scan.MinInterval > 0, "scan.min_interval", "must be positive, got %s", c.Scan.MinInterval)
	check(c.Scan.PollInterval > 0, "scan.poll_interval", "must be positive, got %s", c.Scan.PollInterval)
	check(c.Scan.CaptureGroupSize > 0, "scan.capture_group_size", "must be positive, got %d", c.Scan.CaptureGroupSize)
	check(c.Scan.LiveGroupSize > 0, "scan.live_group_size", "must be positive, got %d", c.Scan.LiveGroupSize)
	check(c.Scan.JPEGQuality >= 1 && c.Scan.JPEGQuality <= 100, "scan.jpeg_quality", "must be in [1, 100], got %d", c.Scan.JPEGQuality)
	check(c.Scan.LiveJPEGQuality >= 1 && c.Scan.LiveJPEGQuality <= 100, "scan.live_jpeg_quality", "must be in [1, 100], got %d", c.Scan.LiveJPEGQuality)
	check(c.Scan.MaxDimension >= 0, "scan.max_dimension", "must not be negative, got %d", c.Scan.MaxDimension)
	check(c.History.Path != "", "history.path", "must be set")

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		check(false, "log.format", "must be text or json, got %q", c.Log.Format)
	}

	if err := c.Scan.LiveRegion.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scan.live_region: %w", err))
	}
	return errors.Join(errs...)
}

// Save writes cfg to path as YAML. An existing file is kept unless force is set.
// The API key is never written.
func Save(path string, cfg Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s: %w", path, os.ErrExist)
	}

	doc := nest(flatten(cfg))
	if llm, ok := doc["llm"].(map[string]any); ok {
		delete(llm, "api_key")
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// flatten lists every setting under its dotted viper key. Durations are
// rendered as strings so they read naturally in YAML.
func flatten(c Config) map[string]any {
	d := func(v time.Duration) string { return v.String() }
	return map[string]any{
		"llm.model":                c.LLM.Model,
		"llm.max_tokens":           c.LLM.MaxTokens,
		"llm.timeout":              d(c.LLM.Timeout),
		"llm.base_url":             c.LLM.BaseURL,
		"llm.api_key":              c.LLM.APIKey,
		"scan.min_interval":        d(c.Scan.MinInterval),
		"scan.poll_interval":       d(c.Scan.PollInterval),
		"scan.capture_group_size":  c.Scan.CaptureGroupSize,
		"scan.live_group_size":     c.Scan.LiveGroupSize,
		"scan.jpeg_quality":        c.Scan.JPEGQuality,
		"scan.live_jpeg_quality":   c.Scan.LiveJPEGQuality,
		"scan.max_dimension":       c.Scan.MaxDimension,
		"scan.live_region.padding": c.Scan.LiveRegion.Padding,
		"scan.live_region.height":  c.Scan.LiveRegion.Height,
		"history.path":             c.History.Path,
		"enrich.pinyin_fallback":   c.Enrich.PinyinFallback,
		"enrich.dictionary":        c.Enrich.Dictionary,
		"log.level":                c.Log.Level,
		"log.format":               c.Log.Format,
	}
}

func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}
