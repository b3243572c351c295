package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Upload     UploadConfig     `mapstructure:"upload"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractorConfig holds settings for the semantic extraction provider.
type ExtractorConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// Timeout returns the per-call timeout as a duration.
func (e *ExtractorConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// ExtractionConfig exposes every pipeline heuristic as a named setting so the
// thresholds can be tuned against a labeled corpus instead of living as
// inline magic numbers.
type ExtractionConfig struct {
	// MaxAttempts bounds the engine's retry state machine.
	MaxAttempts int `mapstructure:"max_attempts"`
	// BackoffBase is the delay before the second attempt; it doubles per
	// attempt up to BackoffCap.
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	BackoffCap  time.Duration `mapstructure:"backoff_cap"`
	// RatePerSecond and RateBurst configure the process-wide limiter that
	// guards all external extraction calls.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	RateBurst     int     `mapstructure:"rate_burst"`
	// MaterialityThreshold is the minimum numeric magnitude treated as
	// meaningful financial data rather than a count, date, or ID.
	MaterialityThreshold float64 `mapstructure:"materiality_threshold"`
	// MinMaterialValues is the minimum count of material values the
	// content gate requires before allowing an engine call.
	MinMaterialValues int `mapstructure:"min_material_values"`
	// ConsistencyTolerance is the absolute tolerance used when checking
	// and repairing the EGI/NOI accounting identities.
	ConsistencyTolerance float64 `mapstructure:"consistency_tolerance"`
	// MaxPromptChars truncates overly long document text before prompting.
	MaxPromptChars int `mapstructure:"max_prompt_chars"`
}

// BatchConfig holds settings for multi-document runs.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// UploadConfig holds upload limits for the HTTP surface.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxFileSizeBytes returns the upload cap in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB << 20
}

// Load reads configuration from environment variables with the NOIFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOIFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extractor defaults
	v.SetDefault("extractor.provider", "openai")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "gpt-4o")
	v.SetDefault("extractor.timeout_secs", 120)

	// Extraction pipeline defaults
	v.SetDefault("extraction.max_attempts", 3)
	v.SetDefault("extraction.backoff_base", "1s")
	v.SetDefault("extraction.backoff_cap", "30s")
	v.SetDefault("extraction.rate_per_second", 2.0)
	v.SetDefault("extraction.rate_burst", 4)
	v.SetDefault("extraction.materiality_threshold", 100.0)
	v.SetDefault("extraction.min_material_values", 3)
	v.SetDefault("extraction.consistency_tolerance", 1.0)
	v.SetDefault("extraction.max_prompt_chars", 12000)

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 25)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// viper reads list-valued env vars as a single comma-separated string
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
