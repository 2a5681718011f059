// Package config reads server and CLI settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/watermark-mcp/internal/imaging"
)

// Environment variable names.
const (
	EnvLogLevel        = "WATERMARK_MCP_LOG_LEVEL"
	EnvLogFile         = "WATERMARK_MCP_LOG_FILE"
	EnvFontPath        = "WATERMARK_FONT_PATH"
	EnvDefaultFontSize = "WATERMARK_DEFAULT_FONT_SIZE"
	EnvPreviewSize     = "WATERMARK_PREVIEW_SIZE"
	EnvOCRLanguage     = "WATERMARK_OCR_LANGUAGE"
)

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultFontSize    = 20
	DefaultOCRLanguage = "eng"
)

// Config holds the settings shared by cmd/watermark-mcp and cmd/watermark.
type Config struct {
	LogLevel string
	LogFile  string // empty: stderr only

	// FontPath selects the watermark font. Empty means the bundled font.
	FontPath        string
	DefaultFontSize int

	PreviewSize int
	OCRLanguage string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		DefaultFontSize: DefaultFontSize,
		PreviewSize:     imaging.DefaultPreviewSize,
		OCRLanguage:     DefaultOCRLanguage,
	}
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Unset variables keep
// their defaults; set but malformed ones are an error.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := Default()

	cfg.LogLevel = getStringOrDefault(getenv, EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = getStringOrDefault(getenv, EnvLogFile, "")
	cfg.FontPath = getStringOrDefault(getenv, EnvFontPath, "")
	cfg.OCRLanguage = getStringOrDefault(getenv, EnvOCRLanguage, cfg.OCRLanguage)

	var err error
	if cfg.DefaultFontSize, err = getIntOrDefault(getenv, EnvDefaultFontSize, cfg.DefaultFontSize); err != nil {
		return nil, err
	}
	if cfg.PreviewSize, err = getIntOrDefault(getenv, EnvPreviewSize, cfg.PreviewSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	if c.DefaultFontSize <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", EnvDefaultFontSize, c.DefaultFontSize)
	}
	if c.PreviewSize <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", EnvPreviewSize, c.PreviewSize)
	}
	if c.OCRLanguage == "" {
		return fmt.Errorf("%s: must not be empty", EnvOCRLanguage)
	}
	return nil
}

func getStringOrDefault(getenv func(string) string, key, defaultValue string) string {
	value := strings.TrimSpace(getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(getenv func(string) string, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
