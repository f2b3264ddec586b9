// Package config loads the YAML configuration shared by the server and CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/fileutil"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/layout"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/logging"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength     = 256
	MaxPathLength     = 4096
	MaxURLLength      = 2048 // Browser limit
	MaxSelectorLength = 200
	MaxOriginCount    = 50
	MaxWorkers        = 32
)

// Defaults not owned by another package.
const (
	DefaultAddr            = ":8080"
	DefaultPublicDir       = "public"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRenderTimeout   = 30 * time.Second
)

// Config holds all configuration for the server and CLI.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Assets  AssetsConfig  `yaml:"assets"`
	Render  RenderConfig  `yaml:"render"`
	TextFit TextFitConfig `yaml:"textFit"`
	Arrow   ArrowConfig   `yaml:"arrow"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines HTTP listener options.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"` // ["*"] allows any origin
}

// AssetsConfig defines where fonts and logos live.
type AssetsConfig struct {
	PublicDir   string `yaml:"publicDir"`   // Holds fonts/ and logos/
	MaxFontSize int64  `yaml:"maxFontSize"` // Bytes, 0 = default (10MB)
	MaxLogoSize int64  `yaml:"maxLogoSize"` // Bytes, 0 = default (5MB)
	Metadata    bool   `yaml:"metadata"`    // Report font family and logo size in listings
}

// RenderConfig defines page generation options.
type RenderConfig struct {
	BaseURL string        `yaml:"baseUrl"` // Origin relative asset URLs resolve against
	Timeout time.Duration `yaml:"timeout"` // Layout pass timeout
	Workers int           `yaml:"workers"` // Browser instances, 0 = auto
}

// TextFitConfig defines auto-fit defaults.
type TextFitConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Targets     []string `yaml:"targets"`
	MinFontSize float64  `yaml:"minFontSize"`
	Step        float64  `yaml:"step"`
	MaxAttempts int      `yaml:"maxAttempts"`
}

// ArrowConfig defines title-arrow spacing defaults.
type ArrowConfig struct {
	Enabled           bool          `yaml:"enabled"`
	ArrowSelector     string        `yaml:"arrowSelector"`
	ContainerSelector string        `yaml:"containerSelector"`
	TitleSelector     string        `yaml:"titleSelector"`
	RequiredGap       float64       `yaml:"requiredGap"`
	DefaultPadding    float64       `yaml:"defaultPadding"`
	SettleDelay       time.Duration `yaml:"settleDelay"`
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json (default) or console
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	fit := layout.DefaultFitConfig()
	arrow := layout.DefaultArrowConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			CORSOrigins:     []string{"*"},
		},
		Assets: AssetsConfig{
			PublicDir:   DefaultPublicDir,
			MaxFontSize: assets.DefaultMaxFontSize,
			MaxLogoSize: assets.DefaultMaxLogoSize,
		},
		Render: RenderConfig{
			Timeout: DefaultRenderTimeout,
		},
		TextFit: TextFitConfig{
			Enabled:     fit.Enabled,
			Targets:     fit.Targets,
			MinFontSize: fit.MinFontSize,
			Step:        fit.Step,
			MaxAttempts: fit.MaxAttempts,
		},
		Arrow: ArrowConfig{
			Enabled:           arrow.Enabled,
			ArrowSelector:     arrow.ArrowSelector,
			ContainerSelector: arrow.ContainerSelector,
			TitleSelector:     arrow.TitleSelector,
			RequiredGap:       arrow.RequiredGap,
			DefaultPadding:    arrow.DefaultPadding,
			SettleDelay:       arrow.SettleDelay,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
	}
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually or apply overrides afterwards.
func (c *Config) Validate() error {
	// Server
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidValue)
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateNonNegativeDuration("server.readTimeout", c.Server.ReadTimeout); err != nil {
		return err
	}
	if err := validateNonNegativeDuration("server.writeTimeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if err := validateNonNegativeDuration("server.shutdownTimeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	if len(c.Server.CORSOrigins) > MaxOriginCount {
		return fmt.Errorf("%w: server.corsOrigins has %d entries (max %d)", ErrInvalidValue, len(c.Server.CORSOrigins), MaxOriginCount)
	}
	for i, origin := range c.Server.CORSOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.corsOrigins[%d]", i), origin, MaxURLLength); err != nil {
			return err
		}
	}

	// Assets
	if c.Assets.PublicDir == "" {
		return fmt.Errorf("%w: assets.publicDir is required", ErrInvalidValue)
	}
	if err := validateFieldLength("assets.publicDir", c.Assets.PublicDir, MaxPathLength); err != nil {
		return err
	}
	if c.Assets.MaxFontSize < 0 {
		return fmt.Errorf("%w: assets.maxFontSize must not be negative", ErrInvalidValue)
	}
	if c.Assets.MaxLogoSize < 0 {
		return fmt.Errorf("%w: assets.maxLogoSize must not be negative", ErrInvalidValue)
	}

	// Render
	if err := validateFieldLength("render.baseUrl", c.Render.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Render.BaseURL != "" {
		u, err := url.Parse(c.Render.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: render.baseUrl %q must be an http(s) URL", ErrInvalidValue, c.Render.BaseURL)
		}
	}
	if err := validateNonNegativeDuration("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}

	// Text fit
	if c.TextFit.MinFontSize < 0 || c.TextFit.Step < 0 || c.TextFit.MaxAttempts < 0 {
		return fmt.Errorf("%w: textFit sizes must not be negative", ErrInvalidValue)
	}
	for i, target := range c.TextFit.Targets {
		name := fmt.Sprintf("textFit.targets[%d]", i)
		if target == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidValue, name)
		}
		if err := validateFieldLength(name, target, MaxSelectorLength); err != nil {
			return err
		}
	}

	// Arrow
	if err := validateFieldLength("arrow.arrowSelector", c.Arrow.ArrowSelector, MaxSelectorLength); err != nil {
		return err
	}
	if err := validateFieldLength("arrow.containerSelector", c.Arrow.ContainerSelector, MaxSelectorLength); err != nil {
		return err
	}
	if err := validateFieldLength("arrow.titleSelector", c.Arrow.TitleSelector, MaxSelectorLength); err != nil {
		return err
	}
	if c.Arrow.RequiredGap < 0 || c.Arrow.DefaultPadding < 0 {
		return fmt.Errorf("%w: arrow spacing must not be negative", ErrInvalidValue)
	}
	if err := validateNonNegativeDuration("arrow.settleDelay", c.Arrow.SettleDelay); err != nil {
		return err
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("%w: log.format %q (must be json or console)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateNonNegativeDuration(fieldName string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidValue, fieldName, d)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name on top of
// DefaultConfig, so keys missing from the file keep their defaults.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "imagegen", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory first, then the user config directory (imagegen/).
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// DirectoryOptions returns the asset directory options for the assets section.
func (c *Config) DirectoryOptions() []assets.Option {
	opts := []assets.Option{assets.WithMetadata(c.Assets.Metadata)}
	if c.Assets.MaxFontSize > 0 {
		opts = append(opts, assets.WithMaxSize(assets.KindFonts, c.Assets.MaxFontSize))
	}
	if c.Assets.MaxLogoSize > 0 {
		opts = append(opts, assets.WithMaxSize(assets.KindLogos, c.Assets.MaxLogoSize))
	}
	return opts
}
