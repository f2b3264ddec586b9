package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/config"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/hints"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/logging"
)

// resolveConfig builds the effective configuration:
// CLI flags > env vars > config file > defaults.
func resolveConfig(fs *flag.FlagSet, f *commonFlags) (*config.Config, error) {
	env := loadEnvConfig()

	name := f.config
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	applyCommonFlags(fs, f, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyCommonFlags copies explicitly set flags into cfg.
func applyCommonFlags(fs *flag.FlagSet, f *commonFlags, cfg *config.Config) {
	if fs.Changed("public") {
		cfg.Assets.PublicDir = f.publicDir
	}
	if fs.Changed("base-url") {
		cfg.Render.BaseURL = f.baseURL
	}
	if fs.Changed("timeout") {
		cfg.Render.Timeout = f.timeout
	}
	if fs.Changed("workers") {
		cfg.Render.Workers = f.workers
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
}

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format, verbose)
}

// newCLILogger logs warnings and above to w as JSON lines, or everything
// at debug when verbose.
func newCLILogger(w io.Writer, verbose bool) *zap.Logger {
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}
	return logging.NewWriter(w, level)
}

// generatorOptions maps the config onto library options.
func generatorOptions(cfg *config.Config, logger *zap.Logger) []imagegen.Option {
	opts := []imagegen.Option{
		imagegen.WithBaseURL(cfg.Render.BaseURL),
		imagegen.WithTextFit(fitConfig(cfg.TextFit)),
		imagegen.WithArrowLayout(arrowConfig(cfg.Arrow)),
		imagegen.WithLogger(logger),
	}
	if cfg.Render.Timeout > 0 {
		opts = append(opts, imagegen.WithTimeout(cfg.Render.Timeout))
	}
	return opts
}

// fitConfig converts the config section to the library type.
func fitConfig(c config.TextFitConfig) *imagegen.FitConfig {
	return &imagegen.FitConfig{
		Enabled:     c.Enabled,
		Targets:     append([]string(nil), c.Targets...),
		MinFontSize: c.MinFontSize,
		Step:        c.Step,
		MaxAttempts: c.MaxAttempts,
	}
}

// arrowConfig converts the config section to the library type.
func arrowConfig(c config.ArrowConfig) *imagegen.ArrowConfig {
	return &imagegen.ArrowConfig{
		Enabled:           c.Enabled,
		ArrowSelector:     c.ArrowSelector,
		ContainerSelector: c.ContainerSelector,
		TitleSelector:     c.TitleSelector,
		RequiredGap:       c.RequiredGap,
		DefaultPadding:    c.DefaultPadding,
		SettleDelay:       c.SettleDelay,
	}
}
