package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string        // IMAGEGEN_CONFIG: config file name or path
	Addr        string        // IMAGEGEN_ADDR: listen address
	PublicDir   string        // IMAGEGEN_PUBLIC_DIR: asset root
	BaseURL     string        // IMAGEGEN_BASE_URL: origin for relative asset URLs
	Timeout     time.Duration // IMAGEGEN_TIMEOUT: layout pass timeout
	Workers     int           // IMAGEGEN_WORKERS: browser instances
	CORSOrigins []string      // IMAGEGEN_CORS_ORIGINS: comma-separated origins
	LogLevel    string        // IMAGEGEN_LOG_LEVEL: debug, info, warn, error
	LogFormat   string        // IMAGEGEN_LOG_FORMAT: json or console
}

// knownEnvVars lists valid IMAGEGEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"IMAGEGEN_CONFIG":       true,
	"IMAGEGEN_ADDR":         true,
	"IMAGEGEN_PUBLIC_DIR":   true,
	"IMAGEGEN_BASE_URL":     true,
	"IMAGEGEN_TIMEOUT":      true,
	"IMAGEGEN_WORKERS":      true,
	"IMAGEGEN_CORS_ORIGINS": true,
	"IMAGEGEN_LOG_LEVEL":    true,
	"IMAGEGEN_LOG_FORMAT":   true,
	"IMAGEGEN_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable or non-positive durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("IMAGEGEN_CONFIG"),
		Addr:       os.Getenv("IMAGEGEN_ADDR"),
		PublicDir:  os.Getenv("IMAGEGEN_PUBLIC_DIR"),
		BaseURL:    os.Getenv("IMAGEGEN_BASE_URL"),
		LogLevel:   os.Getenv("IMAGEGEN_LOG_LEVEL"),
		LogFormat:  os.Getenv("IMAGEGEN_LOG_FORMAT"),
	}

	if timeout := os.Getenv("IMAGEGEN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("IMAGEGEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if origins := os.Getenv("IMAGEGEN_CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized IMAGEGEN_* variables.
// Helps catch typos like IMAGEGEN_PUBLICDIR instead of IMAGEGEN_PUBLIC_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "IMAGEGEN_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overwrites config values with every env var that is set.
// The config already holds defaults, so precedence is
// CLI flags > env vars > config file > defaults
// (CLI flags are applied later via applyFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if len(env.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = env.CORSOrigins
	}
	if env.PublicDir != "" {
		cfg.Assets.PublicDir = env.PublicDir
	}
	if env.BaseURL != "" {
		cfg.Render.BaseURL = env.BaseURL
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
