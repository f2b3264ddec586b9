package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/server"
)

// runServe starts the HTTP server and blocks until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, fs, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(fs, &flags.common)
	if err != nil {
		return err
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	if fs.Changed("cors-origin") {
		cfg.Server.CORSOrigins = flags.corsOrigins
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, flags.common.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dir, err := assets.NewDirectory(cfg.Assets.PublicDir, cfg.DirectoryOptions()...)
	if err != nil {
		return err
	}

	poolSize := imagegen.ResolvePoolSize(cfg.Render.Workers)
	pool := imagegen.NewGeneratorPool(poolSize, generatorOptions(cfg, logger)...)
	defer func() { _ = pool.Close() }()

	logger.Info("starting",
		zap.String("version", Version),
		zap.String("public_dir", dir.Root()),
		zap.Int("workers", poolSize),
	)

	srv := server.New(dir, pool, logger, server.Options{
		CORSOrigins:     cfg.Server.CORSOrigins,
		BaseURL:         cfg.Render.BaseURL,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RequestTimeout:  requestTimeout(cfg.Server.WriteTimeout),
	})

	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// requestTimeout leaves the handler time to write its error response
// before the connection's write deadline. Zero keeps the server default.
func requestTimeout(write time.Duration) time.Duration {
	return write * 9 / 10
}
