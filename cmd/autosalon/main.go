package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autosalon/internal/config"
	"autosalon/internal/http/handlers"
	applog "autosalon/internal/log"
	"autosalon/internal/metrics"
	"autosalon/internal/repos"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		applog.Logger().Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", cfg.LogFile, err)
		}
		defer f.Close()
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := applog.New(out, cfg.LogFormat, cfg.LogLevel)
	applog.SetLogger(logger)

	if cfg.SecretGenerated {
		logger.Warn("JWT_SECRET not set; using a random per-process secret, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(ctx, repos.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), MaxConns: cfg.DBMaxConns})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("store ready", "driver", cfg.DBDriver, "dsn", cfg.RedactedDSN())

	deps, err := handlers.NewDeps(db, cfg, metrics.New())
	if err != nil {
		return err
	}
	deps.AccessLog = out

	created, err := deps.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return err
	}
	switch {
	case created && cfg.AdminPasswordGenerated:
		logger.Warn("administrator created with a random password; set ADMIN_PASSWORD and recreate it to sign in", "email", cfg.AdminEmail)
	case created:
		logger.Info("administrator created", "email", cfg.AdminEmail)
	}

	if cfg.SeedDemo {
		res, err := repos.SeedDemo(ctx, db, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		if err != nil {
			return err
		}
		logger.Info("demo data seeded", "cars", res.Cars, "customers", res.Customers)
	}

	app := handlers.NewApp(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "env", cfg.AppEnv)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
