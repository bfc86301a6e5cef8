package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"autoparts/internal/app"
	"autoparts/internal/config"
	"autoparts/internal/httpserver"
	"autoparts/internal/logger"
	"autoparts/internal/policy"
	"autoparts/internal/telemetry"
)

const serviceName = "autoparts-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalw("load config", "error", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	mode, err := policy.ParseMode(cfg.PolicyMode)
	if err != nil {
		lg.Fatalw("invalid POLICY_MODE", "error", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		lg.Fatalw("init telemetry", "error", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			lg.Errorw("shutdown telemetry", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatalw("init storage", "error", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			lg.Errorw("close database", "error", err)
		}
	}()

	if _, err := a.Identity.EnsureSuperuser(ctx, cfg.SuperuserEmail, cfg.SuperuserUsername, cfg.SuperuserPassword); err != nil {
		lg.Fatalw("ensure superuser", "error", err)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpserver.NewRouter(httpserver.Options{
			Catalog:            a.Catalog,
			Identity:           a.Identity,
			Tokens:             a.Tokens,
			Logger:             lg,
			Ready:              a.Repo.Ping,
			PolicyMode:         mode,
			AllowedOrigins:     cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Infow("listening", "addr", cfg.HTTPAddr, "policy_mode", mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		lg.Errorw("server stopped", "error", err)
		os.Exit(1)
	}
	lg.Infow("server stopped")
}
