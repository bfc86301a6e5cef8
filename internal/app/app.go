// Package app assembles storage and services from configuration for the
// API server and the partsctl tool.
package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"autoparts/internal/auth"
	"autoparts/internal/config"
	"autoparts/internal/services/catalog"
	"autoparts/internal/services/identity"
	"autoparts/internal/store"
	"autoparts/internal/store/memory"
)

const memoryDSN = "memory://"

// Repository is what the services need from a storage backend.
type Repository interface {
	catalog.Repository
	identity.Repository
	Ping(ctx context.Context) error
}

type App struct {
	Repo     Repository
	Catalog  *catalog.Service
	Identity *identity.Service
	Tokens   *auth.Manager

	close func() error
}

// New connects to DATABASE_URL and applies migrations. DATABASE_URL
// "memory://" selects the in-process store.
func New(ctx context.Context, cfg *config.Config, lg *zap.SugaredLogger) (*App, error) {
	a := &App{close: func() error { return nil }}

	if strings.HasPrefix(cfg.DatabaseURL, memoryDSN) {
		lg.Warnw("using in-memory storage; data is lost on exit")
		a.Repo = memory.New()
	} else {
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			_ = store.Close(db)
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.Repo = store.New(db)
		a.close = func() error { return store.Close(db) }
	}

	a.Tokens = auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	a.Catalog = catalog.NewService(a.Repo, lg, catalog.Options{
		PageSize:    cfg.PageSize,
		MaxPageSize: cfg.MaxPageSize,
	})
	a.Identity = identity.NewService(a.Repo, a.Tokens, lg)
	return a, nil
}

func (a *App) Close() error { return a.close() }
