// Package app assembles the feed service from configuration. It is shared by
// the convert and filter commands and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/feedclean/internal/config"
	"github.com/JonMunkholm/feedclean/internal/feed"
	"github.com/JonMunkholm/feedclean/internal/history"
)

// App owns the history store behind a Service.
type App struct {
	Config  *config.Config
	Service *feed.Service
	store   history.Store
}

// Open connects the configured history store and builds the service.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := history.Open(ctx, history.Config{
		Driver:   cfg.History.Driver,
		URL:      cfg.History.URL,
		MaxConns: cfg.History.MaxConns,
		MinConns: cfg.History.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	slog.Debug("run history ready", "driver", cfg.History.Driver)

	limiter := feed.NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	return &App{
		Config:  cfg,
		Service: feed.NewService(store, limiter, Settings(cfg)),
		store:   store,
	}, nil
}

// Settings maps the pipeline section of cfg onto service settings.
func Settings(cfg *config.Config) feed.Settings {
	return feed.Settings{
		SampleSize:    cfg.Pipeline.SampleSize,
		SourceColumn:  cfg.Pipeline.PriceSourceColumn,
		TargetColumn:  cfg.Pipeline.PriceColumn,
		KnitColumns:   cfg.Pipeline.KnitColumns,
		JumperColumns: cfg.Pipeline.JumperColumns,
	}
}

// Close releases the history store.
func (a *App) Close() error {
	return a.store.Close()
}
