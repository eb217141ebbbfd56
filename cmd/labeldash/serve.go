package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"labeldash/internal/catalog"
	"labeldash/internal/enrich"
	"labeldash/internal/httpx"
	"labeldash/internal/platform/discogs"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	logger := c.logger

	loader := catalog.NewLoader(c.cfg.DataFile, logger)
	if _, err := loader.Load(); err != nil {
		// The dashboard reports the missing file to every visitor.
		logger.Warn("serving without release data", zap.Error(err))
	}

	var store enrich.Store
	var pool *pgxpool.Pool
	if c.cfg.DatabaseDSN != "" {
		p, err := openDB(ctx, c.cfg.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
		store = enrich.NewPostgresRepo(p)
	}

	client := discogs.NewClient(c.cfg.Discogs, logger)
	videos := enrich.NewService(client, store, c.cfg.Videos, logger)

	router := newRouter(&app{loader: loader, videos: videos, pool: pool, logger: logger})
	rateLimiter := httpx.NewRateLimitMiddleware(ctx, c.cfg.RateLimitRPS, c.cfg.RateLimitBurst)
	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware,
		httpx.CORSMiddleware(c.cfg.CORSOrigins),
		httpx.ReadOnlyMiddleware,
		rateLimiter.Middleware,
	)

	httpServer := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		// Rendering a page may wait on rate limited catalog lookups.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", c.cfg.Addr), zap.String("data_file", c.cfg.DataFile))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDB(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	logger.Info("database connection OK", zap.String("dsn", redactDSN(dsn)))
	return pool, nil
}
