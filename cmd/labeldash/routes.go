package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"labeldash/internal/catalog"
	"labeldash/internal/dashboard"
	"labeldash/internal/enrich"
)

type app struct {
	loader *catalog.Loader
	videos *enrich.Service
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func newRouter(a *app) *http.ServeMux {
	svc := catalog.NewService(a.loader)
	catalogHandler := catalog.NewHTTPHandler(svc)
	dashboardHandler := dashboard.NewHTTPHandler(svc, a.videos, a.loader.Path(), a.logger)
	videoHandler := enrich.NewHTTPHandler(a.videos)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := a.loader.Load(); err != nil {
			http.Error(w, "data not ready", http.StatusServiceUnavailable)
			return
		}
		if a.pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := a.pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /{$}", dashboardHandler.Index)
	router.HandleFunc("GET /charts/years.svg", dashboardHandler.YearsChart)
	router.HandleFunc("GET /charts/formats.svg", dashboardHandler.FormatsChart)
	router.HandleFunc("GET /charts/timeline.svg", dashboardHandler.TimelineChart)
	router.HandleFunc("GET /export.csv", catalogHandler.Export)

	router.HandleFunc("GET /v1/releases", catalogHandler.Releases)
	router.HandleFunc("GET /v1/releases/{id}/videos", videoHandler.Videos)
	router.HandleFunc("GET /v1/artists", catalogHandler.Artists)
	router.HandleFunc("GET /v1/years", catalogHandler.Years)
	router.HandleFunc("GET /v1/stats/{field}", catalogHandler.Counts)
	router.HandleFunc("GET /v1/top", catalogHandler.Top)

	return router
}
