package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labeldash/internal/catalog"
	"labeldash/internal/enrich"
	"labeldash/internal/platform/discogs"
	"labeldash/internal/testutil"
)

type stubDiscogs struct{}

func (stubDiscogs) GetRelease(context.Context, int64) (*discogs.Release, error) {
	return &discogs.Release{Videos: []discogs.Video{{URI: "https://www.youtube.com/watch?v=x"}}}, nil
}

func newTestRouter(t *testing.T, path string) http.Handler {
	t.Helper()
	return newRouter(&app{
		loader: catalog.NewLoader(path, nil),
		videos: enrich.NewService(stubDiscogs{}, nil, enrich.Config{}, nil),
	})
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t, testutil.WriteSampleCSV(t))

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/charts/years.svg", http.StatusOK},
		{http.MethodGet, "/charts/formats.svg?artist=Inner+Life", http.StatusOK},
		{http.MethodGet, "/charts/timeline.svg", http.StatusOK},
		{http.MethodGet, "/export.csv", http.StatusOK},
		{http.MethodGet, "/v1/releases", http.StatusOK},
		{http.MethodGet, "/v1/releases/1001/videos", http.StatusOK},
		{http.MethodGet, "/v1/releases/abc/videos", http.StatusBadRequest},
		{http.MethodGet, "/v1/artists", http.StatusOK},
		{http.MethodGet, "/v1/years?artist=Inner+Life", http.StatusOK},
		{http.MethodGet, "/v1/stats/format", http.StatusOK},
		{http.MethodGet, "/v1/stats/thumb", http.StatusBadRequest},
		{http.MethodGet, "/v1/top?n=3", http.StatusOK},
		{http.MethodGet, "/releases", http.StatusNotFound},
		{http.MethodGet, "/nothing-here", http.StatusNotFound},
		{http.MethodPost, "/v1/releases", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_MissingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salsoul_releases_updated_5.csv")
	router := newTestRouter(t, path)

	for _, target := range []string{"/readyz", "/", "/charts/years.svg", "/v1/releases", "/export.csv"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
