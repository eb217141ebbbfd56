package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"labeldash/internal/enrich"
	"labeldash/internal/platform/discogs"
)

type config struct {
	Addr           string
	DataFile       string
	Discogs        discogs.Config
	Videos         enrich.Config
	DatabaseDSN    string
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	LogLevel       string
}

func loadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func loadConfig() (config, error) {
	cfg := config{
		Addr:        getEnv("APP_ADDR", ":8080"),
		DataFile:    getEnv("DATA_FILE", "salsoul_releases_updated_5.csv"),
		DatabaseDSN: os.Getenv("DB_DSN"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Discogs: discogs.Config{
			BaseURL:   getEnv("DISCOGS_BASE_URL", discogs.DefaultBaseURL),
			UserAgent: getEnv("DISCOGS_USER_AGENT", discogs.DefaultUserAgent),
		},
	}

	var err error
	if cfg.Discogs.Timeout, err = envDuration("DISCOGS_TIMEOUT", discogs.DefaultTimeout); err != nil {
		return config{}, err
	}
	cfg.Videos.LookupTimeout = cfg.Discogs.Timeout
	if cfg.Discogs.RPS, err = envFloat("DISCOGS_RPS", 1); err != nil {
		return config{}, err
	}
	if cfg.Videos.TTL, err = envDuration("VIDEO_CACHE_TTL", 10*time.Minute); err != nil {
		return config{}, err
	}
	if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 20); err != nil {
		return config{}, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 40); err != nil {
		return config{}, err
	}
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a duration such as 5s", key, v)
	}
	return d, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative number", key, v)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", key, v)
	}
	return n, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
