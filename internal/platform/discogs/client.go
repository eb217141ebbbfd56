package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.discogs.com"
	DefaultUserAgent = "SalsoulApp/1.0 +https://mywebsite.com"
	DefaultTimeout   = 5 * time.Second

	youtubeHost = "youtube.com"
)

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RPS bounds outbound requests per second. Zero disables the limiter.
	RPS float64
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		limiter:   limiter,
		logger:    logger,
	}
}

// Video is an entry of the "videos" list of releases/{id}. Only the URI is
// decoded so other fields cannot fail a response.
type Video struct {
	URI string `json:"uri"`
}

// Release is the part of releases/{id} the dashboard reads.
type Release struct {
	Videos []Video `json:"videos"`
}

// GetRelease fetches releases/{id}. Any status other than 200 is an error.
func (c *Client) GetRelease(ctx context.Context, releaseID int64) (*Release, error) {
	u := fmt.Sprintf("%s/releases/%d", c.baseURL, releaseID)

	var res Release
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VideoLinks returns the YouTube URIs attached to a release, in API order.
// Failures of any kind yield no links; they are logged, never returned.
func (c *Client) VideoLinks(ctx context.Context, releaseID int64) []string {
	rel, err := c.GetRelease(ctx, releaseID)
	if err != nil {
		c.logger.Debug("discogs release lookup failed", zap.Int64("release_id", releaseID), zap.Error(err))
		return []string{}
	}
	return YouTubeLinks(rel.Videos)
}

// YouTubeLinks keeps the video URIs that point at youtube.com.
func YouTubeLinks(videos []Video) []string {
	links := []string{}
	for _, v := range videos {
		if strings.Contains(v.URI, youtubeHost) {
			links = append(links, v.URI)
		}
	}
	return links
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
