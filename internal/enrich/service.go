package enrich

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"labeldash/internal/platform/discogs"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds one shared lookup when Config.LookupTimeout is unset.
const DefaultLookupTimeout = 5 * time.Second

type Config struct {
	// TTL is how long a successful lookup is reused. Zero keeps entries forever.
	TTL time.Duration
	// LookupTimeout bounds a lookup including its wait for the rate limiter.
	LookupTimeout time.Duration
}

type DiscogsClient interface {
	GetRelease(ctx context.Context, releaseID int64) (*discogs.Release, error)
}

// Service memoises YouTube links per release. Concurrent lookups of the same
// release share one upstream request. Failed lookups are not cached.
type Service struct {
	client DiscogsClient
	store  Store
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	memo  map[int64]Entry
	group singleflight.Group
}

// NewService builds the memo. store may be nil.
func NewService(client DiscogsClient, store Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	return &Service{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		memo:   make(map[int64]Entry),
	}
}

// VideoLinks returns the YouTube links of a release. It never fails: an
// unreachable or erroring catalog yields no links, and so does a ctx that ends
// before the shared lookup does. The lookup itself outlives ctx for at most
// LookupTimeout so other callers can still use its result.
func (s *Service) VideoLinks(ctx context.Context, releaseID int64) []string {
	if e, ok := s.cached(releaseID); ok {
		return slices.Clone(e.Links)
	}

	ch := s.group.DoChan(strconv.FormatInt(releaseID, 10), func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LookupTimeout)
		defer cancel()
		return s.lookup(lookupCtx, releaseID), nil
	})
	select {
	case res := <-ch:
		return slices.Clone(res.Val.([]string))
	case <-ctx.Done():
		return []string{}
	}
}

// FirstVideo returns the first YouTube link of a release, if any.
func (s *Service) FirstVideo(ctx context.Context, releaseID int64) (string, bool) {
	links := s.VideoLinks(ctx, releaseID)
	if len(links) == 0 {
		return "", false
	}
	return links[0], true
}

func (s *Service) cached(releaseID int64) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.memo[releaseID]
	if !ok || !s.fresh(e) {
		return Entry{}, false
	}
	return e, true
}

func (s *Service) fresh(e Entry) bool {
	return s.cfg.TTL <= 0 || s.now().Sub(e.FetchedAt) < s.cfg.TTL
}

func (s *Service) remember(e Entry) {
	s.mu.Lock()
	s.memo[e.ReleaseID] = e
	s.mu.Unlock()
}

func (s *Service) lookup(ctx context.Context, releaseID int64) []string {
	if s.store != nil {
		e, ok, err := s.store.Get(ctx, releaseID)
		switch {
		case err != nil:
			s.logger.Warn("video store read failed", zap.Int64("release_id", releaseID), zap.Error(err))
		case ok && s.fresh(e):
			s.remember(e)
			return e.Links
		}
	}

	rel, err := s.client.GetRelease(ctx, releaseID)
	if err != nil {
		s.logger.Debug("video lookup failed", zap.Int64("release_id", releaseID), zap.Error(err))
		return []string{}
	}

	e := Entry{
		ReleaseID: releaseID,
		Links:     discogs.YouTubeLinks(rel.Videos),
		FetchedAt: s.now(),
	}
	s.remember(e)
	if s.store != nil {
		if err := s.store.Put(ctx, e); err != nil {
			s.logger.Warn("video store write failed", zap.Int64("release_id", releaseID), zap.Error(err))
		}
	}
	return e.Links
}
