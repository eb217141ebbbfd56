package enrich

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"labeldash/internal/platform/discogs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockDiscogsClient struct {
	mock.Mock
}

func (m *mockDiscogsClient) GetRelease(ctx context.Context, releaseID int64) (*discogs.Release, error) {
	args := m.Called(ctx, releaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discogs.Release), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, releaseID int64) (Entry, bool, error) {
	args := m.Called(ctx, releaseID)
	return args.Get(0).(Entry), args.Bool(1), args.Error(2)
}

func (m *mockStore) Put(ctx context.Context, e Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// limitedClient answers at once but shares one token bucket, like the Discogs client.
type limitedClient struct {
	limiter *rate.Limiter
}

func (c *limitedClient) GetRelease(ctx context.Context, releaseID int64) (*discogs.Release, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return release("https://youtube.com/" + strconv.FormatInt(releaseID, 10)), nil
}

// stalledClient never answers before ctx ends.
type stalledClient struct{}

func (stalledClient) GetRelease(ctx context.Context, releaseID int64) (*discogs.Release, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func release(uris ...string) *discogs.Release {
	rel := &discogs.Release{}
	for _, u := range uris {
		rel.Videos = append(rel.Videos, discogs.Video{URI: u})
	}
	return rel
}

func TestService_VideoLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("memoises successful lookups", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(42)).
			Return(release("https://youtube.com/x", "https://other.com/y"), nil).Once()

		s := NewService(mClient, nil, Config{}, nil)

		assert.Equal(t, []string{"https://youtube.com/x"}, s.VideoLinks(ctx, 42))
		assert.Equal(t, []string{"https://youtube.com/x"}, s.VideoLinks(ctx, 42))
		mClient.AssertNumberOfCalls(t, "GetRelease", 1)
	})

	t.Run("failed lookups are not cached", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(7)).Return(nil, errors.New("unexpected status code: 503")).Once()
		mClient.On("GetRelease", mock.Anything, int64(7)).Return(release("https://youtube.com/z"), nil).Once()

		s := NewService(mClient, nil, Config{}, nil)

		assert.Empty(t, s.VideoLinks(ctx, 7))
		assert.Equal(t, []string{"https://youtube.com/z"}, s.VideoLinks(ctx, 7))
		mClient.AssertExpectations(t)
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(9)).Return(release("https://youtube.com/a"), nil).Twice()

		s := NewService(mClient, nil, Config{TTL: time.Hour}, nil)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		s.VideoLinks(ctx, 9)
		now = now.Add(30 * time.Minute)
		s.VideoLinks(ctx, 9)
		now = now.Add(time.Hour)
		s.VideoLinks(ctx, 9)

		mClient.AssertNumberOfCalls(t, "GetRelease", 2)
	})

	t.Run("callers cannot mutate the memo", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(5)).Return(release("https://youtube.com/a"), nil).Once()

		s := NewService(mClient, nil, Config{}, nil)

		links := s.VideoLinks(ctx, 5)
		links[0] = "tampered"

		assert.Equal(t, []string{"https://youtube.com/a"}, s.VideoLinks(ctx, 5))
	})

	t.Run("concurrent callers share one request", func(t *testing.T) {
		release1 := make(chan time.Time)
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(11)).
			WaitUntil(release1).
			Return(release("https://youtube.com/c"), nil).Once()

		s := NewService(mClient, nil, Config{}, nil)

		var wg sync.WaitGroup
		results := make([][]string, 5)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = s.VideoLinks(ctx, 11)
			}(i)
		}
		time.Sleep(20 * time.Millisecond)
		close(release1)
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, []string{"https://youtube.com/c"}, r)
		}
		mClient.AssertExpectations(t)
	})
}

func TestService_Deadlines(t *testing.T) {
	t.Run("rate limited lookups give up within the lookup timeout", func(t *testing.T) {
		s := NewService(&limitedClient{limiter: rate.NewLimiter(1, 1)}, nil, Config{LookupTimeout: 100 * time.Millisecond}, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		start := time.Now()
		var found int
		for id := int64(1); id <= 5; id++ {
			if len(s.VideoLinks(ctx, id)) > 0 {
				found++
			}
		}

		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 1, found)
	})

	t.Run("rate limited lookups are not cached", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)
		s := NewService(&limitedClient{limiter: limiter}, nil, Config{LookupTimeout: 50 * time.Millisecond}, nil)
		ctx := context.Background()

		assert.NotEmpty(t, s.VideoLinks(ctx, 1))
		assert.Empty(t, s.VideoLinks(ctx, 2))
		assert.Eventually(t, func() bool {
			return len(s.VideoLinks(ctx, 2)) > 0
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("caller deadline ends the wait", func(t *testing.T) {
		s := NewService(stalledClient{}, nil, Config{LookupTimeout: 200 * time.Millisecond}, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		links := s.VideoLinks(ctx, 8)

		assert.Less(t, time.Since(start), 150*time.Millisecond)
		assert.Empty(t, links)

		// Joins the lookup still in flight; it ends with its own timeout.
		assert.Empty(t, s.VideoLinks(context.Background(), 8))
	})
}

func TestService_Store(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh stored entry skips the client", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mStore := new(mockStore)
		mStore.On("Get", mock.Anything, int64(3)).
			Return(Entry{ReleaseID: 3, Links: []string{"https://youtube.com/s"}, FetchedAt: fixed}, true, nil)

		s := NewService(mClient, mStore, Config{TTL: time.Hour}, nil)
		s.now = func() time.Time { return fixed.Add(time.Minute) }

		assert.Equal(t, []string{"https://youtube.com/s"}, s.VideoLinks(ctx, 3))
		mClient.AssertNotCalled(t, "GetRelease", mock.Anything, mock.Anything)
	})

	t.Run("miss fetches and writes through", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(4)).Return(release("https://youtube.com/w"), nil)
		mStore := new(mockStore)
		mStore.On("Get", mock.Anything, int64(4)).Return(Entry{}, false, nil)
		mStore.On("Put", mock.Anything, Entry{ReleaseID: 4, Links: []string{"https://youtube.com/w"}, FetchedAt: fixed}).Return(nil)

		s := NewService(mClient, mStore, Config{}, nil)
		s.now = func() time.Time { return fixed }

		assert.Equal(t, []string{"https://youtube.com/w"}, s.VideoLinks(ctx, 4))
		mStore.AssertExpectations(t)
	})

	t.Run("store failures fall back to the client", func(t *testing.T) {
		mClient := new(mockDiscogsClient)
		mClient.On("GetRelease", mock.Anything, int64(6)).Return(release("https://youtube.com/f"), nil)
		mStore := new(mockStore)
		mStore.On("Get", mock.Anything, int64(6)).Return(Entry{}, false, errors.New("connection refused"))
		mStore.On("Put", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		s := NewService(mClient, mStore, Config{}, nil)

		assert.Equal(t, []string{"https://youtube.com/f"}, s.VideoLinks(ctx, 6))
	})
}

func TestService_FirstVideo(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockDiscogsClient)
	mClient.On("GetRelease", mock.Anything, int64(1)).Return(release("https://vimeo.com/1", "https://youtube.com/2", "https://youtube.com/3"), nil)
	mClient.On("GetRelease", mock.Anything, int64(2)).Return(release(), nil)

	s := NewService(mClient, nil, Config{}, nil)

	link, ok := s.FirstVideo(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, "https://youtube.com/2", link)

	_, ok = s.FirstVideo(ctx, 2)
	assert.False(t, ok)
}
