package discogs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}, nil)
}

func TestClient_VideoLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps only youtube links", func(t *testing.T) {
		seen := make(chan *http.Request, 1)
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			seen <- r.Clone(context.Background())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"videos":[{"uri":"https://youtube.com/x"},{"uri":"https://other.com/y"}]}`))
		})

		links := c.VideoLinks(ctx, 12345)

		assert.Equal(t, []string{"https://youtube.com/x"}, links)
		req := <-seen
		assert.Equal(t, "/releases/12345", req.URL.Path)
		assert.Equal(t, DefaultUserAgent, req.Header.Get("User-Agent"))
	})

	t.Run("no videos key", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":1,"title":"Ten Percent"}`))
		})

		links := c.VideoLinks(ctx, 1)

		assert.NotNil(t, links)
		assert.Empty(t, links)
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Release not found."}`))
		})

		assert.Empty(t, c.VideoLinks(ctx, 404))
	})

	t.Run("rate limited upstream is not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		})

		assert.Empty(t, c.VideoLinks(ctx, 7))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"videos":`))
		})

		assert.Empty(t, c.VideoLinks(ctx, 2))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)
		c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)

		start := time.Now()
		assert.Empty(t, c.VideoLinks(ctx, 3))
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestClient_GetRelease(t *testing.T) {
	t.Run("decodes video uris", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":99,"title":"Salsoul Orchestra","year":1975,"videos":[{"uri":"https://www.youtube.com/watch?v=abc","title":"Salsoul Hustle","duration":210}]}`))
		})

		rel, err := c.GetRelease(context.Background(), 99)

		require.NoError(t, err)
		assert.Equal(t, []Video{{URI: "https://www.youtube.com/watch?v=abc"}}, rel.Videos)
	})

	t.Run("ignores unexpected types outside the uris", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"99","year":"1975?","videos":[{"uri":"https://youtube.com/x","duration":"3:30","embed":"yes","title":null}]}`))
		})

		assert.Equal(t, []string{"https://youtube.com/x"}, c.VideoLinks(context.Background(), 99))
	})
}

func TestYouTubeLinks(t *testing.T) {
	videos := []Video{
		{URI: "https://www.youtube.com/watch?v=1"},
		{URI: "https://vimeo.com/2"},
		{URI: ""},
		{URI: "https://youtube.com/watch?v=3"},
	}

	assert.Equal(t, []string{"https://www.youtube.com/watch?v=1", "https://youtube.com/watch?v=3"}, YouTubeLinks(videos))
}
