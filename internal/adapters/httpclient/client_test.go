package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pipeline/internal/domain"
)

func get(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDo_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := New("test", 100, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	b, err := c.Do(ctx, "ping", get(ts.URL))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestDo_StatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusNotFound:     domain.ErrNotFound,
		http.StatusUnauthorized: domain.ErrUnauthorized,
		http.StatusForbidden:    domain.ErrUnauthorized,
	}
	for code, want := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		_, err := New("test", 100, time.Second).Do(context.Background(), "x", get(ts.URL))
		ts.Close()
		assert.ErrorIs(t, err, want, "status %d", code)
	}
}

func TestDo_BadRequestNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := New("test", 100, time.Second).Do(context.Background(), "x", get(ts.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestRetryAfter(t *testing.T) {
	r := &http.Response{Header: http.Header{}}
	assert.Zero(t, retryAfter(r))
	r.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, retryAfter(r))
	r.Header.Set("Retry-After", "garbage")
	assert.Zero(t, retryAfter(r))
}
