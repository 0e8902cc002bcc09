package httpkit

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  time.Millisecond,
	MaxDelay:   5 * time.Millisecond,
}

func TestRetryOnServerError(t *testing.T) {
	var cnt int32
	var mu sync.Mutex
	var bodies []string
	ids := make(map[string]struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		ids[r.Header.Get(HeaderRequestID)] = struct{}{}
		if atomic.AddInt32(&cnt, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(WithRetryPolicy(fastPolicy))
	rsp, err := c.Do(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   bytes.NewReader([]byte("payload")),
	})
	require.NoError(t, err)
	raw, err := ReadAllAndClose(rsp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(raw))
	assert.Equal(t, int32(3), atomic.LoadInt32(&cnt))
	assert.Equal(t, []string{"payload", "payload", "payload"}, bodies)
	assert.Len(t, ids, 1)
}

func TestRetryExhaustedReturnsLastResponse(t *testing.T) {
	var cnt int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cnt, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	c := New(WithRetryPolicy(fastPolicy))
	rsp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	defer rsp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, rsp.StatusCode)
	assert.Equal(t, int32(4), atomic.LoadInt32(&cnt))
}

func TestNoRetryOnClientError(t *testing.T) {
	var cnt int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cnt, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(WithRetryPolicy(fastPolicy))
	rsp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	_ = rsp.Body.Close()
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&cnt))
}

func TestTransportErrorAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := New(WithRetryPolicy(fastPolicy))
	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, URL: addr})
	assert.Error(t, err)
}

func TestQueryMerge(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
	}))
	defer srv.Close()

	c := New(WithRetryPolicy(fastPolicy))
	rsp, err := c.Do(context.Background(), &Request{
		Method: http.MethodPut,
		URL:    srv.URL + "/apps?filter=enabled",
		Query:  url.Values{"key": []string{"a b"}},
	})
	require.NoError(t, err)
	_ = rsp.Body.Close()
	assert.Equal(t, "enabled", got.Get("filter"))
	assert.Equal(t, "a b", got.Get("key"))
}

func TestBackoffGrowth(t *testing.T) {
	bk := newBackoff(10*time.Millisecond, 50*time.Millisecond, 0)
	assert.Equal(t, 10*time.Millisecond, bk.forAttempt(0))
	assert.Equal(t, 20*time.Millisecond, bk.forAttempt(1))
	assert.Equal(t, 40*time.Millisecond, bk.forAttempt(2))
	assert.Equal(t, 50*time.Millisecond, bk.forAttempt(3))
}

func TestDetermineMimeType(t *testing.T) {
	assert.Equal(t, "application/octet-stream", DetermineMimeType("abc"))
	assert.Equal(t, "image/png", DetermineMimeType("/a/b.png"))
}
