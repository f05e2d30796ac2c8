package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	mu          sync.Mutex
	counts      map[string]int64
	expires     map[string]time.Duration
	err         error
	expireFails int
	expireCalls int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireCalls++
	if f.expireFails > 0 {
		f.expireFails--
		return redis.NewBoolResult(false, errors.New("expire timed out"))
	}
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) TTL(_ context.Context, key string) *redis.DurationCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl, ok := f.expires[key]; ok {
		return redis.NewDurationResult(ttl, nil)
	}
	if _, ok := f.counts[key]; ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(-2, nil)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	counter := newFakeCounter()
	h := newTestServer(t, WithRateLimiter(NewRateLimiter(counter, 3, discardLogger())))

	for i := 0; i < 3; i++ {
		rr := do(t, h, http.MethodGet, "/api/v1/products", "")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := do(t, h, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	// httptest requests come from 192.0.2.1
	assert.Equal(t, time.Minute, counter.expires["rate_limit:192.0.2.1"])
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewRateLimiter(counter, 1, discardLogger())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := limiter.Middleware(next)

	for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, addr)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("connection refused")
	h := newTestServer(t, WithRateLimiter(NewRateLimiter(counter, 1, discardLogger())))

	for i := 0; i < 3; i++ {
		rr := do(t, h, http.MethodGet, "/api/v1/products", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimiterRestoresLostExpiry(t *testing.T) {
	counter := newFakeCounter()
	counter.expireFails = 1
	limiter := NewRateLimiter(counter, 2, discardLogger())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := limiter.Middleware(next)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	// first expire failed; the first blocked request set it again and later ones left it alone
	assert.Equal(t, time.Minute, counter.expires["rate_limit:192.0.2.1"])
	assert.Equal(t, 2, counter.expireCalls)
}
