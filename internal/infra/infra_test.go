package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSlotEmpty(t *testing.T) {
	s := NewSlot[string](time.Minute, nil)
	_, ok := s.Get()
	assert.False(t, ok, "expected miss on empty slot")
	assert.False(t, s.IsFresh())
	assert.True(t, s.StoredAt().IsZero())
}

func TestSlotSetGet(t *testing.T) {
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSlot[string](5*time.Minute, clk.Now)

	s.Set("v1")
	v, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "v1", v)
	assert.True(t, s.StoredAt().Equal(clk.now))
}

func TestSlotExpiry(t *testing.T) {
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSlot[int](5*time.Minute, clk.Now)
	s.Set(42)

	clk.Advance(5*time.Minute - time.Second)
	_, ok := s.Get()
	assert.True(t, ok, "expected hit just inside TTL")

	clk.Advance(time.Second)
	_, ok = s.Get()
	assert.False(t, ok, "expected miss at exactly TTL")
}

func TestSlotLastWriteWins(t *testing.T) {
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSlot[string](time.Minute, clk.Now)
	s.Set("a")
	clk.Advance(50 * time.Second)
	s.Set("b")
	clk.Advance(50 * time.Second)

	v, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestSlotZeroTTL(t *testing.T) {
	s := NewSlot[string](0, nil)
	s.Set("x")
	_, ok := s.Get()
	assert.False(t, ok, "zero TTL slot should never be fresh")
}

func TestSlotConcurrentAccess(t *testing.T) {
	s := NewSlot[int](time.Minute, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			s.Get()
		}()
	}
	wg.Wait()
	_, ok := s.Get()
	assert.True(t, ok, "expected a value after concurrent writes")
}

func TestDoGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, status, err := DoGet(context.Background(), srv.Client(), srv.URL, map[string]string{"X-Test": "yes"})
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, http.StatusOK, status)
	data, _ := io.ReadAll(body)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestDoGetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	body, status, err := DoGet(context.Background(), srv.Client(), srv.URL, nil)
	assert.Nil(t, body)
	assert.Equal(t, http.StatusBadGateway, status)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *HTTPError, got %T", err)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "boom\n", httpErr.Body)
}

func TestDoGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, status, err := DoGet(context.Background(), &http.Client{Timeout: time.Second}, url, nil)
	require.Error(t, err)
	assert.Equal(t, 0, status)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr), "transport failure should not be an *HTTPError")
}

func TestDoGetCancelledContextKeepsCause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := DoGet(ctx, &http.Client{Timeout: time.Second}, "http://127.0.0.1:1", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBreakerTripsAndRejects(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 2, OpenTimeout: time.Hour}, nil)
	fail := errors.New("upstream down")
	calls := 0
	fn := func() (int, error) {
		calls++
		return 0, fail
	}

	for i := 0; i < 2; i++ {
		_, err := Do(b, fn)
		require.ErrorIs(t, err, fail, "call %d", i)
	}
	assert.Equal(t, "open", b.State())

	_, err := Do(b, fn)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 2, OpenTimeout: time.Hour}, nil)
	cancelled := fmt.Errorf("fetch: %w", context.Canceled)

	for i := 0; i < 5; i++ {
		_, err := Do(b, func() (int, error) { return 0, cancelled })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", b.State())

	v, err := Do(b, func() (int, error) { return 9, nil })
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestBreakerCountsDeadlineAsFailure(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 1, OpenTimeout: time.Hour}, nil)
	_, err := Do(b, func() (int, error) { return 0, context.DeadlineExceeded })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "open", b.State())
}

func TestBreakerPassThrough(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "ok"}, nil)
	v, err := Do(b, func() (string, error) { return "fine", nil })
	require.NoError(t, err)
	assert.Equal(t, "fine", v)
	assert.Equal(t, "ok", b.Name())
}

func TestNilBreaker(t *testing.T) {
	v, err := Do[int](nil, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
