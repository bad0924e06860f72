package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RynoXLI/allformats/internal/events"
	"github.com/RynoXLI/allformats/internal/ratelimit"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RateLimitedEvent
	err    error
}

func (p *recordingPublisher) RateLimited(_ context.Context, e *events.RateLimitedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return p.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first forwarded address",
			headers: map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"},
			want:    "1.2.3.4",
		},
		{
			name:    "forwarded wins over real ip",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"},
			want:    "1.2.3.4",
		},
		{
			name:    "real ip",
			headers: map[string]string{"X-Real-IP": "9.9.9.9"},
			want:    "9.9.9.9",
		},
		{
			name:    "empty first forwarded entry falls through",
			headers: map[string]string{"X-Forwarded-For": " , 5.6.7.8", "X-Real-IP": "9.9.9.9"},
			want:    "9.9.9.9",
		},
		{
			name: "no headers shares the unknown bucket",
			want: UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example/api/formats", nil)
			r.RemoteAddr = "10.0.0.1:1234"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIdentifier(r))
		})
	}
}

func TestRateLimiterAllowsThenRejects(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 15, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	publisher := &recordingPublisher{}

	h := RateLimiter(RateLimitOptions{
		Limiter:   ratelimit.New(ratelimit.WithClock(clock)),
		Limit:     2,
		Window:    time.Minute,
		Publisher: publisher,
		Logger:    quietLogger(),
		Now:       clock,
	})(okHandler())

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "http://example/api/formats", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w1 := send()
	require.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "2", w1.Header().Get(HeaderLimit))
	assert.Equal(t, "1", w1.Header().Get(HeaderRemaining))
	assert.Equal(t, "2024-05-10T09:16:00.000Z", w1.Header().Get(HeaderReset))

	w2 := send()
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "0", w2.Header().Get(HeaderRemaining))

	w3 := send()
	require.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Equal(t, "2", w3.Header().Get(HeaderLimit))
	assert.Equal(t, "0", w3.Header().Get(HeaderRemaining))
	assert.Equal(t, "2024-05-10T09:16:00.000Z", w3.Header().Get(HeaderReset))
	assert.Equal(t, "60", w3.Header().Get("Retry-After"))
	assert.Contains(t, w3.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"error": RateLimitExceededMessage}, body)

	require.Len(t, publisher.events, 1)
	ev := publisher.events[0]
	assert.Equal(t, "1.2.3.4", ev.ClientID)
	assert.Equal(t, http.MethodGet, ev.Method)
	assert.Equal(t, "/api/formats", ev.Path)
	assert.Equal(t, 2, ev.Limit)
	assert.Equal(t, now.Add(time.Minute), ev.ResetAt)
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	h := RateLimiter(RateLimitOptions{
		Limiter: ratelimit.New(),
		Limit:   1,
		Window:  time.Minute,
		Logger:  quietLogger(),
	})(okHandler())

	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("X-Real-IP", ip)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code, ip)
	}

	// Requests without forwarding headers all share one bucket
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", i+1)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, want, w.Code)
	}
}

func TestRateLimiterPublishFailureDoesNotChangeResponse(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("nats down")}
	h := RateLimiter(RateLimitOptions{
		Limiter:   ratelimit.New(),
		Limit:     1,
		Window:    time.Minute,
		Publisher: publisher,
		Logger:    quietLogger(),
	})(okHandler())

	for _, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
		assert.Equal(t, want, w.Code)
	}
	assert.Len(t, publisher.events, 1)
}

func TestRateLimiterDefaults(t *testing.T) {
	h := RateLimiter(RateLimitOptions{Limiter: ratelimit.New()})(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get(HeaderLimit))
	assert.Equal(t, "99", w.Header().Get(HeaderRemaining))

	reset, err := time.Parse(time.RFC3339, w.Header().Get(HeaderReset))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), reset, 5*time.Second)
}
