// Package middleware provides HTTP middleware functions for the API server
package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RynoXLI/allformats/internal/events"
	"github.com/RynoXLI/allformats/internal/ratelimit"
)

// Rate limit response headers, set on every response
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// UnknownClient is the shared bucket for requests without forwarding headers
const UnknownClient = "unknown"

// RateLimitExceededMessage is the error returned with a 429
const RateLimitExceededMessage = "Rate limit exceeded. Please try again later."

// ISO-8601 in UTC with millisecond precision
const resetLayout = "2006-01-02T15:04:05.000Z07:00"

// RateLimitOptions configures RateLimiter
type RateLimitOptions struct {
	Limiter *ratelimit.Limiter
	Limit   int
	Window  time.Duration

	// KeyFn derives the client identifier; defaults to ClientIdentifier
	KeyFn func(r *http.Request) string
	// Publisher is told about denials; defaults to events.NopPublisher
	Publisher events.Publisher
	Logger    *slog.Logger
	// Now is used for Retry-After; defaults to time.Now
	Now func() time.Time
}

// ClientIdentifier returns the first X-Forwarded-For address, else
// X-Real-IP, else UnknownClient
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}

// RateLimiter creates a middleware that admits requests through a
// fixed-window limiter keyed by client identifier
func RateLimiter(opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.Limit <= 0 {
		opts.Limit = ratelimit.DefaultLimit
	}
	if opts.Window <= 0 {
		opts.Window = ratelimit.DefaultWindow
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientIdentifier
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := opts.KeyFn(r)
			res := opts.Limiter.Check(client, opts.Limit, opts.Window)

			h := w.Header()
			h.Set(HeaderLimit, strconv.Itoa(res.Limit))
			h.Set(HeaderRemaining, strconv.Itoa(res.Remaining))
			h.Set(HeaderReset, res.ResetAt.UTC().Format(resetLayout))

			if !res.Allowed {
				opts.reject(w, r, client, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (opts RateLimitOptions) reject(
	w http.ResponseWriter,
	r *http.Request,
	client string,
	res ratelimit.Result,
) {
	retryAfter := int(math.Ceil(res.ResetAt.Sub(opts.Now()).Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	err := json.NewEncoder(w).Encode(map[string]string{"error": RateLimitExceededMessage})
	if err != nil {
		opts.Logger.Error("Failed to encode rate limit response", "error", err)
	}

	err = opts.Publisher.RateLimited(r.Context(), &events.RateLimitedEvent{
		ClientID: client,
		Method:   r.Method,
		Path:     r.URL.Path,
		Limit:    res.Limit,
		ResetAt:  res.ResetAt,
	})
	if err != nil {
		opts.Logger.Warn("Failed to publish rate limit event", "error", err, "client", client)
	}
}
