package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"telebot/internal/httputil"
)

// maxTrackedClients bounds the limiter table; it is reset when exceeded
const maxTrackedClients = 10_000

// RateLimiter hands out one token bucket per client address
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	logger  *slog.Logger
}

// NewRateLimiter creates a limiter allowing perSecond requests with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int, logger *slog.Logger) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*rate.Limiter),
		logger:  logger,
	}
}

// Allow reports whether the client may make a request now
func (l *RateLimiter) Allow(client string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.clients = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddress(r)
		if !l.Allow(client) {
			l.logger.Warn("rate limit exceeded",
				"client", client,
				"path", r.URL.Path,
				"request_id", httputil.GetRequestID(r.Context()),
			)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(l.limit)))
			httputil.RespondError(w, http.StatusTooManyRequests, "too many AI requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddress keys limiting by remote IP
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 || limit >= 1 {
		return 1
	}
	return int(1/float64(limit)) + 1
}
