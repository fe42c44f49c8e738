package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ems/internal/transport/http/api"
)

// sweepThreshold bounds in-memory keyed maps before expired entries are dropped.
const sweepThreshold = 4096

const maxPeekBody = 64 * 1024

type keyFunc func(r *http.Request) string

type rateBucket struct {
	count int
	reset time.Time
}

// rateLimiter is a fixed-window counter keyed per caller.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   keyFunc
	clients map[string]*rateBucket
}

type decision struct {
	allowed   bool
	remaining int
	resetIn   int
}

func newRateLimiter(limit int, window time.Duration, fn keyFunc) *rateLimiter {
	if fn == nil {
		fn = sessionOrIP
	}
	return &rateLimiter{limit: limit, window: window, keyFn: fn, clients: map[string]*rateBucket{}}
}

// RateLimit caps every request at limit per window, keyed by the signed-in
// user or the client address.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, sessionOrIP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.enforce(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type sensitiveScope int

const (
	scopeNone sensitiveScope = iota
	scopeLogin
	scopeReview
)

type sensitiveRoute struct {
	prefix  string
	actions []string
	scope   sensitiveScope
}

// Paths are relative to /api/v1. An empty actions list matches the prefix exactly.
var sensitiveRoutes = []sensitiveRoute{
	{prefix: "/auth/login", scope: scopeLogin},
	{prefix: "/leaves/", actions: []string{"/approve", "/reject"}, scope: scopeReview},
	{prefix: "/tickets/", actions: []string{"/review", "/resolve"}, scope: scopeReview},
}

// SensitiveMutationRateLimit applies tighter windows to login attempts and to
// leave and ticket decisions. Login is limited both per address and per
// submitted email.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	reviewLimit := max(baseLimit/2, 1)
	loginByIP := newRateLimiter(loginLimit, window, ClientIP)
	loginByEmail := newRateLimiter(loginLimit, window, loginEmailOrIP)
	reviews := newRateLimiter(reviewLimit, window, sessionOrIP)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch scopeOf(r) {
			case scopeLogin:
				if !loginByIP.enforce(w, r) || !loginByEmail.enforce(w, r) {
					return
				}
			case scopeReview:
				if !reviews.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func scopeOf(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return scopeNone
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	for _, route := range sensitiveRoutes {
		if len(route.actions) == 0 {
			if path == route.prefix {
				return route.scope
			}
			continue
		}
		if !strings.HasPrefix(path, route.prefix) {
			continue
		}
		for _, action := range route.actions {
			if strings.HasSuffix(path, action) {
				return route.scope
			}
		}
	}
	return scopeNone
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}
	key := rl.keyFn(r)
	if key == "" {
		key = ClientIP(r)
	}
	d := rl.take(key, time.Now())

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(d.resetIn))
	if d.allowed {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(d.resetIn, 1)))
	slog.Warn("rate limited", "key", key, "method", r.Method, "path", r.URL.Path, "limit", rl.limit, "window", rl.window.String())
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func (rl *rateLimiter) take(key string, now time.Time) decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.clients) >= sweepThreshold {
		rl.sweep(now)
	}
	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++

	resetIn := 0
	if left := bucket.reset.Sub(now); left > 0 {
		resetIn = max(int(left.Seconds()), 1)
	}
	return decision{
		allowed:   bucket.count <= rl.limit,
		remaining: max(rl.limit-bucket.count, 0),
		resetIn:   resetIn,
	}
}

// sweep drops buckets whose window has passed. Callers hold rl.mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for key, bucket := range rl.clients {
		if now.After(bucket.reset) {
			delete(rl.clients, key)
		}
	}
}

func sessionOrIP(r *http.Request) string {
	if session := GetSession(r.Context()); session.IsAuthenticated() {
		return "user:" + session.Email()
	}
	return ClientIP(r)
}

// loginEmailOrIP keys login attempts by the submitted email. The body is
// restored for the handler.
func loginEmailOrIP(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ClientIP(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
	if err != nil {
		return ClientIP(r)
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), r.Body), r.Body}

	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ClientIP(r)
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ClientIP(r)
	}
	return "email:" + email
}

// ClientIP is the remote host of the request. Forwarding headers are only
// honoured when the server mounts chi's RealIP, which rewrites RemoteAddr.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
