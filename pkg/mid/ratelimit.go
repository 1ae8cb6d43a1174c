package mid

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimitOpts configures per-client rate limiting.
type RateLimitOpts struct {
	// RPS is the sustained requests per second allowed for one client.
	// Zero or less disables limiting.
	RPS float64
	// Burst is the bucket size.
	Burst int
	// MaxClients bounds how many client buckets are remembered.
	MaxClients int
	// OnReject, if set, is called for each rejected request.
	OnReject func(r *http.Request)
}

// RateLimit returns middleware applying a token bucket per client address.
// Rejected requests get 429 with a Retry-After header.
func RateLimit(opts RateLimitOpts) Middleware {
	return func(next http.Handler) http.Handler {
		if opts.RPS <= 0 {
			return next
		}
		if opts.Burst <= 0 {
			opts.Burst = 1
		}
		if opts.MaxClients <= 0 {
			opts.MaxClients = 4096
		}
		// lru.New only fails for a non-positive size.
		clients, _ := lru.New[string, *rate.Limiter](opts.MaxClients)
		var mu sync.Mutex

		limiter := func(key string) *rate.Limiter {
			mu.Lock()
			defer mu.Unlock()
			if l, ok := clients.Get(key); ok {
				return l
			}
			l := rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst)
			clients.Add(key, l)
			return l
		}

		retryAfter := strconv.Itoa(max(1, int(1/opts.RPS)))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter(ClientAddr(r)).Allow() {
				if opts.OnReject != nil {
					opts.OnReject(r)
				}
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientAddr returns the client IP, preferring the first X-Forwarded-For hop.
func ClientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
