package server

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/critiquest/critiquest/internal/logger"
)

// AuthMiddleware requires the shared API key on every non-public route.
// Clients send it as X-API-Key or as an Authorization bearer token.
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	expected := []byte(apiKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := presentedKey(r)
			if subtle.ConstantTimeCompare([]byte(provided), expected) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			ip := extractIP(r, trustedProxies)
			failures := detector.RecordFailedAuth(ip)

			logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
				"path", r.URL.Path,
				"has_key", provided != "",
				"ip", ip,
				"failures_in_window", failures)

			http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
		})
	}
}

func presentedKey(r *http.Request) string {
	if key := r.Header.Get(HeaderAPIKey); key != "" {
		return key
	}
	if auth := r.Header.Get(HeaderAuthorization); len(auth) > len(BearerPrefix) &&
		strings.EqualFold(auth[:len(BearerPrefix)], BearerPrefix) {
		return strings.TrimSpace(auth[len(BearerPrefix):])
	}
	return ""
}

// isPublicPath matches a public path exactly or as a parent segment
func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RequestSizeLimitMiddleware caps request bodies; oversized reads fail with 413 in the decoder
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientActivity counts one client's behaviour inside its current window
type clientActivity struct {
	mu         sync.Mutex
	requests   int
	failedAuth int
}

// SuspiciousActivityDetector keeps per-client counters for a fixed window that
// starts at the client's first request. Entries expire with the window, and the
// LRU bounds memory when many addresses show up.
type SuspiciousActivityDetector struct {
	mu      sync.Mutex
	clients *expirable.LRU[string, *clientActivity]
}

// NewSuspiciousActivityDetector creates a detector using DetectorWindow
func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		clients: expirable.NewLRU[string, *clientActivity](DetectorCacheSize, nil, DetectorWindow),
	}
}

func (s *SuspiciousActivityDetector) activity(ip string) *clientActivity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.clients.Get(ip); ok {
		return a
	}
	a := &clientActivity{}
	s.clients.Add(ip, a)
	return a
}

// RecordFailedAuth counts a rejected API key and returns the count in the current window
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) int {
	if s == nil {
		return 0
	}
	a := s.activity(ip)
	a.mu.Lock()
	a.failedAuth++
	n := a.failedAuth
	a.mu.Unlock()

	if n >= DetectorFailedAuthAlert {
		logger.Warn(SecurityAlertFailedAuth, "ip", ip, "count", n)
	}
	return n
}

// RecordRequest counts a request and reports whether the client is still inside its window budget
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	if s == nil {
		return true
	}
	a := s.activity(ip)
	a.mu.Lock()
	a.requests++
	n := a.requests
	a.mu.Unlock()

	if n <= DetectorMaxRequests {
		return true
	}
	// One line per hundred blocked requests
	if n%100 == 1 {
		logger.Warn(SecurityAlertHighRate, "ip", ip, "count_in_window", n)
	}
	return false
}

// Counts returns the request and failed-auth counts of the client's current window
func (s *SuspiciousActivityDetector) Counts(ip string) (requests, failedAuth int) {
	s.mu.Lock()
	a, ok := s.clients.Peek(ip)
	s.mu.Unlock()
	if !ok {
		return 0, 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests, a.failedAuth
}

// SecurityLoggingMiddleware enforces the coarse per-window request budget
func SecurityLoggingMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !detector.RecordRequest(extractIP(r, trustedProxies)) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractIP returns the client address. X-Forwarded-For is only read when the
// connection comes from a trusted proxy, and then its rightmost hop is used.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	forwarded := r.Header.Get(HeaderForwardedFor)
	if forwarded == "" || !isTrustedProxy(remoteIP, trustedProxies) {
		return remoteIP
	}

	hops := strings.Split(forwarded, ",")
	if hop := strings.TrimSpace(hops[len(hops)-1]); hop != "" {
		return hop
	}
	return remoteIP
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	for _, proxy := range trustedProxies {
		if proxy == ip {
			return true
		}
	}
	return false
}

// SecurityHeadersMiddleware sets the static hardening headers on every response
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set(HeaderContentType, HeaderValueNoSniff)
			h.Set(HeaderFrameOptions, HeaderValueDeny)
			h.Set(HeaderReferrerPolicy, HeaderValueNoReferrer)
			h.Set(HeaderCacheControl, HeaderValueNoStore)
			next.ServeHTTP(w, r)
		})
	}
}
