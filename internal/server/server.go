package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/critiquest/critiquest/internal/handler"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/metrics"
	"github.com/critiquest/critiquest/internal/offline"
	"github.com/critiquest/critiquest/internal/progression"
)

// Options holds the HTTP-facing settings
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// Dependencies are the services the routes call into.
// OfflineQueue, Replay and Cache are optional.
type Dependencies struct {
	Progression  progression.Service
	OfflineQueue offline.Queue
	Replay       handler.ReplayTrigger
	Cache        handler.ProgressionCache
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, deps Dependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, deps),
			ReadHeaderTimeout: ReadHeaderTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}
}

// NewRouter builds the chi router with the full middleware stack
func NewRouter(opts Options, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()
	limiter := NewClientRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(metrics.Middleware)
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RateLimitMiddleware(limiter, opts.TrustedProxies))
	if opts.MaxBodyBytes > 0 {
		r.Use(RequestSizeLimitMiddleware(opts.MaxBodyBytes))
	}

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.Progression))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion(deps.Progression.Catalog().Version()))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	progressionHandlers := handler.NewProgressionHandlers(deps.Progression)
	var offlineHandlers *handler.OfflineHandlers
	if deps.OfflineQueue != nil {
		offlineHandlers = handler.NewOfflineHandlers(deps.OfflineQueue, deps.Replay)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", progressionHandlers.HandleGetCatalog())

		r.Route("/progression/{userID}", func(r chi.Router) {
			r.Get("/", progressionHandlers.HandleGetProgression())
			r.Post("/updates", progressionHandlers.HandleApplyUpdate())
			r.Get("/milestones", progressionHandlers.HandleGetMilestones())
			r.Get("/level", progressionHandlers.HandleGetLevelProgress())

			if offlineHandlers != nil {
				r.Post("/offline", offlineHandlers.HandleEnqueue())
				r.Get("/offline", offlineHandlers.HandleStatus())
			}
		})

		if offlineHandlers != nil {
			r.Post("/offline/replay", offlineHandlers.HandleTriggerReplay())
		}

		// Admin routes
		adminCacheHandler := handler.NewAdminCacheHandler(deps.Cache)
		adminMetricsHandler := handler.NewAdminMetricsHandler(nil)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/metrics", adminMetricsHandler.HandleGetMetrics)

			r.Route("/cache", func(r chi.Router) {
				r.Get("/stats", adminCacheHandler.HandleGetCacheStats)
				r.Delete("/{userID}", adminCacheHandler.HandleInvalidateUser)
			})
		})
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Honor an upstream request id so traces line up across services
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
