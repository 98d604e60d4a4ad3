package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/critiquest/critiquest/internal/domain"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Progression Metrics
var (
	UpdatesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUpdatesApplied,
			Help: HelpTextUpdatesApplied,
		},
		[]string{LabelSource},
	)

	UpdatesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUpdatesFailed,
			Help: HelpTextUpdatesFailed,
		},
		[]string{LabelReason},
	)

	UpdateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameUpdateDuration,
			Help:    HelpTextUpdateDuration,
			Buckets: UpdateLatencyBuckets,
		},
	)

	RewardsGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardsGranted,
			Help: HelpTextRewardsGranted,
		},
		[]string{LabelType},
	)

	LevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLevelUps,
			Help: HelpTextLevelUps,
		},
	)

	OfflineReplays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOfflineReplays,
			Help: HelpTextOfflineReplays,
		},
		[]string{LabelOutcome},
	)

	OfflineQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameOfflineQueueLength,
			Help: HelpTextOfflineQueueLength,
		},
	)
)

// FailureReason classifies an update error for the UpdatesFailed counter
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidUpdate):
		return ReasonInvalidUpdate
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ReasonStoreUnavailable
	case errors.Is(err, domain.ErrUserNotFound):
		return ReasonUserNotFound
	default:
		return ReasonOther
	}
}
