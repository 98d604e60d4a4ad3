package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/critiquest/critiquest/internal/metrics"
)

// AdminMetricsResponse contains JSON-formatted metrics for the admin dashboard
type AdminMetricsResponse struct {
	HTTP        HTTPMetrics        `json:"http"`
	Events      EventMetrics       `json:"events"`
	Progression ProgressionMetrics `json:"progression"`
}

type HTTPMetrics struct {
	RequestsTotalByStatus map[string]float64 `json:"requests_total_by_status"`
	AvgLatencyMs          float64            `json:"avg_latency_ms"`
	P95LatencyMs          float64            `json:"p95_latency_ms"`
	InFlight              float64            `json:"in_flight"`
}

type EventMetrics struct {
	PublishedTotalByType map[string]float64 `json:"published_total_by_type"`
	HandlerErrorsByType  map[string]float64 `json:"handler_errors_by_type"`
}

type ProgressionMetrics struct {
	UpdatesAppliedBySource map[string]float64 `json:"updates_applied_by_source"`
	UpdatesFailedByReason  map[string]float64 `json:"updates_failed_by_reason"`
	RewardsGrantedByType   map[string]float64 `json:"rewards_granted_by_type"`
	LevelUps               float64            `json:"level_ups"`
	OfflineReplaysByResult map[string]float64 `json:"offline_replays_by_outcome"`
	OfflineQueueLength     float64            `json:"offline_queue_length"`
}

// AdminMetricsHandler handles admin metrics requests
type AdminMetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewAdminMetricsHandler creates a new admin metrics handler. A nil gatherer uses the default registry.
func NewAdminMetricsHandler(gatherer prometheus.Gatherer) *AdminMetricsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &AdminMetricsHandler{gatherer: gatherer}
}

// HandleGetMetrics returns JSON-formatted metrics from Prometheus
// GET /api/v1/admin/metrics
func (h *AdminMetricsHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	resp, err := gatherMetrics(h.gatherer)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to gather metrics")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func gatherMetrics(gatherer prometheus.Gatherer) (*AdminMetricsResponse, error) {
	metricFamilies, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}

	resp := &AdminMetricsResponse{
		HTTP: HTTPMetrics{
			RequestsTotalByStatus: make(map[string]float64),
		},
		Events: EventMetrics{
			PublishedTotalByType: make(map[string]float64),
			HandlerErrorsByType:  make(map[string]float64),
		},
		Progression: ProgressionMetrics{
			UpdatesAppliedBySource: make(map[string]float64),
			UpdatesFailedByReason:  make(map[string]float64),
			RewardsGrantedByType:   make(map[string]float64),
			OfflineReplaysByResult: make(map[string]float64),
		},
	}

	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case metrics.MetricNameHTTPRequestsTotal:
			sumCounterBy(mf, metrics.LabelStatus, resp.HTTP.RequestsTotalByStatus)
		case metrics.MetricNameHTTPRequestDuration:
			var count uint64
			var sum float64
			for _, m := range mf.GetMetric() {
				hist := m.GetHistogram()
				if hist == nil {
					continue
				}
				count += hist.GetSampleCount()
				sum += hist.GetSampleSum()
				// P95 approximation from the slowest route's buckets
				if p95 := estimateQuantile(hist, 0.95) * 1000; p95 > resp.HTTP.P95LatencyMs {
					resp.HTTP.P95LatencyMs = p95
				}
			}
			if count > 0 {
				resp.HTTP.AvgLatencyMs = (sum / float64(count)) * 1000
			}
		case metrics.MetricNameHTTPRequestsInFlight:
			for _, m := range mf.GetMetric() {
				resp.HTTP.InFlight += m.GetGauge().GetValue()
			}
		case metrics.MetricNameEventsPublished:
			sumCounterBy(mf, metrics.LabelType, resp.Events.PublishedTotalByType)
		case metrics.MetricNameEventHandlerErrors:
			sumCounterBy(mf, metrics.LabelType, resp.Events.HandlerErrorsByType)
		case metrics.MetricNameUpdatesApplied:
			sumCounterBy(mf, metrics.LabelSource, resp.Progression.UpdatesAppliedBySource)
		case metrics.MetricNameUpdatesFailed:
			sumCounterBy(mf, metrics.LabelReason, resp.Progression.UpdatesFailedByReason)
		case metrics.MetricNameRewardsGranted:
			sumCounterBy(mf, metrics.LabelType, resp.Progression.RewardsGrantedByType)
		case metrics.MetricNameOfflineReplays:
			sumCounterBy(mf, metrics.LabelOutcome, resp.Progression.OfflineReplaysByResult)
		case metrics.MetricNameLevelUps:
			for _, m := range mf.GetMetric() {
				resp.Progression.LevelUps += m.GetCounter().GetValue()
			}
		case metrics.MetricNameOfflineQueueLength:
			for _, m := range mf.GetMetric() {
				resp.Progression.OfflineQueueLength += m.GetGauge().GetValue()
			}
		}
	}

	return resp, nil
}

func sumCounterBy(mf *dto.MetricFamily, labelName string, into map[string]float64) {
	for _, m := range mf.GetMetric() {
		if value := getLabelValue(m, labelName); value != "" {
			into[value] += m.GetCounter().GetValue()
		}
	}
}

func getLabelValue(m *dto.Metric, labelName string) string {
	for _, label := range m.GetLabel() {
		if label.GetName() == labelName {
			return label.GetValue()
		}
	}
	return ""
}

// estimateQuantile approximates the given quantile from a histogram
func estimateQuantile(hist *dto.Histogram, quantile float64) float64 {
	totalCount := hist.GetSampleCount()
	if totalCount == 0 {
		return 0
	}

	targetCount := float64(totalCount) * quantile
	var cumulativeCount uint64

	buckets := hist.GetBucket()
	for _, bucket := range buckets {
		cumulativeCount = bucket.GetCumulativeCount()
		if float64(cumulativeCount) >= targetCount {
			return bucket.GetUpperBound()
		}
	}

	// If we reach here, return the last bucket's upper bound
	if len(buckets) > 0 {
		return buckets[len(buckets)-1].GetUpperBound()
	}
	return 0
}
