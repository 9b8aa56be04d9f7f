package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records refresh and mutation outcomes for the synchronization store.
type SyncMetrics struct {
	refreshDuration *prometheus.HistogramVec
	refreshFailure  *prometheus.CounterVec
	mutationSuccess *prometheus.CounterVec
	mutationFailure *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	refreshDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_refresh_duration_seconds",
		Help:    "Duration of product/transaction refreshes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
	refreshFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_refresh_failure",
		Help: "Failed refreshes against the spreadsheet backend.",
	}, []string{"collection"})
	mutationSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_mutation_success",
		Help: "Mutations acknowledged by the command endpoint.",
	}, []string{"action"})
	mutationFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_mutation_failure",
		Help: "Mutations rejected or failed in transit.",
	}, []string{"action"})
	reg.MustRegister(refreshDuration, refreshFailure, mutationSuccess, mutationFailure)
	return &SyncMetrics{
		refreshDuration: refreshDuration,
		refreshFailure:  refreshFailure,
		mutationSuccess: mutationSuccess,
		mutationFailure: mutationFailure,
	}
}

// ObserveRefresh records the duration for the named collection refresh.
func (m *SyncMetrics) ObserveRefresh(collection string, duration time.Duration) {
	if m == nil || m.refreshDuration == nil {
		return
	}
	m.refreshDuration.WithLabelValues(normalizeLabel(collection)).Observe(duration.Seconds())
}

// IncRefreshFailure increments the failure counter for the named collection.
func (m *SyncMetrics) IncRefreshFailure(collection string) {
	if m == nil || m.refreshFailure == nil {
		return
	}
	m.refreshFailure.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncMutationSuccess increments the success counter for the named action.
func (m *SyncMetrics) IncMutationSuccess(action string) {
	if m == nil || m.mutationSuccess == nil {
		return
	}
	m.mutationSuccess.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncMutationFailure increments the failure counter for the named action.
func (m *SyncMetrics) IncMutationFailure(action string) {
	if m == nil || m.mutationFailure == nil {
		return
	}
	m.mutationFailure.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
