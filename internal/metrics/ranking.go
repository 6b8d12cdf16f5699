package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "newsrank"

// Ranking Prometheus metrics.
var (
	RankingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_requests_total",
			Help:      "Total number of ranking requests",
		},
		[]string{"status"},
	)

	RankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Ranking request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ChannelDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "channel_duration_seconds",
			Help:      "Candidate channel query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"channel"},
	)

	ChannelUnavailableTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_unavailable_total",
			Help:      "Channel runs that failed or timed out",
		},
		[]string{"channel", "reason"}, // "timeout" / "error"
	)

	ProfileCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_cache_total",
			Help:      "Client profile cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var rankingMetricsRegistered bool

// RegisterRankingMetrics registers ranking, cache and HTTP metrics. Must be called once from main.
func RegisterRankingMetrics() {
	if rankingMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpInFlight)
	prometheus.MustRegister(RankingRequestsTotal)
	prometheus.MustRegister(RankingDuration)
	prometheus.MustRegister(ChannelDuration)
	prometheus.MustRegister(ChannelUnavailableTotal)
	prometheus.MustRegister(ProfileCacheTotal)
	rankingMetricsRegistered = true
}

// ObserveRanking records one ranking request.
func ObserveRanking(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RankingRequestsTotal.WithLabelValues(status).Inc()
	RankingDuration.Observe(d.Seconds())
}

// ObserveChannel records one channel run.
func ObserveChannel(channel string, d time.Duration, err error) {
	ChannelDuration.WithLabelValues(channel).Observe(d.Seconds())
	if err == nil {
		return
	}
	reason := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	ChannelUnavailableTotal.WithLabelValues(channel, reason).Inc()
}
