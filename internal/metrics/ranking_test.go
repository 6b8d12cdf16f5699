package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRanking(t *testing.T) {
	okBefore := testutil.ToFloat64(RankingRequestsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(RankingRequestsTotal.WithLabelValues("error"))

	ObserveRanking(10*time.Millisecond, nil)
	ObserveRanking(10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(RankingRequestsTotal.WithLabelValues("ok")); got != okBefore+1 {
		t.Errorf("ok requests = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(RankingRequestsTotal.WithLabelValues("error")); got != errBefore+1 {
		t.Errorf("error requests = %v, want %v", got, errBefore+1)
	}
	if testutil.CollectAndCount(RankingDuration) == 0 {
		t.Error("expected ranking_duration_seconds to have observations")
	}
}

func TestObserveChannel(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"timeout", fmt.Errorf("vector: %w", context.DeadlineExceeded), "timeout"},
		{"error", errors.New("connection refused"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ChannelUnavailableTotal.WithLabelValues("VECTOR", tt.reason)
			before := testutil.ToFloat64(c)
			ObserveChannel("VECTOR", time.Millisecond, tt.err)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("unavailable{%s} = %v, want %v", tt.reason, got, before+1)
			}
		})
	}
}

func TestObserveChannel_Success(t *testing.T) {
	c := ChannelUnavailableTotal.WithLabelValues("THEMATIC", "error")
	before := testutil.ToFloat64(c)
	ObserveChannel("THEMATIC", time.Millisecond, nil)
	if got := testutil.ToFloat64(c); got != before {
		t.Errorf("unavailable counter moved on success: %v -> %v", before, got)
	}
}

func TestRegisterRankingMetrics_Idempotent(t *testing.T) {
	RegisterRankingMetrics()
	RegisterRankingMetrics()
}
