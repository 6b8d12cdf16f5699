package ranking

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
)

const eps = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < eps }

func TestResolve_Endpoints(t *testing.T) {
	tests := []struct {
		lambda                                    float64
		direct, watch, thematic, vector, halfLife float64
		damping, discovery                        float64
		competitor, supply, peer                  float64
	}{
		{0, 0.9, 0.8, 0.6, 0.5, 60, 1.0, 0, 0.50, 0.45, 0.40},
		{0.5, 0.65, 0.8, 0.75, 0.7, 150, 0.75, 0.40 * 0.4 / 0.9, 0.55, 0.50, 0.45},
		{1, 0.4, 0.8, 0.9, 0.9, 240, 0.5, 0.40, 0.60, 0.55, 0.50},
	}
	for _, tt := range tests {
		cfg := mustResolve(t, tt.lambda)
		checks := []struct {
			name      string
			got, want float64
		}{
			{"direct", cfg.DirectHoldingBase, tt.direct},
			{"watchlist", cfg.WatchlistBase, tt.watch},
			{"thematic", cfg.ThematicBase, tt.thematic},
			{"vector", cfg.VectorBase, tt.vector},
			{"half-life", cfg.HalfLifeMinutes, tt.halfLife},
			{"damping", cfg.PositionDamping, tt.damping},
			{"discovery", cfg.DiscoveryCap, tt.discovery},
			{"competitor", cfg.HopBase(channel.HopCompetitor), tt.competitor},
			{"supply_chain", cfg.HopBase(channel.HopSupplyChain), tt.supply},
			{"peer", cfg.HopBase(channel.HopPeer), tt.peer},
			{"influence", cfg.InfluencePerChannel, 0.1},
			{"influence cap", cfg.InfluenceCap, 0.3},
		}
		for _, c := range checks {
			if !almostEqual(c.got, c.want) {
				t.Errorf("λ=%v %s = %v, want %v", tt.lambda, c.name, c.got, c.want)
			}
		}
		if !cfg.VectorActive {
			t.Errorf("λ=%v vector channel must be active with default threshold", tt.lambda)
		}
		if cfg.Bias != tt.lambda {
			t.Errorf("Bias = %v", cfg.Bias)
		}
	}
}

func TestResolve_Monotone(t *testing.T) {
	prev := mustResolve(t, 0)
	for i := 1; i <= 100; i++ {
		cur := mustResolve(t, float64(i)/100)
		if cur.ThematicBase < prev.ThematicBase {
			t.Fatalf("thematic base decreased at λ=%v", cur.Bias)
		}
		if cur.VectorBase < prev.VectorBase {
			t.Fatalf("vector base decreased at λ=%v", cur.Bias)
		}
		if cur.DirectHoldingBase > prev.DirectHoldingBase {
			t.Fatalf("direct holding base increased at λ=%v", cur.Bias)
		}
		if cur.DiscoveryCap < prev.DiscoveryCap {
			t.Fatalf("discovery cap decreased at λ=%v", cur.Bias)
		}
		for _, h := range channel.AllHopTypes() {
			if cur.HopBase(h) < prev.HopBase(h) {
				t.Fatalf("%s base decreased at λ=%v", h, cur.Bias)
			}
		}
		prev = cur
	}
}

func TestResolve_DiscoveryOnset(t *testing.T) {
	for _, lambda := range []float64{0, 0.05, 0.1} {
		if c := mustResolve(t, lambda).DiscoveryCap; c != 0 {
			t.Errorf("λ=%v discovery cap = %v, want 0", lambda, c)
		}
	}
	if c := mustResolve(t, 0.11).DiscoveryCap; c <= 0 {
		t.Errorf("λ=0.11 discovery cap = %v, want > 0", c)
	}
}

func TestResolve_InvalidBias(t *testing.T) {
	r, err := NewBiasResolver(DefaultCurves())
	if err != nil {
		t.Fatalf("NewBiasResolver: %v", err)
	}
	for _, lambda := range []float64{-0.1, 1.1, math.NaN(), math.Inf(1)} {
		if _, err := r.Resolve(lambda); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("Resolve(%v) = %v, want ErrConfiguration", lambda, err)
		}
	}
}

func TestResolve_VectorActivationThreshold(t *testing.T) {
	c := DefaultCurves()
	c.VectorActivation = 0.3
	r, err := NewBiasResolver(c)
	if err != nil {
		t.Fatalf("NewBiasResolver: %v", err)
	}
	low, _ := r.Resolve(0.2)
	high, _ := r.Resolve(0.3)
	if low.VectorActive || !high.VectorActive {
		t.Errorf("VectorActive at 0.2=%v, 0.3=%v", low.VectorActive, high.VectorActive)
	}
}

func TestResolve_ConfigIsolated(t *testing.T) {
	r, _ := NewBiasResolver(DefaultCurves())
	a, _ := r.Resolve(0.2)
	a.HopBases[channel.HopPeer] = 99
	b, _ := r.Resolve(0.2)
	if b.HopBase(channel.HopPeer) == 99 {
		t.Error("resolved configs must not share state")
	}
}

func TestCurves_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Curves)
	}{
		{"direct increases", func(c *Curves) { c.DirectHolding = Linear{AtZero: 0.4, AtOne: 0.9} }},
		{"thematic decreases", func(c *Curves) { c.Thematic = Linear{AtZero: 0.9, AtOne: 0.6} }},
		{"vector NaN", func(c *Curves) { c.Vector = Linear{AtZero: math.NaN(), AtOne: 0.9} }},
		{"watchlist varies", func(c *Curves) { c.Watchlist = Linear{AtZero: 0.7, AtOne: 0.8} }},
		{"base above one", func(c *Curves) { c.Vector = Linear{AtZero: 0.5, AtOne: 1.2} }},
		{"zero half-life", func(c *Curves) { c.HalfLifeMinutes = Linear{AtZero: 0, AtOne: 240} }},
		{"damping rises", func(c *Curves) { c.PositionDamping = Linear{AtZero: 0.5, AtOne: 1} }},
		{"negative cap", func(c *Curves) { c.DiscoveryCap = -0.1 }},
		{"onset at one", func(c *Curves) { c.DiscoveryOnset = 1 }},
		{"hop decreases", func(c *Curves) {
			c.Hops = map[channel.HopType]Linear{channel.HopPeer: {AtZero: 0.5, AtOne: 0.4}}
		}},
		{"unknown hop", func(c *Curves) {
			c.Hops = map[channel.HopType]Linear{"customer": {AtZero: 0.4, AtOne: 0.5}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCurves()
			tt.mutate(&c)
			if _, err := NewBiasResolver(c); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("NewBiasResolver() = %v, want ErrConfiguration", err)
			}
		})
	}
}
