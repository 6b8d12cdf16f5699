package ranking

import (
	"math"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
)

// Linear is a straight-line curve over λ ∈ [0,1].
type Linear struct {
	AtZero float64 `yaml:"at_zero"`
	AtOne  float64 `yaml:"at_one"`
}

// At evaluates the curve.
func (l Linear) At(lambda float64) float64 {
	return l.AtZero + (l.AtOne-l.AtZero)*lambda
}

// Curves are the tunable λ curves behind Resolve.
type Curves struct {
	DirectHolding       Linear                     `yaml:"direct_holding"`
	Watchlist           Linear                     `yaml:"watchlist"`
	Thematic            Linear                     `yaml:"thematic"`
	Vector              Linear                     `yaml:"vector"`
	VectorActivation    float64                    `yaml:"vector_activation"`
	Hops                map[channel.HopType]Linear `yaml:"hops"`
	HalfLifeMinutes     Linear                     `yaml:"half_life_minutes"`
	PositionDamping     Linear                     `yaml:"position_damping"`
	DiscoveryCap        float64                    `yaml:"discovery_cap"`
	DiscoveryOnset      float64                    `yaml:"discovery_onset"`
	InfluencePerChannel float64                    `yaml:"influence_per_channel"`
	InfluenceCap        float64                    `yaml:"influence_cap"`
}

// DefaultCurves returns the production curves.
func DefaultCurves() Curves {
	return Curves{
		DirectHolding:    Linear{AtZero: 0.9, AtOne: 0.4},
		Watchlist:        Linear{AtZero: 0.8, AtOne: 0.8},
		Thematic:         Linear{AtZero: 0.6, AtOne: 0.9},
		Vector:           Linear{AtZero: 0.5, AtOne: 0.9},
		VectorActivation: 0.0,
		Hops: map[channel.HopType]Linear{
			channel.HopCompetitor:  {AtZero: 0.50, AtOne: 0.60},
			channel.HopSupplyChain: {AtZero: 0.45, AtOne: 0.55},
			channel.HopPeer:        {AtZero: 0.40, AtOne: 0.50},
		},
		HalfLifeMinutes:     Linear{AtZero: 60, AtOne: 240},
		PositionDamping:     Linear{AtZero: 1.0, AtOne: 0.5},
		DiscoveryCap:        0.40,
		DiscoveryOnset:      0.1,
		InfluencePerChannel: 0.1,
		InfluenceCap:        0.3,
	}
}

// Validate rejects curves that are non-finite, out of range or bend the wrong way.
// Holdings weaken and discovery strengthens as λ grows; a curve that reverses
// either direction is a configuration error.
func (c Curves) Validate() error {
	unit := []curveCheck{
		{"curves.direct_holding", c.DirectHolding, -1},
		{"curves.watchlist", c.Watchlist, 0},
		{"curves.thematic", c.Thematic, 1},
		{"curves.vector", c.Vector, 1},
		{"curves.position_damping", c.PositionDamping, -1},
	}
	for _, h := range channel.AllHopTypes() {
		l, ok := c.Hops[h]
		if !ok {
			continue
		}
		unit = append(unit, curveCheck{"curves.hops." + string(h), l, 1})
	}
	for h := range c.Hops {
		if !h.IsValid() {
			return domain.NewConfigurationError("curves.hops", "unknown hop type %q", h)
		}
	}
	for _, u := range unit {
		if err := checkLinear(u.field, u.l, 0, 1, u.dir); err != nil {
			return err
		}
	}
	if err := checkLinear("curves.half_life_minutes", c.HalfLifeMinutes, math.SmallestNonzeroFloat64, math.MaxFloat64, 1); err != nil {
		return err
	}

	scalars := []struct {
		field string
		v     float64
	}{
		{"curves.vector_activation", c.VectorActivation},
		{"curves.discovery_cap", c.DiscoveryCap},
		{"curves.discovery_onset", c.DiscoveryOnset},
		{"curves.influence_per_channel", c.InfluencePerChannel},
		{"curves.influence_cap", c.InfluenceCap},
	}
	for _, s := range scalars {
		if !finite(s.v) || s.v < 0 || s.v > 1 {
			return domain.NewConfigurationError(s.field, "must be within [0,1], got %v", s.v)
		}
	}
	if c.DiscoveryOnset >= 1 {
		return domain.NewConfigurationError("curves.discovery_onset", "must be below 1, got %v", c.DiscoveryOnset)
	}
	return nil
}

type curveCheck struct {
	field string
	l     Linear
	dir   int
}

// checkLinear validates endpoints against [lo,hi] and the expected direction
// (1 non-decreasing, -1 non-increasing, 0 constant).
func checkLinear(field string, l Linear, lo, hi float64, dir int) error {
	for _, v := range []float64{l.AtZero, l.AtOne} {
		if !finite(v) || v < lo || v > hi {
			return domain.NewConfigurationError(field, "endpoint %v out of range", v)
		}
	}
	switch {
	case dir > 0 && l.AtOne < l.AtZero:
		return domain.NewConfigurationError(field, "must not decrease with bias")
	case dir < 0 && l.AtOne > l.AtZero:
		return domain.NewConfigurationError(field, "must not increase with bias")
	case dir == 0 && l.AtOne != l.AtZero:
		return domain.NewConfigurationError(field, "must be constant")
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// BiasResolver turns an opportunity bias into a ScoringConfig.
type BiasResolver struct {
	curves Curves
}

// NewBiasResolver validates curves and creates a resolver.
func NewBiasResolver(c Curves) (*BiasResolver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	hops := make(map[channel.HopType]Linear, len(c.Hops))
	for k, v := range c.Hops {
		hops[k] = v
	}
	c.Hops = hops
	return &BiasResolver{curves: c}, nil
}

// Resolve builds the immutable per-request scoring config for λ.
func (r *BiasResolver) Resolve(lambda float64) (domrank.ScoringConfig, error) {
	if err := domrank.ValidateBias(lambda); err != nil {
		return domrank.ScoringConfig{}, err
	}
	c := r.curves

	hops := make(map[channel.HopType]float64, len(c.Hops))
	for h, l := range c.Hops {
		hops[h] = l.At(lambda)
	}

	var discovery float64
	if lambda > c.DiscoveryOnset {
		discovery = c.DiscoveryCap * (lambda - c.DiscoveryOnset) / (1 - c.DiscoveryOnset)
	}

	return domrank.ScoringConfig{
		Bias:                lambda,
		DirectHoldingBase:   c.DirectHolding.At(lambda),
		WatchlistBase:       c.Watchlist.At(lambda),
		ThematicBase:        c.Thematic.At(lambda),
		VectorBase:          c.Vector.At(lambda),
		VectorActive:        lambda >= c.VectorActivation,
		HopBases:            hops,
		HalfLifeMinutes:     c.HalfLifeMinutes.At(lambda),
		PositionDamping:     c.PositionDamping.At(lambda),
		DiscoveryCap:        discovery,
		InfluencePerChannel: c.InfluencePerChannel,
		InfluenceCap:        c.InfluenceCap,
	}, nil
}
