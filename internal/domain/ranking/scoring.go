package ranking

import (
	"math"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
)

// ScoringConfig is the per-request tuning derived from the opportunity bias.
// It is built once per request and never mutated.
type ScoringConfig struct {
	Bias                float64
	DirectHoldingBase   float64
	WatchlistBase       float64
	ThematicBase        float64
	VectorBase          float64
	VectorActive        bool
	HopBases            map[channel.HopType]float64
	HalfLifeMinutes     float64
	PositionDamping     float64
	DiscoveryCap        float64
	InfluencePerChannel float64
	InfluenceCap        float64
}

// HopBase returns the base score for a hop type, 0 for unknown types.
func (c ScoringConfig) HopBase(h channel.HopType) float64 { return c.HopBases[h] }

// HopTypes returns the hop types with a configured base, in stable order.
func (c ScoringConfig) HopTypes() []channel.HopType {
	out := make([]channel.HopType, 0, len(c.HopBases))
	for _, h := range channel.AllHopTypes() {
		if _, ok := c.HopBases[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Weights are the final-score combination weights and boost constants.
type Weights struct {
	Graph   float64 `yaml:"graph"`
	Vector  float64 `yaml:"vector"`
	Impact  float64 `yaml:"impact"`
	Recency float64 `yaml:"recency"`
	// PositionK scales holding weight into the position boost.
	PositionK float64 `yaml:"position_k"`
	// DiscoveryTrigger is the vector or thematic score a candidate must exceed
	// to earn the discovery boost.
	DiscoveryTrigger float64 `yaml:"discovery_trigger"`
}

const weightSumTolerance = 1e-6

// DefaultWeights returns the current production weights.
func DefaultWeights() Weights {
	return Weights{
		Graph:            0.35,
		Vector:           0.35,
		Impact:           0.20,
		Recency:          0.10,
		PositionK:        0.5,
		DiscoveryTrigger: 0.7,
	}
}

// Validate checks that weights are finite, non-negative and that the four
// signal weights sum to one.
func (w Weights) Validate() error {
	named := []struct {
		field string
		v     float64
	}{
		{"weights.graph", w.Graph},
		{"weights.vector", w.Vector},
		{"weights.impact", w.Impact},
		{"weights.recency", w.Recency},
		{"weights.position_k", w.PositionK},
		{"weights.discovery_trigger", w.DiscoveryTrigger},
	}
	for _, n := range named {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) || n.v < 0 {
			return domain.NewConfigurationError(n.field, "must be a non-negative number, got %v", n.v)
		}
	}
	if w.DiscoveryTrigger > 1 {
		return domain.NewConfigurationError("weights.discovery_trigger", "must be at most 1, got %v", w.DiscoveryTrigger)
	}
	sum := w.Graph + w.Vector + w.Impact + w.Recency
	if math.Abs(sum-1) > weightSumTolerance {
		return domain.NewConfigurationError("weights", "graph+vector+impact+recency must sum to 1, got %v", sum)
	}
	return nil
}
