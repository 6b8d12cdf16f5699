package ranking

import (
	"math"
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
)

// scored is a candidate with its final score.
type scored struct {
	doc       document.Document
	final     float64
	reasons   []string
	breakdown domrank.Breakdown
}

// score combines channel signals into one number. It depends only on its
// arguments; asOf is the request instant.
func score(c *candidate, cfg domrank.ScoringConfig, w domrank.Weights, asOf time.Time) scored {
	graph := math.Max(c.score(channel.DirectHolding),
		math.Max(c.score(channel.Watchlist), c.score(channel.RelationshipHop)))
	vector := c.score(channel.Vector)
	thematic := c.score(channel.Thematic)
	impact := float64(c.doc.ImpactScore()) / float64(document.MaxImpactScore)

	ageMinutes := asOf.Sub(c.doc.CreatedAt()).Minutes()
	if ageMinutes < 0 {
		ageMinutes = 0
	}
	recency := math.Exp(-math.Ln2 * ageMinutes / cfg.HalfLifeMinutes)

	kinds := c.firedKinds()
	influence := 0.0
	if len(kinds) > 1 {
		influence = math.Min(cfg.InfluencePerChannel*float64(len(kinds)-1), cfg.InfluenceCap)
	}

	position := 0.0
	if c.fired(channel.DirectHolding) {
		position = c.holdingWeight * w.PositionK * cfg.PositionDamping
	}

	discovery := 0.0
	isHolding := c.held || c.fired(channel.DirectHolding)
	if !isHolding && (vector > w.DiscoveryTrigger || thematic > w.DiscoveryTrigger) {
		discovery = cfg.DiscoveryCap
	}

	final := w.Graph*graph + w.Vector*vector + w.Impact*impact + w.Recency*recency +
		influence + position + discovery

	reasons := make([]string, 0, len(kinds)+1)
	for _, k := range kinds {
		reasons = append(reasons, k.Tag())
	}
	if discovery > 0 {
		reasons = append(reasons, channel.DiscoveryTag)
	}

	return scored{
		doc:     c.doc,
		final:   final,
		reasons: reasons,
		breakdown: domrank.Breakdown{
			Graph:     graph,
			Vector:    vector,
			Thematic:  thematic,
			Impact:    impact,
			Recency:   recency,
			Influence: influence,
			Position:  position,
			Discovery: discovery,
		},
	}
}
