package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	"github.com/kailas-cloud/newsrank/internal/domain/filter"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
	"github.com/kailas-cloud/newsrank/internal/metrics"
)

const tracerName = "github.com/kailas-cloud/newsrank/internal/usecase/ranking"

// DefaultVectorTopK is the nearest-neighbor fan-out when none is configured.
const DefaultVectorTopK = 100

// esgOversample widens the nearest-neighbor fan-out for ESG-constrained clients,
// whose industry exclusions cannot be expressed in the index pre-filter.
const esgOversample = 3

// Vector index fields carrying eligibility metadata.
const (
	fieldImpactScore = "impact_score"
	fieldTier        = "tier"
)

// hit is one channel's opinion about one document.
type hit struct {
	guid          string
	kind          channel.Kind
	score         float64
	holdingWeight float64
}

// channelOutput is the result of a single channel run.
type channelOutput struct {
	kind channel.Kind
	hits []hit
	err  error
}

// eligibleSet is the post-filter corpus, indexed by guid.
type eligibleSet struct {
	docs   []document.Document
	byGUID map[string]int
}

func newEligibleSet(docs []document.Document) *eligibleSet {
	sorted := make([]document.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GUID() < sorted[j].GUID() })

	idx := make(map[string]int, len(sorted))
	for i := range sorted {
		idx[sorted[i].GUID()] = i
	}
	return &eligibleSet{docs: sorted, byGUID: idx}
}

func (e *eligibleSet) get(guid string) (*document.Document, bool) {
	i, ok := e.byGUID[guid]
	if !ok {
		return nil, false
	}
	return &e.docs[i], true
}

func (e *eligibleSet) len() int { return len(e.docs) }

// channelQuery is the uniform input every channel receives.
type channelQuery struct {
	profile  *client.Profile
	eligible *eligibleSet
	cfg      domrank.ScoringConfig
	scope    access.Scope
	since    time.Time

	// minImpact and tiers mirror the eligibility criteria so the vector
	// pre-filter does not spend k on documents the access filter dropped.
	// Nil tiers means every tier.
	minImpact int
	tiers     []document.Tier
	esg       bool
}

// Generator runs candidate channels concurrently.
type Generator struct {
	docs       DocumentStore
	rels       RelationshipStore
	vectors    VectorStore
	vectorTopK int
	timeout    time.Duration
	tracer     trace.Tracer
}

// NewGenerator creates a channel generator. A zero timeout means channels
// only inherit the request deadline.
func NewGenerator(
	docs DocumentStore, rels RelationshipStore, vectors VectorStore,
	vectorTopK int, timeout time.Duration,
) *Generator {
	if vectorTopK <= 0 {
		vectorTopK = DefaultVectorTopK
	}
	return &Generator{
		docs:       docs,
		rels:       rels,
		vectors:    vectors,
		vectorTopK: vectorTopK,
		timeout:    timeout,
		tracer:     otel.Tracer(tracerName),
	}
}

// Generate runs every enabled channel and waits for all of them.
// Outputs come back in canonical channel order; failed channels carry a
// *domain.ChannelUnavailableError and no hits.
func (g *Generator) Generate(ctx context.Context, q channelQuery, toggles channel.Toggles) []channelOutput {
	kinds := channel.All()
	outputs := make([]channelOutput, len(kinds))

	var eg errgroup.Group
	for i, kind := range kinds {
		outputs[i].kind = kind
		if !toggles.Enabled(kind) {
			continue
		}
		eg.Go(func() error {
			hits, err := g.runBounded(ctx, kind, q)
			if err != nil {
				outputs[i].err = &domain.ChannelUnavailableError{Channel: kind.Tag(), Err: err}
				return nil
			}
			outputs[i].hits = hits
			return nil
		})
	}
	_ = eg.Wait() // channel failures are carried in outputs

	return outputs
}

// runBounded returns when the channel finishes or its deadline passes,
// whichever comes first, so a store that ignores ctx cannot hold the request.
// A late channel keeps running in the background and its result is dropped.
func (g *Generator) runBounded(ctx context.Context, kind channel.Kind, q channelQuery) ([]hit, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		hits []hit
		err  error
	}
	done := make(chan result, 1)
	go func() {
		hits, err := g.run(ctx, kind, q)
		done <- result{hits: hits, err: err}
	}()

	select {
	case r := <-done:
		return r.hits, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Generator) run(ctx context.Context, kind channel.Kind, q channelQuery) ([]hit, error) {
	ctx, span := g.tracer.Start(ctx, "channel "+kind.Tag(),
		trace.WithAttributes(attribute.String("channel", kind.Tag())))
	defer span.End()

	start := time.Now()
	hits, err := g.query(ctx, kind, q)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	metrics.ObserveChannel(kind.Tag(), time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

func (g *Generator) query(ctx context.Context, kind channel.Kind, q channelQuery) ([]hit, error) {
	switch kind {
	case channel.DirectHolding:
		return directHoldingHits(q), nil
	case channel.Watchlist:
		return watchlistHits(q), nil
	case channel.Thematic:
		return thematicHits(q), nil
	case channel.Vector:
		return g.vectorHits(ctx, q)
	case channel.RelationshipHop:
		return g.relationshipHits(ctx, q)
	default:
		return nil, fmt.Errorf("unknown channel kind %d", int(kind))
	}
}

func directHoldingHits(q channelQuery) []hit {
	var hits []hit
	for i := range q.eligible.docs {
		d := &q.eligible.docs[i]
		best, matched := 0.0, false
		for _, t := range d.Instruments() {
			if w, ok := q.profile.HoldingWeight(t); ok {
				matched = true
				if w > best {
					best = w
				}
			}
		}
		if matched {
			hits = append(hits, hit{
				guid: d.GUID(), kind: channel.DirectHolding,
				score: q.cfg.DirectHoldingBase, holdingWeight: best,
			})
		}
	}
	return hits
}

func watchlistHits(q channelQuery) []hit {
	var hits []hit
	for i := range q.eligible.docs {
		d := &q.eligible.docs[i]
		for _, t := range d.Instruments() {
			if q.profile.IsWatched(t) {
				hits = append(hits, hit{guid: d.GUID(), kind: channel.Watchlist, score: q.cfg.WatchlistBase})
				break
			}
		}
	}
	return hits
}

func thematicHits(q channelQuery) []hit {
	var hits []hit
	for i := range q.eligible.docs {
		d := &q.eligible.docs[i]
		for _, theme := range d.Themes() {
			if q.profile.HasTheme(theme) {
				hits = append(hits, hit{guid: d.GUID(), kind: channel.Thematic, score: q.cfg.ThematicBase})
				break
			}
		}
	}
	return hits
}

// vectorHits is skipped (no hits, no error) when the channel is inactive for
// this bias or the client has no mandate embedding.
func (g *Generator) vectorHits(ctx context.Context, q channelQuery) ([]hit, error) {
	emb := q.profile.MandateEmbedding()
	if !q.cfg.VectorActive || len(emb) == 0 || q.eligible.len() == 0 {
		return nil, nil
	}
	f, err := vectorFilter(q)
	if err != nil {
		return nil, fmt.Errorf("vector filter: %w", err)
	}
	k := g.vectorTopK
	if q.esg {
		k *= esgOversample
	}
	matches, err := g.vectors.NearestNeighbors(ctx, emb, k, f)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}

	hits := make([]hit, 0, len(matches))
	for _, m := range matches {
		if _, ok := q.eligible.get(m.GUID); !ok {
			continue
		}
		hits = append(hits, hit{
			guid: m.GUID, kind: channel.Vector,
			score: q.cfg.VectorBase * clamp01(m.Similarity),
		})
	}
	return hits, nil
}

// vectorFilter narrows the scope pre-filter to the impact floor and requested tiers.
func vectorFilter(q channelQuery) (filter.Expression, error) {
	base, err := q.scope.VectorFilter(q.since)
	if err != nil {
		return filter.Expression{}, err
	}
	conds := append([]filter.Condition(nil), base.Conditions()...)
	if q.minImpact > 0 {
		c, err := filter.NewRange(fieldImpactScore, filter.AtLeast(float64(q.minImpact)))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("impact condition: %w", err)
		}
		conds = append(conds, c)
	}
	if len(q.tiers) > 0 {
		names := make([]string, len(q.tiers))
		for i, t := range q.tiers {
			names[i] = string(t)
		}
		c, err := filter.NewMatchAny(fieldTier, names)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("tier condition: %w", err)
		}
		conds = append(conds, c)
	}
	return filter.NewExpression(conds...)
}

// relationshipHits walks one hop out from held and watched tickers.
// Tickers that are themselves seeds are not hop targets.
func (g *Generator) relationshipHits(ctx context.Context, q channelQuery) ([]hit, error) {
	seeds := q.profile.SeedTickers()
	hopTypes := q.cfg.HopTypes()
	if len(seeds) == 0 || len(hopTypes) == 0 || q.eligible.len() == 0 {
		return nil, nil
	}

	hops, err := g.rels.TraverseRelationshipHops(ctx, seeds, hopTypes)
	if err != nil {
		return nil, fmt.Errorf("traverse relationship hops: %w", err)
	}

	seedSet := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		seedSet[s] = struct{}{}
	}
	best := make(map[string]float64)
	for _, h := range hops {
		t := document.NormalizeTicker(h.Ticker)
		if _, isSeed := seedSet[t]; isSeed || t == "" {
			continue
		}
		if base := q.cfg.HopBase(h.Type); base > best[t] {
			best[t] = base
		}
	}
	if len(best) == 0 {
		return nil, nil
	}

	targets := make([]string, 0, len(best))
	for t := range best {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	docs, err := g.docs.FetchDocumentsAffecting(ctx, targets, q.scope, q.since)
	if err != nil {
		return nil, fmt.Errorf("fetch documents affecting: %w", err)
	}

	var hits []hit
	for i := range docs {
		d, ok := q.eligible.get(docs[i].GUID())
		if !ok {
			continue
		}
		score := 0.0
		for _, t := range d.Instruments() {
			if s := best[t]; s > score {
				score = s
			}
		}
		if score > 0 {
			hits = append(hits, hit{guid: d.GUID(), kind: channel.RelationshipHop, score: score})
		}
	}
	return hits, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// warningsFrom converts failed channel outputs into response warnings.
func warningsFrom(outputs []channelOutput) []domrank.Warning {
	var out []domrank.Warning
	for _, o := range outputs {
		if o.err == nil {
			continue
		}
		msg := "channel unavailable"
		if errors.Is(o.err, context.DeadlineExceeded) {
			msg = "channel timed out"
		}
		out = append(out, domrank.Warning{Channel: o.kind.Tag(), Message: msg})
	}
	return out
}
