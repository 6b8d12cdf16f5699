package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
	"github.com/kailas-cloud/newsrank/internal/logger"
	"github.com/kailas-cloud/newsrank/internal/metrics"
)

// Config tunes the ranking service.
type Config struct {
	VectorTopK     int
	ChannelTimeout time.Duration
	RequestTimeout time.Duration
	Weights        domrank.Weights
	Curves         Curves
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the request instant source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service ranks news for a client.
type Service struct {
	profiles       ProfileProvider
	docs           DocumentStore
	gen            *Generator
	resolver       *BiasResolver
	weights        domrank.Weights
	requestTimeout time.Duration
	now            func() time.Time
}

// New creates a ranking service. Weights and curves are validated here so a
// bad deployment fails at start-up rather than per request.
func New(
	profiles ProfileProvider, docs DocumentStore, rels RelationshipStore, vectors VectorStore,
	cfg Config, opts ...Option,
) (*Service, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	resolver, err := NewBiasResolver(cfg.Curves)
	if err != nil {
		return nil, err
	}
	s := &Service{
		profiles:       profiles,
		docs:           docs,
		gen:            NewGenerator(docs, rels, vectors, cfg.VectorTopK, cfg.ChannelTimeout),
		resolver:       resolver,
		weights:        cfg.Weights,
		requestTimeout: cfg.RequestTimeout,
		now:            time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Rank returns the top documents for the request's client.
// Profile and corpus failures are fatal; channel failures become warnings.
func (s *Service) Rank(ctx context.Context, req *domrank.Request) (resp domrank.Response, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRanking(time.Since(start), err) }()

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Rank")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	ctx = logger.With(ctx, zap.String("client_guid", req.ClientGUID()))
	span.SetAttributes(
		attribute.String("client_guid", req.ClientGUID()),
		attribute.Float64("opportunity_bias", req.Bias()),
		attribute.Int("limit", req.Limit()),
	)

	cfg, err := s.resolver.Resolve(req.Bias())
	if err != nil {
		return domrank.Response{}, err
	}

	asOf := s.now().UTC()
	since := asOf.Add(-req.Window())
	scope := req.Scope()

	profile, err := s.profiles.FetchProfile(ctx, req.ClientGUID())
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domrank.Response{}, err
		}
		return domrank.Response{}, fmt.Errorf("fetch profile: %w", err)
	}
	if !scope.Allows(profile.GroupGUID()) {
		return domrank.Response{}, domain.ErrProfileNotFound
	}

	corpus, err := s.docs.RecentDocuments(ctx, scope, since)
	if err != nil {
		return domrank.Response{}, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
	}

	criteria := Criteria{
		Scope:     scope,
		Since:     since,
		MinImpact: req.MinImpact(profile.ImpactThreshold()),
		AllowTier: req.AllowsTier,
	}
	eligibleDocs := Filter(corpus, criteria)
	if profile.ESGConstrained() {
		criteria.ESG = s.esgPolicy(ctx, &profile, eligibleDocs)
		eligibleDocs = Filter(eligibleDocs, criteria)
	}
	eligible := newEligibleSet(eligibleDocs)

	outputs := s.gen.Generate(ctx, channelQuery{
		profile:  &profile,
		eligible: eligible,
		cfg:      cfg,
		scope:    scope,
		since:    since,

		minImpact: criteria.MinImpact,
		tiers:     req.Tiers(),
		esg:       profile.ESGConstrained(),
	}, req.Toggles())

	log := logger.FromContext(ctx)
	for _, o := range outputs {
		if o.err != nil {
			log.Warn("Channel unavailable",
				zap.String("channel", o.kind.Tag()),
				zap.Error(o.err),
			)
		}
	}

	candidates := merge(outputs, eligible)
	markHeld(candidates, &profile)
	items := make([]scored, 0, len(candidates))
	for i := range candidates {
		items = append(items, score(&candidates[i], cfg, s.weights, asOf))
	}

	results, err := rank(items, req.Limit())
	if err != nil {
		return domrank.Response{}, err
	}

	log.Debug("Ranking completed",
		zap.Float64("opportunity_bias", req.Bias()),
		zap.Int("corpus", len(corpus)),
		zap.Int("eligible", eligible.len()),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)

	return domrank.Response{
		Results:  results,
		Warnings: warningsFrom(outputs),
		Bias:     req.Bias(),
		AsOf:     asOf,
	}, nil
}

// esgPolicy classifies the instruments of docs. A failed lookup yields an
// empty classification, which excludes every document that names an instrument.
func (s *Service) esgPolicy(ctx context.Context, p *client.Profile, docs []document.Document) *ESGPolicy {
	seen := make(map[string]struct{})
	var tickers []string
	for i := range docs {
		for _, t := range docs[i].Instruments() {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tickers = append(tickers, t)
			}
		}
	}

	industries := map[string]string{}
	if len(tickers) > 0 {
		got, err := s.docs.InstrumentIndustries(ctx, tickers)
		if err != nil {
			logger.FromContext(ctx).Warn("Instrument classification failed, excluding documents with instruments",
				zap.Int("tickers", len(tickers)),
				zap.Error(err),
			)
		} else {
			industries = got
		}
	}
	return &ESGPolicy{Industries: industries, Excludes: p.Excludes}
}
