package ranking

import (
	"context"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	"github.com/kailas-cloud/newsrank/internal/domain/filter"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
)

// testNow is the fixed request instant used across tests.
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockDocs struct {
	docs          []document.Document
	recentErr     error
	affectingErr  error
	industries    map[string]string
	industriesErr error

	mu             sync.Mutex
	recentCalled   bool
	affectingCalls [][]string
}

func (m *mockDocs) RecentDocuments(_ context.Context, scope access.Scope, since time.Time) ([]document.Document, error) {
	m.mu.Lock()
	m.recentCalled = true
	m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []document.Document
	for _, d := range m.docs {
		if scope.Allows(d.GroupGUID()) && !d.CreatedAt().Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocs) FetchDocumentsAffecting(
	_ context.Context, tickers []string, scope access.Scope, since time.Time,
) ([]document.Document, error) {
	m.mu.Lock()
	m.affectingCalls = append(m.affectingCalls, tickers)
	m.mu.Unlock()
	if m.affectingErr != nil {
		return nil, m.affectingErr
	}
	want := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		want[t] = struct{}{}
	}
	var out []document.Document
	for _, d := range m.docs {
		if !scope.Allows(d.GroupGUID()) || d.CreatedAt().Before(since) {
			continue
		}
		for _, t := range d.Instruments() {
			if _, ok := want[t]; ok {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (m *mockDocs) InstrumentIndustries(_ context.Context, tickers []string) (map[string]string, error) {
	if m.industriesErr != nil {
		return nil, m.industriesErr
	}
	out := make(map[string]string, len(tickers))
	for _, t := range tickers {
		if ind, ok := m.industries[t]; ok {
			out[t] = ind
		}
	}
	return out, nil
}

type mockRels struct {
	hops []channel.Hop
	err  error
}

func (m *mockRels) TraverseRelationshipHops(
	_ context.Context, _ []string, _ []channel.HopType,
) ([]channel.Hop, error) {
	return m.hops, m.err
}

type mockVectors struct {
	// byKey maps the first embedding component to matches.
	byKey   map[float32][]VectorMatch
	matches []VectorMatch
	err     error
	delay   time.Duration
	// block, when set, stalls the call until closed regardless of ctx.
	block   chan struct{}

	mu         sync.Mutex
	calls      int
	lastK      int
	lastFilter filter.Expression
}

func (m *mockVectors) NearestNeighbors(
	ctx context.Context, emb []float32, k int, f filter.Expression,
) ([]VectorMatch, error) {
	m.mu.Lock()
	m.calls++
	m.lastK = k
	m.lastFilter = f
	m.mu.Unlock()
	if m.block != nil {
		<-m.block
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.byKey != nil && len(emb) > 0 {
		return m.byKey[emb[0]], nil
	}
	return m.matches, nil
}

type mockProfiles struct {
	profiles map[string]client.Profile
	err      error
}

func (m *mockProfiles) FetchProfile(_ context.Context, guid string) (client.Profile, error) {
	if m.err != nil {
		return client.Profile{}, m.err
	}
	p, ok := m.profiles[guid]
	if !ok {
		return client.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

// --- Builders ---

func mustDoc(t *testing.T, f document.Fields) document.Document {
	t.Helper()
	if f.GroupGUID == "" {
		f.GroupGUID = "g1"
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = testNow.Add(-2 * time.Hour)
	}
	d, err := document.New(f)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return d
}

func mustProfile(t *testing.T, f client.Fields) client.Profile {
	t.Helper()
	if f.GroupGUID == "" {
		f.GroupGUID = "g1"
	}
	p, err := client.New(f)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return p
}

func mustResolve(t *testing.T, lambda float64) domrank.ScoringConfig {
	t.Helper()
	r, err := NewBiasResolver(DefaultCurves())
	if err != nil {
		t.Fatalf("NewBiasResolver: %v", err)
	}
	cfg, err := r.Resolve(lambda)
	if err != nil {
		t.Fatalf("Resolve(%v): %v", lambda, err)
	}
	return cfg
}

func mustRequest(t *testing.T, p domrank.Params) *domrank.Request {
	t.Helper()
	if p.ClientGUID == "" {
		p.ClientGUID = "c1"
	}
	if p.Limit == 0 {
		p.Limit = domrank.MaxLimit
	}
	if p.WindowHours == 0 {
		p.WindowHours = 24
	}
	if p.Scope.IsEmpty() {
		p.Scope = access.NewScope([]string{"g1"})
	}
	req, err := domrank.NewRequest(p)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return &req
}

func defaultConfig() Config {
	return Config{
		VectorTopK:     50,
		ChannelTimeout: time.Second,
		Weights:        domrank.DefaultWeights(),
		Curves:         DefaultCurves(),
	}
}

func newTestService(
	t *testing.T, profiles ProfileProvider, docs DocumentStore, rels RelationshipStore, vectors VectorStore,
) *Service {
	t.Helper()
	svc, err := New(profiles, docs, rels, vectors, defaultConfig(), WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func resultGUIDs(rs []domrank.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.DocumentGUID
	}
	return out
}

// indexedVectors behaves like the search index: it applies tag and numeric
// pre-filters over stored metadata and returns at most k matches, best first.
type indexedVectors struct {
	entries []indexedEntry
}

type indexedEntry struct {
	doc        document.Document
	similarity float64
}

func (m *indexedVectors) NearestNeighbors(
	_ context.Context, _ []float32, k int, f filter.Expression,
) ([]VectorMatch, error) {
	var out []VectorMatch
	for _, e := range m.entries {
		if indexMatches(&e.doc, f) {
			out = append(out, VectorMatch{GUID: e.doc.GUID(), Similarity: e.similarity})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func indexMatches(d *document.Document, f filter.Expression) bool {
	for _, c := range f.Conditions() {
		var tag string
		var num float64
		switch c.Key() {
		case access.FieldGroup:
			tag = d.GroupGUID()
		case fieldTier:
			tag = string(d.Tier())
		case access.FieldCreatedAt:
			num = float64(d.CreatedAt().Unix())
		case fieldImpactScore:
			num = float64(d.ImpactScore())
		default:
			return false
		}
		if c.IsMatch() && !slices.Contains(c.Values(), tag) {
			return false
		}
		if c.IsRange() {
			if lo := c.Range().GTE(); lo != nil && num < *lo {
				return false
			}
		}
	}
	return true
}
