package profilecache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrank/internal/db"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
)

type mockProvider struct {
	profile client.Profile
	err     error
	calls   int
}

func (m *mockProvider) FetchProfile(_ context.Context, _ string) (client.Profile, error) {
	m.calls++
	return m.profile, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn   func(ctx context.Context, key string) ([]byte, error)
	setFn   func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	deleted []string
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestProvider(t *testing.T, inner *mockProvider, ttl time.Duration) (*CachedProvider, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, ttl, nil, zap.NewNop()), ms
}

func mustProfile(t *testing.T) client.Profile {
	t.Helper()
	p, err := client.New(client.Fields{
		ClientGUID:         "c1",
		GroupGUID:          "g1",
		Holdings:           map[string]float64{"LMT": 0.5},
		Watchlist:          []string{"NOC"},
		Benchmark:          "SPY",
		MandateThemes:      []string{"defense"},
		MandateEmbedding:   []float32{0.25, 0.5},
		ImpactThreshold:    30,
		ESGConstrained:     true,
		ExcludedIndustries: []string{"TOBACCO"},
	})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return p
}
