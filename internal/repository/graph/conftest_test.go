package graph

import (
	"context"
	"testing"
)

// mockReader implements the consumer interface for tests.
type mockReader struct {
	readFn func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	calls  int
}

func (m *mockReader) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	m.calls++
	if m.readFn != nil {
		return m.readFn(ctx, cypher, params)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockReader) {
	t.Helper()
	mr := &mockReader{}
	return New(mr), mr
}

func docRow(guid, group string, impact int64, createdAt int64, tickers ...string) map[string]any {
	instruments := make([]any, len(tickers))
	for i, tk := range tickers {
		instruments[i] = tk
	}
	return map[string]any{
		"guid":         guid,
		"impact_score": impact,
		"tier":         nil,
		"created_at":   createdAt,
		"group_guid":   group,
		"source_trust": 0.8,
		"themes":       []any{"Defense"},
		"instruments":  instruments,
	}
}
