package profile

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeRow assigns values to Scan destinations positionally.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations, %d values", len(dest), len(r.values))
	}
	for i, v := range r.values {
		if v == nil {
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// mockQuerier implements the consumer interface for tests.
type mockQuerier struct {
	row      fakeRow
	lastSQL  string
	lastArgs []any
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.lastSQL = sql
	m.lastArgs = args
	return m.row
}

func newTestRepo(t *testing.T, row fakeRow) (*Repo, *mockQuerier) {
	t.Helper()
	mq := &mockQuerier{row: row}
	return New(mq), mq
}

func strPtr(s string) *string { return &s }

// profileValues returns one scanned row in profileQuery column order.
func profileValues() []any {
	return []any{
		"c1",
		strPtr("g1"),
		strPtr("SPY"),
		[]string{"defense"},
		[]float32{0.1, 0.2},
		int32(40),
		true,
		[]string{"TOBACCO"},
		[]string{"LMT", "RTX"},
		[]float64{0.3, 0.2},
		[]string{"NOC"},
	}
}
