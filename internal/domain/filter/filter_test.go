package filter

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestNewRangeFilter_Valid(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
	}{
		{"gt only", floatPtr(1), nil, nil, nil},
		{"gte only", nil, floatPtr(0), nil, nil},
		{"lt only", nil, nil, floatPtr(10), nil},
		{"gte+lte", nil, floatPtr(0), nil, floatPtr(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRangeFilter(tt.gt, tt.gte, tt.lt, tt.lte)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.GT() == nil) != (tt.gt == nil) || (r.GTE() == nil) != (tt.gte == nil) {
				t.Error("lower bound mismatch")
			}
			if (r.LT() == nil) != (tt.lt == nil) || (r.LTE() == nil) != (tt.lte == nil) {
				t.Error("upper bound mismatch")
			}
		})
	}
}

func TestNewRangeFilter_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
		wantErr          string
	}{
		{"no boundary", nil, nil, nil, nil, "at least one"},
		{"gt and gte", floatPtr(1), floatPtr(1), nil, nil, "gt and gte"},
		{"lt and lte", nil, nil, floatPtr(1), floatPtr(1), "lt and lte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRangeFilter(tt.gt, tt.gte, tt.lt, tt.lte)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q", err)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	r := AtLeast(5)
	if r.GTE() == nil || *r.GTE() != 5 {
		t.Errorf("GTE() = %v", r.GTE())
	}
	if r.GT() != nil || r.LT() != nil || r.LTE() != nil {
		t.Error("unexpected extra bounds")
	}
}

func TestNewMatchAny_SortsAndDedups(t *testing.T) {
	c, err := NewMatchAny("group_guid", []string{"g2", "g1", "g2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.Values()
	if len(got) != 2 || got[0] != "g1" || got[1] != "g2" {
		t.Errorf("Values() = %v", got)
	}
	if !c.IsMatch() || c.IsRange() {
		t.Error("expected a tag condition")
	}
}

func TestNewMatchAny_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		values []string
	}{
		{"empty key", "", []string{"a"}},
		{"no values", "k", nil},
		{"empty value", "k", []string{"a", ""}},
		{"too many values", "k", make([]string, MaxTagValues+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMatchAny(tt.key, tt.values); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewMatch_Single(t *testing.T) {
	c, err := NewMatch("lang", "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Key() != "lang" || len(c.Values()) != 1 || c.Values()[0] != "go" {
		t.Errorf("condition = %+v", c)
	}
}

func TestNewRange_Valid(t *testing.T) {
	c, err := NewRange("created_at", AtLeast(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsRange() || c.IsMatch() || c.Range() == nil {
		t.Error("expected a range condition")
	}
	if _, err := NewRange("", AtLeast(0)); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestNewExpression(t *testing.T) {
	m, _ := NewMatch("a", "1")
	expr, err := NewExpression(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.IsEmpty() || len(expr.Conditions()) != 1 {
		t.Errorf("Conditions() = %v", expr.Conditions())
	}

	empty, _ := NewExpression()
	if !empty.IsEmpty() {
		t.Error("IsEmpty() = false for empty expression")
	}

	conds := make([]Condition, MaxConditions+1)
	if _, err := NewExpression(conds...); err == nil {
		t.Error("expected error for too many conditions")
	}
}
