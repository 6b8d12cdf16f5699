package document

import (
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	doc, err := New(Fields{
		GUID:        " doc-1 ",
		ImpactScore: 92,
		CreatedAt:   created,
		GroupGUID:   "g1",
		Instruments: []string{"lmt", "RTX", "LMT", ""},
		Themes:      []string{"Defense", "defense", "ai"},
		SourceTrust: 0.8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.GUID() != "doc-1" {
		t.Errorf("GUID() = %q", doc.GUID())
	}
	if doc.Tier() != TierPlatinum {
		t.Errorf("Tier() = %q, want derived PLATINUM", doc.Tier())
	}
	if !doc.CreatedAt().Equal(created) || doc.CreatedAt().Location() != time.UTC {
		t.Errorf("CreatedAt() = %v", doc.CreatedAt())
	}
	if got := doc.Instruments(); len(got) != 2 || got[0] != "LMT" || got[1] != "RTX" {
		t.Errorf("Instruments() = %v", got)
	}
	if got := doc.Themes(); len(got) != 2 || got[0] != "ai" || got[1] != "defense" {
		t.Errorf("Themes() = %v", got)
	}
	if doc.SourceTrust() != 0.8 {
		t.Errorf("SourceTrust() = %v", doc.SourceTrust())
	}
}

func TestNew_StoredTierWins(t *testing.T) {
	doc, err := New(Fields{GUID: "d", ImpactScore: 50, Tier: "gold"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Tier() != TierGold {
		t.Errorf("Tier() = %q, want GOLD", doc.Tier())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		f    Fields
	}{
		{"empty guid", Fields{GUID: "  ", ImpactScore: 10}},
		{"negative impact", Fields{GUID: "d", ImpactScore: -1}},
		{"impact above max", Fields{GUID: "d", ImpactScore: 101}},
		{"unknown tier", Fields{GUID: "d", ImpactScore: 10, Tier: "DIAMOND"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.f); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTierFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{100, TierPlatinum},
		{90, TierPlatinum},
		{89, TierGold},
		{75, TierGold},
		{74, TierSilver},
		{60, TierSilver},
		{59, TierBronze},
		{40, TierBronze},
		{39, TierStandard},
		{0, TierStandard},
	}
	for _, tt := range tests {
		if got := TierFromScore(tt.score); got != tt.want {
			t.Errorf("TierFromScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestTierFromScore_Monotone(t *testing.T) {
	rank := map[Tier]int{}
	for i, tier := range AllTiers() {
		rank[tier] = len(AllTiers()) - i
	}
	prev := rank[TierFromScore(0)]
	for s := 1; s <= MaxImpactScore; s++ {
		cur := rank[TierFromScore(s)]
		if cur < prev {
			t.Fatalf("tier dropped at score %d", s)
		}
		prev = cur
	}
}

func TestParseTier(t *testing.T) {
	if tier, err := ParseTier(" silver "); err != nil || tier != TierSilver {
		t.Errorf("ParseTier(silver) = %q, %v", tier, err)
	}
	if _, err := ParseTier("nope"); err == nil {
		t.Error("expected error for unknown tier")
	}
}
