package ranking

import (
	"testing"
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

func baseCriteria() Criteria {
	return Criteria{
		Scope:     access.NewScope([]string{"g1"}),
		Since:     testNow.Add(-24 * time.Hour),
		MinImpact: 30,
	}
}

func TestFilter(t *testing.T) {
	noGroup, err := document.New(document.Fields{GUID: "no-group", ImpactScore: 80, CreatedAt: testNow})
	if err != nil {
		t.Fatal(err)
	}
	noTime, err := document.New(document.Fields{GUID: "no-time", ImpactScore: 80, GroupGUID: "g1"})
	if err != nil {
		t.Fatal(err)
	}

	docs := []document.Document{
		mustDoc(t, document.Fields{GUID: "ok", ImpactScore: 80}),
		mustDoc(t, document.Fields{GUID: "other-group", ImpactScore: 80, GroupGUID: "g2"}),
		noGroup,
		noTime,
		mustDoc(t, document.Fields{GUID: "too-old", ImpactScore: 80, CreatedAt: testNow.Add(-25 * time.Hour)}),
		mustDoc(t, document.Fields{GUID: "edge", ImpactScore: 30, CreatedAt: testNow.Add(-24 * time.Hour)}),
		mustDoc(t, document.Fields{GUID: "low-impact", ImpactScore: 29}),
	}

	got := Filter(docs, baseCriteria())
	want := []string{"ok", "edge"}
	if len(got) != len(want) {
		t.Fatalf("Filter() kept %d docs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].GUID() != want[i] {
			t.Errorf("Filter()[%d] = %q, want %q", i, got[i].GUID(), want[i])
		}
	}
}

func TestFilter_Tiers(t *testing.T) {
	docs := []document.Document{
		mustDoc(t, document.Fields{GUID: "platinum", ImpactScore: 95}),
		mustDoc(t, document.Fields{GUID: "silver", ImpactScore: 65}),
	}
	c := baseCriteria()
	c.AllowTier = func(tier document.Tier) bool { return tier == document.TierPlatinum }

	got := Filter(docs, c)
	if len(got) != 1 || got[0].GUID() != "platinum" {
		t.Errorf("Filter() = %v", got)
	}
}

func TestFilter_EmptyScopeDropsEverything(t *testing.T) {
	docs := []document.Document{mustDoc(t, document.Fields{GUID: "d", ImpactScore: 80})}
	c := baseCriteria()
	c.Scope = access.Scope{}
	if got := Filter(docs, c); len(got) != 0 {
		t.Errorf("Filter() = %d docs, want 0", len(got))
	}
}

func TestFilter_ESG(t *testing.T) {
	docs := []document.Document{
		mustDoc(t, document.Fields{GUID: "tobacco", ImpactScore: 80, Instruments: []string{"MO"}}),
		mustDoc(t, document.Fields{GUID: "mixed", ImpactScore: 80, Instruments: []string{"LMT", "PM"}}),
		mustDoc(t, document.Fields{GUID: "defense", ImpactScore: 80, Instruments: []string{"LMT"}}),
		mustDoc(t, document.Fields{GUID: "unclassified", ImpactScore: 80, Instruments: []string{"ZZZ"}}),
		mustDoc(t, document.Fields{GUID: "macro", ImpactScore: 80}),
	}
	c := baseCriteria()
	c.ESG = &ESGPolicy{
		Industries: map[string]string{"MO": "TOBACCO", "PM": "TOBACCO", "LMT": "AEROSPACE"},
		Excludes:   func(ind string) bool { return ind == "TOBACCO" },
	}

	got := Filter(docs, c)
	kept := map[string]bool{}
	for _, d := range got {
		kept[d.GUID()] = true
	}
	for _, guid := range []string{"tobacco", "mixed", "unclassified"} {
		if kept[guid] {
			t.Errorf("%s must be excluded", guid)
		}
	}
	for _, guid := range []string{"defense", "macro"} {
		if !kept[guid] {
			t.Errorf("%s must be kept", guid)
		}
	}
}
