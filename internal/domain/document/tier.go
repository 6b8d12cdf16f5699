package document

import (
	"fmt"
	"strings"
)

// Tier is the categorical impact bucket derived from the impact score.
type Tier string

// Impact tiers, highest first.
const (
	TierPlatinum Tier = "PLATINUM"
	TierGold     Tier = "GOLD"
	TierSilver   Tier = "SILVER"
	TierBronze   Tier = "BRONZE"
	TierStandard Tier = "STANDARD"
)

// Lower score bounds for each tier.
const (
	platinumFloor = 90
	goldFloor     = 75
	silverFloor   = 60
	bronzeFloor   = 40
)

// AllTiers returns every tier, highest first.
func AllTiers() []Tier {
	return []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierStandard}
}

// TierFromScore maps an impact score onto its tier. The mapping is monotone.
func TierFromScore(score int) Tier {
	switch {
	case score >= platinumFloor:
		return TierPlatinum
	case score >= goldFloor:
		return TierGold
	case score >= silverFloor:
		return TierSilver
	case score >= bronzeFloor:
		return TierBronze
	default:
		return TierStandard
	}
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown impact tier %q", s)
	}
	return t, nil
}

// IsValid reports whether the tier is one of the five known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierPlatinum, TierGold, TierSilver, TierBronze, TierStandard:
		return true
	}
	return false
}
