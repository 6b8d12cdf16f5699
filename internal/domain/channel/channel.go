package channel

import "fmt"

// Kind identifies a candidate-generation channel.
type Kind int

// Channel kinds in canonical reason order.
const (
	DirectHolding Kind = iota
	Watchlist
	RelationshipHop
	Thematic
	Vector
)

// DiscoveryTag is the reason tag appended when a discovery boost applies.
const DiscoveryTag = "DISCOVERY"

// All returns every channel kind in canonical order.
func All() []Kind {
	return []Kind{DirectHolding, Watchlist, RelationshipHop, Thematic, Vector}
}

// Tag returns the reason tag of the channel.
func (k Kind) Tag() string {
	switch k {
	case DirectHolding:
		return "DIRECT_HOLDING"
	case Watchlist:
		return "WATCHLIST"
	case RelationshipHop:
		return "RELATIONSHIP_HOP"
	case Thematic:
		return "THEMATIC"
	case Vector:
		return "VECTOR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string { return k.Tag() }

// IsValid reports whether k is a known channel kind.
func (k Kind) IsValid() bool { return k >= DirectHolding && k <= Vector }

// HopType is a relationship edge type between instruments.
type HopType string

// Relationship hop types.
const (
	HopCompetitor  HopType = "competitor"
	HopSupplyChain HopType = "supply_chain"
	HopPeer        HopType = "peer"
)

// AllHopTypes returns every hop type.
func AllHopTypes() []HopType {
	return []HopType{HopCompetitor, HopSupplyChain, HopPeer}
}

// IsValid reports whether h is a known hop type.
func (h HopType) IsValid() bool {
	switch h {
	case HopCompetitor, HopSupplyChain, HopPeer:
		return true
	}
	return false
}

// Toggles enables or disables the optional channels for a request.
// Vector and thematic are not toggleable.
type Toggles struct {
	Holdings         bool
	Watchlist        bool
	RelationshipHops bool
}

// AllEnabled returns toggles with every optional channel on.
func AllEnabled() Toggles {
	return Toggles{Holdings: true, Watchlist: true, RelationshipHops: true}
}

// Enabled reports whether the toggles allow a channel to run.
func (t Toggles) Enabled(k Kind) bool {
	switch k {
	case DirectHolding:
		return t.Holdings
	case Watchlist:
		return t.Watchlist
	case RelationshipHop:
		return t.RelationshipHops
	default:
		return true
	}
}

// Hop is an instrument reached from a seed ticker over one relationship edge.
type Hop struct {
	Ticker string
	Type   HopType
}
