package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// Request parameter limits.
const (
	MinLimit           = 1
	MaxLimit           = 10
	DefaultLimit       = MaxLimit
	MinWindowHours     = 1
	MaxWindowHours     = 168
	DefaultWindowHours = 24
)

// Params carries raw ranking parameters as received from a caller.
type Params struct {
	ClientGUID  string
	Scope       access.Scope
	Limit       int
	WindowHours int
	Bias        float64
	// MinImpact overrides the profile's impact threshold when set.
	MinImpact *int
	// Tiers restricts eligible impact tiers. Nil means every tier.
	Tiers   []string
	Toggles channel.Toggles
}

// Request is a validated ranking request.
type Request struct {
	clientGUID string
	scope      access.Scope
	limit      int
	window     time.Duration
	bias       float64
	minImpact  *int
	tiers      map[document.Tier]struct{}
	toggles    channel.Toggles
}

// NewRequest validates ranking parameters. Every failure is a *domain.ConfigurationError.
func NewRequest(p Params) (Request, error) {
	clientGUID := strings.TrimSpace(p.ClientGUID)
	if clientGUID == "" {
		return Request{}, domain.NewConfigurationError("client_guid", "is required")
	}
	if p.Limit < MinLimit || p.Limit > MaxLimit {
		return Request{}, domain.NewConfigurationError("limit", "must be between %d and %d, got %d",
			MinLimit, MaxLimit, p.Limit)
	}
	if p.WindowHours < MinWindowHours || p.WindowHours > MaxWindowHours {
		return Request{}, domain.NewConfigurationError("time_window_hours", "must be between %d and %d, got %d",
			MinWindowHours, MaxWindowHours, p.WindowHours)
	}
	if err := ValidateBias(p.Bias); err != nil {
		return Request{}, err
	}

	var minImpact *int
	if p.MinImpact != nil {
		v := *p.MinImpact
		if v < 0 || v > document.MaxImpactScore {
			return Request{}, domain.NewConfigurationError("min_impact_score", "must be between 0 and %d, got %d",
				document.MaxImpactScore, v)
		}
		minImpact = &v
	}

	tiers, err := parseTiers(p.Tiers)
	if err != nil {
		return Request{}, err
	}

	return Request{
		clientGUID: clientGUID,
		scope:      p.Scope,
		limit:      p.Limit,
		window:     time.Duration(p.WindowHours) * time.Hour,
		bias:       p.Bias,
		minImpact:  minImpact,
		tiers:      tiers,
		toggles:    p.Toggles,
	}, nil
}

// ValidateBias rejects an opportunity bias outside [0,1] or NaN.
func ValidateBias(bias float64) error {
	if math.IsNaN(bias) || bias < 0 || bias > 1 {
		return domain.NewConfigurationError("opportunity_bias", "must be between 0 and 1, got %v", bias)
	}
	return nil
}

func parseTiers(names []string) (map[document.Tier]struct{}, error) {
	if names == nil {
		out := make(map[document.Tier]struct{}, len(document.AllTiers()))
		for _, t := range document.AllTiers() {
			out[t] = struct{}{}
		}
		return out, nil
	}
	if len(names) == 0 {
		return nil, domain.NewConfigurationError("impact_tiers", "must not be empty")
	}
	out := make(map[document.Tier]struct{}, len(names))
	for _, n := range names {
		t, err := document.ParseTier(n)
		if err != nil {
			return nil, domain.NewConfigurationError("impact_tiers", "%v", err)
		}
		out[t] = struct{}{}
	}
	return out, nil
}

// ClientGUID returns the client identifier.
func (r *Request) ClientGUID() string { return r.clientGUID }

// Scope returns the caller's permitted groups.
func (r *Request) Scope() access.Scope { return r.scope }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }

// Window returns the lookback window.
func (r *Request) Window() time.Duration { return r.window }

// Bias returns the opportunity bias λ.
func (r *Request) Bias() float64 { return r.bias }

// MinImpact returns the explicit impact floor, or the fallback when unset.
func (r *Request) MinImpact(fallback int) int {
	if r.minImpact == nil {
		return fallback
	}
	return *r.minImpact
}

// AllowsTier reports whether documents of tier t are requested.
func (r *Request) AllowsTier(t document.Tier) bool {
	_, ok := r.tiers[t]
	return ok
}

// Tiers returns the requested tiers highest first, or nil when every tier is allowed.
func (r *Request) Tiers() []document.Tier {
	all := document.AllTiers()
	if len(r.tiers) == len(all) {
		return nil
	}
	out := make([]document.Tier, 0, len(r.tiers))
	for _, t := range all {
		if _, ok := r.tiers[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Toggles returns the channel toggles.
func (r *Request) Toggles() channel.Toggles { return r.toggles }
