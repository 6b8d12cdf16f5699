package chi

import (
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
	lookupuc "github.com/kailas-cloud/newsrank/internal/usecase/lookup"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeUnauthorized      = "unauthorized"
	codeProfileNotFound   = "profile_not_found"
	codeDocumentNotFound  = "document_not_found"
	codeCorpusUnavailable = "corpus_unavailable"
	codeRequestTimeout    = "request_timeout"
	codeInternalError     = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RankRequest is the body of POST /v1/rank.
type RankRequest struct {
	ClientGUID      string         `json:"client_guid"`
	Limit           *int           `json:"limit,omitempty"`
	TimeWindowHours *int           `json:"time_window_hours,omitempty"`
	OpportunityBias *float64       `json:"opportunity_bias,omitempty"`
	MinImpactScore  *int           `json:"min_impact_score,omitempty"`
	ImpactTiers     []string       `json:"impact_tiers,omitempty"`
	Channels        *ChannelToggle `json:"channels,omitempty"`
}

// ChannelToggle switches the optional channels. Omitted fields stay enabled.
type ChannelToggle struct {
	Holdings         *bool `json:"holdings,omitempty"`
	Watchlist        *bool `json:"watchlist,omitempty"`
	RelationshipHops *bool `json:"relationship_hops,omitempty"`
}

// RankResponse is the body of a successful ranking.
type RankResponse struct {
	Results         []RankedItem  `json:"results"`
	Warnings        []WarningItem `json:"warnings,omitempty"`
	OpportunityBias float64       `json:"opportunity_bias"`
	AsOf            time.Time     `json:"as_of"`
}

// RankedItem is one ranked document.
type RankedItem struct {
	DocumentGUID string            `json:"document_guid"`
	FinalScore   float64           `json:"final_score"`
	Reasons      []string          `json:"reasons"`
	Rank         int               `json:"rank"`
	CreatedAt    time.Time         `json:"created_at"`
	Breakdown    domrank.Breakdown `json:"breakdown"`
}

// WarningItem reports a degraded channel.
type WarningItem struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// DocumentResponse is the body of GET /v1/documents/{guid}.
type DocumentResponse struct {
	GUID        string    `json:"guid"`
	ImpactScore int       `json:"impact_score"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
	GroupGUID   string    `json:"group_guid"`
	Instruments []string  `json:"instruments"`
	Themes      []string  `json:"themes"`
	SourceTrust float64   `json:"source_trust"`
}

// HoldingsResponse is the body of GET /v1/clients/{guid}/holdings.
type HoldingsResponse struct {
	ClientGUID string             `json:"client_guid"`
	Holdings   []lookupuc.Holding `json:"holdings"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func rankParamsFromRequest(req RankRequest, scope access.Scope) domrank.Params {
	p := domrank.Params{
		ClientGUID:  req.ClientGUID,
		Scope:       scope,
		Limit:       domrank.DefaultLimit,
		WindowHours: domrank.DefaultWindowHours,
		MinImpact:   req.MinImpactScore,
		Tiers:       req.ImpactTiers,
		Toggles:     channel.AllEnabled(),
	}
	if req.Limit != nil {
		p.Limit = *req.Limit
	}
	if req.TimeWindowHours != nil {
		p.WindowHours = *req.TimeWindowHours
	}
	if req.OpportunityBias != nil {
		p.Bias = *req.OpportunityBias
	}
	if c := req.Channels; c != nil {
		p.Toggles.Holdings = derefBool(c.Holdings, true)
		p.Toggles.Watchlist = derefBool(c.Watchlist, true)
		p.Toggles.RelationshipHops = derefBool(c.RelationshipHops, true)
	}
	return p
}

func rankResponseFromDomain(resp domrank.Response) RankResponse {
	out := RankResponse{
		Results:         make([]RankedItem, len(resp.Results)),
		OpportunityBias: resp.Bias,
		AsOf:            resp.AsOf,
	}
	for i, r := range resp.Results {
		out.Results[i] = RankedItem{
			DocumentGUID: r.DocumentGUID,
			FinalScore:   r.FinalScore,
			Reasons:      r.Reasons,
			Rank:         r.Rank,
			CreatedAt:    r.CreatedAt,
			Breakdown:    r.Breakdown,
		}
	}
	for _, w := range resp.Warnings {
		out.Warnings = append(out.Warnings, WarningItem{Channel: w.Channel, Message: w.Message})
	}
	return out
}

func documentToResponse(d document.Document) DocumentResponse {
	return DocumentResponse{
		GUID:        d.GUID(),
		ImpactScore: d.ImpactScore(),
		Tier:        string(d.Tier()),
		CreatedAt:   d.CreatedAt(),
		GroupGUID:   d.GroupGUID(),
		Instruments: d.Instruments(),
		Themes:      d.Themes(),
		SourceTrust: d.SourceTrust(),
	}
}

func derefBool(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
