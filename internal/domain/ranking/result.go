package ranking

import "time"

// Breakdown holds the components that summed to a final score.
type Breakdown struct {
	Graph     float64 `json:"graph"`
	Vector    float64 `json:"vector"`
	Thematic  float64 `json:"thematic"`
	Impact    float64 `json:"impact"`
	Recency   float64 `json:"recency"`
	Influence float64 `json:"influence"`
	Position  float64 `json:"position"`
	Discovery float64 `json:"discovery"`
}

// Result is one ranked document.
type Result struct {
	DocumentGUID string
	FinalScore   float64
	Reasons      []string
	Rank         int
	CreatedAt    time.Time
	Breakdown    Breakdown
}

// Warning reports a degraded channel. The request still succeeded.
type Warning struct {
	Channel string
	Message string
}

// Response is the outcome of a ranking request.
type Response struct {
	Results  []Result
	Warnings []Warning
	Bias     float64
	AsOf     time.Time
}
