package webapi

import (
	"time"

	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/series"
)

// RunSummary is the API response for a single run in the list.
type RunSummary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	Frames    int       `json:"frames"`
	Mean      float64   `json:"mean"`
	Max       float64   `json:"max"`
	Min       float64   `json:"min"`
	Risk      int       `json:"risk"`
	RiskLabel string    `json:"riskLabel"`
	Adjusted  bool      `json:"adjusted"`
}

// RunDetail is the API response for a single run with per-frame results.
type RunDetail struct {
	RunSummary
	FrameRate  float64            `json:"frameRate"`
	StdDev     float64            `json:"stdDev"`
	Dropped    series.Dropped     `json:"dropped"`
	Timeline   []rula.FrameResult `json:"timeline"`
	Adjustment *series.Adjusted   `json:"adjustment,omitempty"`
}

// RecalculateResponse is returned by the recalculate endpoint.
type RecalculateResponse struct {
	RunID     string           `json:"runId"`
	Original  series.Summary   `json:"original"`
	Adjusted  *series.Adjusted `json:"adjusted"`
	RiskLabel string           `json:"riskLabel"`
	Saved     bool             `json:"saved"`
}

// SummaryResponse is the aggregate response across all runs.
type SummaryResponse struct {
	TotalRuns   int         `json:"totalRuns"`
	TotalFrames int         `json:"totalFrames"`
	AvgScore    float64     `json:"avgScore"`
	RiskCounts  map[int]int `json:"riskCounts"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
