package rula

import (
	"errors"
	"fmt"

	"github.com/selarassehat/rula/internal/landmark"
	"github.com/selarassehat/rula/internal/posture"
)

// ErrNoDetection is returned for a record carrying no landmarks.
var ErrNoDetection = errors.New("no pose detected")

// FrameResult is the scored outcome of one frame.
type FrameResult struct {
	FrameIndex       int            `json:"frame"`
	TimestampSeconds float64        `json:"time_sec"`
	Angles           posture.Angles `json:"angles"`
	AutoFlags        posture.Flags  `json:"flags"`
	Components       Components     `json:"components"`
	ScoreA           int            `json:"score_a"`
	ScoreB           int            `json:"score_b"`
	FinalScore       int            `json:"rula_score"`
}

// Engine scores frames using a fixed set of detector thresholds.
type Engine struct {
	thresholds posture.Thresholds
}

// NewEngine validates the thresholds and returns an Engine.
func NewEngine(t posture.Thresholds) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Engine{thresholds: t}, nil
}

// Thresholds returns the detector cut-offs in use.
func (e *Engine) Thresholds() posture.Thresholds {
	return e.thresholds
}

// ComputeFrame scores a single record. Automatic scoring uses default
// factors; operator factors are applied later by recalculation.
//
// A record without landmarks returns ErrNoDetection; one with a required
// landmark missing returns an error wrapping posture.ErrMissingLandmark.
func (e *Engine) ComputeFrame(rec landmark.Record) (FrameResult, error) {
	if !rec.Detected() {
		return FrameResult{}, fmt.Errorf("frame %d: %w", rec.Frame, ErrNoDetection)
	}
	angles, flags, err := posture.Analyze(rec.Landmarks, e.thresholds)
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d: %w", rec.Frame, err)
	}
	comp, scores := Evaluate(angles, flags, DefaultFactors())
	return FrameResult{
		FrameIndex:       rec.Frame,
		TimestampSeconds: rec.Timestamp,
		Angles:           angles,
		AutoFlags:        flags,
		Components:       comp,
		ScoreA:           scores.A,
		ScoreB:           scores.B,
		FinalScore:       scores.Grand,
	}, nil
}

// Evaluate runs the mapper and table stages for cached angles.
func Evaluate(a posture.Angles, f posture.Flags, factors Factors) (Components, Scores) {
	c := ComponentScores(a, f)
	return c, Combine(c, factors)
}
