package series

import (
	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/statistics"
)

// deltaSeed fixes the bootstrap resampling so a recalculation is repeatable.
const deltaSeed = 1

// AdjustedFrame is a frame rescored under operator overrides.
type AdjustedFrame struct {
	FrameIndex       int     `json:"frame"`
	TimestampSeconds float64 `json:"time_sec"`
	ScoreA           int     `json:"score_a"`
	ScoreB           int     `json:"score_b"`
	FinalScore       int     `json:"rula_score"`
}

// Delta is the change of the adjusted summary relative to the original.
// CI bounds the mean per-frame change of the grand score.
type Delta struct {
	Mean float64                       `json:"mean"`
	Max  float64                       `json:"max"`
	Min  float64                       `json:"min"`
	Risk int                           `json:"risk"`
	CI   statistics.ConfidenceInterval `json:"ci"`
}

// Adjusted is the outcome of recalculating a series.
type Adjusted struct {
	Overrides rula.Overrides  `json:"overrides"`
	Frames    []AdjustedFrame `json:"frames"`
	Summary   Summary         `json:"summary"`
	Delta     Delta           `json:"delta"`
}

// Recalculate rescores every frame of s from its cached angles, replacing the
// detected qualifiers with the override flags and applying the override
// factors. s is not modified.
func Recalculate(s *Series, o rula.Overrides) (*Adjusted, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	original, err := s.Summary()
	if err != nil {
		return nil, err
	}

	frames := make([]AdjustedFrame, len(s.Frames))
	scores := make([]float64, len(s.Frames))
	changes := make([]float64, len(s.Frames))
	for i, f := range s.Frames {
		_, sc := rula.Evaluate(f.Angles, o.Flags, o.Factors)
		frames[i] = AdjustedFrame{
			FrameIndex:       f.FrameIndex,
			TimestampSeconds: f.TimestampSeconds,
			ScoreA:           sc.A,
			ScoreB:           sc.B,
			FinalScore:       sc.Grand,
		}
		scores[i] = float64(sc.Grand)
		changes[i] = float64(sc.Grand - f.FinalScore)
	}
	adjusted, err := summarize(scores)
	if err != nil {
		return nil, err
	}
	return &Adjusted{
		Overrides: o,
		Frames:    frames,
		Summary:   adjusted,
		Delta: Delta{
			Mean: adjusted.Mean - original.Mean,
			Max:  adjusted.Max - original.Max,
			Min:  adjusted.Min - original.Min,
			Risk: int(adjusted.Risk) - int(original.Risk),
			CI:   statistics.BootstrapCIWithSeed(changes, statistics.DefaultConfidenceLevel, deltaSeed),
		},
	}, nil
}

// SuggestOverrides proposes an override set from the detected qualifiers: a
// flag is suggested when it was detected in more than half of the frames.
// Factors keep their defaults. An empty series suggests the defaults.
func SuggestOverrides(s *Series) rula.Overrides {
	o := rula.DefaultOverrides()
	n := s.Len()
	if n == 0 {
		return o
	}
	var counts [posture.NumFlags]int
	for _, f := range s.Frames {
		for i, set := range f.AutoFlags.Values() {
			if set {
				counts[i]++
			}
		}
	}
	var majority [posture.NumFlags]bool
	for i, c := range counts {
		majority[i] = float64(c)/float64(n) > 0.5
	}
	o.Flags = posture.FlagsFromValues(majority)
	return o
}
