// Package series folds per-frame RULA results into a time series, computes
// its summary statistics and recalculates it under operator overrides.
package series

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/rula"
)

// ErrNoPoseDetected is returned when a series holds no scored frame.
var ErrNoPoseDetected = errors.New("no pose detected in any frame")

// Dropped counts frames that produced no result.
type Dropped struct {
	NoDetection     int `json:"no_detection"`
	MissingLandmark int `json:"missing_landmark"`
}

// Total is the number of dropped frames.
func (d Dropped) Total() int {
	return d.NoDetection + d.MissingLandmark
}

// Series is the ordered result of analysing one input.
type Series struct {
	Frames  []rula.FrameResult `json:"frames"`
	Dropped Dropped            `json:"dropped"`
}

// Summary holds the statistics of a series' grand scores.
type Summary struct {
	Frames int        `json:"frames"`
	Mean   float64    `json:"mean"`
	Max    float64    `json:"max"`
	Min    float64    `json:"min"`
	StdDev float64    `json:"std_dev"`
	Risk   risk.Level `json:"risk"`
}

// Len returns the number of scored frames.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Scores returns the grand score of every frame, in frame order.
func (s *Series) Scores() []float64 {
	out := make([]float64, 0, s.Len())
	for _, f := range s.Frames {
		out = append(out, float64(f.FinalScore))
	}
	return out
}

// Summary computes the statistics of the grand scores. The risk level is that
// of the mean score.
func (s *Series) Summary() (Summary, error) {
	return summarize(s.Scores())
}

func summarize(scores []float64) (Summary, error) {
	if len(scores) == 0 {
		return Summary{}, ErrNoPoseDetected
	}
	mean := stat.Mean(scores, nil)
	var sd float64
	if len(scores) > 1 {
		sd = stat.StdDev(scores, nil)
	}
	return Summary{
		Frames: len(scores),
		Mean:   mean,
		Max:    floats.Max(scores),
		Min:    floats.Min(scores),
		StdDev: sd,
		Risk:   risk.Bucket(mean),
	}, nil
}
