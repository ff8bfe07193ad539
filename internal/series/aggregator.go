package series

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/selarassehat/rula/internal/landmark"
	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/rula"
)

var (
	// ErrOutOfOrder is returned when a frame index does not increase.
	ErrOutOfOrder = errors.New("frame out of order")
	// ErrFinalized is returned when adding to a finalized aggregator.
	ErrFinalized = errors.New("aggregator finalized")
)

// State is the lifecycle position of an Aggregator.
type State int

const (
	StateEmpty State = iota
	StateAccumulating
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAccumulating:
		return "accumulating"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Aggregator collects frame results in frame order. It is not safe for
// concurrent use.
type Aggregator struct {
	engine *rula.Engine
	logger *slog.Logger
	state  State
	last   int
	series Series
}

// NewAggregator returns an empty aggregator scoring frames with engine. A nil
// logger uses slog.Default.
func NewAggregator(engine *rula.Engine, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{engine: engine, logger: logger}
}

// State reports the aggregator's lifecycle state.
func (a *Aggregator) State() State {
	return a.state
}

// Add scores rec and appends the result. Frames without a detection or with a
// missing landmark are counted and skipped without error.
func (a *Aggregator) Add(rec landmark.Record) error {
	if err := a.accept(rec.Frame); err != nil {
		return err
	}
	res, err := a.engine.ComputeFrame(rec)
	return a.fold(rec.Frame, res, err)
}

func (a *Aggregator) accept(frame int) error {
	switch {
	case a.state == StateFinalized:
		return ErrFinalized
	case a.state == StateAccumulating && frame <= a.last:
		return fmt.Errorf("%w: frame %d after frame %d", ErrOutOfOrder, frame, a.last)
	}
	return nil
}

// fold records the outcome of a frame already checked by accept.
func (a *Aggregator) fold(frame int, res rula.FrameResult, err error) error {
	a.state = StateAccumulating
	a.last = frame
	switch {
	case err == nil:
		a.series.Frames = append(a.series.Frames, res)
	case errors.Is(err, rula.ErrNoDetection):
		a.series.Dropped.NoDetection++
		a.logger.Debug("frame dropped", "frame", frame, "reason", "no detection")
	case errors.Is(err, posture.ErrMissingLandmark):
		a.series.Dropped.MissingLandmark++
		a.logger.Debug("frame dropped", "frame", frame, "reason", err)
	default:
		return err
	}
	return nil
}

// Finalize closes the aggregator and returns the collected series. Further
// calls to Add fail with ErrFinalized.
func (a *Aggregator) Finalize() *Series {
	a.state = StateFinalized
	s := a.series
	a.logger.Debug("series finalized", "frames", len(s.Frames), "dropped", s.Dropped.Total())
	return &s
}
