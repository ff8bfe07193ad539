package series

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/selarassehat/rula/internal/landmark"
	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/rula"
)

// ProgressEvent reports how many frames have been scored.
type ProgressEvent struct {
	Done  int
	Total int
}

// ProgressListener receives progress events. Events arrive from a single
// goroutine at a time but not necessarily in order.
type ProgressListener func(ProgressEvent)

// Option configures Analyze.
type Option func(*options)

type options struct {
	workers    int
	thresholds posture.Thresholds
	logger     *slog.Logger
	listeners  []ProgressListener
}

// WithWorkers sets the number of frames scored concurrently. Values below one
// use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithThresholds overrides the detector cut-offs.
func WithThresholds(t posture.Thresholds) Option {
	return func(o *options) {
		o.thresholds = t
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithProgress registers a progress listener.
func WithProgress(l ProgressListener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

func newOptions(opts []Option) options {
	o := options{
		thresholds: posture.DefaultThresholds(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

type outcome struct {
	frame  int
	result rula.FrameResult
	err    error
}

// Analyze scores records on a bounded worker pool and folds the results, in
// frame order, into a Series. Records may arrive in any order; duplicate
// frame indices fail with ErrOutOfOrder.
func Analyze(ctx context.Context, records []landmark.Record, opts ...Option) (*Series, error) {
	o := newOptions(opts)
	engine, err := rula.NewEngine(o.thresholds)
	if err != nil {
		return nil, err
	}

	outcomes := make([]outcome, len(records))
	var (
		mu   sync.Mutex
		done int
	)
	notify := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		for _, l := range o.listeners {
			l(ProgressEvent{Done: done, Total: len(records)})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := engine.ComputeFrame(rec)
			outcomes[i] = outcome{frame: rec.Frame, result: res, err: err}
			notify()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysing frames: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysing frames: %w", err)
	}

	slices.SortStableFunc(outcomes, func(a, b outcome) int {
		return cmp.Compare(a.frame, b.frame)
	})

	agg := NewAggregator(engine, o.logger)
	for _, oc := range outcomes {
		if err := agg.accept(oc.frame); err != nil {
			return nil, err
		}
		if err := agg.fold(oc.frame, oc.result, oc.err); err != nil {
			return nil, err
		}
	}
	s := agg.Finalize()
	o.logger.Debug("analysis complete", "records", len(records), "frames", s.Len(),
		"no_detection", s.Dropped.NoDetection, "missing_landmark", s.Dropped.MissingLandmark)
	return s, nil
}

// AnalyzeSource drains src and analyses every record it yields.
func AnalyzeSource(ctx context.Context, src landmark.Source, opts ...Option) (*Series, error) {
	records, err := landmark.ReadAll(ctx, src)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, records, opts...)
}
