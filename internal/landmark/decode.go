package landmark

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultFrameRate is used when neither the stream nor the caller supplies one.
const DefaultFrameRate = 30.0

// MinFrameRate is the lowest rate used to derive timestamps. Containers that
// report a missing or bogus rate fall back to it.
const MinFrameRate = 15.0

const maxLineSize = 1 << 20

// NormalizeFrameRate truncates fps to a whole number of frames per second and
// raises it to MinFrameRate. Non-finite rates fall back to MinFrameRate too.
func NormalizeFrameRate(fps float64) float64 {
	fps = math.Floor(fps)
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps < MinFrameRate {
		return MinFrameRate
	}
	return fps
}

// Decoder reads pose-engine records from a JSON Lines stream.
type Decoder struct {
	scanner   *bufio.Scanner
	frameRate float64
	line      int
	closers   []func() error
}

// NewDecoder returns a Decoder reading from r. Records that carry no
// timestamp get frame / fps.
func NewDecoder(r io.Reader, fps float64) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{
		scanner:   sc,
		frameRate: NormalizeFrameRate(fps),
	}
}

// Open opens a landmark file. Paths ending in .gz or .zst are decompressed.
func Open(path string, fps float64) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("landmark: open %s: %w", path, err)
	}

	var (
		r       io.Reader = f
		closers           = []func() error{f.Close}
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("landmark: gzip %s: %w", path, err)
		}
		r = gz
		closers = append([]func() error{gz.Close}, closers...)
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("landmark: zstd %s: %w", path, err)
		}
		r = zr
		closers = append([]func() error{func() error { zr.Close(); return nil }}, closers...)
	}

	d := NewDecoder(r, fps)
	d.closers = closers
	return d, nil
}

// FrameRate returns the rate used to derive missing timestamps.
func (d *Decoder) FrameRate() float64 {
	return d.frameRate
}

type wireRecord struct {
	Frame     *int     `json:"frame"`
	Timestamp *float64 `json:"timestamp"`
	Landmarks Set      `json:"landmarks"`
}

// Next returns the next record, or io.EOF when the stream is exhausted.
// Blank lines are skipped.
func (d *Decoder) Next(ctx context.Context) (Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Record{}, err
		}
		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return Record{}, fmt.Errorf("landmark: line %d: %w", d.line+1, err)
			}
			return Record{}, io.EOF
		}
		d.line++

		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var w wireRecord
		if err := json.Unmarshal(raw, &w); err != nil {
			return Record{}, fmt.Errorf("landmark: line %d: %w", d.line, err)
		}
		if w.Frame == nil {
			return Record{}, fmt.Errorf("landmark: line %d: missing frame index", d.line)
		}

		rec := Record{Frame: *w.Frame, Landmarks: w.Landmarks}
		if w.Timestamp != nil {
			rec.Timestamp = *w.Timestamp
		} else {
			rec.Timestamp = float64(rec.Frame) / d.frameRate
		}
		return rec, nil
	}
}

// Close releases the underlying file and decompressor, if any.
func (d *Decoder) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
