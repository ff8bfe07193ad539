// Package export writes analysed series to CSV tables and JSON run files and
// reads them back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/series"
)

// Column names of the frame table.
const (
	ColFrame         = "frame"
	ColTime          = "time_sec"
	ColUpperArmAngle = "upper_arm_angle"
	ColLowerArmAngle = "lower_arm_angle"
	ColWristAngle    = "wrist_angle"
	ColNeckAngle     = "neck_angle"
	ColTrunkAngle    = "trunk_angle"
	ColScoreA        = "score_a"
	ColScoreB        = "score_b"
	ColRULAScore     = "rula_score"
	ColAdjustedRULA  = "adjusted_rula_score"
)

// FlagColumns name the qualifier columns in posture.Flags.Values order.
var FlagColumns = [posture.NumFlags]string{
	"upper_arm_raised",
	"upper_arm_abducted",
	"lower_arm_midline",
	"wrist_deviated",
	"neck_twisted",
	"neck_bent",
	"trunk_twisted",
	"trunk_bent",
}

// Header returns the table header, with the adjusted score column when
// adjusted is true.
func Header(adjusted bool) []string {
	h := []string{
		ColFrame, ColTime,
		ColUpperArmAngle, ColLowerArmAngle, ColWristAngle, ColNeckAngle, ColTrunkAngle,
	}
	h = append(h, FlagColumns[:]...)
	h = append(h, ColScoreA, ColScoreB, ColRULAScore)
	if adjusted {
		h = append(h, ColAdjustedRULA)
	}
	return h
}

// WriteCSV writes one row per frame of s. When adj is non-nil its scores
// fill the adjusted column; it must come from recalculating s.
func WriteCSV(w io.Writer, s *series.Series, adj *series.Adjusted) error {
	if adj != nil && len(adj.Frames) != len(s.Frames) {
		return fmt.Errorf("csv: adjusted series has %d frames, expected %d", len(adj.Frames), len(s.Frames))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(adj != nil)); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i, f := range s.Frames {
		row := []string{
			strconv.Itoa(f.FrameIndex),
			formatFloat(f.TimestampSeconds),
			formatFloat(f.Angles.UpperArm),
			formatFloat(f.Angles.LowerArm),
			formatFloat(f.Angles.Wrist),
			formatFloat(f.Angles.Neck),
			formatFloat(f.Angles.Trunk),
		}
		for _, v := range f.AutoFlags.Values() {
			row = append(row, strconv.FormatBool(v))
		}
		row = append(row, strconv.Itoa(f.ScoreA), strconv.Itoa(f.ScoreB), strconv.Itoa(f.FinalScore))
		if adj != nil {
			row = append(row, strconv.Itoa(adj.Frames[i].FinalScore))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write frame %d: %w", f.FrameIndex, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to path.
func SaveCSV(path string, s *series.Series, adj *series.Adjusted) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, s, adj)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// row maps column name to value.
type row map[string]string

// ReadCSV loads a frame table written by WriteCSV into a series. Angles and
// detected qualifiers are restored so the series can be recalculated;
// component scores are rederived from them. Any adjusted column is ignored.
func ReadCSV(r io.Reader) (*series.Series, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: empty (no header row)")
	}

	headers := records[0]
	for _, want := range Header(false) {
		if !slices.Contains(headers, want) {
			return nil, fmt.Errorf("csv: missing column %q", want)
		}
	}

	s := &series.Series{Frames: make([]rula.FrameResult, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(rec), len(headers))
		}
		fields := make(row, len(headers))
		for j, h := range headers {
			fields[h] = rec[j]
		}
		f, err := fields.frame()
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", i+2, err)
		}
		s.Frames = append(s.Frames, f)
	}
	return s, nil
}

// LoadCSV reads a frame table from path.
func LoadCSV(path string) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(f)
}

func (r row) frame() (rula.FrameResult, error) {
	var (
		f   rula.FrameResult
		err error
	)
	ints := []struct {
		col string
		dst *int
	}{
		{ColFrame, &f.FrameIndex},
		{ColScoreA, &f.ScoreA},
		{ColScoreB, &f.ScoreB},
		{ColRULAScore, &f.FinalScore},
	}
	for _, c := range ints {
		if *c.dst, err = strconv.Atoi(r[c.col]); err != nil {
			return f, fmt.Errorf("%s: %w", c.col, err)
		}
	}
	floats := []struct {
		col string
		dst *float64
	}{
		{ColTime, &f.TimestampSeconds},
		{ColUpperArmAngle, &f.Angles.UpperArm},
		{ColLowerArmAngle, &f.Angles.LowerArm},
		{ColWristAngle, &f.Angles.Wrist},
		{ColNeckAngle, &f.Angles.Neck},
		{ColTrunkAngle, &f.Angles.Trunk},
	}
	for _, c := range floats {
		if *c.dst, err = strconv.ParseFloat(r[c.col], 64); err != nil {
			return f, fmt.Errorf("%s: %w", c.col, err)
		}
	}
	var flags [posture.NumFlags]bool
	for i, col := range FlagColumns {
		if flags[i], err = strconv.ParseBool(r[col]); err != nil {
			return f, fmt.Errorf("%s: %w", col, err)
		}
	}
	f.AutoFlags = posture.FlagsFromValues(flags)
	f.Components = rula.ComponentScores(f.Angles, f.AutoFlags)
	return f, nil
}

