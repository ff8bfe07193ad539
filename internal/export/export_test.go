package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() *series.Series {
	angles := posture.Angles{UpperArm: 15, LowerArm: 80, Wrist: 5, Neck: 12.5, Trunk: 5}
	flags := posture.Flags{TrunkTwisted: true}
	comp, sc := rula.Evaluate(angles, flags, rula.DefaultFactors())
	f := rula.FrameResult{
		FrameIndex:       1,
		TimestampSeconds: 1.0 / 30,
		Angles:           angles,
		AutoFlags:        flags,
		Components:       comp,
		ScoreA:           sc.A,
		ScoreB:           sc.B,
		FinalScore:       sc.Grand,
	}
	g := f
	g.FrameIndex = 2
	g.TimestampSeconds = 2.0 / 30
	return &series.Series{Frames: []rula.FrameResult{f, g}}
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSeries(), nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "frame,time_sec,upper_arm_angle,lower_arm_angle,wrist_angle,neck_angle,trunk_angle,"+
		"upper_arm_raised,upper_arm_abducted,lower_arm_midline,wrist_deviated,neck_twisted,neck_bent,"+
		"trunk_twisted,trunk_bent,score_a,score_b,rula_score", strings.Join(records[0], ","))
	assert.Equal(t, "12.5", records[1][5])
	assert.Equal(t, "true", records[1][13])
}

func TestWriteCSV_Adjusted(t *testing.T) {
	s := sampleSeries()
	adj, err := series.Recalculate(s, rula.DefaultOverrides())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s, adj))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, ColAdjustedRULA, records[0][len(records[0])-1])
	assert.Equal(t, "2", records[1][len(records[1])-1])
}

func TestWriteCSV_MismatchedAdjusted(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, sampleSeries(), &series.Adjusted{})
	assert.Error(t, err)
}

func TestReadCSV_RestoresSeries(t *testing.T) {
	s := sampleSeries()
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, SaveCSV(path, s, nil))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	// a reloaded table recalculates like the original
	o := rula.DefaultOverrides()
	o.Factors.ForceLoad = 3
	want, err := series.Recalculate(s, o)
	require.NoError(t, err)
	have, err := series.Recalculate(got, o)
	require.NoError(t, err)
	assert.Equal(t, want, have)
}

func TestReadCSV_AcceptsCapitalisedBooleans(t *testing.T) {
	in := strings.Join(Header(true), ",") + "\n" +
		"3,0.1,10,90,0,5,5,True,False,False,False,False,False,False,False,1,1,1,2\n"
	s, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.True(t, s.Frames[0].AutoFlags.ShoulderRaised)
	assert.Equal(t, 2, s.Frames[0].Components.UpperArm)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "frame,time_sec\n1,0.1\n"},
		{"bad number", strings.Join(Header(false), ",") + "\nx,0,0,0,0,0,0,false,false,false,false,false,false,false,false,1,1,1\n"},
		{"bad bool", strings.Join(Header(false), ",") + "\n1,0,0,0,0,0,0,maybe,false,false,false,false,false,false,false,1,1,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestSaveRun_LoadRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	run := NewRun("clip.jsonl", 30, posture.DefaultThresholds(), sampleSeries())
	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)

	path, err := SaveRun(dir, run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, run.ID+".json"), path)

	got, err := LoadRun(path)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "clip.jsonl", got.Source)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.Series, got.Series)
	assert.Nil(t, got.Adjusted)
}

func TestLoadRun_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRun(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadRun(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"id":"x"}`), 0o644))
	_, err = LoadRun(empty)
	assert.ErrorIs(t, err, ErrInvalidRun)
}

func TestLoadRun_IDFromFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"series":{"frames":[],"dropped":{}}}`), 0o644))
	got, err := LoadRun(path)
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.ID)
}
