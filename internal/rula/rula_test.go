package rula

import (
	"errors"
	"testing"

	"github.com/selarassehat/rula/internal/landmark"
	"github.com/selarassehat/rula/internal/posture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baselineAngles() posture.Angles {
	return posture.Angles{UpperArm: 15, LowerArm: 80, Wrist: 5, Neck: 5, Trunk: 5}
}

func TestEvaluate_Baseline(t *testing.T) {
	comp, scores := Evaluate(baselineAngles(), posture.Flags{}, DefaultFactors())

	assert.Equal(t, Components{UpperArm: 1, LowerArm: 1, Wrist: 1, Neck: 1, Trunk: 1}, comp)
	assert.Equal(t, Scores{A: 1, B: 1, Grand: 1}, scores)
}

func TestEvaluate_TrunkTwistedWithForce(t *testing.T) {
	factors := DefaultFactors()
	factors.ForceLoad = 2

	comp, scores := Evaluate(baselineAngles(), posture.Flags{TrunkTwisted: true}, factors)

	assert.Equal(t, 2, comp.Trunk)
	assert.Equal(t, 1, scores.A)
	assert.Equal(t, 2, scores.B)
	// finalA = 3, finalB = 4, Table C(3,4) = 4
	assert.Equal(t, 4, scores.Grand)
}

func TestUpperArmScore(t *testing.T) {
	tests := []struct {
		angle    float64
		raised   bool
		abducted bool
		want     int
	}{
		{0, false, false, 1},
		{19.9, false, false, 1},
		{20, false, false, 2},
		{45, false, false, 2},
		{45.1, false, false, 3},
		{90, false, false, 3},
		{91, false, false, 4},
		{180, true, true, 6},
		{10, true, false, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UpperArmScore(tt.angle, tt.raised, tt.abducted), "angle %v", tt.angle)
	}
}

func TestUpperArmScore_Monotonic(t *testing.T) {
	a := UpperArmScore(10, false, false)
	b := UpperArmScore(50, false, false)
	c := UpperArmScore(100, false, false)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestLowerArmScore(t *testing.T) {
	assert.Equal(t, 2, LowerArmScore(59.9, false))
	assert.Equal(t, 1, LowerArmScore(60, false))
	assert.Equal(t, 1, LowerArmScore(100, false))
	assert.Equal(t, 2, LowerArmScore(100.1, false))
	assert.Equal(t, 3, LowerArmScore(120, true))
}

func TestWristScore(t *testing.T) {
	assert.Equal(t, 1, WristScore(15, false))
	assert.Equal(t, 1, WristScore(-15, false))
	assert.Equal(t, 2, WristScore(16, false))
	assert.Equal(t, 3, WristScore(30, true))
	assert.LessOrEqual(t, WristScore(90, true), MaxWristScore)
}

func TestNeckScore(t *testing.T) {
	tests := []struct {
		name          string
		angle         float64
		twisted, bent bool
		want          int
	}{
		{"neutral", 5, false, false, 1},
		{"ten", 10, false, false, 2},
		{"twenty", 20, false, false, 2},
		{"flexed", 21, false, false, 3},
		{"extension", -5, false, false, 4},
		{"twisted", 5, true, false, 2},
		{"bent", 5, false, true, 2},
		{"twisted and bent adds one", 5, true, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeckScore(tt.angle, tt.twisted, tt.bent))
		})
	}
}

func TestTrunkScore(t *testing.T) {
	assert.Equal(t, 1, TrunkScore(0, false, false))
	assert.Equal(t, 2, TrunkScore(10, false, false))
	assert.Equal(t, 3, TrunkScore(60, false, false))
	assert.Equal(t, 4, TrunkScore(61, false, false))
	assert.Equal(t, 4, TrunkScore(90, false, false))
	assert.Equal(t, 2, TrunkScore(5, true, true))
}

func TestScoreA(t *testing.T) {
	assert.Equal(t, 1, ScoreA(1, 1, 1, 1))
	assert.Equal(t, 2, ScoreA(1, 1, 1, 2))
	assert.Equal(t, 4, ScoreA(5, 2, 1, 1))
	assert.Equal(t, 5, ScoreA(6, 3, 4, 1))
	// wrist scores beyond 4 use the fourth sub-table
	assert.Equal(t, ScoreA(2, 2, 4, 1), ScoreA(2, 2, 9, 1))
	// upper arm and lower arm are capped at the table edge
	assert.Equal(t, ScoreA(6, 3, 3, 1), ScoreA(7, 4, 3, 1))
	// out-of-table key falls back to the default
	assert.Equal(t, DefaultScoreA, ScoreA(0, 1, 1, 1))
}

func TestScoreB(t *testing.T) {
	assert.Equal(t, 1, ScoreB(1, 1, 1))
	assert.Equal(t, 2, ScoreB(1, 2, 1))
	assert.Equal(t, 3, ScoreB(1, 2, 2))
	assert.Equal(t, 8, ScoreB(6, 6, 1))
	// anything other than 1 selects the unsupported table
	assert.Equal(t, ScoreB(3, 3, 2), ScoreB(3, 3, 0))
	assert.Equal(t, DefaultScoreB, ScoreB(0, 1, 1))
}

func TestGrandScore(t *testing.T) {
	assert.Equal(t, 1, GrandScore(1, 1, 0, 0))
	assert.Equal(t, 4, GrandScore(1, 2, 0, 2))
	// column 8 is not in Table C
	assert.Equal(t, DefaultGrand, GrandScore(8, 8, 0, 0))
	assert.Equal(t, 7, GrandScore(5, 8, 1, 3))
	assert.Equal(t, 5, GrandScore(8, 1, 0, 0))
}

func TestGrandScore_Range(t *testing.T) {
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 9; b++ {
			for m := 0; m <= 1; m++ {
				for f := 0; f <= 3; f++ {
					g := GrandScore(a, b, m, f)
					require.GreaterOrEqual(t, g, 1)
					require.LessOrEqual(t, g, MaxGrandScore)
				}
			}
		}
	}
}

func TestTables_ReturnCopies(t *testing.T) {
	a := TableA(1)
	a[0][0] = 99
	assert.Equal(t, 1, TableA(1)[0][0])

	c := TableC()
	require.Len(t, c, 8)
	require.Len(t, c[0], 7)
	c[0][0] = 99
	assert.Equal(t, 1, TableC()[0][0])

	assert.Equal(t, 3, TableB(2)[0][1])
	assert.Equal(t, 2, TableB(1)[0][1])
}

func TestOverrides_Validate(t *testing.T) {
	require.NoError(t, DefaultOverrides().Validate())

	tests := []struct {
		name string
		mut  func(*Factors)
	}{
		{"wrist twist zero", func(f *Factors) { f.WristTwist = 0 }},
		{"wrist twist three", func(f *Factors) { f.WristTwist = 3 }},
		{"legs", func(f *Factors) { f.Legs = 5 }},
		{"muscle", func(f *Factors) { f.MuscleUse = 2 }},
		{"force negative", func(f *Factors) { f.ForceLoad = -1 }},
		{"force four", func(f *Factors) { f.ForceLoad = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOverrides()
			tt.mut(&o.Factors)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOverrides))
		})
	}
}

func TestDecodeOverrides(t *testing.T) {
	o, err := DecodeOverrides(map[string]any{
		"flags":   map[string]any{"trunk_twisted": true, "neck_bent": "true"},
		"factors": map[string]any{"force_load": 2, "legs": 2},
	})
	require.NoError(t, err)

	assert.True(t, o.Flags.TrunkTwisted)
	assert.True(t, o.Flags.NeckBent)
	assert.False(t, o.Flags.ShoulderRaised)
	assert.Equal(t, Factors{WristTwist: 1, Legs: 2, MuscleUse: 0, ForceLoad: 2}, o.Factors)
}

func TestDecodeOverrides_Nil(t *testing.T) {
	o, err := DecodeOverrides(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOverrides(), o)
}

func TestDecodeOverrides_Errors(t *testing.T) {
	_, err := DecodeOverrides(map[string]any{"factors": map[string]any{"force_load": 9}})
	assert.ErrorIs(t, err, ErrInvalidOverrides)

	_, err = DecodeOverrides(map[string]any{"unknown": 1})
	assert.ErrorIs(t, err, ErrInvalidOverrides)
}

func standingRecord() landmark.Record {
	return landmark.Record{
		Frame:     3,
		Timestamp: 0.1,
		Landmarks: landmark.Set{
			landmark.Nose:          {X: 0.50, Y: 0.20},
			landmark.LeftShoulder:  {X: 0.48, Y: 0.35},
			landmark.RightShoulder: {X: 0.52, Y: 0.35},
			landmark.LeftElbow:     {X: 0.48, Y: 0.55},
			landmark.RightElbow:    {X: 0.52, Y: 0.55},
			landmark.LeftWrist:     {X: 0.68, Y: 0.55},
			landmark.RightWrist:    {X: 0.72, Y: 0.55},
			landmark.LeftHip:       {X: 0.48, Y: 0.75},
			landmark.RightHip:      {X: 0.52, Y: 0.75},
		},
	}
}

func TestEngine_ComputeFrame(t *testing.T) {
	e, err := NewEngine(posture.DefaultThresholds())
	require.NoError(t, err)

	res, err := e.ComputeFrame(standingRecord())
	require.NoError(t, err)

	assert.Equal(t, 3, res.FrameIndex)
	assert.InDelta(t, 0.1, res.TimestampSeconds, 1e-9)
	assert.Equal(t, posture.Flags{}, res.AutoFlags)
	// an upright trunk reads as full extension and the raised head as neck extension
	assert.Equal(t, Components{UpperArm: 1, LowerArm: 1, Wrist: 1, Neck: 4, Trunk: 4}, res.Components)
	assert.Equal(t, 1, res.ScoreA)
	assert.Equal(t, 7, res.ScoreB)
	assert.Equal(t, 5, res.FinalScore)
}

func TestEngine_ComputeFrameErrors(t *testing.T) {
	e, err := NewEngine(posture.DefaultThresholds())
	require.NoError(t, err)

	_, err = e.ComputeFrame(landmark.Record{Frame: 1})
	assert.ErrorIs(t, err, ErrNoDetection)

	rec := standingRecord()
	delete(rec.Landmarks, landmark.LeftHip)
	_, err = e.ComputeFrame(rec)
	assert.ErrorIs(t, err, posture.ErrMissingLandmark)

	var mle *posture.MissingLandmarkError
	require.ErrorAs(t, err, &mle)
	assert.Equal(t, landmark.LeftHip, mle.Index)
}

func TestNewEngine_InvalidThresholds(t *testing.T) {
	th := posture.DefaultThresholds()
	th.NoseOffset = 0
	_, err := NewEngine(th)
	assert.ErrorIs(t, err, posture.ErrInvalidThresholds)
}
