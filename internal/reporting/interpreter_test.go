package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func sampleRun(t *testing.T) *export.Run {
	t.Helper()
	angles := posture.Angles{UpperArm: 15, LowerArm: 80, Wrist: 5, Neck: 5, Trunk: 5}
	s := &series.Series{Dropped: series.Dropped{NoDetection: 2}}
	for i := 1; i <= 3; i++ {
		comp, sc := rula.Evaluate(angles, posture.Flags{}, rula.DefaultFactors())
		s.Frames = append(s.Frames, rula.FrameResult{
			FrameIndex: i, TimestampSeconds: float64(i) / 30, Angles: angles,
			Components: comp, ScoreA: sc.A, ScoreB: sc.B, FinalScore: sc.Grand,
		})
	}
	return export.NewRun("clip.jsonl", 30, posture.DefaultThresholds(), s)
}

func withAdjustment(t *testing.T, run *export.Run) *export.Run {
	t.Helper()
	o := rula.DefaultOverrides()
	o.Flags.TrunkTwisted = true
	o.Factors.ForceLoad = 2
	adj, err := series.Recalculate(run.Series, o)
	require.NoError(t, err)
	run.Adjusted = adj
	return run
}

func TestInterpretScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{1, "Acceptable posture if not maintained or repeated for long periods"},
		{3, "Further investigation needed; changes may be required"},
		{6, "Investigation and changes required soon"},
		{7, "Investigation and changes required immediately"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretScore(tt.score))
	}
}

func TestInterpretDelta(t *testing.T) {
	assert.Equal(t, "Adjustments raise the mean score by 1.50.", InterpretDelta(series.Delta{Mean: 1.5}))
	assert.Equal(t, "Adjustments lower the mean score by 0.25.", InterpretDelta(series.Delta{Mean: -0.25}))
	assert.Equal(t, "Adjustments leave the mean score unchanged.", InterpretDelta(series.Delta{}))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "日本 ", padRight("日本", 5))
}

func TestFormatSummaryReport(t *testing.T) {
	out := FormatSummaryReport(sampleRun(t), language.English)

	assert.Contains(t, out, "=== RULA Assessment Results ===")
	assert.Contains(t, out, "clip.jsonl")
	assert.Contains(t, out, "Average RULA Score: 1.00")
	assert.Contains(t, out, "1 - Acceptable - No action required")
	assert.NotContains(t, out, "Manual Adjustments")
}

func TestFormatSummaryReport_Indonesian(t *testing.T) {
	out := FormatSummaryReport(sampleRun(t), language.Indonesian)
	assert.Contains(t, out, "Hasil Penilaian RULA")
	assert.Contains(t, out, "Dapat Diterima - Tidak perlu tindakan")
}

func TestFormatSummaryReport_NoPose(t *testing.T) {
	run := export.NewRun("empty.jsonl", 30, posture.DefaultThresholds(), &series.Series{})
	out := FormatSummaryReport(run, language.English)
	assert.Contains(t, out, "Could not detect pose")
}

func TestFormatSummaryReport_WithAdjustment(t *testing.T) {
	out := FormatSummaryReport(withAdjustment(t, sampleRun(t)), language.English)

	assert.Contains(t, out, "Manual Adjustments")
	assert.Contains(t, out, "+ Trunk twisted")
	assert.Contains(t, out, "+ Force/Load: 2-10 kg static/repeated, or >10 kg intermittent")
	assert.Contains(t, out, "Adjustments raise the mean score by 3.00.")
	assert.Contains(t, out, "95% CI of the per-frame change: [3.00, 3.00]")
}

func TestActiveAdjustments(t *testing.T) {
	adj := &series.Adjusted{Overrides: rula.DefaultOverrides()}
	assert.Empty(t, ActiveAdjustments(adj, language.English))

	adj.Overrides.Flags.NeckBent = true
	adj.Overrides.Factors = rula.Factors{WristTwist: 2, Legs: 2, MuscleUse: 1, ForceLoad: 1}
	got := ActiveAdjustments(adj, language.Indonesian)
	assert.Equal(t, []string{
		"Leher miring ke samping",
		"Putaran Pergelangan Tangan: Di atau dekat akhir rentang",
		"Kaki/Telapak Kaki: Tidak didukung",
		"Penggunaan Otot: Statis (>1 menit) atau berulang (>4x/menit)",
		"Gaya/Beban: 2-10 kg intermiten",
	}, got)
}

func TestMarkdown(t *testing.T) {
	md := Markdown(withAdjustment(t, sampleRun(t)), language.English)

	assert.True(t, strings.HasPrefix(md, "# RULA Assessment Results"))
	assert.Contains(t, md, "| frame | time_sec | score_a | score_b | rula_score | adjusted_rula_score |")
	assert.Contains(t, md, "| 1 | 0.03 | 1 | 1 | 1 | 4 |")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleRun(t), language.English))

	out := buf.String()
	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, "<h1>RULA Assessment Results</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Acceptable - No action required")
}

func TestFormatTables(t *testing.T) {
	out := FormatTables()

	assert.Contains(t, out, "Table A")
	assert.Contains(t, out, "Table B")
	assert.Contains(t, out, "Table C")
	assert.Equal(t, 4, strings.Count(out, "\nwrist "))
	assert.Equal(t, 2, strings.Count(out, "\nlegs "))

	// last row of Table C: score A 8 against score B 1..7
	assert.Contains(t, out, "8    5  5  6  7  7  7  7\n")
}
