// Package reporting renders analysed runs as plain-language text, Markdown
// and HTML reports.
package reporting

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/series"
)

// InterpretScore explains a single grand score.
func InterpretScore(score int) string {
	switch {
	case score <= 2:
		return "Acceptable posture if not maintained or repeated for long periods"
	case score <= 4:
		return "Further investigation needed; changes may be required"
	case score <= 6:
		return "Investigation and changes required soon"
	default:
		return "Investigation and changes required immediately"
	}
}

// InterpretDelta explains how an adjustment moved the mean score.
func InterpretDelta(d series.Delta) string {
	switch {
	case d.Mean > 0:
		return fmt.Sprintf("Adjustments raise the mean score by %.2f.", d.Mean)
	case d.Mean < 0:
		return fmt.Sprintf("Adjustments lower the mean score by %.2f.", -d.Mean)
	default:
		return "Adjustments leave the mean score unchanged."
	}
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// labelled writes aligned "label: value" lines.
func labelled(b *strings.Builder, labels, values []string) {
	width := 0
	for _, l := range labels {
		width = max(width, runewidth.StringWidth(l)+2)
	}
	for i, l := range labels {
		fmt.Fprintf(b, "%s%s\n", padRight(l+":", width), values[i])
	}
}

// FormatSummaryReport produces the plain-language report of a run in the
// given language.
func FormatSummaryReport(run *export.Run, tag language.Tag) string {
	p := risk.Printer(tag)
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n\n", p.Sprintf(risk.MsgResultsTitle))
	if run.Source != "" {
		b.WriteString(run.Source + "\n\n")
	}

	sum, err := run.Series.Summary()
	if err != nil {
		b.WriteString(risk.NoPoseMessage(tag) + "\n")
		return b.String()
	}

	d := run.Series.Dropped
	labelled(&b,
		[]string{
			p.Sprintf(risk.MsgFrames),
			p.Sprintf(risk.MsgAverage),
			p.Sprintf(risk.MsgMaximum),
			p.Sprintf(risk.MsgMinimum),
			p.Sprintf(risk.MsgRiskLevel),
		},
		[]string{
			p.Sprintf("%d (-%d)", sum.Frames, d.Total()),
			p.Sprintf("%.2f", sum.Mean),
			p.Sprintf("%.0f", sum.Max),
			p.Sprintf("%.0f", sum.Min),
			fmt.Sprintf("%d - %s", int(sum.Risk), risk.Label(sum.Risk, tag)),
		})

	if run.Adjusted != nil {
		b.WriteString("\n")
		b.WriteString(FormatComparison(sum, run.Adjusted, tag))
	}
	return b.String()
}

// FormatComparison lays out original and adjusted statistics side by side.
func FormatComparison(original series.Summary, adj *series.Adjusted, tag language.Tag) string {
	p := risk.Printer(tag)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", p.Sprintf(risk.MsgAdjustments))
	for _, a := range ActiveAdjustments(adj, tag) {
		fmt.Fprintf(&b, "  + %s\n", a)
	}
	b.WriteString("\n")

	a := adj.Summary
	cols := []string{"", p.Sprintf(risk.MsgOriginal), p.Sprintf(risk.MsgAdjusted), "Δ"}
	rows := [][]string{
		{p.Sprintf(risk.MsgAverage), p.Sprintf("%.2f", original.Mean), p.Sprintf("%.2f", a.Mean), p.Sprintf("%+.2f", adj.Delta.Mean)},
		{p.Sprintf(risk.MsgMaximum), p.Sprintf("%.0f", original.Max), p.Sprintf("%.0f", a.Max), p.Sprintf("%+.0f", adj.Delta.Max)},
		{p.Sprintf(risk.MsgMinimum), p.Sprintf("%.0f", original.Min), p.Sprintf("%.0f", a.Min), p.Sprintf("%+.0f", adj.Delta.Min)},
		{p.Sprintf(risk.MsgRiskLevel), fmt.Sprint(int(original.Risk)), fmt.Sprint(int(a.Risk)), fmt.Sprintf("%+d", adj.Delta.Risk)},
	}
	writeTable(&b, cols, rows)

	fmt.Fprintf(&b, "\n%s - %s\n", p.Sprintf(risk.MsgRiskLevel), risk.Label(a.Risk, tag))
	b.WriteString(InterpretDelta(adj.Delta) + "\n")
	if ci := adj.Delta.CI; ci.NumBootstraps > 0 {
		fmt.Fprintf(&b, "%.0f%% CI of the per-frame change: [%.2f, %.2f]\n", ci.ConfidenceLevel*100, ci.Lower, ci.Upper)
	}
	return b.String()
}

// writeTable writes rows in columns aligned by display width.
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	line := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(c)
				continue
			}
			b.WriteString(padRight(c, widths[i]))
		}
		b.WriteString("\n")
	}
	line(header)
	for _, r := range rows {
		line(r)
	}
}

// ActiveAdjustments lists the localized labels of the flags and non-default
// factors applied in adj.
func ActiveAdjustments(adj *series.Adjusted, tag language.Tag) []string {
	p := risk.Printer(tag)
	var out []string
	for i, set := range adj.Overrides.Flags.Values() {
		if set {
			out = append(out, p.Sprintf(risk.FlagMessages[i]))
		}
	}
	f := adj.Overrides.Factors
	if f.WristTwist == 2 {
		out = append(out, p.Sprintf(risk.MsgWristTwist)+": "+p.Sprintf(risk.MsgWristTwistExtreme))
	}
	if f.Legs != 1 {
		out = append(out, p.Sprintf(risk.MsgLegs)+": "+p.Sprintf(risk.MsgLegsNotSupported))
	}
	if f.MuscleUse == 1 {
		out = append(out, p.Sprintf(risk.MsgMuscle)+": "+p.Sprintf(risk.MsgMuscleStatic))
	}
	if f.ForceLoad > 0 && f.ForceLoad < len(risk.ForceMessages) {
		out = append(out, p.Sprintf(risk.MsgForce)+": "+p.Sprintf(risk.ForceMessages[f.ForceLoad]))
	}
	return out
}
