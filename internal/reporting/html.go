package reporting

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/risk"
)

// Markdown renders a run as a Markdown document with a summary table, the
// adjustment comparison when present, and the per-frame timeline.
func Markdown(run *export.Run, tag language.Tag) string {
	p := risk.Printer(tag)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Sprintf(risk.MsgResultsTitle))
	if run.Source != "" {
		fmt.Fprintf(&b, "`%s` · %s\n\n", run.Source, run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	sum, err := run.Series.Summary()
	if err != nil {
		fmt.Fprintf(&b, "> %s\n", risk.NoPoseMessage(tag))
		return b.String()
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", p.Sprintf(risk.MsgFrames), p.Sprintf("%d", sum.Frames))
	fmt.Fprintf(&b, "| %s | %s |\n", p.Sprintf(risk.MsgAverage), p.Sprintf("%.2f", sum.Mean))
	fmt.Fprintf(&b, "| %s | %s |\n", p.Sprintf(risk.MsgMaximum), p.Sprintf("%.0f", sum.Max))
	fmt.Fprintf(&b, "| %s | %s |\n", p.Sprintf(risk.MsgMinimum), p.Sprintf("%.0f", sum.Min))
	fmt.Fprintf(&b, "| %s | **%d** - %s |\n\n", p.Sprintf(risk.MsgRiskLevel), int(sum.Risk), risk.Label(sum.Risk, tag))

	adj := run.Adjusted
	if adj != nil {
		fmt.Fprintf(&b, "## %s\n\n", p.Sprintf(risk.MsgAdjustments))
		for _, a := range ActiveAdjustments(adj, tag) {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		fmt.Fprintf(&b, "\n| | %s | %s |\n|---|---|---|\n", p.Sprintf(risk.MsgOriginal), p.Sprintf(risk.MsgAdjusted))
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Sprintf(risk.MsgAverage), p.Sprintf("%.2f", sum.Mean), p.Sprintf("%.2f", adj.Summary.Mean))
		fmt.Fprintf(&b, "| %s | %d | %d |\n\n", p.Sprintf(risk.MsgRiskLevel), int(sum.Risk), int(adj.Summary.Risk))
		fmt.Fprintf(&b, "%s\n\n", InterpretDelta(adj.Delta))
	}

	b.WriteString("## Timeline\n\n")
	if adj != nil {
		fmt.Fprintf(&b, "| frame | time_sec | score_a | score_b | rula_score | %s |\n|---|---|---|---|---|---|\n", export.ColAdjustedRULA)
	} else {
		b.WriteString("| frame | time_sec | score_a | score_b | rula_score |\n|---|---|---|---|---|\n")
	}
	for i, f := range run.Series.Frames {
		fmt.Fprintf(&b, "| %d | %.2f | %d | %d | %d |", f.FrameIndex, f.TimestampSeconds, f.ScoreA, f.ScoreB, f.FinalScore)
		if adj != nil && i < len(adj.Frames) {
			fmt.Fprintf(&b, " %d |", adj.Frames[i].FinalScore)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteHTML converts the Markdown report to a standalone HTML page.
func WriteHTML(w io.Writer, run *export.Run, tag language.Tag) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(run, tag)), &body); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	title := html.EscapeString(risk.Printer(tag).Sprintf(risk.MsgResultsTitle))
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
</style>
</head>
<body>
%s</body>
</html>
`, tag, title, body.String())
	return err
}
