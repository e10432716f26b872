// Package report renders suite reports for humans and machines.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mittwald/pageprobe/pkg/probe"
	"github.com/mittwald/pageprobe/pkg/suite"
)

const lineWidth = 72

type TextPrinter struct {
	w io.Writer

	success   func(a ...interface{}) string
	failure   func(a ...interface{}) string
	warning   func(a ...interface{}) string
	highlight func(a ...interface{}) string

	summaryOK   lipgloss.Style
	summaryFail lipgloss.Style
}

func NewTextPrinter(w io.Writer, noColor bool) *TextPrinter {
	colors := []*color.Color{
		color.New(color.FgHiGreen, color.Bold),
		color.New(color.FgHiRed, color.Bold),
		color.New(color.FgHiYellow),
		color.New(color.FgHiBlue),
	}
	for _, c := range colors {
		if noColor {
			c.DisableColor()
		}
	}

	renderer := lipgloss.NewRenderer(w)
	box := renderer.NewStyle().
		Padding(0, 1).
		Margin(1, 0).
		BorderStyle(lipgloss.RoundedBorder()).
		Width(lineWidth)

	p := &TextPrinter{
		w:           w,
		success:     colors[0].SprintFunc(),
		failure:     colors[1].SprintFunc(),
		warning:     colors[2].SprintFunc(),
		highlight:   colors[3].SprintFunc(),
		summaryOK:   box.Copy().BorderForeground(lipgloss.Color("#00B785")),
		summaryFail: box.Copy().BorderForeground(lipgloss.Color("#E1244C")),
	}

	return p
}

// Text prints reports to w.
func Text(w io.Writer, noColor bool, reports ...*suite.Report) {
	NewTextPrinter(w, noColor).Print(reports...)
}

func (p *TextPrinter) Print(reports ...*suite.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(p.w, "No suite was run.")
		return
	}

	total, passed := 0, 0
	for _, r := range reports {
		p.printSuite(r)
		total += r.Total
		passed += r.Passed
	}

	rate := 0.0
	if total > 0 {
		rate = float64(passed) / float64(total) * 100
	}

	style := p.summaryOK
	verdict := "All probes passed."
	if passed != total {
		style = p.summaryFail
		verdict = "Some probes need attention."
	}

	fmt.Fprintln(p.w, style.Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Passed probes: %d/%d (%.1f%%)", passed, total, rate),
		verdict,
	)))
}

func (p *TextPrinter) printSuite(r *suite.Report) {
	fmt.Fprintf(p.w, "\n%s\n", strings.Repeat("=", lineWidth))
	fmt.Fprintf(p.w, "Suite: %s (%s)\n", p.highlight(r.Suite), r.Duration.Round(time.Millisecond))
	fmt.Fprintf(p.w, "%s\n", strings.Repeat("-", lineWidth))

	for _, res := range r.Results {
		p.printResult(res)
	}

	fmt.Fprintf(p.w, "\n%d passed, %d mismatched, %d could not run (%.1f%%)\n",
		r.Passed, r.Mismatched, r.Errored, r.SuccessRate)
}

func (p *TextPrinter) printResult(res *probe.Result) {
	name := res.Name
	if name == "" {
		name = res.URL
	}

	if !res.Ran() {
		fmt.Fprintf(p.w, "%s %s %s\n", p.warning("⚠ ERROR"), p.highlight(name), res.URL)
		fmt.Fprintf(p.w, "   %s: %s\n", res.Failure, p.failure(res.Message))
		if res.ContentType != "" {
			fmt.Fprintf(p.w, "   content-type: %s\n", res.ContentType)
		}
		return
	}

	status := p.success("✅ PASS")
	if !res.Passed {
		status = p.failure("❌ FAIL")
	}

	fmt.Fprintf(p.w, "%s %s %s %d/%d markers (%.1f%%, threshold %.0f%%)\n",
		status, p.highlight(name), res.URL, res.Found, res.Total, res.Percent(), res.Threshold*100)
	if res.ContentType != "" {
		fmt.Fprintf(p.w, "   content-type: %s\n", res.ContentType)
	}

	for _, m := range res.Markers {
		mark := p.success("✓")
		if !m.Found {
			mark = p.failure("✗")
		}
		fmt.Fprintf(p.w, "   %s %s\n", mark, m.Marker.String())
	}
}
