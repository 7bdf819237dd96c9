package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/espalier/pkg/ports"
)

// SeriesSummary condenses the recorded window of one output.
type SeriesSummary struct {
	Label   string
	Samples int
	Span    time.Duration
	Min     float64
	Max     float64
	Mean    float64
	Last    float64
}

// Summarize reads the window of every label from rec. When labels is empty
// every recorded label is used. Labels without points are skipped.
func Summarize(ctx context.Context, rec ports.Recorder, labels ...string) ([]SeriesSummary, error) {
	if len(labels) == 0 {
		var err error
		if labels, err = rec.Labels(ctx); err != nil {
			return nil, fmt.Errorf("list labels: %w", err)
		}
	}

	summaries := make([]SeriesSummary, 0, len(labels))
	for _, label := range labels {
		points, err := rec.Window(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", label, err)
		}
		if len(points) == 0 {
			continue
		}

		s := SeriesSummary{
			Label:   label,
			Samples: len(points),
			Span:    points[len(points)-1].Time.Sub(points[0].Time),
			Min:     points[0].Value,
			Max:     points[0].Value,
			Last:    points[len(points)-1].Value,
		}
		var sum float64
		for _, p := range points {
			s.Min = min(s.Min, p.Value)
			s.Max = max(s.Max, p.Value)
			sum += p.Value
		}
		s.Mean = sum / float64(len(points))
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ReportMarkdown formats summaries as a markdown table under a heading.
func ReportMarkdown(title string, summaries []SeriesSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(summaries) == 0 {
		sb.WriteString("_No samples recorded._\n")
		return sb.String()
	}

	sb.WriteString("| Output | Samples | Span | Min | Mean | Max | Last |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range summaries {
		fmt.Fprintf(&sb, "| `%s` | %d | %.1fs | %.2f | %.2f | %.2f | %.2f |\n",
			s.Label, s.Samples, s.Span.Seconds(), s.Min, s.Mean, s.Max, s.Last)
	}
	return sb.String()
}
