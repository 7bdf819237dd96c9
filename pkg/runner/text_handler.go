package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TextHandler renders frames as a table grouped by label prefix
// ("wheel_1.speed" goes to row "wheel_1", column "speed").
//
// On a terminal the table is redrawn in place with colours; otherwise every
// frame is appended as plain text.
type TextHandler struct {
	Writer io.Writer

	output *termenv.Output
	live   bool
	bounds map[string]domain.Range

	mu    sync.Mutex
	start time.Time
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithLive forces in-place redrawing on or off.
func WithLive(live bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.live = live
	}
}

// WithBounds highlights values close to the upper bound of their output.
func WithBounds(outputs []domain.Output) TextHandlerOption {
	return func(h *TextHandler) {
		h.bounds = make(map[string]domain.Range, len(outputs))
		for _, out := range outputs {
			h.bounds[out.Label] = out.Node.Bounds()
		}
	}
}

// NewTextHandler creates a handler writing to w (default: stdout).
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer: w,
		live:   IsTerminal(w),
	}
	for _, opt := range opts {
		opt(h)
	}

	profile := termenv.Ascii
	if h.live {
		profile = termenv.EnvColorProfile()
	}
	h.output = termenv.NewOutput(w, termenv.WithProfile(profile))
	return h
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Output draws one frame.
func (h *TextHandler) Output(_ context.Context, frame domain.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.start.IsZero() {
		h.start = frame.Time
	}

	if h.live {
		h.output.ClearScreen()
		h.output.MoveCursor(1, 1)
	}
	_, err := io.WriteString(h.Writer, h.render(frame))
	return err
}

// SystemOutput prints a status line.
func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := h.output.String("[System] " + msg).Foreground(h.output.Color("#a78bfa"))
	_, err := fmt.Fprintf(h.Writer, "%s\n", line)
	return err
}

func (h *TextHandler) render(frame domain.Frame) string {
	var sb strings.Builder

	header := fmt.Sprintf("frame #%d  t=%.2fs", frame.Seq, frame.Time.Sub(h.start).Seconds())
	sb.WriteString(h.output.String(header).Bold().String())
	sb.WriteString("\n")

	groups, order := groupLabels(frame)
	width := 0
	for _, g := range order {
		width = max(width, len(g))
	}

	for _, g := range order {
		sb.WriteString(h.output.String(fmt.Sprintf("%-*s", width, g)).Foreground(h.output.Color("#818cf8")).String())
		for _, i := range groups[g] {
			label := frame.Labels[i]
			field := label
			if _, f, ok := strings.Cut(label, "."); ok {
				field = f
			}
			value := fmt.Sprintf("%9.2f", frame.Values[i])
			if field == g {
				sb.WriteString("  " + h.colorize(label, frame.Values[i], value))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s=%s", field, h.colorize(label, frame.Values[i], value)))
		}
		sb.WriteString("\n")
	}
	if !h.live {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (h *TextHandler) colorize(label string, v float64, text string) string {
	r, ok := h.bounds[label]
	if !ok || r.Upper <= r.Lower {
		return text
	}
	color := "#5fd7ff"
	if (v-r.Lower)/(r.Upper-r.Lower) >= 0.9 {
		color = "#fb7185"
	}
	return h.output.String(text).Foreground(h.output.Color(color)).String()
}

// groupLabels splits labels on their first dot, keeping first-seen order.
func groupLabels(frame domain.Frame) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i, label := range frame.Labels {
		g, _, ok := strings.Cut(label, ".")
		if !ok {
			g = label
		}
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], i)
	}
	return groups, order
}
