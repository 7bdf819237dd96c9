package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// GraphOverlay contains live values to print on the labelled nodes.
type GraphOverlay struct {
	// Values maps output labels to their current value.
	Values map[string]float64
	// Highlight lists labels to draw with the "hot" style.
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart of the node graph.
// Edges point from a node to the node that reads it. Shapes follow the kind:
//   - Input: [/Parallelogram/]
//   - Constant: ((Circle))
//   - Conditional: {Rhombus}
//   - Integrator, latch, delay: [[Subroutine]]
//   - Slot: {{Hexagon}}, fed by a dotted edge since it closes a feedback loop
//   - Default: [Rectangle]
func GenerateMermaid(nodes []domain.NodeInfo, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	kinds := make(map[string]string, len(nodes))
	for _, n := range nodes {
		kinds[n.ID] = n.Kind
	}

	for _, n := range nodes {
		safeID := sanitizeMermaidID(n.ID)
		opener, closer := shape(n.Kind)

		text := n.Kind
		if n.Label != "" {
			text = fmt.Sprintf("%s <br/> %s", n.Label, n.Kind)
			if overlay != nil {
				if v, ok := overlay.Values[n.Label]; ok {
					text += fmt.Sprintf(" = %.2f", v)
				}
			}
		}
		text += fmt.Sprintf(" <br/> [%g, %g]", n.Bounds.Lower, n.Bounds.Upper)
		if n.Ticking {
			text += " ⏱️"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(text), closer)
	}

	for _, n := range nodes {
		arrow := "-->"
		if n.Kind == domain.KindSlot {
			arrow = "-.->"
		}
		for _, child := range n.Children {
			if _, ok := kinds[child]; !ok {
				continue
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(child), arrow, sanitizeMermaidID(n.ID))
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef hot fill:#ffe4e6,stroke:#e11d48,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, n := range nodes {
			if n.Label == "" || seen[n.ID] || !slices.Contains(overlay.Highlight, n.Label) {
				continue
			}
			seen[n.ID] = true
			fmt.Fprintf(&sb, "    class %s hot;\n", sanitizeMermaidID(n.ID))
		}
	}

	return sb.String()
}

func shape(kind string) (string, string) {
	switch kind {
	case domain.KindInput:
		return "[/", "/]"
	case domain.KindConstant:
		return "((", "))"
	case domain.KindConditional:
		return "{", "}"
	case domain.KindIntegrator, domain.KindLatch, domain.KindDelay:
		return "[[", "]]"
	case domain.KindSlot:
		return "{{", "}}"
	}
	return "[", "]"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
