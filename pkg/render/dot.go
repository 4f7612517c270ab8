package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/sysbuild/pkg/system"
)

// Options configures diagram generation.
type Options struct {
	// Order is the build order as returned by [system.Builder.Plan]. When
	// set, labels carry the 1-based build position.
	Order []string
	// Detailed lists each system's dependencies in its label.
	Detailed bool
}

// ToDOT converts a graph snapshot to Graphviz DOT source.
func ToDOT(g system.Graph, opts Options) string {
	pos := make(map[string]int, len(opts.Order))
	for i, name := range opts.Order {
		pos[name] = i + 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, s := range g.Systems {
		label := fmtLabel(s, pos[s.Name], opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", s.Name, strings.Join(fmtAttrs(s, label), ", "))
	}

	buf.WriteString("\n")
	for _, s := range g.Systems {
		for _, dep := range s.Deps {
			fmt.Fprintf(&buf, "  %q -> %q;\n", s.Name, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s system.SystemInfo, position int, detailed bool) string {
	label := s.Name
	if position > 0 {
		label = fmt.Sprintf("%d. %s", position, s.Name)
	}
	if !detailed {
		return label
	}

	var parts []string
	if s.Placeholder {
		parts = append(parts, "not registered")
	}
	if len(s.Deps) > 0 {
		parts = append(parts, "deps: "+strings.Join(s.Deps, ", "))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(s system.SystemInfo, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if s.Placeholder {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}
