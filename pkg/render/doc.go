// Package render draws a builder's dependency graph as a node-link diagram.
//
// # Usage
//
// Take a snapshot of the builder before building, convert it to DOT, and
// optionally render SVG in-process:
//
//	g, _ := b.Snapshot()
//	order, _ := b.Plan()
//	dot := render.ToDOT(g, render.Options{Order: order})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # DOT Format
//
// Arrows point from a system to the systems it depends on, so with the
// top-to-bottom layout dependents sit above their dependencies. Systems that
// were referenced but never registered are drawn dashed and grey; building
// such a graph fails with MISSING_DEPENDENT_SYSTEM.
//
// When [Options.Order] is set, each label is prefixed with the system's
// position in the build order.
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz
// and needs no external binaries.
package render
