package system

// Graph is a read-only copy of a builder's systems and dependencies, used
// for rendering and inspection. Changing it does not affect the builder.
type Graph struct {
	Systems []SystemInfo // Registration order
}

// SystemInfo describes one named node of the dependency graph.
type SystemInfo struct {
	Name        string
	Deps        []string // Direct dependencies, in declaration order
	Placeholder bool     // Referenced as a dependency but never registered
}

// Placeholders returns the names of systems that are still placeholders.
func (g Graph) Placeholders() []string {
	var names []string
	for _, s := range g.Systems {
		if s.Placeholder {
			names = append(names, s.Name)
		}
	}
	return names
}

// EdgeCount returns the number of dependency edges between named systems.
// Edges from the root are not counted.
func (g Graph) EdgeCount() int {
	n := 0
	for _, s := range g.Systems {
		n += len(s.Deps)
	}
	return n
}

// Snapshot copies the current graph. It returns an ALREADY_BUILT error once
// the builder has been consumed.
func (b *Builder) Snapshot() (Graph, error) {
	if b.built {
		return Graph{}, alreadyBuiltError()
	}
	g := Graph{Systems: make([]SystemInfo, 0, len(b.table))}
	for id := 1; id < b.graph.nodeCount(); id++ {
		n := b.graph.nodes[id]
		deps, _ := b.Dependencies(n.name)
		g.Systems = append(g.Systems, SystemInfo{
			Name:        n.name,
			Deps:        deps,
			Placeholder: n.placeholder,
		})
	}
	return g, nil
}
