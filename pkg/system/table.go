package system

// nodeTable maps system names to their node in the graph.
type nodeTable map[string]NodeID

// registerOrUpdate attaches r to name. A new name gets a new node; a known
// name keeps its node and edges and only has its routine replaced.
func (b *Builder) registerOrUpdate(name string, r Routine) (NodeID, error) {
	if id, ok := b.table[name]; ok {
		n, ok := b.graph.node(id)
		if !ok {
			return 0, duplicateSystemError(name)
		}
		if n.placeholder {
			b.logger.Debug("resolved placeholder", "system", name)
		} else {
			b.logger.Debug("replaced system routine", "system", name)
		}
		n.routine = r
		n.placeholder = false
		return id, nil
	}

	id := b.graph.addNode(name, r)
	b.table[name] = id
	b.logger.Debug("registered system", "system", name, "id", int(id))
	return id, nil
}

// placeholder returns the node for dep, creating a failing stand-in hung off
// the root when the name is unknown. The second result reports creation.
func (b *Builder) placeholder(dep string) (NodeID, bool) {
	if id, ok := b.table[dep]; ok {
		return id, false
	}
	id := b.graph.addNode(dep, missingSystem(dep))
	b.graph.nodes[id].placeholder = true
	b.graph.addEdge(rootID, id)
	b.table[dep] = id
	b.logger.Debug("created placeholder", "system", dep, "id", int(id))
	return id, true
}
