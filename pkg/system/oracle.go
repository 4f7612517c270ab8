package system

// cycleOracle answers reachability queries against a graph while reusing its
// working memory between queries. A node is visited in the current query iff
// its mark equals epoch, so starting a new query is a counter bump rather
// than a clear.
type cycleOracle struct {
	marks []uint32
	epoch uint32
	stack []NodeID
}

// reaches reports whether to is reachable from from by following edges.
// A node always reaches itself.
func (o *cycleOracle) reaches(g *graph, from, to NodeID) bool {
	if from == to {
		return true
	}
	o.begin(g.nodeCount())

	o.stack = append(o.stack[:0], from)
	o.marks[from] = o.epoch
	for len(o.stack) > 0 {
		n := o.stack[len(o.stack)-1]
		o.stack = o.stack[:len(o.stack)-1]
		for _, next := range g.out[n] {
			if next == to {
				return true
			}
			if o.marks[next] == o.epoch {
				continue
			}
			o.marks[next] = o.epoch
			o.stack = append(o.stack, next)
		}
	}
	return false
}

func (o *cycleOracle) begin(n int) {
	if len(o.marks) < n {
		o.marks = append(o.marks, make([]uint32, n-len(o.marks))...)
	}
	o.epoch++
	if o.epoch == 0 {
		// Counter wrapped; old marks could collide with the new epoch.
		clear(o.marks)
		o.epoch = 1
	}
}
