package system

import "container/heap"

// NodeID is the opaque handle of a system inside a [Builder]'s graph.
// It is only meaningful to the builder that returned it.
type NodeID int

// rootID is the synthetic node every traversal starts from.
const rootID NodeID = 0

type node struct {
	name        string
	routine     Routine
	placeholder bool
}

type edge struct {
	from, to NodeID
}

// graph is an append-only arena of nodes with adjacency lists in both
// directions. Nodes and edges are never removed.
type graph struct {
	nodes []node
	out   [][]NodeID // node -> nodes that run after it
	in    [][]NodeID // node -> nodes that run before it
	edges map[edge]struct{}
}

func newGraph() *graph {
	g := &graph{edges: make(map[edge]struct{})}
	g.addNode("", nil)
	return g
}

func (g *graph) addNode(name string, r Routine) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{name: name, routine: r})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

func (g *graph) node(id NodeID) (*node, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, false
	}
	return &g.nodes[id], true
}

// addEdge records from→to and reports whether the edge is new.
func (g *graph) addEdge(from, to NodeID) bool {
	e := edge{from: from, to: to}
	if _, ok := g.edges[e]; ok {
		return false
	}
	g.edges[e] = struct{}{}
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	return true
}

func (g *graph) nodeCount() int { return len(g.nodes) }

func (g *graph) edgeCount() int { return len(g.edges) }

// reachable marks every node reachable from start, start included.
func (g *graph) reachable(start NodeID) []bool {
	seen := make([]bool, len(g.nodes))
	stack := []NodeID{start}
	seen[start] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.out[n] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

// ancestors extends seen with every node that has a path into a node already
// in seen.
func (g *graph) ancestors(seen []bool) {
	var stack []NodeID
	for u, ok := range seen {
		if ok {
			stack = append(stack, NodeID(u))
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, prev := range g.in[n] {
			if !seen[prev] {
				seen[prev] = true
				stack = append(stack, prev)
			}
		}
	}
}

// topoOrder returns the nodes reachable from start in topological order,
// start first. Nodes outside that set that some of its members depend on are
// ordered as well, so nothing runs ahead of a dependency. The second result is
// false if some node could not be ordered, which only happens when the
// subgraph has a cycle.
//
// The ready queue is a min-heap on NodeID, so among nodes whose dependencies
// are all satisfied the one registered first comes first.
func (g *graph) topoOrder(start NodeID) ([]NodeID, bool) {
	seen := g.reachable(start)
	g.ancestors(seen)

	indeg := make([]int, len(g.nodes))
	total := 0
	for u := range g.nodes {
		if !seen[u] {
			continue
		}
		total++
		for _, v := range g.out[u] {
			indeg[v]++
		}
	}

	ready := &idHeap{}
	for u := range g.nodes {
		if seen[u] && indeg[u] == 0 {
			heap.Push(ready, NodeID(u))
		}
	}

	order := make([]NodeID, 0, total)
	for ready.Len() > 0 {
		u := heap.Pop(ready).(NodeID)
		order = append(order, u)
		for _, v := range g.out[u] {
			indeg[v]--
			if indeg[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}
	return order, len(order) == total
}

type idHeap []NodeID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(NodeID)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
