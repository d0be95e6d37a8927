// Package refgraph builds and queries the file-level reference graph.
//
// Nodes are interned into an arena and addressed by int32 handles so
// adjacency lists and traversal sets stay compact even for large
// workspaces. Cycle detection delegates to gonum's Tarjan SCC.
package refgraph

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/vestigehq/vestige/pkg/models"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is a directed dependency graph over string node ids (file paths).
// It is not safe for concurrent mutation; build it fully, then query.
type Graph struct {
	names []string
	index map[string]int32
	out   [][]int32
	in    [][]int32
	edges map[uint64]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int32),
		edges: make(map[uint64]struct{}),
	}
}

// Add interns a node and returns its handle. Adding an existing node is a
// no-op that returns the original handle.
func (g *Graph) Add(name string) int32 {
	if h, ok := g.index[name]; ok {
		return h
	}
	h := int32(len(g.names))
	g.names = append(g.names, name)
	g.index[name] = h
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return h
}

// Handle looks up the handle for a node id.
func (g *Graph) Handle(name string) (int32, bool) {
	h, ok := g.index[name]
	return h, ok
}

// Name returns the node id for a handle.
func (g *Graph) Name(h int32) string {
	return g.names[h]
}

// AddEdge records a directed dependency from -> to, interning both nodes.
// Self-loops and duplicate edges are dropped.
func (g *Graph) AddEdge(from, to string) {
	f := g.Add(from)
	t := g.Add(to)
	if f == t {
		return
	}
	packed := uint64(uint32(f))<<32 | uint64(uint32(t))
	if _, dup := g.edges[packed]; dup {
		return
	}
	g.edges[packed] = struct{}{}
	g.out[f] = append(g.out[f], t)
	g.in[t] = append(g.in[t], f)
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.names) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns all node ids in insertion order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, len(g.names))
	copy(nodes, g.names)
	return nodes
}

// Dependencies returns the node ids that name directly imports.
func (g *Graph) Dependencies(name string) []string {
	h, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.resolve(g.out[h])
}

// Dependents returns the node ids that directly import name.
func (g *Graph) Dependents(name string) []string {
	h, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.resolve(g.in[h])
}

func (g *Graph) resolve(handles []int32) []string {
	if len(handles) == 0 {
		return nil
	}
	names := make([]string, len(handles))
	for i, h := range handles {
		names[i] = g.names[h]
	}
	sort.Strings(names)
	return names
}

// Reachable runs a BFS from start and returns the set of visited handles
// as a bitmap, excluding start itself. With reverse set, edges are walked
// backwards, yielding the transitive dependents of start.
func (g *Graph) Reachable(start string, reverse bool) *roaring.Bitmap {
	visited := roaring.New()
	h, ok := g.index[start]
	if !ok {
		return visited
	}

	adj := g.out
	if reverse {
		adj = g.in
	}

	queue := []int32{h}
	seen := roaring.New()
	seen.Add(uint32(h))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if seen.Contains(uint32(next)) {
				continue
			}
			seen.Add(uint32(next))
			visited.Add(uint32(next))
			queue = append(queue, next)
		}
	}
	return visited
}

// RemoveNode detaches a node from the graph by pruning every edge that
// touches it. The handle stays allocated so other handles remain stable.
func (g *Graph) RemoveNode(name string) {
	h, ok := g.index[name]
	if !ok {
		return
	}
	for _, t := range g.out[h] {
		g.in[t] = pruneHandle(g.in[t], h)
		delete(g.edges, uint64(uint32(h))<<32|uint64(uint32(t)))
	}
	for _, f := range g.in[h] {
		g.out[f] = pruneHandle(g.out[f], h)
		delete(g.edges, uint64(uint32(f))<<32|uint64(uint32(h)))
	}
	g.out[h] = nil
	g.in[h] = nil
	delete(g.index, name)
}

func pruneHandle(handles []int32, drop int32) []int32 {
	kept := handles[:0]
	for _, h := range handles {
		if h != drop {
			kept = append(kept, h)
		}
	}
	return kept
}

// Cycles finds all strongly connected components with more than one member
// and returns them as canonical, deduplicated cycles sorted by their first
// node. Each set of mutually dependent files is reported exactly once.
func (g *Graph) Cycles() []models.Cycle {
	if len(g.names) == 0 {
		return nil
	}

	directed := simple.NewDirectedGraph()
	for h := range g.names {
		directed.AddNode(simple.Node(int64(h)))
	}
	for packed := range g.edges {
		f := int64(int32(packed >> 32))
		t := int64(int32(packed & 0xffffffff))
		directed.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
	}

	seen := make(map[string]bool)
	var cycles []models.Cycle
	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) < 2 {
			continue
		}
		cycle := models.Cycle{Nodes: make([]string, 0, len(scc))}
		for _, n := range scc {
			cycle.Nodes = append(cycle.Nodes, g.names[n.ID()])
		}
		// Tarjan yields members in traversal order, which depends on edge
		// iteration; sort for stable output before canonicalizing.
		sort.Strings(cycle.Nodes)
		cycle.Canonicalize()
		key := cycle.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		cycles = append(cycles, cycle)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Nodes[0] < cycles[j].Nodes[0]
	})
	return cycles
}
