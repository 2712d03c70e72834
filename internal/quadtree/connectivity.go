package quadtree

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Connectivity describes tree-to-tree adjacency for a forest. It is
// explicitly out of scope as a data structure in spec §1 ("The
// connectivity graph describing tree adjacency" is listed as an external
// collaborator), but §5 and §6 both name it as something an inflated
// forest borrows and must outlive, so it needs a concrete shape here. We
// represent it with gonum's simple.UndirectedGraph, the same graph type
// the teacher's internal/batch package uses for its build dependency DAG.
type Connectivity struct {
	NumTrees int
	graph    *simple.UndirectedGraph
}

// NewConnectivity builds a connectivity graph over numTrees trees with no
// edges; call Connect to record adjacency.
func NewConnectivity(numTrees int) *Connectivity {
	g := simple.NewUndirectedGraph()
	for i := 0; i < numTrees; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	return &Connectivity{NumTrees: numTrees, graph: g}
}

// Connect records that trees a and b share a face/edge/corner.
func (c *Connectivity) Connect(a, b int) {
	if a == b {
		return
	}
	c.graph.SetEdge(c.graph.NewEdge(simple.Node(int64(a)), simple.Node(int64(b))))
}

// Neighbors returns the trees adjacent to tree t.
func (c *Connectivity) Neighbors(t int) []int {
	it := c.graph.From(int64(t))
	var out []int
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	return out
}

// Graph exposes the underlying gonum graph for callers that want to run
// generic graph algorithms (shortest path, connected components) over tree
// adjacency.
func (c *Connectivity) Graph() graph.Undirected { return c.graph }
