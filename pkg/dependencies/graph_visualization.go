package dependencies

import (
	"bufio"
	"fmt"
	"io"
)

// CytoscapeNode represents a node in Cytoscape.js format
type CytoscapeNode struct {
	Data CytoscapeNodeData `json:"data"`
}

// CytoscapeNodeData contains node data for Cytoscape.js
type CytoscapeNodeData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "vertex", "lost"
}

// CytoscapeEdge represents an edge in Cytoscape.js format
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains edge data for Cytoscape.js
type CytoscapeEdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"` // "cycle" when the edge closes a reported cycle
}

// CytoscapeGraph represents the complete graph in Cytoscape.js format
type CytoscapeGraph struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

const (
	nodeVertex = "vertex"
	nodeLost   = "lost"
	edgeCycle  = "cycle"
)

// ToCytoscape converts the graph to Cytoscape.js format. Every edge that lies
// on one of the highlight paths is tagged as a cycle edge; lost vertices are
// emitted as nodes of type "lost".
func (g *DirectedGraph) ToCytoscape(highlight [][]string) CytoscapeGraph {
	cytoGraph := CytoscapeGraph{
		Nodes: make([]CytoscapeNode, 0, len(g.order)),
		Edges: make([]CytoscapeEdge, 0),
	}

	marked := highlightSet(highlight)
	visited := make(map[int]bool, len(g.order))

	for _, id := range g.order {
		visited[id] = true
		cytoGraph.Nodes = append(cytoGraph.Nodes, CytoscapeNode{
			Data: CytoscapeNodeData{ID: g.name(id), Name: g.name(id), Type: nodeVertex},
		})
	}

	for _, id := range g.order {
		source := g.name(id)
		for _, child := range uniqueIDs(g.children[id]) {
			target := g.name(child)
			if !visited[child] {
				visited[child] = true
				cytoGraph.Nodes = append(cytoGraph.Nodes, CytoscapeNode{
					Data: CytoscapeNodeData{ID: target, Name: target, Type: nodeLost},
				})
			}

			edge := CytoscapeEdgeData{
				ID:     source + "->" + target,
				Source: source,
				Target: target,
			}
			if marked[[2]string{source, target}] {
				edge.Type = edgeCycle
			}
			cytoGraph.Edges = append(cytoGraph.Edges, CytoscapeEdge{Data: edge})
		}
	}

	return cytoGraph
}

// WriteDOT writes the graph in Graphviz DOT format. Edges on the highlight
// paths are drawn red and lost vertices dashed.
func (g *DirectedGraph) WriteDOT(w io.Writer, highlight [][]string) error {
	bw := bufio.NewWriter(w)
	marked := highlightSet(highlight)

	fmt.Fprintln(bw, "digraph dependencies {")
	fmt.Fprintln(bw, "  rankdir=LR;")

	for _, id := range g.order {
		fmt.Fprintf(bw, "  %q;\n", g.name(id))
	}
	for _, lv := range g.TestLostVertexes() {
		fmt.Fprintf(bw, "  %q [style=dashed];\n", lv.Vertex)
	}

	for _, id := range g.order {
		source := g.name(id)
		for _, child := range uniqueIDs(g.children[id]) {
			target := g.name(child)
			if marked[[2]string{source, target}] {
				fmt.Fprintf(bw, "  %q -> %q [color=red];\n", source, target)
				continue
			}
			fmt.Fprintf(bw, "  %q -> %q;\n", source, target)
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func highlightSet(paths [][]string) map[[2]string]bool {
	marked := make(map[[2]string]bool)
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			marked[[2]string{path[i], path[i+1]}] = true
		}
	}
	return marked
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
