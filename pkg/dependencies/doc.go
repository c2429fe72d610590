// Package dependencies provides the directed dependency graph used to verify
// module and group relations.
//
// # Overview
//
// A DirectedGraph stores vertices by interned id. Children are fixed when a
// vertex is registered and may name vertices that do not exist yet; those
// dangling targets are lost vertices and are reported by TestLostVertexes.
//
// # Usage Example
//
// Build a graph and inspect it:
//
//	g := dependencies.NewDirectedGraph()
//	_ = g.Put("Controls/list", []string{"UI/base", "Types/entity"})
//	_ = g.Put("UI/base", nil)
//
//	for _, lost := range g.TestLostVertexes() {
//		fmt.Printf("%s referenced by %v\n", lost.Vertex, lost.Parents)
//	}
//
// Detect circular dependencies:
//
//	g.TestCycles(func(path []string) {
//		fmt.Println(strings.Join(path, " -> "))
//	})
//
// Transitive closure:
//
//	deep, err := g.GetDeep("Controls/list")
//	var cycle *dependencies.CycleError
//	if errors.As(err, &cycle) {
//		fmt.Printf("cycle: %v\n", cycle.Path)
//	}
//
// Export for visualization:
//
//	data, _ := json.Marshal(g.ToCytoscape(nil))
//	_ = g.WriteDOT(os.Stdout, nil)
//
// # Related Packages
//
//   - pkg/intern: string to id table backing the graph
//   - pkg/analyzer: builds module and group graphs from build artifacts
package dependencies
