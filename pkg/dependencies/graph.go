package dependencies

import (
	"sort"
	"strconv"
	"strings"

	"github.com/platinummonkey/modverify/pkg/intern"
)

// DirectedGraph is a dependency graph over interned vertex names.
//
// Vertices are addressed by dense ids from an intern.Interner; the children
// of a vertex are frozen when it is registered with Put or replaced with
// Modify. An edge may point at a vertex that was never registered (a lost
// vertex); TestLostVertexes reports those and they should be resolved before
// reachability or cycle results are trusted.
//
// A DirectedGraph is not safe for concurrent use.
type DirectedGraph struct {
	names      *intern.Interner
	children   [][]int
	registered []bool
	order      []int

	// memo holds GetDeep results by vertex id; any mutation drops it
	memo map[int][]int
}

// LostVertex is an edge target that was never registered, together with
// every registered vertex referencing it.
type LostVertex struct {
	Vertex  string
	Parents []string
}

// NewDirectedGraph creates an empty graph
func NewDirectedGraph() *DirectedGraph {
	return &DirectedGraph{
		names: intern.New(),
		memo:  make(map[int][]int),
	}
}

// Put registers vertex with the given children. Registering the same vertex
// twice fails with ErrDuplicateVertex.
func (g *DirectedGraph) Put(vertex string, children []string) error {
	id := g.encode(vertex)
	if g.registered[id] {
		return &VertexError{Op: "put", Vertex: vertex, Err: ErrDuplicateVertex}
	}

	g.children[id] = g.encodeAll(children)
	g.registered[id] = true
	g.order = append(g.order, id)
	g.invalidate()
	return nil
}

// Modify replaces the children of a registered vertex
func (g *DirectedGraph) Modify(vertex string, children []string) error {
	id, ok := g.lookup(vertex)
	if !ok {
		return &VertexError{Op: "modify", Vertex: vertex, Err: ErrUnknownVertex}
	}

	g.children[id] = g.encodeAll(children)
	g.invalidate()
	return nil
}

// Get returns the children of vertex
func (g *DirectedGraph) Get(vertex string) ([]string, bool) {
	id, ok := g.lookup(vertex)
	if !ok {
		return nil, false
	}
	return g.decodeAll(g.children[id]), true
}

// Has reports whether vertex is registered
func (g *DirectedGraph) Has(vertex string) bool {
	_, ok := g.lookup(vertex)
	return ok
}

// Delete unregisters vertex. Edges pointing at it are kept and turn it into
// a lost vertex.
func (g *DirectedGraph) Delete(vertex string) bool {
	id, ok := g.lookup(vertex)
	if !ok {
		return false
	}

	g.registered[id] = false
	g.children[id] = nil
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.invalidate()
	return true
}

// Len returns the number of registered vertices
func (g *DirectedGraph) Len() int {
	return len(g.order)
}

// Vertices returns the registered vertices in registration order
func (g *DirectedGraph) Vertices() []string {
	return g.decodeAll(g.order)
}

// Parents returns the registered vertices that have an edge to vertex, in
// registration order.
func (g *DirectedGraph) Parents(vertex string) []string {
	target, ok := g.names.Lookup(vertex)
	if !ok {
		return nil
	}

	parents := make([]string, 0)
	for _, id := range g.order {
		for _, child := range g.children[id] {
			if child == target {
				parents = append(parents, g.name(id))
				break
			}
		}
	}
	return parents
}

// Reverse returns a new graph containing every registered vertex with its
// edges flipped. Edges to lost vertices are dropped.
func (g *DirectedGraph) Reverse() *DirectedGraph {
	reversed := make(map[int][]string, len(g.order))
	for _, id := range g.order {
		for _, child := range g.children[id] {
			if g.isRegistered(child) {
				reversed[child] = append(reversed[child], g.name(id))
			}
		}
	}

	out := NewDirectedGraph()
	for _, id := range g.order {
		// registration order is unique, Put cannot fail here
		_ = out.Put(g.name(id), reversed[id])
	}
	return out
}

// GetDeep returns every vertex transitively reachable from vertex, sorted.
//
// The traversal is strict: it fails with a *CycleError when it runs into a
// cycle and with ErrUnknownVertex when vertex, or any vertex it reaches, was
// never registered. Results are memoized until the next mutation.
func (g *DirectedGraph) GetDeep(vertex string) ([]string, error) {
	id, ok := g.lookup(vertex)
	if !ok {
		return nil, &VertexError{Op: "getDeep", Vertex: vertex, Err: ErrUnknownVertex}
	}

	ids, err := g.deep(id)
	if err != nil {
		return nil, err
	}

	out := g.decodeAll(ids)
	sort.Strings(out)
	return out, nil
}

// Reachable returns every registered vertex reachable from vertex, sorted,
// excluding vertex itself. Unlike GetDeep it tolerates cycles and skips lost
// vertices, and its results are not memoized.
func (g *DirectedGraph) Reachable(vertex string) ([]string, error) {
	root, ok := g.lookup(vertex)
	if !ok {
		return nil, &VertexError{Op: "reachable", Vertex: vertex, Err: ErrUnknownVertex}
	}

	seen := map[int]struct{}{root: {}}
	queue := []int{root}
	out := make([]string, 0)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.children[id] {
			if _, ok := seen[child]; ok || !g.isRegistered(child) {
				continue
			}
			seen[child] = struct{}{}
			queue = append(queue, child)
			out = append(out, g.name(child))
		}
	}

	sort.Strings(out)
	return out, nil
}

type frame struct {
	id   int
	next int
}

func (g *DirectedGraph) deep(root int) ([]int, error) {
	if cached, ok := g.memo[root]; ok {
		return cached, nil
	}

	stack := []frame{{id: root}}
	onPath := map[int]int{root: 0}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := g.children[top.id]

		if top.next < len(kids) {
			child := kids[top.next]
			top.next++

			if !g.isRegistered(child) {
				return nil, &VertexError{Op: "getDeep", Vertex: g.name(child), Err: ErrUnknownVertex}
			}
			if at, ok := onPath[child]; ok {
				path := make([]string, 0, len(stack)-at+1)
				for _, f := range stack[at:] {
					path = append(path, g.name(f.id))
				}
				path = append(path, g.name(child))
				return nil, &CycleError{Path: path}
			}
			if _, done := g.memo[child]; done {
				continue
			}

			onPath[child] = len(stack)
			stack = append(stack, frame{id: child})
			continue
		}

		seen := make(map[int]struct{})
		reach := make([]int, 0, len(kids))
		add := func(id int) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				reach = append(reach, id)
			}
		}
		for _, child := range kids {
			add(child)
			for _, d := range g.memo[child] {
				add(d)
			}
		}

		g.memo[top.id] = reach
		delete(onPath, top.id)
		stack = stack[:len(stack)-1]
	}

	return g.memo[root], nil
}

// TestLostVertexes returns every edge target that was never registered,
// each exactly once, in first-reference order.
func (g *DirectedGraph) TestLostVertexes() []LostVertex {
	index := make(map[int]int)
	lost := make([]LostVertex, 0)

	for _, parent := range g.order {
		parentName := g.name(parent)
		for _, child := range g.children[parent] {
			if g.isRegistered(child) {
				continue
			}

			i, ok := index[child]
			if !ok {
				i = len(lost)
				index[child] = i
				lost = append(lost, LostVertex{Vertex: g.name(child)})
			}

			parents := lost[i].Parents
			if len(parents) == 0 || parents[len(parents)-1] != parentName {
				lost[i].Parents = append(parents, parentName)
			}
		}
	}

	return lost
}

// TestCycles calls onCycle once for every elementary cycle in the graph.
// The reported path starts and ends at the cycle's earliest registered
// vertex, so the result does not depend on where a walk happens to enter a
// cycle. Edges to lost vertices are ignored.
//
// Cycles are enumerated per strongly connected component with Johnson's
// blocking scheme, which keeps the work proportional to the number of
// cycles found. Finding a cycle clears the GetDeep memo.
func (g *DirectedGraph) TestCycles(onCycle func(path []string)) {
	rank := make([]int, len(g.registered))
	for i, id := range g.order {
		rank[id] = i
	}

	comp, members := g.components()
	reported := make(map[string]struct{})

	c := &circuits{
		g:        g,
		rank:     rank,
		comp:     comp,
		blocked:  make([]bool, len(g.registered)),
		blockers: make([]map[int]struct{}, len(g.registered)),
	}
	c.emit = func(cycle []int) {
		g.invalidate()

		key := cycleKey(cycle)
		if _, dup := reported[key]; dup {
			return
		}
		reported[key] = struct{}{}

		path := g.decodeAll(cycle)
		path = append(path, g.name(cycle[0]))
		onCycle(path)
	}

	for _, start := range g.order {
		scc := members[comp[start]]
		if len(scc) == 1 && !g.hasSelfLoop(start) {
			continue
		}

		for _, id := range scc {
			c.blocked[id] = false
			c.blockers[id] = nil
		}
		c.start = start
		c.search(start)
	}
}

// circuits holds the state of one Johnson cycle search. Only vertices in
// the start's component that were registered no earlier than the start
// take part, so each cycle is found from exactly one start.
type circuits struct {
	g        *DirectedGraph
	rank     []int
	comp     []int
	start    int
	blocked  []bool
	blockers []map[int]struct{}
	stack    []int
	emit     func(cycle []int)
}

func (c *circuits) allowed(id int) bool {
	return c.g.isRegistered(id) &&
		c.comp[id] == c.comp[c.start] &&
		c.rank[id] >= c.rank[c.start]
}

func (c *circuits) search(v int) bool {
	found := false
	c.stack = append(c.stack, v)
	c.blocked[v] = true

	for _, w := range c.g.children[v] {
		if !c.allowed(w) {
			continue
		}
		if w == c.start {
			c.emit(c.stack)
			found = true
		} else if !c.blocked[w] && c.search(w) {
			found = true
		}
	}

	if found {
		c.unblock(v)
	} else {
		for _, w := range c.g.children[v] {
			if !c.allowed(w) {
				continue
			}
			if c.blockers[w] == nil {
				c.blockers[w] = make(map[int]struct{})
			}
			c.blockers[w][v] = struct{}{}
		}
	}

	c.stack = c.stack[:len(c.stack)-1]
	return found
}

func (c *circuits) unblock(v int) {
	c.blocked[v] = false
	for w := range c.blockers[v] {
		delete(c.blockers[v], w)
		if c.blocked[w] {
			c.unblock(w)
		}
	}
}

// components labels every registered vertex with its strongly connected
// component (Tarjan) and returns the members of each component.
func (g *DirectedGraph) components() ([]int, [][]int) {
	n := len(g.registered)
	comp := make([]int, n)
	index := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	onStack := make([]bool, n)

	var (
		stack   []int
		members [][]int
		counter int
		connect func(v int)
	)
	connect = func(v int) {
		visited[v] = true
		index[v], low[v] = counter, counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.children[v] {
			if !g.isRegistered(w) {
				continue
			}
			if !visited[w] {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var scc []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp[w] = len(members)
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		members = append(members, scc)
	}

	for _, v := range g.order {
		if !visited[v] {
			connect(v)
		}
	}
	return comp, members
}

func (g *DirectedGraph) hasSelfLoop(id int) bool {
	for _, child := range g.children[id] {
		if child == id {
			return true
		}
	}
	return false
}

// cycleKey identifies an elementary cycle independent of its rotation
func cycleKey(cycle []int) string {
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}

	var sb strings.Builder
	for i := range cycle {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(cycle[(start+i)%len(cycle)]))
	}
	return sb.String()
}

func (g *DirectedGraph) invalidate() {
	if len(g.memo) > 0 {
		g.memo = make(map[int][]int)
	}
}

func (g *DirectedGraph) encode(name string) int {
	id := g.names.Encode(name)
	for len(g.registered) <= id {
		g.registered = append(g.registered, false)
		g.children = append(g.children, nil)
	}
	return id
}

func (g *DirectedGraph) encodeAll(names []string) []int {
	ids := make([]int, len(names))
	for i, name := range names {
		ids[i] = g.encode(name)
	}
	return ids
}

func (g *DirectedGraph) lookup(name string) (int, bool) {
	id, ok := g.names.Lookup(name)
	if !ok || !g.isRegistered(id) {
		return 0, false
	}
	return id, true
}

func (g *DirectedGraph) isRegistered(id int) bool {
	return id < len(g.registered) && g.registered[id]
}

func (g *DirectedGraph) name(id int) string {
	s, _ := g.names.Decode(id)
	return s
}

func (g *DirectedGraph) decodeAll(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.name(id)
	}
	return out
}
