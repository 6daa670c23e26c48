package scoring

// Graph is the dependency view of one task batch.
//
// deps maps a task to the tasks it declares it depends on (in declaration
// order, restricted to ids present in the batch). unblocks is the reverse:
// completing a task unblocks every task listed under it.
type Graph struct {
	order    []string
	deps     map[string][]string
	unblocks map[string][]string

	cycles   [][]string
	inCycle  map[string]bool
	reach    map[string]int
	maxReach int
}

// BuildGraph indexes the batch and runs cycle detection and reachability
// once. Dependencies on ids outside the batch are dropped.
func BuildGraph(tasks []NormalizedTask) *Graph {
	g := &Graph{
		order:    make([]string, 0, len(tasks)),
		deps:     make(map[string][]string, len(tasks)),
		unblocks: make(map[string][]string, len(tasks)),
		inCycle:  make(map[string]bool),
	}
	for _, t := range tasks {
		g.order = append(g.order, t.ID)
		g.deps[t.ID] = nil
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := g.deps[dep]; !ok {
				continue
			}
			g.deps[t.ID] = append(g.deps[t.ID], dep)
			g.unblocks[dep] = append(g.unblocks[dep], t.ID)
		}
	}

	g.cycles = g.detectCycles()
	for _, c := range g.cycles {
		for _, id := range c {
			g.inCycle[id] = true
		}
	}
	g.reach = g.reachableCounts()
	for _, n := range g.reach {
		if n > g.maxReach {
			g.maxReach = n
		}
	}
	return g
}

// Cycles returns every cyclic path found. Each path starts and ends with the
// same id. Paths may overlap in densely connected graphs.
func (g *Graph) Cycles() [][]string {
	return g.cycles
}

// InCycle reports whether id appears in any detected cycle.
func (g *Graph) InCycle(id string) bool {
	return g.inCycle[id]
}

// Unblocked returns the number of distinct tasks transitively unblocked by id.
func (g *Graph) Unblocked(id string) int {
	return g.reach[id]
}

// Impact returns Unblocked(id) divided by the batch maximum, or 0 when no
// task unblocks anything.
func (g *Graph) Impact(id string) float64 {
	if g.maxReach == 0 {
		return 0
	}
	return float64(g.reach[id]) / float64(g.maxReach)
}

// detectCycles runs a DFS from every unvisited node in input order over the
// declared-dependency edges. A back edge to a node still on the recursion
// stack records the path from that node back to itself.
func (g *Graph) detectCycles() [][]string {
	visited := make(map[string]bool, len(g.order))
	onStack := make(map[string]bool)
	var path []string
	var cycles [][]string

	var visit func(u string)
	visit = func(u string) {
		visited[u] = true
		onStack[u] = true
		path = append(path, u)

		for _, v := range g.deps[u] {
			if !visited[v] {
				visit(v)
				continue
			}
			if onStack[v] {
				cycles = append(cycles, closePath(path, v))
			}
		}

		onStack[u] = false
		path = path[:len(path)-1]
	}

	for _, id := range g.order {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

// closePath copies the tail of path starting at v and appends v again.
func closePath(path []string, v string) []string {
	idx := len(path) - 1
	for i, id := range path {
		if id == v {
			idx = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-idx+1)
	cycle = append(cycle, path[idx:]...)
	return append(cycle, v)
}

// reachableCounts counts, for every task, the distinct tasks reachable over
// unblocks edges. A task on a cycle reaches itself and counts it.
func (g *Graph) reachableCounts() map[string]int {
	counts := make(map[string]int, len(g.order))
	for _, id := range g.order {
		seen := make(map[string]bool)
		stack := append([]string(nil), g.unblocks[id]...)
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[v] {
				continue
			}
			seen[v] = true
			for _, next := range g.unblocks[v] {
				if !seen[next] {
					stack = append(stack, next)
				}
			}
		}
		counts[id] = len(seen)
	}
	return counts
}
