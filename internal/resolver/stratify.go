package resolver

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
)

// stratify implements spec.md §4.1.4: dependency stratification via a
// Bellman-Ford longest-path pass (with retry on illegal value
// recursion) followed by Tarjan SCC restricted to lambdas, producing
// nested DefBinding IR wrapping body.
//
// defs is the DefMap's surface-syntax definitions and body is the
// expression they scope over; stratify only restructures defs into
// nested DefBinding IR, it does not resolve any VarRefs itself.
func stratify(defs []ast.Def, body ast.Expr, rep *diagnostics.Reporter) ast.Expr {
	live := make([]ast.Def, len(defs))
	copy(live, defs)

	for {
		n := len(live)
		if n == 0 {
			return body
		}
		index := make(map[string]int, n)
		for i, d := range live {
			index[d.Name] = i
		}

		// Build edges: live[i] -> live[j] when live[i].Value references
		// live[j].Name. Weight is 0 if live[j].Value is a lambda, else 1
		// (spec.md §4.1.4).
		type edge struct{ to, weight int }
		adj := make([][]edge, n)
		for i, d := range live {
			// An empty bound set here is deliberate: we want every
			// reference to a sibling definition's name to show up as
			// "free" so it can be matched against index below. Nested
			// shadowing (a lambda parameter or inner DefMap reusing a
			// sibling's name) is still handled correctly because
			// collectFreeVars tracks its own bound set as it recurses.
			refs := freeVars(d.Value, map[string]bool{})
			for name := range refs {
				j, ok := index[name]
				if !ok {
					continue
				}
				w := 0
				if !isLambda(live[j].Value) {
					w = 1
				}
				adj[i] = append(adj[i], edge{to: j, weight: w})
			}
		}

		level := make([]int, n)
		pred := make([]int, n)
		for i := range pred {
			pred[i] = -1
		}

		cycleAt := -1
		// Bellman-Ford: relax level[i] = max(level[i], level[j]+weight)
		// for every edge i->j, up to n rounds; if a round still relaxes
		// something, a positive-weight cycle (illegal value recursion)
		// exists.
		for round := 0; round <= n; round++ {
			changed := false
			for i := 0; i < n; i++ {
				for _, e := range adj[i] {
					if level[i] < level[e.to]+e.weight {
						level[i] = level[e.to] + e.weight
						pred[i] = e.to
						changed = true
						if round == n {
							cycleAt = i
						}
					}
				}
			}
			if !changed {
				break
			}
		}

		if cycleAt >= 0 {
			cyclic := traceCycle(cycleAt, pred, n)
			for _, idx := range cyclic {
				rep.Errorf(live[idx].Location, diagnostics.ErrIllegalValueRecursion,
					"illegal cyclic value: %q participates in a value-recursive cycle", live[idx].Name)
			}
			live = removeIndices(live, cyclic)
			continue // retry Bellman-Ford on the reduced def set
		}

		return buildDefBindings(live, level, body)
	}
}

// traceCycle walks predecessor pointers from start until it repeats a
// node, returning the cycle's member indices.
func traceCycle(start int, pred []int, n int) []int {
	visited := make(map[int]int)
	order := []int{}
	cur := start
	for i := 0; i <= n; i++ {
		if at, seen := visited[cur]; seen {
			return order[at:]
		}
		visited[cur] = len(order)
		order = append(order, cur)
		if pred[cur] < 0 {
			break
		}
		cur = pred[cur]
	}
	return order
}

func removeIndices(defs []ast.Def, idxs []int) []ast.Def {
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		drop[i] = true
	}
	out := make([]ast.Def, 0, len(defs))
	for i, d := range defs {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return out
}

// buildDefBindings groups live defs by level, finds SCCs among the
// lambdas at each level via Tarjan, and nests DefBinding IR from the
// innermost (highest) level outward to the outermost (level 0),
// wrapping body (spec.md §4.1.4: "Insertion order across levels
// produces nested DefBindings surrounding the body").
func buildDefBindings(live []ast.Def, level []int, body ast.Expr) ast.Expr {
	maxLevel := 0
	for _, l := range level {
		if l > maxLevel {
			maxLevel = l
		}
	}

	cur := body
	for L := maxLevel; L >= 0; L-- {
		var atLevel []int
		for i, l := range level {
			if l == L {
				atLevel = append(atLevel, i)
			}
		}
		if len(atLevel) == 0 {
			continue
		}

		sccs := tarjanSCC(atLevel, live)

		var defs []ast.Expr
		var isFun []bool
		var scc []int
		var order []string
		for sccIdx, group := range sccs {
			for _, i := range group {
				d := live[i]
				defs = append(defs, d.Value)
				isFun = append(isFun, isLambda(d.Value))
				scc = append(scc, sccIdx)
				order = append(order, d.Name)
			}
		}

		loc := body.Loc()
		if len(live) > 0 {
			loc = live[atLevel[0]].Location
		}
		cur = &ast.DefBinding{
			Meta:  ast.Meta{Location: loc},
			Defs:  defs,
			IsFun: isFun,
			SCC:   scc,
			Body:  cur,
			Order: order,
		}
	}
	return cur
}

// tarjanSCC finds strongly connected components among the lambda
// members of idxs (value definitions form singletons, spec.md
// §4.1.4), processed in declaration order for determinism.
func tarjanSCC(idxs []int, live []ast.Def) [][]int {
	index := make(map[int]int)
	lowlink := make(map[int]int)
	onStack := make(map[int]bool)
	var stack []int
	counter := 0
	var sccs [][]int

	// Build adjacency restricted to lambdas within idxs.
	nameToIdx := make(map[string]int)
	for _, i := range idxs {
		nameToIdx[live[i].Name] = i
	}
	adj := make(map[int][]int)
	for _, i := range idxs {
		d := live[i]
		if !isLambda(d.Value) {
			continue
		}
		bound := map[string]bool{}
		refs := freeVars(d.Value, bound)
		for name := range refs {
			if j, ok := nameToIdx[name]; ok && isLambda(live[j].Value) {
				adj[i] = append(adj[i], j)
			}
		}
	}

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []int
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			// restore declaration order within the component
			sortByDeclOrder(comp, idxs)
			sccs = append(sccs, comp)
		}
	}

	// Value definitions (non-lambdas) form singleton SCCs, processed
	// in declaration order alongside the lambda SCCs.
	handled := make(map[int]bool)
	for _, i := range idxs {
		if !isLambda(live[i].Value) {
			sccs = append(sccs, []int{i})
			handled[i] = true
		}
	}
	for _, i := range idxs {
		if handled[i] {
			continue
		}
		if _, seen := index[i]; !seen {
			strongconnect(i)
		}
	}

	// Re-sort overall groups by the smallest declaration index they
	// contain, so output order is deterministic and close to source
	// order (sum members / patterns are processed in declaration
	// order elsewhere; SCC groups follow the same discipline here).
	declIndex := make(map[int]int, len(idxs))
	for pos, i := range idxs {
		declIndex[i] = pos
	}
	sortGroupsByFirstDecl(sccs, declIndex)
	return sccs
}

func sortByDeclOrder(comp []int, idxs []int) {
	pos := make(map[int]int, len(idxs))
	for p, i := range idxs {
		pos[i] = p
	}
	for i := 1; i < len(comp); i++ {
		for j := i; j > 0 && pos[comp[j-1]] > pos[comp[j]]; j-- {
			comp[j-1], comp[j] = comp[j], comp[j-1]
		}
	}
}

func sortGroupsByFirstDecl(sccs [][]int, declIndex map[int]int) {
	key := func(g []int) int {
		min := declIndex[g[0]]
		for _, v := range g {
			if declIndex[v] < min {
				min = declIndex[v]
			}
		}
		return min
	}
	for i := 1; i < len(sccs); i++ {
		for j := i; j > 0 && key(sccs[j-1]) > key(sccs[j]); j-- {
			sccs[j-1], sccs[j] = sccs[j], sccs[j-1]
		}
	}
}
