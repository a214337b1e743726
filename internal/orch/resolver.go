package orch

// Resolver computes dependency closures and a deterministic start order.
type Resolver struct {
	catalog *Catalog
}

func NewResolver(c *Catalog) *Resolver { return &Resolver{catalog: c} }

// Resolve expands required to its full dependency closure and orders it
// for startup: dependencies before dependents, ties broken first by the
// catalog precedence list, then by catalog declaration order, then by
// discovery order for names the catalog does not know. Cycles are
// tolerated; every discovered service appears exactly once.
func (r *Resolver) Resolve(required []string) []string {
	// Iterative closure over the dependency graph. The visited set keeps
	// each service processed at most once, so cyclic graphs terminate.
	visited := make(map[string]bool)
	var discovered []string
	queue := append([]string(nil), required...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == "" || visited[name] {
			continue
		}
		visited[name] = true
		discovered = append(discovered, name)
		queue = append(queue, r.catalog.Dependencies(name)...)
	}
	if len(discovered) <= 1 {
		return discovered
	}

	rank := r.ranks(discovered)
	deps := make(map[string][]string, len(discovered))
	indeg := make(map[string]int, len(discovered))
	for _, name := range discovered {
		seen := make(map[string]bool)
		for _, d := range r.catalog.Dependencies(name) {
			if d == name || !visited[d] || seen[d] {
				continue
			}
			seen[d] = true
			deps[name] = append(deps[name], d)
			indeg[name]++
		}
	}

	// Kahn's algorithm with a ranked pick among ready services. When a
	// cycle leaves nothing ready, the lowest-ranked remaining service is
	// emitted anyway so the order stays total.
	remaining := make(map[string]bool, len(discovered))
	for _, n := range discovered {
		remaining[n] = true
	}
	ordered := make([]string, 0, len(discovered))
	for len(ordered) < len(discovered) {
		pick := ""
		for _, n := range discovered {
			if !remaining[n] || indeg[n] != 0 {
				continue
			}
			if pick == "" || rank[n] < rank[pick] {
				pick = n
			}
		}
		if pick == "" {
			for _, n := range discovered {
				if remaining[n] && (pick == "" || rank[n] < rank[pick]) {
					pick = n
				}
			}
		}
		ordered = append(ordered, pick)
		delete(remaining, pick)
		for _, n := range discovered {
			if !remaining[n] {
				continue
			}
			for _, d := range deps[n] {
				if d == pick {
					indeg[n]--
				}
			}
		}
	}
	return ordered
}

// ranks assigns each discovered service a total order: precedence-listed
// services first, then remaining catalog services in declaration order,
// then unknown names in discovery order.
func (r *Resolver) ranks(discovered []string) map[string]int {
	prec := r.catalog.Precedence()
	decl := r.catalog.Names()
	rank := make(map[string]int, len(discovered))
	precIdx := make(map[string]int, len(prec))
	for i, n := range prec {
		precIdx[n] = i
	}
	declIdx := make(map[string]int, len(decl))
	for i, n := range decl {
		declIdx[n] = i
	}
	for i, n := range discovered {
		switch {
		case hasKey(precIdx, n):
			rank[n] = precIdx[n]
		case hasKey(declIdx, n):
			rank[n] = len(prec) + declIdx[n]
		default:
			rank[n] = len(prec) + len(decl) + i
		}
	}
	return rank
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}
