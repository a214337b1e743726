package orch

// Catalog is the immutable service configuration: dependencies,
// idle-eligibility, probes and the global startup precedence list.
type Catalog struct {
	specs      map[string]ServiceSpec
	order      []string // declaration order
	precedence []string
}

// NewCatalog builds a catalog from declared specs and the startup
// precedence list. Later duplicates of a name are ignored.
func NewCatalog(specs []ServiceSpec, precedence []string) *Catalog {
	c := &Catalog{
		specs:      make(map[string]ServiceSpec, len(specs)),
		precedence: append([]string(nil), precedence...),
	}
	for _, s := range specs {
		if _, exists := c.specs[s.Name]; exists {
			continue
		}
		c.specs[s.Name] = s
		c.order = append(c.order, s.Name)
	}
	return c
}

// Spec returns the declared spec for name.
func (c *Catalog) Spec(name string) (ServiceSpec, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// Dependencies returns the direct dependencies of name. Unknown services
// are treated as leaves with no dependencies, never as an error.
func (c *Catalog) Dependencies(name string) []string {
	return c.specs[name].DependsOn
}

// IdleEligible reports whether the idle monitor may auto-stop name.
// Unknown services default to eligible.
func (c *Catalog) IdleEligible(name string) bool {
	s, ok := c.specs[name]
	if !ok {
		return true
	}
	return s.IdleEligible
}

// Names returns all declared service names in declaration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Precedence returns the global startup priority list.
func (c *Catalog) Precedence() []string {
	return append([]string(nil), c.precedence...)
}

// FindCycle returns the services on one dependency cycle, or nil when the
// graph is acyclic. Used for a startup warning only; the resolver tolerates
// cycles at runtime.
func (c *Catalog) FindCycle() []string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(c.order))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = grey
		stack = append(stack, name)
		for _, dep := range c.Dependencies(name) {
			if _, known := c.specs[dep]; !known {
				continue
			}
			switch color[dep] {
			case white:
				if visit(dep) {
					return true
				}
			case grey:
				// back edge: slice the cycle out of the stack
				for i, n := range stack {
					if n == dep {
						cycle = append([]string(nil), stack[i:]...)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	for _, name := range c.order {
		if color[name] == white {
			if visit(name) {
				return cycle
			}
		}
	}
	return nil
}
