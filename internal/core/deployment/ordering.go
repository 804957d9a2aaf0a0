package deployment

import (
	"github.com/artpar/stackctl/internal/core/compose"
)

// =============================================================================
// Dependency Graph
// =============================================================================

// Graph is the dependency graph of a project's service set.
// An edge A -> B exists when A links to B, mounts volumes from B, shares
// B's network namespace, or declares depends_on B.
//
// A Graph is immutable once built and safe for concurrent reads.
type Graph struct {
	declared []string            // declaration order
	deps     map[string][]string // service -> dependencies, first-declared order
	order    []string            // topological order
}

// NewGraph validates the service set and computes its topological order.
//
// It fails with a *compose.ConfigurationError when a name is empty or
// duplicated, when a reference targets an undeclared service, or when the
// references form a cycle.
func NewGraph(specs []compose.ServiceSpec) (*Graph, error) {
	g := &Graph{
		declared: make([]string, 0, len(specs)),
		deps:     make(map[string][]string, len(specs)),
	}

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, compose.NewConfigurationError("", "", "service name must not be empty", compose.ErrEmptyServiceName)
		}
		if _, dup := g.deps[spec.Name]; dup {
			return nil, compose.NewConfigurationError(spec.Name, "", "duplicate service "+spec.Name, compose.ErrDuplicateService)
		}
		g.declared = append(g.declared, spec.Name)
		g.deps[spec.Name] = spec.Dependencies()
	}

	for _, name := range g.declared {
		for _, dep := range g.deps[name] {
			if _, ok := g.deps[dep]; !ok {
				return nil, compose.UndefinedServiceError(name, dep)
			}
		}
	}

	order, err := g.sort()
	if err != nil {
		return nil, err
	}
	g.order = order

	return g, nil
}

// sort is a depth-first topological sort. Roots are visited in declaration
// order and each node's dependencies in first-declared order, which makes
// the result deterministic.
func (g *Graph) sort() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(g.declared))
	order := make([]string, 0, len(g.declared))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			for i, n := range stack {
				if n == name {
					path := append(append([]string{}, stack[i:]...), name)
					return compose.CycleError(path)
				}
			}
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range g.deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range g.declared {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Order returns service names so that every dependency precedes its dependents.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Has reports whether name is a service of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Dependencies returns the direct dependencies of a service.
func (g *Graph) Dependencies(name string) []string {
	return append([]string(nil), g.deps[name]...)
}

// Closure returns the requested services, plus their transitive dependencies
// when includeDeps is set, as a subsequence of Order. An empty request
// selects every service.
func (g *Graph) Closure(names []string, includeDeps bool) ([]string, error) {
	if len(names) == 0 {
		return g.Order(), nil
	}

	selected := make(map[string]bool)
	var collect func(name string)
	collect = func(name string) {
		if selected[name] {
			return
		}
		selected[name] = true
		if includeDeps {
			for _, dep := range g.deps[name] {
				collect(dep)
			}
		}
	}

	for _, name := range names {
		if !g.Has(name) {
			return nil, compose.NewConfigurationError(name, "", "no such service: "+name, compose.ErrUndefinedService)
		}
		collect(name)
	}

	result := make([]string, 0, len(selected))
	for _, name := range g.order {
		if selected[name] {
			result = append(result, name)
		}
	}
	return result, nil
}

// =============================================================================
// Service Ordering Functions
// =============================================================================

// TopologicalSort returns the specs in dependency order.
//
// Example:
//
//	// Services: web → db → volume
//	specs := []compose.ServiceSpec{
//	    {Name: "web", Links: []compose.Link{{Service: "db", Alias: "db"}}},
//	    {Name: "db", VolumesFrom: []compose.ReferenceSpec{compose.ServiceRef("volume", compose.ModeReadWrite)}},
//	    {Name: "volume"},
//	}
//	sorted, err := TopologicalSort(specs)
//	// Result: [volume, db, web]
func TopologicalSort(specs []compose.ServiceSpec) ([]compose.ServiceSpec, error) {
	g, err := NewGraph(specs)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]compose.ServiceSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}

	sorted := make([]compose.ServiceSpec, 0, len(specs))
	for _, name := range g.order {
		sorted = append(sorted, byName[name])
	}
	return sorted, nil
}
