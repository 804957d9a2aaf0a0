// Package project binds a validated service set to a container runtime.
// This is part of the Imperative Shell - it queries the runtime and calls the
// pure dependency graph and container matcher.
package project

import (
	"context"
	"errors"
	"log/slog"

	"github.com/artpar/stackctl/internal/core/compose"
	"github.com/artpar/stackctl/internal/core/deployment"
	"github.com/google/uuid"
)

// Runtime is the container runtime as seen by a project.
type Runtime interface {
	// ListContainers returns at least the containers selected by filter.
	// Results are matched again by the caller, so a superset is fine.
	ListContainers(ctx context.Context, filter deployment.ListFilter) ([]deployment.ContainerRecord, error)

	// InspectContainer returns one container by id or name. A missing
	// container carries deployment.ErrContainerNotFound in its error chain.
	InspectContainer(ctx context.Context, idOrName string) (*deployment.ContainerRecord, error)
}

// =============================================================================
// Project
// =============================================================================

// Project is a named, dependency-ordered set of services bound to a runtime.
// The service set is fixed at construction; runtime state is queried fresh
// on every call.
type Project struct {
	name     string
	planID   string
	graph    *deployment.Graph
	services []*Service // topological order
	byName   map[string]*Service
	runtime  Runtime
	matcher  *deployment.Matcher
	logger   *slog.Logger
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Project) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMatcher replaces the default label-then-name container matcher.
func WithMatcher(m *deployment.Matcher) Option {
	return func(p *Project) {
		if m != nil {
			p.matcher = m
		}
	}
}

// FromSpecs validates specs, orders them and binds them to runtime.
// runtime may be nil for planning-only use; runtime queries then fail with
// ErrNoRuntime.
func FromSpecs(name string, specs []compose.ServiceSpec, runtime Runtime, opts ...Option) (*Project, error) {
	graph, err := deployment.NewGraph(specs)
	if err != nil {
		return nil, err
	}

	p := &Project{
		name:    name,
		planID:  uuid.NewString(),
		graph:   graph,
		byName:  make(map[string]*Service, len(specs)),
		runtime: runtime,
		matcher: deployment.NewMatcher(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("project", name, "plan_id", p.planID)

	for _, spec := range specs {
		p.byName[spec.Name] = newService(p, spec)
	}
	for _, serviceName := range graph.Order() {
		p.services = append(p.services, p.byName[serviceName])
	}

	p.logger.Info("project loaded", "services", graph.Order())
	return p, nil
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// PlanID identifies this planning cycle in logs.
func (p *Project) PlanID() string { return p.planID }

// ServiceNames returns every service name in dependency order.
func (p *Project) ServiceNames() []string {
	return p.graph.Order()
}

// Service returns a service by name.
func (p *Project) Service(name string) (*Service, error) {
	s, ok := p.byName[name]
	if !ok {
		return nil, &ServiceNotFoundError{Name: name}
	}
	return s, nil
}

// Services returns the named services, plus their transitive dependencies
// when includeDeps is set, in dependency order and without duplicates.
// No names selects every service.
//
// An undeclared name fails with a *compose.ConfigurationError that also
// matches ErrServiceNotFound.
func (p *Project) Services(names []string, includeDeps bool) ([]*Service, error) {
	for _, n := range names {
		if !p.graph.Has(n) {
			return nil, compose.NewConfigurationError(n, "", "no such service: "+n,
				errors.Join(compose.ErrUndefinedService, &ServiceNotFoundError{Name: n}))
		}
	}

	selected, err := p.graph.Closure(names, includeDeps)
	if err != nil {
		return nil, err
	}

	result := make([]*Service, len(selected))
	for i, n := range selected {
		result[i] = p.byName[n]
	}
	return result, nil
}

// UsesDefaultNetwork reports whether every service stays on the project's
// default network. A single service with any other network mode makes it false.
func (p *Project) UsesDefaultNetwork() bool {
	for _, s := range p.services {
		if !s.spec.Net.IsDefault() {
			return false
		}
	}
	return true
}

// DefaultNetworkName is the name of the network created when
// UsesDefaultNetwork holds.
func (p *Project) DefaultNetworkName() string {
	return deployment.DefaultNetworkName(p.name)
}

// =============================================================================
// Container Queries
// =============================================================================

// ContainerFilter selects project containers.
type ContainerFilter struct {
	Services []string // restrict to these services; empty means all
	Stopped  bool     // include stopped containers
	OneOff   bool     // include one-off (run) containers
}

// Containers lists the project's containers in runtime order.
func (p *Project) Containers(ctx context.Context, filter ContainerFilter) ([]deployment.ContainerRecord, error) {
	records, err := p.list(ctx, deployment.ListFilter{
		Project: p.name,
		OneOff:  filter.OneOff,
		All:     filter.Stopped,
	}, p.name)
	if err != nil {
		return nil, err
	}

	result := p.matcher.ForProject(p.name, records, filter.OneOff)
	if len(filter.Services) == 0 {
		return result, nil
	}

	wanted := make(map[string]bool, len(filter.Services))
	for _, s := range filter.Services {
		wanted[s] = true
	}
	var selected []deployment.ContainerRecord
	for _, c := range result {
		if id, ok := p.matcher.Identify(p.name, c); ok && wanted[id.Service] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// Orphans lists project containers whose service is not declared.
// filter.Services is ignored.
func (p *Project) Orphans(ctx context.Context, filter ContainerFilter) ([]deployment.ContainerRecord, error) {
	records, err := p.list(ctx, deployment.ListFilter{
		Project: p.name,
		OneOff:  filter.OneOff,
		All:     filter.Stopped,
	}, p.name)
	if err != nil {
		return nil, err
	}

	orphans := p.matcher.Orphans(p.name, p.graph.Order(), records, filter.OneOff)
	if len(orphans) > 0 {
		p.logger.Info("found orphan containers", "count", len(orphans))
	}
	return orphans, nil
}

func (p *Project) list(ctx context.Context, filter deployment.ListFilter, target string) ([]deployment.ContainerRecord, error) {
	if p.runtime == nil {
		return nil, &RuntimeError{Op: "list", Target: target, Err: ErrNoRuntime}
	}
	records, err := p.runtime.ListContainers(ctx, filter)
	if err != nil {
		return nil, &RuntimeError{Op: "list", Target: target, Err: err}
	}
	return records, nil
}

func (p *Project) inspect(ctx context.Context, idOrName string) (*deployment.ContainerRecord, error) {
	if p.runtime == nil {
		return nil, &RuntimeError{Op: "inspect", Target: idOrName, Err: ErrNoRuntime}
	}
	record, err := p.runtime.InspectContainer(ctx, idOrName)
	if err != nil {
		return nil, &RuntimeError{Op: "inspect", Target: idOrName, Err: err}
	}
	return record, nil
}
