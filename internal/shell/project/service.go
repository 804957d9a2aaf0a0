package project

import (
	"context"
	"sync"

	"github.com/artpar/stackctl/internal/core/compose"
	"github.com/artpar/stackctl/internal/core/deployment"
)

// =============================================================================
// Service
// =============================================================================

// Service is a declared service bound to its project.
//
// It remembers the containers the orchestration layer reports as started
// during the current cycle, so references to it resolve without a runtime
// query. That cache is private to the service and guarded by its own lock.
type Service struct {
	spec    compose.ServiceSpec
	project *Project

	mu    sync.Mutex
	known []deployment.ContainerRecord
}

func newService(p *Project, spec compose.ServiceSpec) *Service {
	return &Service{spec: spec, project: p}
}

// Name returns the service name.
func (s *Service) Name() string { return s.spec.Name }

// Spec returns the declared specification.
func (s *Service) Spec() compose.ServiceSpec { return s.spec }

// Options returns the pass-through options.
func (s *Service) Options() compose.Options { return s.spec.Options }

// Net returns the declared network mode.
func (s *Service) Net() compose.Net { return s.spec.Net }

// Dependencies returns the names of the services this one depends on.
func (s *Service) Dependencies() []string {
	return s.project.graph.Dependencies(s.spec.Name)
}

// RecordContainer remembers a container started for this service.
// Recording the same id again replaces the earlier record.
func (s *Service) RecordContainer(c deployment.ContainerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.known {
		if existing.ID == c.ID {
			s.known[i] = c
			return
		}
	}
	s.known = append(s.known, c)
}

// KnownContainers returns the recorded containers, lowest ordinal first.
func (s *Service) KnownContainers() []deployment.ContainerRecord {
	s.mu.Lock()
	known := append([]deployment.ContainerRecord(nil), s.known...)
	s.mu.Unlock()

	if len(known) == 0 {
		return nil
	}
	return s.project.matcher.Sort(s.project.name, known)
}

// Containers queries the runtime for this service's containers, lowest
// ordinal first. filter.Services is ignored.
func (s *Service) Containers(ctx context.Context, filter ContainerFilter) ([]deployment.ContainerRecord, error) {
	p := s.project
	records, err := p.list(ctx, deployment.ListFilter{
		Project: p.name,
		Service: s.spec.Name,
		OneOff:  filter.OneOff,
		All:     filter.Stopped,
	}, s.spec.Name)
	if err != nil {
		return nil, err
	}
	return p.matcher.ForService(p.name, s.spec.Name, records, filter.OneOff), nil
}

// NextNumber returns the ordinal a new replica of this service should get.
func (s *Service) NextNumber(ctx context.Context) (int, error) {
	containers, err := s.Containers(ctx, ContainerFilter{Stopped: true})
	if err != nil {
		return 0, err
	}
	return s.project.matcher.NextNumber(s.project.name, containers), nil
}
