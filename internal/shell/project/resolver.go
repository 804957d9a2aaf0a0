package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/stackctl/internal/core/compose"
	"github.com/artpar/stackctl/internal/core/deployment"
)

// =============================================================================
// Reference Resolution
// =============================================================================

// ResolvedVolumesFrom resolves the volumes_from references to
// "<container id>:<mode>" entries, in declared order.
//
// A container reference costs one inspect call. A service reference uses the
// first container recorded on the target service, or else one list call
// picking its lowest-ordinal running container. Nothing is cached between
// calls.
func (s *Service) ResolvedVolumesFrom(ctx context.Context) ([]string, error) {
	result := make([]string, 0, len(s.spec.VolumesFrom))
	for _, ref := range s.spec.VolumesFrom {
		var (
			c   deployment.ContainerRecord
			err error
		)
		if ref.Kind == compose.ReferenceContainer {
			c, err = s.resolveContainer(ctx, ref.Name)
		} else {
			c, err = s.resolveService(ctx, ref.Name)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, c.ID+":"+string(ref.Mode))
	}
	return result, nil
}

// ResolvedNetMode returns the network mode to start containers with, or ""
// when the service stays on the default network.
func (s *Service) ResolvedNetMode(ctx context.Context) (string, error) {
	net := s.spec.Net
	switch net.Kind {
	case compose.NetDefault:
		return "", nil
	case compose.NetBridge, compose.NetHost:
		return string(net.Kind), nil
	case compose.NetMode:
		return net.Target, nil
	case compose.NetContainer:
		c, err := s.resolveContainer(ctx, net.Target)
		if err != nil {
			return "", err
		}
		return "container:" + c.ID, nil
	case compose.NetService:
		c, err := s.resolveService(ctx, net.Target)
		if err != nil {
			return "", err
		}
		return "container:" + c.ID, nil
	default:
		return "", compose.NewConfigurationError(s.spec.Name, "", "unknown network mode "+string(net.Kind), compose.ErrInvalidReference)
	}
}

func (s *Service) resolveContainer(ctx context.Context, target string) (deployment.ContainerRecord, error) {
	c, err := s.project.inspect(ctx, target)
	if err != nil {
		if errors.Is(err, deployment.ErrContainerNotFound) {
			return deployment.ContainerRecord{}, &ReferenceError{
				Service: s.spec.Name,
				Target:  target,
				Message: "no such container: " + target,
				Err:     errors.Join(ErrNoSuchContainer, err),
			}
		}
		return deployment.ContainerRecord{}, err
	}

	s.project.logger.Debug("resolved container reference",
		"service", s.spec.Name,
		"target", target,
		"container_id", c.ShortID(),
	)
	return *c, nil
}

func (s *Service) resolveService(ctx context.Context, target string) (deployment.ContainerRecord, error) {
	p := s.project
	dep, ok := p.byName[target]
	if !ok {
		return deployment.ContainerRecord{}, &ReferenceError{
			Service: s.spec.Name,
			Target:  target,
			Message: "no such service: " + target,
			Err:     &ServiceNotFoundError{Name: target},
		}
	}

	if known := dep.KnownContainers(); len(known) > 0 {
		p.logger.Debug("resolved service reference from started containers",
			"service", s.spec.Name,
			"target", target,
			"container_id", known[0].ShortID(),
		)
		return known[0], nil
	}

	running, err := dep.Containers(ctx, ContainerFilter{})
	if err != nil {
		return deployment.ContainerRecord{}, err
	}
	if len(running) == 0 {
		return deployment.ContainerRecord{}, &ReferenceError{
			Service: s.spec.Name,
			Target:  target,
			Message: fmt.Sprintf("service %s has no running container", target),
			Err:     ErrNoRunningContainer,
		}
	}

	p.logger.Debug("resolved service reference",
		"service", s.spec.Name,
		"target", target,
		"container_id", running[0].ShortID(),
		"candidates", len(running),
	)
	return running[0], nil
}
