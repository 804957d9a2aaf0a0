// Package docker provides a Docker client for querying the containers of a project.
package docker

import (
	"context"
	"time"
)

// =============================================================================
// Container Info
// =============================================================================

// ContainerStatus represents the container status.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// ContainerInfo contains information about a container.
type ContainerInfo struct {
	ID        string
	Name      string // canonical name, without the leading "/"
	Image     string
	Status    ContainerStatus
	CreatedAt time.Time
	Labels    map[string]string
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines options for listing containers.
// Every value of a filter key must match, e.g.
// {"label": {"com.docker.compose.project=app", "com.docker.compose.service=web"}}.
type ListOptions struct {
	All     bool // Include stopped containers
	Filters map[string][]string
}

// =============================================================================
// Client Interface
// =============================================================================

// Client defines the subset of the Docker API the project needs.
type Client interface {
	InspectContainer(ctx context.Context, idOrName string) (*ContainerInfo, error)
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error)

	Ping(ctx context.Context) error
	Close() error
}
