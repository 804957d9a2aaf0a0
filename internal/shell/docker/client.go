package docker

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// =============================================================================
// Docker Client Implementation
// =============================================================================

// apiClient is the part of the Docker SDK client used here.
type apiClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// DockerClient implements the Client interface using the Docker SDK.
type DockerClient struct {
	cli apiClient
}

// NewDockerClient creates a new Docker client.
// If host is empty, it uses the default Docker host from environment.
// On macOS with Docker Desktop, it automatically detects the correct socket.
func NewDockerClient(host string) (*DockerClient, error) {
	var opts []client.Opt
	opts = append(opts, client.FromEnv)
	opts = append(opts, client.WithAPIVersionNegotiation())

	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewDockerClient", "", "", fmt.Sprintf("failed to create client: %v", err), ErrConnectionFailed)
	}

	// An explicit host is never second-guessed
	if host != "" {
		return &DockerClient{cli: cli}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, pingErr := cli.Ping(ctx); pingErr != nil {
		// If default socket fails, try Docker Desktop socket on macOS
		homeDir, _ := os.UserHomeDir()
		dockerDesktopSocket := "unix://" + homeDir + "/.docker/run/docker.sock"

		cli2, err2 := client.NewClientWithOpts(
			client.WithHost(dockerDesktopSocket),
			client.WithAPIVersionNegotiation(),
		)
		if err2 == nil {
			if _, pingErr2 := cli2.Ping(ctx); pingErr2 == nil {
				cli.Close()
				return &DockerClient{cli: cli2}, nil
			}
			cli2.Close()
		}
	}

	return &DockerClient{cli: cli}, nil
}

// Ping checks if Docker daemon is reachable.
func (d *DockerClient) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		return NewDockerError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

// Close closes the Docker client connection.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Container Queries
// =============================================================================

// InspectContainer returns information about a container, addressed by id or name.
func (d *DockerClient) InspectContainer(ctx context.Context, idOrName string) (*ContainerInfo, error) {
	resp, err := d.cli.ContainerInspect(ctx, idOrName)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return nil, NewDockerError("InspectContainer", "container", idOrName, "container not found", ErrContainerNotFound)
		}
		return nil, NewDockerError("InspectContainer", "container", idOrName, err.Error(), err)
	}
	if resp.ContainerJSONBase == nil {
		return nil, NewDockerError("InspectContainer", "container", idOrName, "empty inspect response", ErrContainerNotFound)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, resp.Created)

	info := &ContainerInfo{
		ID:        resp.ID,
		Name:      strings.TrimPrefix(resp.Name, "/"),
		CreatedAt: createdAt,
	}
	if resp.State != nil {
		info.Status = ContainerStatus(resp.State.Status)
	}
	if resp.Config != nil {
		info.Image = resp.Config.Image
		info.Labels = resp.Config.Labels
	}
	return info, nil
}

// ListContainers returns a list of containers matching the given options.
func (d *DockerClient) ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error) {
	listOpts := container.ListOptions{
		All: opts.All,
	}

	if len(opts.Filters) > 0 {
		f := filters.NewArgs()
		for k, values := range opts.Filters {
			for _, v := range values {
				f.Add(k, v)
			}
		}
		listOpts.Filters = f
	}

	containers, err := d.cli.ContainerList(ctx, listOpts)
	if err != nil {
		return nil, NewDockerError("ListContainers", "container", "", err.Error(), err)
	}

	var result []ContainerInfo
	for _, c := range containers {
		result = append(result, ContainerInfo{
			ID:        c.ID,
			Name:      canonicalName(c.Names),
			Image:     c.Image,
			Status:    ContainerStatus(c.State),
			CreatedAt: time.Unix(c.Created, 0),
			Labels:    c.Labels,
		})
	}

	return result, nil
}

// canonicalName picks the container's own name out of the list the API
// returns, which also holds link aliases such as "/web_1/db".
func canonicalName(names []string) string {
	for _, n := range names {
		n = strings.TrimPrefix(n, "/")
		if n != "" && !strings.Contains(n, "/") {
			return n
		}
	}
	return ""
}
