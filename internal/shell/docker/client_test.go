package docker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

type fakeAPI struct {
	containers  []container.Summary
	inspect     map[string]container.InspectResponse
	listErr     error
	pingErr     error
	lastListOpt container.ListOptions
	closed      bool
}

func (f *fakeAPI) ContainerList(_ context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.lastListOpt = options
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.containers, nil
}

func (f *fakeAPI) ContainerInspect(_ context.Context, id string) (container.InspectResponse, error) {
	resp, ok := f.inspect[id]
	if !ok {
		return container.InspectResponse{}, fmt.Errorf("no such container: %s: %w", id, cerrdefs.ErrNotFound)
	}
	return resp, nil
}

func (f *fakeAPI) Ping(context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func skipIfNoDocker(t *testing.T) Client {
	t.Helper()
	cli, err := NewDockerClient("")
	if err != nil {
		t.Skip("Docker not available:", err)
	}
	if err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skip("Docker not reachable:", err)
	}
	return cli
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestPing_Success(t *testing.T) {
	cli := &DockerClient{cli: &fakeAPI{}}
	assert.NoError(t, cli.Ping(context.Background()))
}

func TestPing_Failure(t *testing.T) {
	cli := &DockerClient{cli: &fakeAPI{pingErr: errors.New("connection refused")}}
	err := cli.Ping(context.Background())
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewDockerClient_InvalidHost(t *testing.T) {
	cli, err := NewDockerClient("not-a-host")
	assert.Nil(t, cli)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Contains(t, err.Error(), "unable to parse docker host")
}

func TestClose_Success(t *testing.T) {
	api := &fakeAPI{}
	cli := &DockerClient{cli: api}
	assert.NoError(t, cli.Close())
	assert.True(t, api.closed)
}

// =============================================================================
// ListContainers Tests
// =============================================================================

func TestListContainers_ConvertsSummaries(t *testing.T) {
	api := &fakeAPI{containers: []container.Summary{
		{
			ID:      "abc123",
			Names:   []string{"/myapp_web_1"},
			Image:   "nginx:alpine",
			State:   "running",
			Created: 1700000000,
			Labels:  map[string]string{"com.docker.compose.project": "myapp"},
		},
	}}
	cli := &DockerClient{cli: api}

	result, err := cli.ListContainers(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, result, 1)

	c := result[0]
	assert.Equal(t, "abc123", c.ID)
	assert.Equal(t, "myapp_web_1", c.Name)
	assert.Equal(t, "nginx:alpine", c.Image)
	assert.Equal(t, ContainerStatusRunning, c.Status)
	assert.Equal(t, time.Unix(1700000000, 0), c.CreatedAt)
	assert.Equal(t, "myapp", c.Labels["com.docker.compose.project"])
}

func TestListContainers_PassesFilters(t *testing.T) {
	api := &fakeAPI{}
	cli := &DockerClient{cli: api}

	_, err := cli.ListContainers(context.Background(), ListOptions{
		All: true,
		Filters: map[string][]string{
			"label": {"a=1", "b=2"},
			"name":  {"myapp_"},
		},
	})
	require.NoError(t, err)

	assert.True(t, api.lastListOpt.All)
	assert.ElementsMatch(t, []string{"a=1", "b=2"}, api.lastListOpt.Filters.Get("label"))
	assert.Equal(t, []string{"myapp_"}, api.lastListOpt.Filters.Get("name"))
}

func TestListContainers_NoFilters(t *testing.T) {
	api := &fakeAPI{}
	cli := &DockerClient{cli: api}

	_, err := cli.ListContainers(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, api.lastListOpt.Filters.Len())
}

func TestListContainers_Error(t *testing.T) {
	cause := errors.New("daemon gone")
	cli := &DockerClient{cli: &fakeAPI{listErr: cause}}

	_, err := cli.ListContainers(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var dockerErr *DockerError
	require.True(t, errors.As(err, &dockerErr))
	assert.Equal(t, "ListContainers", dockerErr.Op)
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected string
	}{
		{"single", []string{"/myapp_db_1"}, "myapp_db_1"},
		{"alias first", []string{"/myapp_web_1/db", "/myapp_db_1"}, "myapp_db_1"},
		{"none", nil, ""},
		{"only aliases", []string{"/a/b"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, canonicalName(tt.names))
		})
	}
}

// =============================================================================
// InspectContainer Tests
// =============================================================================

func TestInspectContainer_Success(t *testing.T) {
	api := &fakeAPI{inspect: map[string]container.InspectResponse{
		"aaa": {
			ContainerJSONBase: &container.ContainerJSONBase{
				ID:      "aaa123",
				Name:    "/aaa",
				Created: "2024-01-02T03:04:05.000000006Z",
				State:   &container.State{Status: "running"},
			},
			Config: &container.Config{
				Image:  "busybox",
				Labels: map[string]string{"k": "v"},
			},
		},
	}}
	cli := &DockerClient{cli: api}

	info, err := cli.InspectContainer(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "aaa123", info.ID)
	assert.Equal(t, "aaa", info.Name)
	assert.Equal(t, "busybox", info.Image)
	assert.Equal(t, ContainerStatusRunning, info.Status)
	assert.Equal(t, "v", info.Labels["k"])
	assert.Equal(t, 2024, info.CreatedAt.Year())
}

func TestInspectContainer_NotFound(t *testing.T) {
	cli := &DockerClient{cli: &fakeAPI{}}

	_, err := cli.InspectContainer(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContainerNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestInspectContainer_EmptyResponse(t *testing.T) {
	api := &fakeAPI{inspect: map[string]container.InspectResponse{"x": {}}}
	cli := &DockerClient{cli: api}

	_, err := cli.InspectContainer(context.Background(), "x")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

// =============================================================================
// Live Daemon Tests
// =============================================================================

func TestDockerClient_LiveList(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	_, err := cli.ListContainers(context.Background(), ListOptions{
		All:     true,
		Filters: map[string][]string{"label": {"com.docker.compose.project=stackctl-test-none"}},
	})
	assert.NoError(t, err)
}

func TestDockerClient_LiveInspectMissing(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	_, err := cli.InspectContainer(context.Background(), "stackctl-test-does-not-exist")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}
