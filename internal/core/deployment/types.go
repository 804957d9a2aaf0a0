package deployment

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Identity Labels
// =============================================================================

// Label keys attached to every container created for a project. Together
// they are the join key between declared services and live containers.
const (
	LabelProject         = "com.docker.compose.project"
	LabelService         = "com.docker.compose.service"
	LabelContainerNumber = "com.docker.compose.container-number"
	LabelOneOff          = "com.docker.compose.oneoff"
)

// ErrContainerNotFound is reported by runtimes when an inspected container
// does not exist.
var ErrContainerNotFound = errors.New("container not found")

// =============================================================================
// Container Records
// =============================================================================

// ContainerRecord is the live runtime state of one container.
// Records are fetched fresh for every query and never cached.
type ContainerRecord struct {
	ID      string
	Name    string
	Image   string
	State   string // "running", "exited", "created", ...
	Created time.Time
	Labels  map[string]string
}

// Label returns a label value, or "" when it is not set.
func (c ContainerRecord) Label(key string) string {
	return c.Labels[key]
}

// IsRunning reports whether the runtime considers the container running.
func (c ContainerRecord) IsRunning() bool {
	return c.State == "running"
}

// ShortID returns the first 12 characters of the container id.
func (c ContainerRecord) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}

// Number returns the ordinal from the container-number label, or 0 when the
// label is absent or unparsable.
func (c ContainerRecord) Number() int {
	n, err := strconv.Atoi(c.Labels[LabelContainerNumber])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// IsOneOff reports whether the oneoff label marks a run container.
func (c ContainerRecord) IsOneOff() bool {
	return strings.EqualFold(c.Labels[LabelOneOff], "true")
}

// =============================================================================
// Runtime Query Types
// =============================================================================

// ListFilter selects the containers a runtime should return.
type ListFilter struct {
	Project string // required
	Service string // optional, restricts to one service
	OneOff  bool   // include one-off (run) containers
	All     bool   // include stopped containers
}
