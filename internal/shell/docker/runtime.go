package docker

import (
	"context"
	"log/slog"

	"github.com/artpar/stackctl/internal/core/deployment"
)

// =============================================================================
// Project Runtime Adapter
// =============================================================================

// Runtime answers project container queries on top of a Client.
//
// ListContainers narrows the query with identity label filters. With legacy
// names enabled it also lists containers by name prefix, to find containers
// created before identity labels existed, and merges both results by id.
// The result may be a superset: callers still match it with a
// deployment.Matcher.
type Runtime struct {
	client      Client
	legacyNames bool
	metrics     *Metrics
	logger      *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLegacyNames enables the name-prefix query for unlabelled containers.
func WithLegacyNames(enabled bool) RuntimeOption {
	return func(r *Runtime) { r.legacyNames = enabled }
}

// WithMetrics records every runtime call on m.
func WithMetrics(m *Metrics) RuntimeOption {
	return func(r *Runtime) { r.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRuntime creates a runtime adapter around client.
func NewRuntime(client Client, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListContainers lists the containers of filter.Project. With legacy names
// enabled it makes two daemon list calls, one by label and one by name
// prefix, and returns their union.
func (r *Runtime) ListContainers(ctx context.Context, filter deployment.ListFilter) ([]deployment.ContainerRecord, error) {
	labels := []string{deployment.LabelFilter(deployment.LabelProject, filter.Project)}
	if filter.Service != "" {
		labels = append(labels, deployment.LabelFilter(deployment.LabelService, filter.Service))
	}
	if !filter.OneOff {
		labels = append(labels, deployment.LabelFilter(deployment.LabelOneOff, "False"))
	}

	infos, err := r.list(ctx, ListOptions{All: filter.All, Filters: map[string][]string{"label": labels}})
	if err != nil {
		return nil, err
	}

	if r.legacyNames {
		prefix := filter.Project + "_"
		if filter.Service != "" {
			prefix += filter.Service + "_"
		}
		legacy, err := r.list(ctx, ListOptions{All: filter.All, Filters: map[string][]string{"name": {prefix}}})
		if err != nil {
			return nil, err
		}
		infos = mergeByID(infos, legacy)
	}

	records := make([]deployment.ContainerRecord, 0, len(infos))
	for _, info := range infos {
		records = append(records, toRecord(info))
	}

	r.logger.Debug("listed containers",
		"project", filter.Project,
		"service", filter.Service,
		"count", len(records),
	)
	return records, nil
}

// InspectContainer looks up one container by id or name. A missing
// container is reported with deployment.ErrContainerNotFound in the chain.
func (r *Runtime) InspectContainer(ctx context.Context, idOrName string) (*deployment.ContainerRecord, error) {
	info, err := r.client.InspectContainer(ctx, idOrName)
	r.metrics.observe(OpInspect, err)
	if err != nil {
		return nil, err
	}

	record := toRecord(*info)
	r.logger.Debug("inspected container", "target", idOrName, "container_id", record.ShortID())
	return &record, nil
}

func (r *Runtime) list(ctx context.Context, opts ListOptions) ([]ContainerInfo, error) {
	infos, err := r.client.ListContainers(ctx, opts)
	r.metrics.observe(OpList, err)
	return infos, err
}

// mergeByID appends the containers of extra not already in base.
func mergeByID(base, extra []ContainerInfo) []ContainerInfo {
	seen := make(map[string]bool, len(base))
	for _, c := range base {
		seen[c.ID] = true
	}
	for _, c := range extra {
		if !seen[c.ID] {
			seen[c.ID] = true
			base = append(base, c)
		}
	}
	return base
}

func toRecord(info ContainerInfo) deployment.ContainerRecord {
	return deployment.ContainerRecord{
		ID:      info.ID,
		Name:    info.Name,
		Image:   info.Image,
		State:   string(info.Status),
		Created: info.CreatedAt,
		Labels:  info.Labels,
	}
}
