package compose

import (
	"strconv"
	"strings"
)

// =============================================================================
// ServiceSpec - Main Output Type
// =============================================================================

// ServiceSpec is the immutable description of one declared service.
// Only the reference fields (Links, VolumesFrom, Net, DependsOn) are
// interpreted by the planner; everything else travels in Options.
type ServiceSpec struct {
	Name        string          `json:"name"`
	Options     Options         `json:"options"`
	Links       []Link          `json:"links,omitempty"`
	VolumesFrom []ReferenceSpec `json:"volumes_from,omitempty"`
	Net         Net             `json:"net"`
	DependsOn   []string        `json:"depends_on,omitempty"`
}

// Dependencies returns the names of the services this spec references,
// in the order links, volumes_from, net, depends_on. Duplicates are kept
// out; the first occurrence wins.
func (s ServiceSpec) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}

	for _, l := range s.Links {
		add(l.Service)
	}
	for _, v := range s.VolumesFrom {
		if v.Kind == ReferenceService {
			add(v.Name)
		}
	}
	if s.Net.Kind == NetService {
		add(s.Net.Target)
	}
	for _, d := range s.DependsOn {
		add(d)
	}
	return deps
}

// Options is the opaque pass-through bag of container creation parameters.
type Options struct {
	Image string         `json:"image,omitempty"`
	Raw   map[string]any `json:"raw,omitempty"`
}

// Get returns a raw option value by its compose key.
func (o Options) Get(key string) (any, bool) {
	if key == "image" && o.Image != "" {
		return o.Image, true
	}
	v, ok := o.Raw[key]
	return v, ok
}

// =============================================================================
// Links
// =============================================================================

// Link is a declared link to another service of the project.
type Link struct {
	Service string `json:"service"`
	Alias   string `json:"alias"`
}

// ParseLink parses "service" or "service:alias".
func ParseLink(value string) (Link, error) {
	service, alias, found := strings.Cut(value, ":")
	if service == "" || (found && alias == "") {
		return Link{}, NewConfigurationError("", value, "invalid link "+strconv.Quote(value), ErrInvalidReference)
	}
	if !found {
		alias = service
	}
	return Link{Service: service, Alias: alias}, nil
}

// =============================================================================
// References (volumes_from)
// =============================================================================

// ReferenceKind tells whether a reference names a service or a container.
type ReferenceKind string

const (
	ReferenceService   ReferenceKind = "service"
	ReferenceContainer ReferenceKind = "container"
)

// AccessMode is the mount mode of a volumes_from reference.
type AccessMode string

const (
	ModeReadWrite AccessMode = "rw"
	ModeReadOnly  AccessMode = "ro"
)

// ReferenceSpec points at another service or at an explicit container.
type ReferenceSpec struct {
	Kind ReferenceKind `json:"kind"`
	Name string        `json:"name"`
	Mode AccessMode    `json:"mode"`
}

// ServiceRef builds a reference to a declared service.
func ServiceRef(name string, mode AccessMode) ReferenceSpec {
	return ReferenceSpec{Kind: ReferenceService, Name: name, Mode: defaultMode(mode)}
}

// ContainerRef builds a reference to an explicit container id or name.
func ContainerRef(name string, mode AccessMode) ReferenceSpec {
	return ReferenceSpec{Kind: ReferenceContainer, Name: name, Mode: defaultMode(mode)}
}

func (r ReferenceSpec) String() string {
	if r.Kind == ReferenceContainer {
		return "container:" + r.Name + ":" + string(r.Mode)
	}
	return r.Name + ":" + string(r.Mode)
}

// ParseVolumesFrom parses a volumes_from entry. Accepted forms:
//
//	name          name:ro          name:rw
//	container:id  container:id:ro  container:id:rw
//
// A bare name is a service reference when isService reports it as declared
// and a container reference otherwise.
func ParseVolumesFrom(value string, isService func(string) bool) (ReferenceSpec, error) {
	invalid := func() error {
		return NewConfigurationError("", value, "invalid volumes_from "+strconv.Quote(value), ErrInvalidReference)
	}

	parts := strings.Split(value, ":")
	if parts[0] == "container" {
		if len(parts) < 2 || len(parts) > 3 || parts[1] == "" {
			return ReferenceSpec{}, invalid()
		}
		mode := ModeReadWrite
		if len(parts) == 3 {
			m, ok := parseMode(parts[2])
			if !ok {
				return ReferenceSpec{}, invalid()
			}
			mode = m
		}
		return ContainerRef(parts[1], mode), nil
	}

	if len(parts) > 2 || parts[0] == "" {
		return ReferenceSpec{}, invalid()
	}
	mode := ModeReadWrite
	if len(parts) == 2 {
		m, ok := parseMode(parts[1])
		if !ok {
			return ReferenceSpec{}, invalid()
		}
		mode = m
	}
	if isService != nil && isService(parts[0]) {
		return ServiceRef(parts[0], mode), nil
	}
	return ContainerRef(parts[0], mode), nil
}

func parseMode(s string) (AccessMode, bool) {
	switch AccessMode(s) {
	case ModeReadWrite, ModeReadOnly:
		return AccessMode(s), true
	}
	return "", false
}

func defaultMode(m AccessMode) AccessMode {
	if m == "" {
		return ModeReadWrite
	}
	return m
}

// =============================================================================
// Net
// =============================================================================

// NetKind is the variant tag of Net.
type NetKind string

const (
	NetDefault   NetKind = ""
	NetBridge    NetKind = "bridge"
	NetHost      NetKind = "host"
	NetMode      NetKind = "mode"
	NetContainer NetKind = "container"
	NetService   NetKind = "service"
)

// Net is the network mode of a service.
// Target holds the mode string for NetMode, the container id/name for
// NetContainer and the service name for NetService.
type Net struct {
	Kind   NetKind `json:"kind,omitempty"`
	Target string  `json:"target,omitempty"`
}

// DefaultNet is the zero Net: the project's default network.
var DefaultNet = Net{}

// BridgeNet, HostNet, ModeNet, ContainerNet and ServiceNet build the other variants.
func BridgeNet() Net                { return Net{Kind: NetBridge} }
func HostNet() Net                  { return Net{Kind: NetHost} }
func ModeNet(mode string) Net       { return Net{Kind: NetMode, Target: mode} }
func ContainerNet(name string) Net  { return Net{Kind: NetContainer, Target: name} }
func ServiceNet(service string) Net { return Net{Kind: NetService, Target: service} }

// IsDefault reports whether the service stays on the project's default network.
func (n Net) IsDefault() bool {
	return n.Kind == NetDefault
}

func (n Net) String() string {
	switch n.Kind {
	case NetDefault:
		return "default"
	case NetMode:
		return n.Target
	case NetContainer:
		return "container:" + n.Target
	case NetService:
		return "service:" + n.Target
	default:
		return string(n.Kind)
	}
}

// ParseNet parses a network_mode (or legacy net) value.
// "container:x" is promoted to a service reference when x is a declared service.
func ParseNet(value string, isService func(string) bool) (Net, error) {
	switch value {
	case "":
		return DefaultNet, nil
	case "bridge":
		return BridgeNet(), nil
	case "host":
		return HostNet(), nil
	}

	kind, target, found := strings.Cut(value, ":")
	if !found {
		return ModeNet(value), nil
	}
	if target == "" {
		return Net{}, NewConfigurationError("", value, "invalid network mode "+strconv.Quote(value), ErrInvalidReference)
	}
	switch kind {
	case "service":
		return ServiceNet(target), nil
	case "container":
		if isService != nil && isService(target) {
			return ServiceNet(target), nil
		}
		return ContainerNet(target), nil
	}
	return ModeNet(value), nil
}
