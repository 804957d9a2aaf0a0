package deployment

import (
	"sort"
)

// =============================================================================
// Container Identity
// =============================================================================

// Identity is what a strategy learned about a container.
// Service is empty for project containers that carry no service identity.
// Number is 0 when the ordinal is unknown.
type Identity struct {
	Project string
	Service string
	Number  int
	OneOff  bool
}

// MatchStrategy recognizes containers of a project.
// Identify returns false when the strategy cannot tell anything about c, in
// which case the next strategy is tried.
type MatchStrategy interface {
	Name() string
	Identify(project string, c ContainerRecord) (Identity, bool)
}

// LabelStrategy reads the identity labels. It claims every container that
// carries a project label, whichever project that is.
type LabelStrategy struct{}

func (LabelStrategy) Name() string { return "label" }

func (LabelStrategy) Identify(_ string, c ContainerRecord) (Identity, bool) {
	project := c.Label(LabelProject)
	if project == "" {
		return Identity{}, false
	}
	return Identity{
		Project: project,
		Service: c.Label(LabelService),
		Number:  c.Number(),
		OneOff:  c.IsOneOff(),
	}, true
}

// NamePatternStrategy parses {project}_{service}_{n} names of containers
// created before identity labels existed.
type NamePatternStrategy struct{}

func (NamePatternStrategy) Name() string { return "name" }

func (NamePatternStrategy) Identify(project string, c ContainerRecord) (Identity, bool) {
	parts, ok := ParseContainerName(project, c.Name)
	if !ok {
		return Identity{}, false
	}
	return Identity{
		Project: project,
		Service: parts.Service,
		Number:  parts.Number,
		OneOff:  parts.OneOff,
	}, true
}

// DefaultStrategies is labels first, legacy names second.
func DefaultStrategies() []MatchStrategy {
	return []MatchStrategy{LabelStrategy{}, NamePatternStrategy{}}
}

// =============================================================================
// Matcher
// =============================================================================

// Matcher maps runtime containers onto a project's services.
// It is pure: callers hand it freshly listed containers.
type Matcher struct {
	strategies []MatchStrategy
}

// NewMatcher creates a matcher trying strategies in order.
// With no strategies, DefaultStrategies is used.
func NewMatcher(strategies ...MatchStrategy) *Matcher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Matcher{strategies: strategies}
}

// Identify returns the identity of c as seen from project. Containers with
// no name, or that no strategy recognizes, are skipped.
func (m *Matcher) Identify(project string, c ContainerRecord) (Identity, bool) {
	if c.Name == "" {
		return Identity{}, false
	}
	for _, s := range m.strategies {
		if id, ok := s.Identify(project, c); ok {
			return id, true
		}
	}
	return Identity{}, false
}

// ForProject returns the containers belonging to project, in runtime order.
// One-off containers are dropped unless includeOneOff is set.
func (m *Matcher) ForProject(project string, containers []ContainerRecord, includeOneOff bool) []ContainerRecord {
	var result []ContainerRecord
	for _, c := range containers {
		id, ok := m.Identify(project, c)
		if !ok || id.Project != project {
			continue
		}
		if id.OneOff && !includeOneOff {
			continue
		}
		result = append(result, c)
	}
	return result
}

// ForService returns the containers of one service ordered by ascending
// ordinal. Containers without an ordinal sort last; ties are broken by name
// and then id, so the result never depends on runtime list order.
func (m *Matcher) ForService(project, service string, containers []ContainerRecord, includeOneOff bool) []ContainerRecord {
	return m.Partition(project, containers, includeOneOff)[service]
}

// Partition groups project containers by service, each group ordered as in
// ForService. Containers without a service identity are left out.
func (m *Matcher) Partition(project string, containers []ContainerRecord, includeOneOff bool) map[string][]ContainerRecord {
	grouped := make(map[string][]identified)
	for _, c := range containers {
		id, ok := m.Identify(project, c)
		if !ok || id.Project != project || id.Service == "" {
			continue
		}
		if id.OneOff && !includeOneOff {
			continue
		}
		grouped[id.Service] = append(grouped[id.Service], identified{record: c, id: id})
	}

	result := make(map[string][]ContainerRecord, len(grouped))
	for service, list := range grouped {
		sortByNumber(list)
		records := make([]ContainerRecord, len(list))
		for i, item := range list {
			records[i] = item.record
		}
		result[service] = records
	}
	return result
}

// Orphans returns project containers whose service is not in services,
// including those that carry no service identity at all.
func (m *Matcher) Orphans(project string, services []string, containers []ContainerRecord, includeOneOff bool) []ContainerRecord {
	declared := make(map[string]bool, len(services))
	for _, s := range services {
		declared[s] = true
	}

	var result []ContainerRecord
	for _, c := range containers {
		id, ok := m.Identify(project, c)
		if !ok || id.Project != project {
			continue
		}
		if id.OneOff && !includeOneOff {
			continue
		}
		if !declared[id.Service] {
			result = append(result, c)
		}
	}
	return result
}

// Sort returns containers ordered as in ForService. Containers no strategy
// recognizes are kept and sort as if their ordinal were unknown.
func (m *Matcher) Sort(project string, containers []ContainerRecord) []ContainerRecord {
	list := make([]identified, len(containers))
	for i, c := range containers {
		id, _ := m.Identify(project, c)
		list[i] = identified{record: c, id: id}
	}
	sortByNumber(list)

	result := make([]ContainerRecord, len(list))
	for i, item := range list {
		result[i] = item.record
	}
	return result
}

// NextNumber returns the next free ordinal for a service, given its containers.
func (m *Matcher) NextNumber(project string, containers []ContainerRecord) int {
	highest := 0
	for _, c := range containers {
		if id, ok := m.Identify(project, c); ok && id.Number > highest {
			highest = id.Number
		}
	}
	return highest + 1
}

type identified struct {
	record ContainerRecord
	id     Identity
}

func sortByNumber(list []identified) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if (a.id.Number == 0) != (b.id.Number == 0) {
			return b.id.Number == 0
		}
		if a.id.Number != b.id.Number {
			return a.id.Number < b.id.Number
		}
		if a.record.Name != b.record.Name {
			return a.record.Name < b.record.Name
		}
		return a.record.ID < b.record.ID
	})
}
