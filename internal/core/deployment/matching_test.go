package deployment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Test Helpers
// =============================================================================

func labelled(id, project, service string, number int) ContainerRecord {
	return ContainerRecord{
		ID:     id,
		Name:   ContainerName(project, service, number),
		State:  "running",
		Labels: ProjectLabels(project, service, number, false),
	}
}

func legacy(id, name string) ContainerRecord {
	return ContainerRecord{ID: id, Name: name, State: "running"}
}

func ids(records []ContainerRecord) []string {
	result := make([]string, len(records))
	for i, r := range records {
		result[i] = r.ID
	}
	return result
}

// =============================================================================
// Strategy Tests
// =============================================================================

func TestLabelStrategy_Identify(t *testing.T) {
	c := labelled("1", "test", "web", 2)
	id, ok := LabelStrategy{}.Identify("test", c)
	assert.True(t, ok)
	assert.Equal(t, Identity{Project: "test", Service: "web", Number: 2}, id)
}

func TestLabelStrategy_ClaimsOtherProjects(t *testing.T) {
	c := labelled("1", "other", "web", 1)
	id, ok := LabelStrategy{}.Identify("test", c)
	assert.True(t, ok)
	assert.Equal(t, "other", id.Project)
}

func TestLabelStrategy_IgnoresUnlabelled(t *testing.T) {
	_, ok := LabelStrategy{}.Identify("test", legacy("1", "test_web_1"))
	assert.False(t, ok)
}

func TestNamePatternStrategy_Identify(t *testing.T) {
	id, ok := NamePatternStrategy{}.Identify("test", legacy("1", "test_vol_1"))
	assert.True(t, ok)
	assert.Equal(t, Identity{Project: "test", Service: "vol", Number: 1}, id)

	_, ok = NamePatternStrategy{}.Identify("test", legacy("2", "random"))
	assert.False(t, ok)
}

func TestMatcher_StrategiesTriedInOrder(t *testing.T) {
	// labels say "api", the name says "web": labels win
	c := ContainerRecord{
		ID:     "1",
		Name:   "test_web_1",
		Labels: map[string]string{LabelProject: "test", LabelService: "api"},
	}
	id, ok := NewMatcher().Identify("test", c)
	assert.True(t, ok)
	assert.Equal(t, "api", id.Service)

	id, ok = NewMatcher(NamePatternStrategy{}).Identify("test", c)
	assert.True(t, ok)
	assert.Equal(t, "web", id.Service)
}

// =============================================================================
// ForProject Tests
// =============================================================================

func TestMatcher_ForProject_SkipsContainersWithoutName(t *testing.T) {
	containers := []ContainerRecord{
		{ID: "1", Name: "1", Labels: map[string]string{LabelProject: "test", LabelService: "web"}},
		{ID: "2", Name: "", Labels: map[string]string{LabelProject: "test", LabelService: "web"}},
		{ID: "3"},
	}
	result := NewMatcher().ForProject("test", containers, false)
	assert.Equal(t, []string{"1"}, ids(result))
}

func TestMatcher_ForProject_FiltersByProject(t *testing.T) {
	containers := []ContainerRecord{
		labelled("a", "test", "web", 1),
		labelled("b", "other", "web", 1),
		legacy("c", "test_db_1"),
		legacy("d", "other_db_1"),
		legacy("e", "unrelated"),
	}
	result := NewMatcher().ForProject("test", containers, false)
	assert.Equal(t, []string{"a", "c"}, ids(result))
}

func TestMatcher_ForProject_OneOffVisibility(t *testing.T) {
	run := ContainerRecord{
		ID:     "run",
		Name:   OneOffContainerName("test", "web", 1),
		Labels: ProjectLabels("test", "web", 1, true),
	}
	legacyRun := legacy("legacy-run", "test_web_run_2")
	containers := []ContainerRecord{labelled("a", "test", "web", 1), run, legacyRun}

	assert.Equal(t, []string{"a"}, ids(NewMatcher().ForProject("test", containers, false)))
	assert.Equal(t, []string{"a", "run", "legacy-run"}, ids(NewMatcher().ForProject("test", containers, true)))
}

func TestMatcher_ForProject_KeepsServicelessContainers(t *testing.T) {
	c := ContainerRecord{ID: "x", Name: "sidecar", Labels: map[string]string{LabelProject: "test"}}
	m := NewMatcher()

	assert.Equal(t, []string{"x"}, ids(m.ForProject("test", []ContainerRecord{c}, false)))
	assert.Empty(t, m.Partition("test", []ContainerRecord{c}, false))
}

// =============================================================================
// ForService Tests
// =============================================================================

func TestMatcher_ForService_OrderedByNumber(t *testing.T) {
	containers := []ContainerRecord{
		labelled("third", "test", "web", 3),
		labelled("first", "test", "web", 1),
		labelled("db", "test", "db", 1),
		labelled("second", "test", "web", 2),
	}
	result := NewMatcher().ForService("test", "web", containers, false)
	assert.Equal(t, []string{"first", "second", "third"}, ids(result))
}

func TestMatcher_ForService_LegacyFallback(t *testing.T) {
	containers := []ContainerRecord{
		legacy("old-2", "test_web_2"),
		labelled("new-1", "test", "web", 1),
		legacy("old-db", "test_db_1"),
	}
	result := NewMatcher().ForService("test", "web", containers, false)
	assert.Equal(t, []string{"new-1", "old-2"}, ids(result))
}

func TestMatcher_ForService_MissingNumberSortsLast(t *testing.T) {
	noNumber := ContainerRecord{
		ID:     "nonum",
		Name:   "custom_name",
		Labels: map[string]string{LabelProject: "test", LabelService: "web"},
	}
	containers := []ContainerRecord{noNumber, labelled("two", "test", "web", 2)}
	result := NewMatcher().ForService("test", "web", containers, false)
	assert.Equal(t, []string{"two", "nonum"}, ids(result))
}

func TestMatcher_ForService_TieBreakIndependentOfListOrder(t *testing.T) {
	a := ContainerRecord{ID: "a", Name: "alpha", Labels: map[string]string{LabelProject: "test", LabelService: "web"}}
	b := ContainerRecord{ID: "b", Name: "beta", Labels: map[string]string{LabelProject: "test", LabelService: "web"}}

	m := NewMatcher()
	assert.Equal(t, []string{"a", "b"}, ids(m.ForService("test", "web", []ContainerRecord{a, b}, false)))
	assert.Equal(t, []string{"a", "b"}, ids(m.ForService("test", "web", []ContainerRecord{b, a}, false)))
}

func TestMatcher_ForService_UnknownService(t *testing.T) {
	containers := []ContainerRecord{labelled("a", "test", "web", 1)}
	assert.Empty(t, NewMatcher().ForService("test", "db", containers, false))
}

// =============================================================================
// Orphan Tests
// =============================================================================

func TestMatcher_Orphans(t *testing.T) {
	containers := []ContainerRecord{
		labelled("web", "test", "web", 1),
		labelled("gone", "test", "worker", 1),
		legacy("gone-legacy", "test_cron_1"),
		{ID: "serviceless", Name: "x", Labels: map[string]string{LabelProject: "test"}},
		labelled("foreign", "other", "worker", 1),
	}
	result := NewMatcher().Orphans("test", []string{"web", "db"}, containers, false)
	assert.Equal(t, []string{"gone", "gone-legacy", "serviceless"}, ids(result))
}

// =============================================================================
// Sort Tests
// =============================================================================

func TestMatcher_Sort_KeepsUnrecognized(t *testing.T) {
	containers := []ContainerRecord{
		{ID: "x", Name: "adhoc"},
		labelled("b", "test", "web", 2),
		legacy("a", "test_web_1"),
	}
	result := NewMatcher().Sort("test", containers)
	assert.Equal(t, []string{"a", "b", "x"}, ids(result))
	assert.Equal(t, "x", containers[0].ID, "input is not reordered")
}

// =============================================================================
// NextNumber Tests
// =============================================================================

func TestMatcher_NextNumber(t *testing.T) {
	m := NewMatcher()
	assert.Equal(t, 1, m.NextNumber("test", nil))

	containers := []ContainerRecord{
		labelled("a", "test", "web", 1),
		legacy("b", "test_web_4"),
		labelled("c", "test", "web", 2),
	}
	assert.Equal(t, 5, m.NextNumber("test", containers))
}
