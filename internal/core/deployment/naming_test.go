package deployment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ContainerName Tests
// =============================================================================

func TestContainerName_Simple(t *testing.T) {
	assert.Equal(t, "myapp_web_1", ContainerName("myapp", "web", 1))
}

func TestContainerName_MultiDigit(t *testing.T) {
	assert.Equal(t, "myapp_worker_12", ContainerName("myapp", "worker", 12))
}

func TestOneOffContainerName(t *testing.T) {
	assert.Equal(t, "myapp_web_run_2", OneOffContainerName("myapp", "web", 2))
}

func TestDefaultNetworkName(t *testing.T) {
	assert.Equal(t, "myapp_default", DefaultNetworkName("myapp"))
}

// =============================================================================
// NormalizeProjectName Tests
// =============================================================================

func TestNormalizeProjectName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"myapp", "myapp"},
		{"MyApp", "myapp"},
		{"my app", "myapp"},
		{"My-App_2", "my-app_2"},
		{"compose.test", "composetest"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeProjectName(tt.input))
		})
	}
}

// =============================================================================
// ParseContainerName Tests
// =============================================================================

func TestParseContainerName(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		input    string
		expected NameParts
		ok       bool
	}{
		{"replica", "test", "test_vol_1", NameParts{Service: "vol", Number: 1}, true},
		{"leading slash", "test", "/test_vol_3", NameParts{Service: "vol", Number: 3}, true},
		{"underscore in service", "test", "test_my_db_2", NameParts{Service: "my_db", Number: 2}, true},
		{"one-off", "test", "test_web_run_4", NameParts{Service: "web", Number: 4, OneOff: true}, true},
		{"service named run", "test", "test_run_1", NameParts{Service: "run", Number: 1}, true},
		{"other project", "test", "other_vol_1", NameParts{}, false},
		{"project prefix only", "test", "testing_vol_1", NameParts{}, false},
		{"no number", "test", "test_vol", NameParts{}, false},
		{"non-numeric number", "test", "test_vol_x", NameParts{}, false},
		{"zero number", "test", "test_vol_0", NameParts{}, false},
		{"missing service", "test", "test__1", NameParts{}, false},
		{"link alias name", "test", "/test_web_1/db", NameParts{}, false},
		{"bare id", "test", "1", NameParts{}, false},
		{"empty", "test", "", NameParts{}, false},
		{"empty project", "", "_vol_1", NameParts{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseContainerName(tt.project, tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseContainerName_RoundTrip(t *testing.T) {
	got, ok := ParseContainerName("myapp", ContainerName("myapp", "web", 7))
	assert.True(t, ok)
	assert.Equal(t, NameParts{Service: "web", Number: 7}, got)

	got, ok = ParseContainerName("myapp", OneOffContainerName("myapp", "web", 7))
	assert.True(t, ok)
	assert.Equal(t, NameParts{Service: "web", Number: 7, OneOff: true}, got)
}

// =============================================================================
// Label Tests
// =============================================================================

func TestProjectLabels(t *testing.T) {
	labels := ProjectLabels("myapp", "web", 2, false)
	assert.Equal(t, map[string]string{
		LabelProject:         "myapp",
		LabelService:         "web",
		LabelContainerNumber: "2",
		LabelOneOff:          "False",
	}, labels)

	c := ContainerRecord{Labels: ProjectLabels("myapp", "web", 3, true)}
	assert.Equal(t, 3, c.Number())
	assert.True(t, c.IsOneOff())
}

func TestLabelFilter(t *testing.T) {
	assert.Equal(t, "com.docker.compose.project=myapp", LabelFilter(LabelProject, "myapp"))
}

func TestContainerRecord_Number(t *testing.T) {
	tests := []struct {
		name     string
		labels   map[string]string
		expected int
	}{
		{"set", map[string]string{LabelContainerNumber: "5"}, 5},
		{"missing", nil, 0},
		{"garbage", map[string]string{LabelContainerNumber: "five"}, 0},
		{"negative", map[string]string{LabelContainerNumber: "-1"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainerRecord{Labels: tt.labels}.Number())
		})
	}
}

func TestContainerRecord_ShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", ContainerRecord{ID: "0123456789abcdef"}.ShortID())
	assert.Equal(t, "abc", ContainerRecord{ID: "abc"}.ShortID())
}
