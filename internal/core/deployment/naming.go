package deployment

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Resource Naming Functions
// =============================================================================

// ContainerName generates the name of a service replica.
// Pattern: {project}_{service}_{number}
//
// Example:
//
//	ContainerName("myapp", "web", 1) // returns "myapp_web_1"
func ContainerName(project, service string, number int) string {
	return fmt.Sprintf("%s_%s_%d", project, service, number)
}

// OneOffContainerName generates the name of a one-off (run) container.
// Pattern: {project}_{service}_run_{number}
//
// Example:
//
//	OneOffContainerName("myapp", "web", 2) // returns "myapp_web_run_2"
func OneOffContainerName(project, service string, number int) string {
	return fmt.Sprintf("%s_%s_run_%d", project, service, number)
}

// DefaultNetworkName is the name of the project's default network.
// Pattern: {project}_default
func DefaultNetworkName(project string) string {
	return project + "_default"
}

// NormalizeProjectName lowercases a project name and drops every character
// that is not allowed in container names.
//
// Example:
//
//	NormalizeProjectName("My-App_2") // returns "my-app_2"
func NormalizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// Name Parsing
// =============================================================================

// NameParts is what a container name reveals about its identity.
type NameParts struct {
	Service string
	Number  int
	OneOff  bool
}

// ParseContainerName splits a legacy container name of the given project.
// It returns false when the name does not follow the naming pattern.
//
// Example:
//
//	ParseContainerName("myapp", "myapp_web_run_3")
//	// returns NameParts{Service: "web", Number: 3, OneOff: true}, true
func ParseContainerName(project, name string) (NameParts, bool) {
	name = strings.TrimPrefix(name, "/")
	if project == "" || strings.Contains(name, "/") {
		return NameParts{}, false
	}

	rest, ok := strings.CutPrefix(name, project+"_")
	if !ok {
		return NameParts{}, false
	}

	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return NameParts{}, false
	}
	number, err := strconv.Atoi(rest[idx+1:])
	if err != nil || number < 1 {
		return NameParts{}, false
	}

	service := rest[:idx]
	oneOff := false
	if s, ok := strings.CutSuffix(service, "_run"); ok && s != "" {
		service = s
		oneOff = true
	}

	return NameParts{Service: service, Number: number, OneOff: oneOff}, true
}

// =============================================================================
// Labels
// =============================================================================

// ProjectLabels returns the identity labels for a new container.
func ProjectLabels(project, service string, number int, oneOff bool) map[string]string {
	oneOffValue := "False"
	if oneOff {
		oneOffValue = "True"
	}
	return map[string]string{
		LabelProject:         project,
		LabelService:         service,
		LabelContainerNumber: strconv.Itoa(number),
		LabelOneOff:          oneOffValue,
	}
}

// LabelFilter formats a key=value label filter for the runtime API.
//
// Example:
//
//	LabelFilter(LabelProject, "myapp") // returns "com.docker.compose.project=myapp"
func LabelFilter(key, value string) string {
	return key + "=" + value
}
