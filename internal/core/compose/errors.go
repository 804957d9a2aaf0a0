// Package compose contains the service specification model and the loader
// that turns compose files into ServiceSpecs.
// This is part of the Functional Core - no runtime I/O happens here.
package compose

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input validation errors
	ErrEmptyInput = errors.New("compose spec is empty")

	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// Compose structure errors
	ErrNoServices = errors.New("compose spec must define at least one service")

	// Configuration errors (structurally invalid service set)
	ErrEmptyServiceName   = errors.New("service name is empty")
	ErrDuplicateService   = errors.New("duplicate service name")
	ErrUndefinedService   = errors.New("undefined service")
	ErrCircularDependency = errors.New("circular dependency")
	ErrInvalidReference   = errors.New("invalid reference")
)

// ParseError wraps errors with context about where parsing failed.
type ParseError struct {
	Field   string // e.g., "services.web.links[0]"
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ConfigurationError reports a structurally invalid service set: an undefined
// reference, a dependency cycle, a duplicate or empty name.
// It is always fatal to the planning cycle.
type ConfigurationError struct {
	Service string   // offending service, if any
	Target  string   // referenced name, if any
	Cycle   []string // full cycle path for ErrCircularDependency, first == last
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Service != "" && !strings.Contains(e.Message, e.Service) {
		return fmt.Sprintf("service %s: %s", e.Service, e.Message)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(service, target, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Service: service,
		Target:  target,
		Message: message,
		Err:     err,
	}
}

// UndefinedServiceError reports that service depends on an undeclared target.
func UndefinedServiceError(service, target string) *ConfigurationError {
	return NewConfigurationError(service, target,
		fmt.Sprintf("service %s depends on undefined service %s", service, target),
		ErrUndefinedService)
}

// CycleError reports a dependency cycle. path must start and end with the same service.
func CycleError(path []string) *ConfigurationError {
	e := NewConfigurationError(path[0], "",
		"circular dependency: "+strings.Join(path, " -> "),
		ErrCircularDependency)
	e.Cycle = path
	return e
}
