package project

import (
	"errors"
	"fmt"
)

// =============================================================================
// Project Errors
// =============================================================================

var (
	// ErrServiceNotFound is matched by every ServiceNotFoundError.
	ErrServiceNotFound = errors.New("service not found")

	// ErrNoSuchContainer is returned when an explicit container reference
	// does not exist in the runtime.
	ErrNoSuchContainer = errors.New("no such container")

	// ErrNoRunningContainer is returned when a referenced service has no
	// running container to borrow volumes or a network namespace from.
	ErrNoRunningContainer = errors.New("no running container")

	// ErrNoRuntime is returned when a runtime query is made on a project
	// built without a runtime.
	ErrNoRuntime = errors.New("no container runtime configured")
)

// ServiceNotFoundError reports a lookup of an undeclared service.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("no such service: %s", e.Name)
}

// Is makes errors.Is(err, ErrServiceNotFound) hold.
func (e *ServiceNotFoundError) Is(target error) bool {
	return target == ErrServiceNotFound
}

// ReferenceError reports a volumes_from or network reference that could
// not be resolved to a container.
type ReferenceError struct {
	Service string // service holding the reference
	Target  string // referenced service or container
	Message string
	Err     error
}

func (e *ReferenceError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("service %s: %s", e.Service, e.Message)
	}
	return e.Message
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// RuntimeError wraps a failed runtime call. The cause is kept unchanged.
type RuntimeError struct {
	Op     string // "list" or "inspect"
	Target string // project, service or container the call was about
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
