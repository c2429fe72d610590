package dependencies

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateVertex is returned when a vertex is registered twice
	ErrDuplicateVertex = errors.New("vertex already registered")

	// ErrUnknownVertex is returned when an operation names a vertex that was never registered
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrCycleDetected is returned by strict traversals that run into a cycle
	ErrCycleDetected = errors.New("cycle detected")
)

// VertexError describes a structural failure on a single vertex
type VertexError struct {
	Op     string
	Vertex string
	Err    error
}

func (e *VertexError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Vertex, e.Err)
}

func (e *VertexError) Unwrap() error {
	return e.Err
}

// CycleError carries the closed path found by a strict traversal.
// Path starts and ends with the same vertex.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycleDetected, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
