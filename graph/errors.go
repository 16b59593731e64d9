package graph

import (
	"fmt"
	"strings"
)

// DataIntegrityError reports a feed inconsistency found while building a graph.
// No planning may happen on a feed that produced one.
type DataIntegrityError struct {
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return "graph: data integrity: " + e.Reason
}

// UnknownStopError is returned when a stop name or ID matches nothing.
type UnknownStopError struct {
	Query string
}

func (e *UnknownStopError) Error() string {
	return fmt.Sprintf("stop not found: %s", e.Query)
}

// AmbiguousStopError is returned when a partial name matches several distinct stops.
type AmbiguousStopError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousStopError) Error() string {
	return fmt.Sprintf("stop name %q is ambiguous: %s", e.Query, strings.Join(e.Candidates, ", "))
}
