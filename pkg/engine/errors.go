package engine

import "fmt"

// NotReadyError reports an operation attempted out of order, such as
// evolving a generation before the population has been scored.
type NotReadyError struct {
	Op    string
	State string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("engine not ready for %s (state: %s)", e.Op, e.State)
}

// InvariantError reports a fatal broken invariant, such as an empty
// population. Runs hitting one are not retried.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated: %s", e.Reason)
}
