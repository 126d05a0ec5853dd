package service

import "fmt"

// UnauthorizedError means the permission check failed; the operation was
// aborted before any mutation.
type UnauthorizedError struct {
	UserID string
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %s lacks %s permission", e.UserID, e.Action)
}

// NotFoundError means a referenced task or user is absent.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}

// ValidationError means a request carried malformed field values.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CycleError means adding a dependency edge would make the graph cyclic.
type CycleError struct {
	TaskID    string
	DependsOn string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency %s -> %s would create a cycle", e.TaskID, e.DependsOn)
}

// InvalidTransitionError means the requested status transition is not legal
// on the status lattice, or its dependency preconditions are unmet.
type InvalidTransitionError struct {
	TaskID string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("task %s cannot move from %s to %s: %s", e.TaskID, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("task %s cannot move from %s to %s", e.TaskID, e.From, e.To)
}

// ConcurrentModificationError means the caller's expected version was stale;
// the caller must re-read the task and retry.
type ConcurrentModificationError struct {
	TaskID          string
	ExpectedVersion int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("task %s was modified concurrently (expected version %d)", e.TaskID, e.ExpectedVersion)
}

// CascadeBlockedError means a delete was blocked by live dependents or
// children under the strict cascade policy.
type CascadeBlockedError struct {
	TaskID string
	Reason string
}

func (e *CascadeBlockedError) Error() string {
	return fmt.Sprintf("cannot delete task %s: %s", e.TaskID, e.Reason)
}
