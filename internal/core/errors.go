package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidParameter marks bad task construction input. Surfaced
	// immediately, never retried.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrRemoteLookup marks a failure of an external data source. Retry
	// policy belongs to the caller, not to the pipeline.
	ErrRemoteLookup = errors.New("remote lookup failed")

	// ErrNotFound marks a read of an identity with no committed record.
	ErrNotFound = errors.New("output record not found")

	// ErrCyclicDependency marks a cycle in the task graph. Programming
	// error; fatal.
	ErrCyclicDependency = errors.New("cyclic dependency")
)

// Error wraps one of the sentinel kinds with context.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// InvalidParameterf builds an ErrInvalidParameter with context.
func InvalidParameterf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidParameter, Msg: fmt.Sprintf(format, args...)}
}

// RemoteLookupf builds an ErrRemoteLookup with context.
func RemoteLookupf(format string, args ...any) error {
	return &Error{Kind: ErrRemoteLookup, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError builds an ErrNotFound for the given identity.
func NotFoundError(id Identity) error {
	return &Error{Kind: ErrNotFound, Msg: id.String()}
}

// CycleError builds an ErrCyclicDependency naming the cycle path.
func CycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &Error{Kind: ErrCyclicDependency, Msg: msg}
}

// TaskError records a failure inside one task's computation (or a dependency
// failure propagated to it). It is reported against the task's identity and
// never silently swallowed.
type TaskError struct {
	ID  Identity
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.ID, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
