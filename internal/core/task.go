package core

import "context"

// Task is one named, parameterized unit of deterministic computation.
//
// A task is a pure function of its declared parameters. Its identity, its
// dependency list, and its output location are all derivable without running
// the main computation. Execute reads dependency outputs only through the
// Store, never through in-memory references to other task instances, so a
// half-finished pipeline can resume in a fresh process.
type Task interface {
	// Kind is the registered name of the task type.
	Kind() string

	// Params returns the validated parameter bag the task was built with.
	Params() Params

	// Identity is the cache key derived from Kind and Params.
	Identity() Identity

	// Dependencies returns the upstream tasks that must be done before
	// Execute may run. It is cheap and deterministic: parameter
	// introspection only, no I/O, no main computation.
	Dependencies() ([]Task, error)

	// Execute performs the computation using the task's own parameters and
	// the committed records of its dependencies, read via store. The
	// resolver commits the returned documents under this task's identity;
	// Execute itself never writes.
	Execute(ctx context.Context, store Store) (DocumentSet, error)
}

// OutputRef is a handle to where a task's result is or will be stored. It is
// valid before the task has run.
type OutputRef struct {
	ID       Identity
	Location string
}

// Ref returns the output handle for a task against a store.
func Ref(s Store, t Task) OutputRef {
	id := t.Identity()
	return OutputRef{ID: id, Location: s.Location(id)}
}

// ReadDocuments loads the committed document payload for an identity.
// It fails with ErrNotFound if no record has been committed.
func ReadDocuments(ctx context.Context, s Store, id Identity) (DocumentSet, error) {
	rec, err := s.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Documents, nil
}
