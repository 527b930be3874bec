// Package dag resolves and executes the dependency closure of a set of
// tasks.
//
// It is split into an immutable graph definition (Graph, built from
// Task.Dependencies() and memoized by identity) and a per-run mutable
// execution state with validated transitions. Cached identities are never
// executed; failures propagate to dependents without stopping independent
// subgraphs.
package dag
