// Package core defines the domain model for the generation pipeline:
// structures, their document form, task identity, and the output store.
//
// Everything here serves one invariant: a task is a pure function of its
// declared parameters, and the identity derived from those parameters is the
// single key for caching, deduplication, and storage.
//
// # Core types
//
// Structure: one atomic configuration as a plain value.
// Document: the versioned, serializable form of a structure plus its
// task-specific annotations.
// Identity: kind + canonical-parameter digest; stable across processes.
// Task: a unit of work with declared dependencies and a persisted output.
// Store: identity-keyed record persistence with atomic, write-once commits.
package core
