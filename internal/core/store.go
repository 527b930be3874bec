package core

import "context"

// Store maps task identities to committed output records.
//
// Contract:
//   - Location is deterministic and collision-free: distinct identities
//     never share a location, equal identities always get the same one.
//   - Exists reports only complete, successfully committed records. A write
//     in progress, or one that crashed midway, is never visible.
//   - Write stages the record and publishes it with a single-step visibility
//     change. Writing an identity that already has a committed record is a
//     successful no-op: the first committer wins and later writers discard
//     their payload.
//   - Read returns ErrNotFound when no committed record exists.
//
// The store is the only shared mutable resource in the pipeline; all
// cross-worker coordination reduces to "claim an identity for writing
// exactly once".
type Store interface {
	Location(id Identity) string
	Exists(ctx context.Context, id Identity) (bool, error)
	Write(ctx context.Context, id Identity, rec *Record) error
	Read(ctx context.Context, id Identity) (*Record, error)
}
