package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Identity is the composite cache key of one task instance: the task kind
// plus a digest of the canonicalized parameters.
//
// Two tasks with equal kind and equal canonical parameters always produce
// the same Identity, and therefore the same output location. The digest is a
// pure function of the parameter values, never of memory addresses, map
// iteration order, or process state, so identities are stable across
// restarts and machines.
type Identity struct {
	kind string
	key  string
}

// NewIdentity derives the identity for a task kind and parameter bag.
func NewIdentity(kind string, params Params) (Identity, error) {
	if kind == "" {
		return Identity{}, InvalidParameterf("task kind is required")
	}
	canonical, err := params.Canonical()
	if err != nil {
		return Identity{}, err
	}

	h := sha256.New()
	// Length-prefix the kind so (kind, params) pairs cannot collide by
	// shifting bytes between the two.
	var prefix [8]byte
	n := uint64(len(kind))
	for i := 0; i < 8; i++ {
		prefix[i] = byte(n >> (56 - 8*i))
	}
	h.Write(prefix[:])
	h.Write([]byte(kind))
	h.Write(canonical)

	return Identity{kind: kind, key: hex.EncodeToString(h.Sum(nil))}, nil
}

// Kind returns the task kind name.
func (id Identity) Kind() string { return id.kind }

// Key returns the full hex digest of the canonical parameters.
func (id Identity) Key() string { return id.key }

// IsZero reports whether the identity is the zero value.
func (id Identity) IsZero() bool { return id.kind == "" && id.key == "" }

// String renders a short human-readable form for logs and reports.
func (id Identity) String() string {
	if len(id.key) >= 12 {
		return fmt.Sprintf("%s/%s", id.kind, id.key[:12])
	}
	return fmt.Sprintf("%s/%s", id.kind, id.key)
}
