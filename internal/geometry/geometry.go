// Package geometry defines the crystallographic collaborator contracts the
// task library depends on.
//
// The algorithms behind these interfaces (surface enumeration, symmetry
// analysis, site finding) live outside this module; tasks treat them as
// black boxes and only depend on the declared behavior.
package geometry

import (
	"context"

	"surfgen/internal/core"
)

// Settings is an opaque option bag forwarded verbatim to the geometry
// implementation. Keys and values follow the conventions of the backing
// toolkit; the pipeline only requires that equal settings produce equal
// results.
type Settings map[string]any

// Slab pairs an enumerated surface structure with the termination shift it
// was cut at. Shift distinguishes terminations of the same Miller index.
type Slab struct {
	Structure core.Structure
	Shift     float64
}

// Operations is the geometry collaborator contract.
//
// Implementations must be deterministic for equal inputs: the pipeline's
// caching assumes a task re-run against the same parameters reproduces the
// same documents.
type Operations interface {
	// EnumerateSlabs cuts every distinct termination of the given Miller
	// plane out of the bulk. Generator settings configure the cut (sizes,
	// vacuum); enumeration settings configure which terminations are kept.
	// Slab order is part of the result and must be stable.
	EnumerateSlabs(ctx context.Context, bulk core.Structure, miller [3]int, generator, enumeration Settings) ([]Slab, error)

	// OrientUpward rotates a slab so its surface normal points along +z.
	OrientUpward(ctx context.Context, s core.Structure) (core.Structure, error)

	// ApplySubsurfaceConstraints marks atoms below the surface region as
	// fixed, leaving surface atoms free.
	ApplySubsurfaceConstraints(ctx context.Context, s core.Structure) (core.Structure, error)

	// IsInvertible reports whether flipping the slab exposes a distinct
	// surface. Symmetric slabs are not invertible.
	IsInvertible(ctx context.Context, s core.Structure) (bool, error)

	// Flip inverts a slab about the xy plane, exposing its underside.
	Flip(ctx context.Context, s core.Structure) (core.Structure, error)

	// TileToMinimumSize repeats the slab in x and y until both in-plane
	// extents reach the given minima, returning the tiled structure and the
	// (x, y) repeat factors used.
	TileToMinimumSize(ctx context.Context, s core.Structure, minX, minY float64) (core.Structure, [2]int, error)

	// FindAdsorptionSites returns the cartesian coordinates of the unique
	// adsorption sites on the upward-facing surface. Site order must be
	// stable.
	FindAdsorptionSites(ctx context.Context, s core.Structure) ([][3]float64, error)
}

// GasLibrary resolves small-molecule names to reference structures.
type GasLibrary interface {
	// Molecule returns the named molecule with atoms positioned around the
	// origin and no cell. Unknown names yield an InvalidParameter error.
	Molecule(name string) (core.Structure, error)
}
