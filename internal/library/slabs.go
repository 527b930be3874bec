package library

import (
	"context"
	"fmt"

	"surfgen/internal/core"
	"surfgen/internal/geometry"
)

// GenerateSlabs enumerates the surface terminations of a bulk material for
// one Miller plane. Depends on GenerateBulk for the same material.
//
// Fan-out: each enumerated slab yields one upward-oriented document with
// top=true, immediately followed by a flipped top=false document when the
// slab is invertible. Both share the slab's termination shift. Non-invertible
// slabs yield the top document only. Slab order follows the enumeration
// order of the geometry collaborator.
type GenerateSlabs struct {
	env         *Env
	reg         *Registry
	materialID  string
	miller      [3]int
	generator   map[string]any
	enumeration map[string]any
	params      core.Params
	id          core.Identity
}

// NewGenerateSlabs validates the parameter bag:
//
//	material_id           required
//	miller                required, three integers
//	generator_settings    optional map (settings default)
//	enumeration_settings  optional map (settings default)
func NewGenerateSlabs(env *Env, reg *Registry, p core.Params) (*GenerateSlabs, error) {
	materialID, err := stringParam(p, "material_id")
	if err != nil {
		return nil, err
	}
	miller, err := millerParam(p, "miller")
	if err != nil {
		return nil, err
	}
	generator, err := settingsParam(p, "generator_settings", env.Settings.Slab.Generator)
	if err != nil {
		return nil, err
	}
	enumeration, err := settingsParam(p, "enumeration_settings", env.Settings.Slab.Enumeration)
	if err != nil {
		return nil, err
	}

	params := core.Params{
		"material_id":          materialID,
		"miller":               miller,
		"generator_settings":   generator,
		"enumeration_settings": enumeration,
	}
	id, err := core.NewIdentity(KindGenerateSlabs, params)
	if err != nil {
		return nil, err
	}
	return &GenerateSlabs{
		env:         env,
		reg:         reg,
		materialID:  materialID,
		miller:      miller,
		generator:   generator,
		enumeration: enumeration,
		params:      params,
		id:          id,
	}, nil
}

func (t *GenerateSlabs) Kind() string            { return KindGenerateSlabs }
func (t *GenerateSlabs) Params() core.Params     { return t.params.Clone() }
func (t *GenerateSlabs) Identity() core.Identity { return t.id }

func (t *GenerateSlabs) Dependencies() ([]core.Task, error) {
	bulk, err := t.reg.New(KindGenerateBulk, core.Params{"material_id": t.materialID})
	if err != nil {
		return nil, err
	}
	return []core.Task{bulk}, nil
}

func (t *GenerateSlabs) Execute(ctx context.Context, store core.Store) (core.DocumentSet, error) {
	deps, err := t.Dependencies()
	if err != nil {
		return nil, err
	}
	bulkDocs, err := core.ReadDocuments(ctx, store, deps[0].Identity())
	if err != nil {
		return nil, err
	}
	if len(bulkDocs) != 1 {
		return nil, fmt.Errorf("bulk record for %s has %d documents, want 1", t.materialID, len(bulkDocs))
	}
	bulk, err := core.DocumentToStructure(bulkDocs[0])
	if err != nil {
		return nil, err
	}

	geo := t.env.Geometry
	slabs, err := geo.EnumerateSlabs(ctx, bulk, t.miller,
		geometry.Settings(t.generator), geometry.Settings(t.enumeration))
	if err != nil {
		return nil, err
	}

	var docs core.DocumentSet
	for i, slab := range slabs {
		oriented, err := geo.OrientUpward(ctx, slab.Structure)
		if err != nil {
			return nil, fmt.Errorf("slab %d: %w", i, err)
		}
		constrained, err := geo.ApplySubsurfaceConstraints(ctx, oriented)
		if err != nil {
			return nil, fmt.Errorf("slab %d: %w", i, err)
		}
		docs = append(docs, slabDocument(constrained, slab.Shift, true))

		invertible, err := geo.IsInvertible(ctx, oriented)
		if err != nil {
			return nil, fmt.Errorf("slab %d: %w", i, err)
		}
		if !invertible {
			continue
		}
		flipped, err := geo.Flip(ctx, oriented)
		if err != nil {
			return nil, fmt.Errorf("slab %d: %w", i, err)
		}
		flipped, err = geo.ApplySubsurfaceConstraints(ctx, flipped)
		if err != nil {
			return nil, fmt.Errorf("slab %d: %w", i, err)
		}
		docs = append(docs, slabDocument(flipped, slab.Shift, false))
	}
	return docs, nil
}

func slabDocument(s core.Structure, shift float64, top bool) core.Document {
	doc := core.StructureToDocument(s)
	doc.Shift = &shift
	doc.Top = &top
	return doc
}
