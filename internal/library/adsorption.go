package library

import (
	"context"
	"fmt"

	"surfgen/internal/core"
)

// Marker atom placed on each adsorption site. Uranium never occurs in the
// catalysts this pipeline targets, so it is unambiguous in downstream
// processing; tag 1 distinguishes it from slab atoms (tag 0).
const (
	MarkerSymbol = "U"
	MarkerTag    = 1
)

// GenerateAdsorptionSites enumerates the unique adsorption sites of every
// slab produced by GenerateSlabs for the same material and plane.
//
// Fan-out: per slab document, the slab is tiled up to the minimum in-plane
// extent, sites are found on the tiled surface, and each site yields one
// document with a marker atom placed on it, annotated with the tiling
// factors and the site coordinates. Slab annotations (shift, top) carry
// over. Document order is slabs in dependency order, sites in the order the
// geometry collaborator returns them.
type GenerateAdsorptionSites struct {
	env        *Env
	reg        *Registry
	slabParams core.Params
	minXY      float64
	params     core.Params
	id         core.Identity
}

// NewGenerateAdsorptionSites validates the parameter bag: everything
// GenerateSlabs accepts, plus
//
//	min_xy  optional, minimum in-plane extent in Angstroms (settings default)
func NewGenerateAdsorptionSites(env *Env, reg *Registry, p core.Params) (*GenerateAdsorptionSites, error) {
	minXY, err := floatParam(p, "min_xy", env.Settings.AdSlab.MinXY)
	if err != nil {
		return nil, err
	}
	if minXY <= 0 {
		return nil, core.InvalidParameterf("min_xy must be positive, got %v", minXY)
	}

	slabParams := p.Clone()
	delete(slabParams, "min_xy")
	// Construct the dependency eagerly: it validates the shared parameters
	// and normalizes them, so this task's identity is built from the same
	// canonical values.
	slabs, err := reg.New(KindGenerateSlabs, slabParams)
	if err != nil {
		return nil, err
	}

	params := slabs.Params()
	params["min_xy"] = minXY
	id, err := core.NewIdentity(KindGenerateAdsorptionSites, params)
	if err != nil {
		return nil, err
	}
	return &GenerateAdsorptionSites{
		env:        env,
		reg:        reg,
		slabParams: slabs.Params(),
		minXY:      minXY,
		params:     params,
		id:         id,
	}, nil
}

func (t *GenerateAdsorptionSites) Kind() string            { return KindGenerateAdsorptionSites }
func (t *GenerateAdsorptionSites) Params() core.Params     { return t.params.Clone() }
func (t *GenerateAdsorptionSites) Identity() core.Identity { return t.id }

func (t *GenerateAdsorptionSites) Dependencies() ([]core.Task, error) {
	slabs, err := t.reg.New(KindGenerateSlabs, t.slabParams)
	if err != nil {
		return nil, err
	}
	return []core.Task{slabs}, nil
}

func (t *GenerateAdsorptionSites) Execute(ctx context.Context, store core.Store) (core.DocumentSet, error) {
	deps, err := t.Dependencies()
	if err != nil {
		return nil, err
	}
	slabDocs, err := core.ReadDocuments(ctx, store, deps[0].Identity())
	if err != nil {
		return nil, err
	}

	geo := t.env.Geometry
	var docs core.DocumentSet
	for i, slabDoc := range slabDocs {
		slab, err := core.DocumentToStructure(slabDoc)
		if err != nil {
			return nil, fmt.Errorf("slab document %d: %w", i, err)
		}
		tiled, repeat, err := geo.TileToMinimumSize(ctx, slab, t.minXY, t.minXY)
		if err != nil {
			return nil, fmt.Errorf("slab document %d: %w", i, err)
		}
		sites, err := geo.FindAdsorptionSites(ctx, tiled)
		if err != nil {
			return nil, fmt.Errorf("slab document %d: %w", i, err)
		}
		for _, site := range sites {
			marked := tiled.WithAtom(MarkerSymbol, site, MarkerTag)
			doc := core.StructureToDocument(marked)
			doc.Shift = slabDoc.Shift
			doc.Top = slabDoc.Top
			r := repeat
			doc.SlabRepeat = &r
			s := site
			doc.AdsorptionSite = &s
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
