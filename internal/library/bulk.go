package library

import (
	"context"

	"surfgen/internal/core"
)

// GenerateBulk fetches the bulk crystal structure for an external material
// identifier from the structure database. One document.
type GenerateBulk struct {
	env        *Env
	materialID string
	params     core.Params
	id         core.Identity
}

// NewGenerateBulk validates the parameter bag:
//
//	material_id  required, external database identifier (e.g. "mp-30")
func NewGenerateBulk(env *Env, p core.Params) (*GenerateBulk, error) {
	materialID, err := stringParam(p, "material_id")
	if err != nil {
		return nil, err
	}
	params := core.Params{"material_id": materialID}
	id, err := core.NewIdentity(KindGenerateBulk, params)
	if err != nil {
		return nil, err
	}
	return &GenerateBulk{env: env, materialID: materialID, params: params, id: id}, nil
}

func (t *GenerateBulk) Kind() string            { return KindGenerateBulk }
func (t *GenerateBulk) Params() core.Params     { return t.params.Clone() }
func (t *GenerateBulk) Identity() core.Identity { return t.id }

func (t *GenerateBulk) Dependencies() ([]core.Task, error) { return nil, nil }

func (t *GenerateBulk) Execute(ctx context.Context, store core.Store) (core.DocumentSet, error) {
	bulk, err := t.env.MatDB.FetchBulkStructure(ctx, t.materialID)
	if err != nil {
		return nil, err
	}
	return core.DocumentSet{core.StructureToDocument(bulk)}, nil
}
