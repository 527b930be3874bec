package library

import (
	"context"
	"fmt"

	"surfgen/internal/core"
)

// GenerateGas produces a gas-phase reference configuration: the named
// molecule centered in a padded cubic periodic cell. One document.
type GenerateGas struct {
	env      *Env
	gasName  string
	cellSize float64
	params   core.Params
	id       core.Identity
}

// NewGenerateGas validates the parameter bag:
//
//	gas_name   required, molecule name known to the gas library
//	cell_size  optional, cubic cell edge in Angstroms (settings default)
func NewGenerateGas(env *Env, p core.Params) (*GenerateGas, error) {
	gasName, err := stringParam(p, "gas_name")
	if err != nil {
		return nil, err
	}
	cellSize, err := floatParam(p, "cell_size", env.Settings.Gas.CellSize)
	if err != nil {
		return nil, err
	}
	if cellSize <= 0 {
		return nil, core.InvalidParameterf("cell_size must be positive, got %v", cellSize)
	}

	params := core.Params{"gas_name": gasName, "cell_size": cellSize}
	id, err := core.NewIdentity(KindGenerateGas, params)
	if err != nil {
		return nil, err
	}
	return &GenerateGas{env: env, gasName: gasName, cellSize: cellSize, params: params, id: id}, nil
}

func (t *GenerateGas) Kind() string            { return KindGenerateGas }
func (t *GenerateGas) Params() core.Params     { return t.params.Clone() }
func (t *GenerateGas) Identity() core.Identity { return t.id }

func (t *GenerateGas) Dependencies() ([]core.Task, error) { return nil, nil }

func (t *GenerateGas) Execute(ctx context.Context, store core.Store) (core.DocumentSet, error) {
	mol, err := t.env.Gases.Molecule(t.gasName)
	if err != nil {
		return nil, err
	}
	h := t.cellSize / 2
	boxed := mol.Translate([3]float64{h, h, h})
	boxed.Cell = [3][3]float64{
		{t.cellSize, 0, 0},
		{0, t.cellSize, 0},
		{0, 0, t.cellSize},
	}
	boxed.PBC = [3]bool{true, true, true}
	if err := boxed.Validate(); err != nil {
		return nil, fmt.Errorf("gas %s: %w", t.gasName, err)
	}
	return core.DocumentSet{core.StructureToDocument(boxed)}, nil
}
