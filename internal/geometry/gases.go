package geometry

import (
	"sort"

	"surfgen/internal/core"
)

// StandardGases is the built-in GasLibrary: equilibrium geometries for the
// small molecules the pipeline generates, atoms around the origin, no cell.
type StandardGases struct{}

// gas geometries in Angstroms.
var standardGases = map[string]core.Structure{
	"H2": {
		Symbols:   []string{"H", "H"},
		Positions: [][3]float64{{0, 0, 0}, {0, 0, 0.7414}},
	},
	"N2": {
		Symbols:   []string{"N", "N"},
		Positions: [][3]float64{{0, 0, 0}, {0, 0, 1.0977}},
	},
	"O2": {
		Symbols:   []string{"O", "O"},
		Positions: [][3]float64{{0, 0, 0}, {0, 0, 1.2074}},
	},
	"CO": {
		Symbols:   []string{"C", "O"},
		Positions: [][3]float64{{0, 0, 0}, {0, 0, 1.1282}},
	},
	"OH": {
		Symbols:   []string{"O", "H"},
		Positions: [][3]float64{{0, 0, 0}, {0, 0, 0.9697}},
	},
	"H2O": {
		Symbols: []string{"O", "H", "H"},
		Positions: [][3]float64{
			{0, 0, 0.119262},
			{0, 0.763239, -0.477047},
			{0, -0.763239, -0.477047},
		},
	},
	"CO2": {
		Symbols: []string{"C", "O", "O"},
		Positions: [][3]float64{
			{0, 0, 0},
			{0, 0, 1.1621},
			{0, 0, -1.1621},
		},
	},
	"NH3": {
		Symbols: []string{"N", "H", "H", "H"},
		Positions: [][3]float64{
			{0, 0, 0.116489},
			{0, 0.939731, -0.271808},
			{0.813831, -0.469865, -0.271808},
			{-0.813831, -0.469865, -0.271808},
		},
	},
	"CH4": {
		Symbols: []string{"C", "H", "H", "H", "H"},
		Positions: [][3]float64{
			{0, 0, 0},
			{0.629118, 0.629118, 0.629118},
			{-0.629118, -0.629118, 0.629118},
			{0.629118, -0.629118, -0.629118},
			{-0.629118, 0.629118, -0.629118},
		},
	},
}

// Molecule returns a copy of the named molecule.
func (StandardGases) Molecule(name string) (core.Structure, error) {
	s, ok := standardGases[name]
	if !ok {
		return core.Structure{}, core.InvalidParameterf("unknown gas %q (known: %v)", name, gasNames())
	}
	return s.Clone(), nil
}

func gasNames() []string {
	names := make([]string, 0, len(standardGases))
	for name := range standardGases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
