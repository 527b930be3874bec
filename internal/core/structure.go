package core

import "fmt"

// Structure is one atomic configuration: chemical symbols, cartesian
// positions (Angstroms), a 3x3 cell matrix, periodicity flags, per-atom
// integer tags, and per-atom fixed-position constraints.
//
// Structures are treated as values. Tasks never mutate a structure they
// received; they Clone first. The geometry collaborators follow the same
// convention and return new structures.
type Structure struct {
	Symbols   []string
	Positions [][3]float64
	Cell      [3][3]float64
	PBC       [3]bool
	Tags      []int
	Fixed     []bool
}

// NumAtoms returns the number of atoms in the structure.
func (s Structure) NumAtoms() int { return len(s.Symbols) }

// Validate checks that the per-atom slices are consistent.
//
// Tags and Fixed may be nil (meaning all-zero / all-free); if present they
// must match the atom count.
func (s Structure) Validate() error {
	n := len(s.Symbols)
	if len(s.Positions) != n {
		return fmt.Errorf("structure has %d symbols but %d positions", n, len(s.Positions))
	}
	if s.Tags != nil && len(s.Tags) != n {
		return fmt.Errorf("structure has %d symbols but %d tags", n, len(s.Tags))
	}
	if s.Fixed != nil && len(s.Fixed) != n {
		return fmt.Errorf("structure has %d symbols but %d constraints", n, len(s.Fixed))
	}
	return nil
}

// Clone returns a deep copy.
func (s Structure) Clone() Structure {
	out := Structure{
		Cell: s.Cell,
		PBC:  s.PBC,
	}
	out.Symbols = append([]string(nil), s.Symbols...)
	out.Positions = append([][3]float64(nil), s.Positions...)
	if s.Tags != nil {
		out.Tags = append([]int(nil), s.Tags...)
	}
	if s.Fixed != nil {
		out.Fixed = append([]bool(nil), s.Fixed...)
	}
	return out
}

// Translate shifts every atom by delta and returns the result.
func (s Structure) Translate(delta [3]float64) Structure {
	out := s.Clone()
	for i := range out.Positions {
		for k := 0; k < 3; k++ {
			out.Positions[i][k] += delta[k]
		}
	}
	return out
}

// WithAtom returns a copy of the structure with one extra atom appended.
//
// Tag and Fixed slices are materialized if absent so the new atom's tag is
// recorded even when the rest of the structure carries none.
func (s Structure) WithAtom(symbol string, position [3]float64, tag int) Structure {
	out := s.Clone()
	n := len(out.Symbols)
	if out.Tags == nil {
		out.Tags = make([]int, n)
	}
	if out.Fixed == nil {
		out.Fixed = make([]bool, n)
	}
	out.Symbols = append(out.Symbols, symbol)
	out.Positions = append(out.Positions, position)
	out.Tags = append(out.Tags, tag)
	out.Fixed = append(out.Fixed, false)
	return out
}
