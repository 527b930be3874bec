package core

import "fmt"

// DocumentVersion is the current on-disk schema version for Document and
// Record. Readers reject versions they do not understand; the location
// derivation never changes without an explicit migration.
const DocumentVersion = 1

// DocAtom is one atom inside a Document.
type DocAtom struct {
	Symbol   string     `json:"symbol"`
	Position [3]float64 `json:"position"`
	Tag      int        `json:"tag"`
	Fixed    bool       `json:"fixed"`
}

// Document is the persistable record for one atomic configuration.
//
// The atomic fields round-trip losslessly through the codec. The annotation
// fields are optional and owned by the task kind that produced the document:
//
//	shift            termination shift of an enumerated slab
//	top              whether the slab is oriented upward relative to its
//	                 original enumeration
//	slab_repeat      (x, y) tiling factors applied before site enumeration
//	adsorption_site  cartesian coordinates of the marked site
type Document struct {
	Version int           `json:"version"`
	Atoms   []DocAtom     `json:"atoms"`
	Cell    [3][3]float64 `json:"cell"`
	PBC     [3]bool       `json:"pbc"`

	Shift          *float64    `json:"shift,omitempty"`
	Top            *bool       `json:"top,omitempty"`
	SlabRepeat     *[2]int     `json:"slab_repeat,omitempty"`
	AdsorptionSite *[3]float64 `json:"adsorption_site,omitempty"`
}

// DocumentSet is an ordered sequence of documents, the payload type every
// task produces. Ordering is part of a task's contract (slab documents, for
// example, are emitted top-then-flipped).
type DocumentSet []Document

// StructureToDocument converts a structure into its document form.
func StructureToDocument(s Structure) Document {
	atoms := make([]DocAtom, s.NumAtoms())
	for i := range atoms {
		atoms[i] = DocAtom{
			Symbol:   s.Symbols[i],
			Position: s.Positions[i],
		}
		if s.Tags != nil {
			atoms[i].Tag = s.Tags[i]
		}
		if s.Fixed != nil {
			atoms[i].Fixed = s.Fixed[i]
		}
	}
	return Document{
		Version: DocumentVersion,
		Atoms:   atoms,
		Cell:    s.Cell,
		PBC:     s.PBC,
	}
}

// DocumentToStructure converts a document back into a structure. The
// round-trip with StructureToDocument is lossless for positions, cell,
// periodicity, tags, and constraints.
func DocumentToStructure(d Document) (Structure, error) {
	if d.Version != DocumentVersion {
		return Structure{}, fmt.Errorf("unsupported document version %d (want %d)", d.Version, DocumentVersion)
	}
	s := Structure{
		Symbols:   make([]string, len(d.Atoms)),
		Positions: make([][3]float64, len(d.Atoms)),
		Tags:      make([]int, len(d.Atoms)),
		Fixed:     make([]bool, len(d.Atoms)),
		Cell:      d.Cell,
		PBC:       d.PBC,
	}
	for i, a := range d.Atoms {
		s.Symbols[i] = a.Symbol
		s.Positions[i] = a.Position
		s.Tags[i] = a.Tag
		s.Fixed[i] = a.Fixed
	}
	return s, nil
}

// Record is the committed output of one task identity: a versioned envelope
// around the document payload. Presence of a record at an identity's
// location means the computation for that identity already succeeded.
type Record struct {
	Version   int         `json:"version"`
	Kind      string      `json:"kind"`
	Key       string      `json:"key"`
	Documents DocumentSet `json:"documents"`
}

// NewRecord builds the envelope for a task's documents.
func NewRecord(id Identity, docs DocumentSet) *Record {
	return &Record{
		Version:   DocumentVersion,
		Kind:      id.Kind(),
		Key:       id.Key(),
		Documents: docs,
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := &Record{
		Version: r.Version,
		Kind:    r.Kind,
		Key:     r.Key,
	}
	out.Documents = make(DocumentSet, len(r.Documents))
	for i, d := range r.Documents {
		cp := d
		cp.Atoms = append([]DocAtom(nil), d.Atoms...)
		if d.Shift != nil {
			v := *d.Shift
			cp.Shift = &v
		}
		if d.Top != nil {
			v := *d.Top
			cp.Top = &v
		}
		if d.SlabRepeat != nil {
			v := *d.SlabRepeat
			cp.SlabRepeat = &v
		}
		if d.AdsorptionSite != nil {
			v := *d.AdsorptionSite
			cp.AdsorptionSite = &v
		}
		out.Documents[i] = cp
	}
	return out
}
