package resolve

import (
	"github.com/reoring/typebind/internal/wire"
	"github.com/reoring/typebind/model"
)

// Manifest is what a code emitter consumes: per root the concrete variants,
// per entity its resolved fields and descendant names.
type Manifest struct {
	Roots       []RootManifest   `json:"roots"`
	Entities    []EntityManifest `json:"entities"`
	Enums       []EnumManifest   `json:"enums,omitempty"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

// RootManifest lists the concrete variants of one hierarchy root in DFS
// pre-order.
type RootManifest struct {
	Root     string   `json:"root"`
	Variants []string `json:"variants"`
}

// EntityManifest is one entity with its resolved fields. Names stand in for
// entity ids throughout.
type EntityManifest struct {
	Name            string               `json:"name"`
	Role            string               `json:"role"`
	Extends         string               `json:"extends,omitempty"`
	Implements      []string             `json:"implements,omitempty"`
	Implementors    []string             `json:"implementors,omitempty"`
	ChildClassNames []string             `json:"childClassNames,omitempty"`
	Deprecation     *model.Deprecation   `json:"deprecation,omitempty"`
	Fields          []DescriptorManifest `json:"fields"`
	AncestorSlots   []string             `json:"ancestorSlots,omitempty"`
}

// DescriptorManifest is a resolved field. Origin names the declaring entity
// of Inherited and Overrides fields.
type DescriptorManifest struct {
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	Provenance  string             `json:"provenance"`
	Origin      string             `json:"origin,omitempty"`
	Ordinal     int                `json:"ordinal"`
	IsExtension bool               `json:"isExtension,omitempty"`
	Deprecation *model.Deprecation `json:"deprecation,omitempty"`
}

// EnumManifest is an enum with its constants in declaration order.
type EnumManifest struct {
	Name        string             `json:"name"`
	Values      []string           `json:"values"`
	Deprecation *model.Deprecation `json:"deprecation,omitempty"`
}

// BuildManifest flattens a Result for serialization.
func BuildManifest(r *Result, diags Diagnostics) *Manifest {
	m := r.Model()
	out := &Manifest{Diagnostics: diags}
	name := func(id model.EntityID) string {
		if e, ok := m.Entity(id); ok {
			return e.Name
		}
		return string(id)
	}
	for _, e := range m.Entities() {
		if e.IsRoot() {
			rm := RootManifest{Root: e.Name, Variants: []string{}}
			for _, v := range r.Variants(e.ID) {
				rm.Variants = append(rm.Variants, name(v))
			}
			out.Roots = append(out.Roots, rm)
		}
		em := EntityManifest{
			Name:            e.Name,
			Role:            e.Role.String(),
			ChildClassNames: r.ChildClassNames(e.ID),
			Deprecation:     e.Deprecation,
			Fields:          []DescriptorManifest{},
		}
		if e.Extends != "" {
			em.Extends = name(e.Extends)
		}
		for _, iface := range e.Implements {
			em.Implements = append(em.Implements, name(iface))
		}
		for _, id := range e.Implementors {
			em.Implementors = append(em.Implementors, name(id))
		}
		for _, d := range r.Fields(e.ID) {
			dm := DescriptorManifest{
				Name:        d.Name(),
				Type:        m.TypeString(d.Type()),
				Provenance:  d.Provenance.String(),
				Ordinal:     d.Ordinal,
				IsExtension: d.IsExtension,
				Deprecation: d.Field.Deprecation,
			}
			if d.Ref != NoDescriptor {
				dm.Origin = name(r.Origin(d.ID).Entity)
			}
			em.Fields = append(em.Fields, dm)
		}
		for _, d := range r.AncestorSlots(e.ID) {
			em.AncestorSlots = append(em.AncestorSlots, d.Name())
		}
		out.Entities = append(out.Entities, em)
	}
	for _, en := range m.Enums() {
		out.Enums = append(out.Enums, EnumManifest{Name: en.Name, Values: en.Values, Deprecation: en.Deprecation})
	}
	return out
}

// JSON renders the manifest with indentation.
func (mf *Manifest) JSON() ([]byte, error) { return wire.MarshalIndent(mf) }
