// Package resolve computes, for every entity of a model, the complete ordered
// list of fields it carries and where each one comes from.
package resolve

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/reoring/typebind/model"
)

var log = commonlog.GetLogger("typebind.resolve")

// Provenance tags where a resolved field comes from.
type Provenance int

const (
	// OwnFinal is declared here and not overridden by any descendant.
	OwnFinal Provenance = iota
	// OwnOpen is declared here and overridden by at least one descendant.
	OwnOpen
	// Inherited is not redeclared here; Ref points at the parent's descriptor.
	Inherited
	// Overrides redeclares an ancestor field; Ref points at the origin.
	Overrides
)

var provenanceNames = [...]string{"OwnFinal", "OwnOpen", "Inherited", "Overrides"}

func (p Provenance) String() string {
	if p < 0 || int(p) >= len(provenanceNames) {
		return fmt.Sprintf("Provenance(%d)", int(p))
	}
	return provenanceNames[p]
}

// DescriptorID indexes the descriptor arena.
type DescriptorID int

// NoDescriptor is the Ref of OwnFinal and OwnOpen descriptors.
const NoDescriptor DescriptorID = -1

// Descriptor is a resolved field of one entity.
type Descriptor struct {
	ID     DescriptorID
	Entity model.EntityID
	Field  model.Field
	// Ordinal is the construction slot. Overrides carry the origin's ordinal and
	// Inherited carry the parent descriptor's, so one field keeps one slot
	// across the whole hierarchy.
	Ordinal     int
	Provenance  Provenance
	Ref         DescriptorID
	IsExtension bool
}

// Name is the field name.
func (d *Descriptor) Name() string { return d.Field.Name }

// Type is the field type.
func (d *Descriptor) Type() model.Type { return d.Field.Type }

// Result is the immutable output of Resolve. It is safe for concurrent reads.
type Result struct {
	model    *model.Model
	arena    []Descriptor
	fields   map[model.EntityID][]DescriptorID
	children map[model.EntityID]map[string]struct{}
	sorted   map[model.EntityID][]string
	variants map[model.EntityID][]model.EntityID
}

// Diagnostic reports a resolution ambiguity that was not silently decided.
type Diagnostic struct {
	Code    string           `json:"code"`
	Entity  model.EntityID   `json:"entity"`
	Field   string           `json:"field"`
	Origins []model.EntityID `json:"origins"`
	Message string           `json:"message"`
}

// CodeAmbiguousOverride flags a field reaching an entity from two interfaces with different origins.
const CodeAmbiguousOverride = "ambiguous_override"

// Diagnostics is the list returned alongside a Result.
type Diagnostics []Diagnostic

// Resolve walks every hierarchy top-down from its root and assigns each field
// its provenance and ordinal.
func Resolve(m *model.Model) (*Result, Diagnostics) {
	log.Info("resolving field descriptors")
	r := &Result{
		model:    m,
		fields:   map[model.EntityID][]DescriptorID{},
		children: map[model.EntityID]map[string]struct{}{},
		sorted:   map[model.EntityID][]string{},
		variants: map[model.EntityID][]model.EntityID{},
	}
	for _, e := range m.Entities() {
		if e.IsRoot() {
			r.visit(e, nil)
		}
	}
	for _, e := range m.Entities() {
		r.closeChildren(e.ID)
		if e.IsRoot() {
			r.variants[e.ID] = r.collectVariants(e.ID, nil)
		}
	}
	diags := r.diamonds()
	for _, d := range diags {
		log.Warningf("%s: %s", d.Entity, d.Message)
	}
	log.Infof("resolved %d descriptors for %d entities", len(r.arena), len(r.fields))
	return r, diags
}

func (r *Result) add(d Descriptor) DescriptorID {
	d.ID = DescriptorID(len(r.arena))
	r.arena = append(r.arena, d)
	r.fields[d.Entity] = append(r.fields[d.Entity], d.ID)
	return d.ID
}

// origin follows Inherited and Overrides links up to the declaring descriptor.
func (r *Result) origin(id DescriptorID) DescriptorID {
	for {
		d := &r.arena[id]
		if d.Provenance != Inherited && d.Provenance != Overrides {
			return id
		}
		id = d.Ref
	}
}

func (r *Result) visit(e *model.Entity, parent []DescriptorID) {
	log.Debugf("resolving %s", e.Name)
	r.fields[e.ID] = nil
	declared := make(map[string]struct{}, len(e.Fields))
	for i, f := range e.Fields {
		declared[f.Name] = struct{}{}
		if pid, ok := r.findIn(parent, f.Name); ok {
			oid := r.origin(pid)
			if r.arena[oid].Provenance == OwnFinal {
				r.arena[oid].Provenance = OwnOpen
			}
			r.add(Descriptor{
				Entity:      e.ID,
				Field:       f,
				Ordinal:     r.arena[oid].Ordinal,
				Provenance:  Overrides,
				Ref:         oid,
				IsExtension: f.IsExtension,
			})
			continue
		}
		r.add(Descriptor{
			Entity:      e.ID,
			Field:       f,
			Ordinal:     i,
			Provenance:  OwnFinal,
			Ref:         NoDescriptor,
			IsExtension: f.IsExtension,
		})
	}
	for _, pid := range parent {
		p := r.arena[pid]
		if _, ok := declared[p.Field.Name]; ok {
			continue
		}
		r.add(Descriptor{
			Entity:      e.ID,
			Field:       p.Field,
			Ordinal:     p.Ordinal,
			Provenance:  Inherited,
			Ref:         pid,
			IsExtension: p.IsExtension,
		})
	}
	own := r.fields[e.ID]
	for _, cid := range e.Inheritors {
		child, _ := r.model.Entity(cid)
		r.visit(child, own)
	}
}

func (r *Result) findIn(list []DescriptorID, name string) (DescriptorID, bool) {
	for _, id := range list {
		if r.arena[id].Field.Name == name {
			return id, true
		}
	}
	return NoDescriptor, false
}

// closeChildren computes the transitive descendant name set of id. An
// interface's implementors and their descendants count as descendants.
func (r *Result) closeChildren(id model.EntityID) map[string]struct{} {
	if set, ok := r.children[id]; ok {
		return set
	}
	e, _ := r.model.Entity(id)
	set := map[string]struct{}{}
	for _, cid := range e.Subtypes() {
		child, _ := r.model.Entity(cid)
		set[child.Name] = struct{}{}
		for n := range r.closeChildren(cid) {
			set[n] = struct{}{}
		}
	}
	r.children[id] = set
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	r.sorted[id] = names
	return set
}

func (r *Result) collectVariants(id model.EntityID, out []model.EntityID) []model.EntityID {
	e, _ := r.model.Entity(id)
	if e.IsConcrete() {
		out = append(out, id)
	}
	for _, cid := range e.Inheritors {
		out = r.collectVariants(cid, out)
	}
	return out
}

// diamonds reports fields that reach an entity through two implemented
// interfaces from different origins without being declared on its own chain.
func (r *Result) diamonds() Diagnostics {
	var out Diagnostics
	for _, e := range r.model.Entities() {
		if len(e.Implements) < 2 {
			continue
		}
		origins := map[string][]model.EntityID{}
		originIDs := map[string]map[DescriptorID]struct{}{}
		var names []string
		for _, iface := range e.Implements {
			for _, id := range r.fields[iface] {
				d := &r.arena[id]
				if _, ok := r.Field(e.ID, d.Field.Name); ok {
					continue
				}
				oid := r.origin(id)
				if originIDs[d.Field.Name] == nil {
					originIDs[d.Field.Name] = map[DescriptorID]struct{}{}
					names = append(names, d.Field.Name)
				}
				if _, seen := originIDs[d.Field.Name][oid]; seen {
					continue
				}
				originIDs[d.Field.Name][oid] = struct{}{}
				origins[d.Field.Name] = append(origins[d.Field.Name], r.arena[oid].Entity)
			}
		}
		for _, n := range names {
			if len(origins[n]) < 2 {
				continue
			}
			out = append(out, Diagnostic{
				Code:    CodeAmbiguousOverride,
				Entity:  e.ID,
				Field:   n,
				Origins: origins[n],
				Message: fmt.Sprintf("field %q is declared by %v and not redeclared on %s", n, origins[n], e.Name),
			})
		}
	}
	return out
}

// Model returns the model the result was computed from.
func (r *Result) Model() *model.Model { return r.model }

// Descriptor returns the arena entry for id.
func (r *Result) Descriptor(id DescriptorID) *Descriptor { return &r.arena[id] }

// Origin returns the declaring descriptor of id.
func (r *Result) Origin(id DescriptorID) *Descriptor { return &r.arena[r.origin(id)] }

// Fields returns the resolved fields of an entity: own and overriding fields
// in declaration order, then inherited ones.
func (r *Result) Fields(id model.EntityID) []*Descriptor {
	ids := r.fields[id]
	out := make([]*Descriptor, len(ids))
	for i, did := range ids {
		out[i] = &r.arena[did]
	}
	return out
}

// Field looks up a resolved field by name.
func (r *Result) Field(id model.EntityID, name string) (*Descriptor, bool) {
	did, ok := r.findIn(r.fields[id], name)
	if !ok {
		return nil, false
	}
	return &r.arena[did], true
}

// AncestorSlots returns the descriptors an entity hands to its parent shape,
// stably sorted by ordinal.
func (r *Result) AncestorSlots(id model.EntityID) []*Descriptor {
	var out []*Descriptor
	for _, did := range r.fields[id] {
		d := &r.arena[did]
		if d.Provenance == Inherited || d.Provenance == Overrides {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// ChildClassNames returns the sorted names of all proper descendants.
func (r *Result) ChildClassNames(id model.EntityID) []string { return r.sorted[id] }

// HasChildClass reports whether name is a proper descendant of id.
func (r *Result) HasChildClass(id model.EntityID, name string) bool {
	_, ok := r.children[id][name]
	return ok
}

// Variants returns the concrete entities under a root in DFS pre-order.
func (r *Result) Variants(root model.EntityID) []model.EntityID { return r.variants[root] }

// subtypes visits id and every entity reachable through Subtypes once, in
// depth-first pre-order.
func (r *Result) subtypes(id model.EntityID, fn func(model.EntityID)) {
	seen := map[model.EntityID]struct{}{}
	var walk func(model.EntityID)
	walk = func(eid model.EntityID) {
		if _, ok := seen[eid]; ok {
			return
		}
		seen[eid] = struct{}{}
		fn(eid)
		e, _ := r.model.Entity(eid)
		for _, cid := range e.Subtypes() {
			walk(cid)
		}
	}
	walk(id)
}

// HierarchyFieldNames returns the field names of id and all its descendants,
// in first-seen order.
func (r *Result) HierarchyFieldNames(id model.EntityID) []string {
	seen := map[string]struct{}{}
	var out []string
	r.subtypes(id, func(eid model.EntityID) {
		for _, did := range r.fields[eid] {
			n := r.arena[did].Field.Name
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	})
	return out
}

// HierarchyFields returns every declaration of name on id and its
// descendants, one per declaring entity. Sibling variants may give one name different
// types.
func (r *Result) HierarchyFields(id model.EntityID, name string) []*Descriptor {
	var out []*Descriptor
	origins := map[DescriptorID]struct{}{}
	r.subtypes(id, func(eid model.EntityID) {
		did, ok := r.findIn(r.fields[eid], name)
		if !ok {
			return
		}
		d := &r.arena[did]
		key := did
		for r.arena[key].Provenance == Inherited {
			key = r.arena[key].Ref
		}
		if _, dup := origins[key]; dup {
			return
		}
		origins[key] = struct{}{}
		out = append(out, d)
	})
	return out
}
