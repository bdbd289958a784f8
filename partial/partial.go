// Package partial decides where a field-selection subtree enters a type and
// holds the selection tree itself.
package partial

import (
	"fmt"

	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/resolve"
)

// Special names the wrapper a selection passes through on its way to the terminal.
type Special int

const (
	None Special = iota
	Map
	Batch
)

func (s Special) String() string {
	switch s {
	case Map:
		return "Map"
	case Batch:
		return "Batch"
	}
	return "None"
}

// Result is the outcome of Of. Terminal is nil when the type admits no
// nested selection; Special may still record a wrapper in that case.
type Result struct {
	Terminal model.Type
	Special  Special
}

// Selectable reports whether a nested selection applies.
func (r Result) Selectable() bool { return r.Terminal != nil }

// Of peels list, map and batch wrappers off t and returns the selectable
// terminal type with its modifiers stripped.
func Of(t model.Type) (Result, error) {
	res, err := of(t)
	if err != nil {
		return Result{}, err
	}
	res.Terminal = model.StripModifiers(res.Terminal)
	return res, nil
}

func of(t model.Type) (Result, error) {
	switch v := t.(type) {
	case nil, model.Primitive, model.Enum, model.URLParam:
		return Result{}, nil
	case model.Array:
		res, err := of(v.Element)
		if err != nil {
			return Result{}, err
		}
		if model.IsMap(v) {
			res.Special = Map
		}
		return res, nil
	case model.Object:
		switch v.Kind {
		case model.Pair, model.Triple, model.Mod:
			return Result{Terminal: v}, nil
		case model.MapEntry:
			return of(v.ValueType())
		case model.Batch:
			res, err := of(v.BatchDataType())
			if err != nil {
				return Result{}, err
			}
			res.Special = Batch
			return res, nil
		}
		return Result{}, fmt.Errorf("objects of kind %s never appear in output types", v.Kind)
	case model.Dto, model.Ref:
		return Result{Terminal: t}, nil
	}
	return Result{}, fmt.Errorf("unsupported type %T", t)
}

// Member is a selectable name of a terminal type. Type is the first
// declaration that admits a nested selection, or the first declaration when
// none does; Types holds every declaration when sibling variants disagree.
type Member struct {
	Name  string
	Type  model.Type
	Types []model.Type
}

// Members lists what a selection over terminal may name: the fields of an
// entity and all its descendants, or the slots of a fixed-shape object.
func Members(r *resolve.Result, terminal model.Type) []Member {
	switch v := terminal.(type) {
	case model.Dto:
		return entityMembers(r, v.ID)
	case model.Ref:
		return entityMembers(r, v.ID)
	case model.Object:
		out := make([]Member, len(v.Fields))
		for i, f := range v.Fields {
			out[i] = Member{Name: f.Name, Type: f.Type, Types: []model.Type{f.Type}}
		}
		return out
	}
	return nil
}

func entityMembers(r *resolve.Result, id model.EntityID) []Member {
	names := r.HierarchyFieldNames(id)
	out := make([]Member, 0, len(names))
	for _, n := range names {
		mb := Member{Name: n}
		for _, d := range r.HierarchyFields(id, n) {
			mb.Types = append(mb.Types, d.Type())
		}
		mb.Type = mb.Types[0]
		for _, t := range mb.Types {
			if res, err := Of(t); err == nil && res.Selectable() {
				mb.Type = t
				break
			}
		}
		out = append(out, mb)
	}
	return out
}

// terminals returns the distinct selectable terminals of every declaration.
func (mb Member) terminals(m *model.Model) ([]model.Type, error) {
	var out []model.Type
	seen := map[string]struct{}{}
	for _, t := range mb.Types {
		res, err := Of(t)
		if err != nil {
			return nil, err
		}
		if !res.Selectable() {
			continue
		}
		key := pathKey(m, res.Terminal)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, res.Terminal)
	}
	return out, nil
}

func member(r *resolve.Result, terminal model.Type, name string) (Member, bool) {
	for _, mb := range Members(r, terminal) {
		if mb.Name == name {
			return mb, true
		}
	}
	return Member{}, false
}

// pathKey identifies a terminal on the compact recursion path.
func pathKey(m *model.Model, t model.Type) string {
	switch v := t.(type) {
	case model.Dto:
		return "entity:" + string(v.ID)
	case model.Ref:
		return "entity:" + string(v.ID)
	}
	return m.TypeString(t)
}
