package engine

import (
	"github.com/reoring/typebind"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
)

// member is one named slot of an object shape, entity field or fixed record.
type member struct {
	name     string
	codec    codec
	optional bool
	// compact is the default nested selection; nil when the type admits none.
	compact *partial.Selection
}

// childSelection picks the selection a member decodes under.
func (m member) childSelection(sel *partial.Selection) *partial.Selection {
	if sel == nil {
		return nil
	}
	if ch, ok := sel.Child(m.name); ok {
		return ch
	}
	return m.compact
}

func decodeMember(c *Context, obj map[string]any, m member) (any, bool, error) {
	if !c.sel.Has(m.name) {
		return nil, false, nil
	}
	mc := c.member(obj, m.name, m.childSelection(c.sel))
	if !mc.present && !m.optional {
		return nil, false, mc.missing()
	}
	v, err := m.codec.decode(mc)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func encodeMember(out map[string]any, m member, v any, has bool, sel *partial.Selection, at typebind.PathRef) error {
	if !sel.Has(m.name) {
		return nil
	}
	link := at.Field(m.name)
	if !has {
		if m.optional {
			return nil
		}
		return typebind.Contractf(link.Pointer(), "required member %q has no value", m.name)
	}
	ev, present, err := m.codec.encode(v, m.childSelection(sel), link)
	if err != nil {
		return err
	}
	if present {
		out[m.name] = ev
	}
	return nil
}

// fixedCodec handles Pair, Triple, Mod and MapEntry records.
type fixedCodec struct {
	kind  model.ObjectKind
	slots []member
}

func (f fixedCodec) decode(c *Context) (any, error) {
	obj, err := c.object()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(f.slots))
	for i, s := range f.slots {
		v, _, err := decodeMember(c, obj, s)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	switch f.kind {
	case model.Pair:
		return typebind.Pair{First: vals[0], Second: vals[1]}, nil
	case model.Triple:
		return typebind.Triple{First: vals[0], Second: vals[1], Third: vals[2]}, nil
	case model.Mod:
		return typebind.Mod{Old: vals[0], New: vals[1]}, nil
	}
	return typebind.MapEntry{Key: vals[0], Value: vals[1]}, nil
}

func (f fixedCodec) encode(v any, sel *partial.Selection, at typebind.PathRef) (any, bool, error) {
	var vals []any
	switch x := v.(type) {
	case typebind.Pair:
		if f.kind == model.Pair {
			vals = []any{x.First, x.Second}
		}
	case typebind.Triple:
		if f.kind == model.Triple {
			vals = []any{x.First, x.Second, x.Third}
		}
	case typebind.Mod:
		if f.kind == model.Mod {
			vals = []any{x.Old, x.New}
		}
	case typebind.MapEntry:
		if f.kind == model.MapEntry {
			vals = []any{x.Key, x.Value}
		}
	}
	if vals == nil {
		return nil, false, typebind.Contractf(at.Pointer(), "%s expects typebind.%s, got %T", f.kind, f.kind, v)
	}
	out := map[string]any{}
	for i, s := range f.slots {
		if err := encodeMember(out, s, vals[i], true, sel, at); err != nil {
			return nil, false, err
		}
	}
	return out, true, nil
}
