package engine

import (
	"github.com/reoring/typebind"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
)

type arrayCodec struct{ elem codec }

func (a arrayCodec) decode(c *Context) (any, error) {
	if !c.present {
		return nil, c.missing()
	}
	arr, ok := c.json.([]any)
	if !ok {
		return nil, c.mismatch("array")
	}
	out := make([]any, len(arr))
	for i, el := range arr {
		v, err := a.elem.decode(c.element(i, el, c.sel))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a arrayCodec) encode(v any, s *partial.Selection, at typebind.PathRef) (any, bool, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, false, typebind.Contractf(at.Pointer(), "Array expects []any, got %T", v)
	}
	out := make([]any, len(list))
	for i, el := range list {
		ev, present, err := a.elem.encode(el, s, at.Index(i))
		if err != nil {
			return nil, false, err
		}
		if !present {
			return nil, false, typebind.Contractf(at.Index(i).Pointer(), "array element encoded to an absent value")
		}
		out[i] = ev
	}
	return out, true, nil
}

// mapCodec reads the canonical [{"key":..,"value":..}] encoding. Keys are
// decoded under the key type's compact selection, values under the active one.
type mapCodec struct {
	key    codec
	value  codec
	keySel *partial.Selection
}

func (m mapCodec) decode(c *Context) (any, error) {
	if !c.present {
		return nil, c.missing()
	}
	arr, ok := c.json.([]any)
	if !ok {
		return nil, c.mismatch("array")
	}
	out := typebind.NewMap()
	for i, el := range arr {
		ec := c.element(i, el, c.sel)
		obj, err := ec.object()
		if err != nil {
			return nil, err
		}
		k, err := m.key.decode(ec.member(obj, "key", m.keySel))
		if err != nil {
			return nil, err
		}
		v, err := m.value.decode(ec.member(obj, "value", c.sel))
		if err != nil {
			return nil, err
		}
		out.Put(k, v)
	}
	return out, nil
}

func (m mapCodec) encode(v any, s *partial.Selection, at typebind.PathRef) (any, bool, error) {
	mp, ok := v.(*typebind.Map)
	if !ok {
		return nil, false, typebind.Contractf(at.Pointer(), "Map expects *typebind.Map, got %T", v)
	}
	entries := mp.Entries()
	out := make([]any, 0, len(entries))
	for i, e := range entries {
		el := at.Index(i)
		k, kp, err := m.key.encode(e.Key, m.keySel, el.Field("key"))
		if err != nil {
			return nil, false, err
		}
		entry := map[string]any{}
		if kp {
			entry["key"] = k
		}
		val, vp, err := m.value.encode(e.Value, s, el.Field("value"))
		if err != nil {
			return nil, false, err
		}
		if vp {
			entry["value"] = val
		}
		out = append(out, entry)
	}
	return out, true, nil
}

// batchCodec passes the active selection to the data elements; next and
// totalCount are always materialized.
type batchCodec struct{ data arrayCodec }

var (
	nextCodec  = primitiveCodec{kind: model.String}
	countCodec = primitiveCodec{kind: model.Int}
)

func (b batchCodec) decode(c *Context) (any, error) {
	obj, err := c.object()
	if err != nil {
		return nil, err
	}
	next, err := nextCodec.decode(c.member(obj, "next", nil))
	if err != nil {
		return nil, err
	}
	out := typebind.Batch{Next: next.(string)}
	tc := c.member(obj, "totalCount", nil)
	if tc.present && tc.json != nil {
		n, err := countCodec.decode(tc)
		if err != nil {
			return nil, err
		}
		total := n.(int32)
		out.TotalCount = &total
	}
	data, err := b.data.decode(c.member(obj, "data", c.sel))
	if err != nil {
		return nil, err
	}
	out.Data = data.([]any)
	return out, nil
}

func (b batchCodec) encode(v any, s *partial.Selection, at typebind.PathRef) (any, bool, error) {
	bv, ok := v.(typebind.Batch)
	if !ok {
		if p, isPtr := v.(*typebind.Batch); isPtr && p != nil {
			bv, ok = *p, true
		}
	}
	if !ok {
		return nil, false, typebind.Contractf(at.Pointer(), "Batch expects typebind.Batch, got %T", v)
	}
	out := map[string]any{"next": bv.Next, "totalCount": nil}
	if bv.TotalCount != nil {
		out["totalCount"] = *bv.TotalCount
	}
	data := bv.Data
	if data == nil {
		data = []any{}
	}
	d, _, err := b.data.encode(data, s, at.Field("data"))
	if err != nil {
		return nil, false, err
	}
	out["data"] = d
	return out, true, nil
}
