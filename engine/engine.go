// Package engine is the JSON codec over the model's type algebra. An Engine is
// built once per resolved model and is safe for concurrent use.
package engine

import (
	"context"
	"fmt"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
	"github.com/reoring/typebind/resolve"
)

// codec pairs the decode and encode halves of one type. encode reports
// present=false for an absent Optional, which callers drop from objects.
type codec interface {
	decode(c *Context) (any, error)
	encode(v any, sel *partial.Selection, at typebind.PathRef) (out any, present bool, err error)
}

// Engine holds the compiled codec of every entity.
type Engine struct {
	model    *model.Model
	res      *resolve.Result
	entities map[model.EntityID]*entityCodec
}

// New compiles codecs for every entity of r. Types that may never reach the
// codec (request bodies, optional array elements) are reported as
// *typebind.ContractError.
func New(r *resolve.Result) (*Engine, error) {
	m := r.Model()
	e := &Engine{model: m, res: r, entities: map[model.EntityID]*entityCodec{}}
	for _, ent := range m.Entities() {
		e.entities[ent.ID] = &entityCodec{id: ent.ID, name: ent.Name, concrete: ent.IsConcrete(), res: r}
	}
	for _, ent := range m.Entities() {
		ec := e.entities[ent.ID]
		for _, cid := range ent.Subtypes() {
			ec.subtypes = append(ec.subtypes, e.entities[cid])
		}
		for _, d := range r.Fields(ent.ID) {
			mb, err := e.member(d.Name(), d.Type(), ent.Name+"."+d.Name())
			if err != nil {
				return nil, err
			}
			ec.fields = append(ec.fields, mb)
		}
	}
	return e, nil
}

func (e *Engine) member(name string, t model.Type, where string) (member, error) {
	c, err := e.compile(t, where)
	if err != nil {
		return member{}, err
	}
	mb := member{name: name, codec: c, optional: t.Mods().Optional}
	res, err := partial.Of(t)
	if err != nil {
		return member{}, typebind.Contractf(where, "%v", err)
	}
	if res.Selectable() {
		mb.compact = partial.Compact(e.res, res.Terminal)
	}
	return mb, nil
}

func (e *Engine) compile(t model.Type, where string) (codec, error) {
	if t == nil {
		return nil, typebind.Contractf(where, "missing type")
	}
	base, err := e.compileBase(model.StripModifiers(t), where)
	if err != nil {
		return nil, err
	}
	mods := t.Mods()
	if mods.Nullable {
		base = nullableCodec{inner: base}
	}
	if mods.Optional {
		base = optionalCodec{inner: base}
	}
	return base, nil
}

func (e *Engine) compileBase(t model.Type, where string) (codec, error) {
	switch v := t.(type) {
	case model.Primitive:
		return primitiveCodec{kind: v.Kind}, nil
	case model.Array:
		if v.Element != nil && v.Element.Mods().Optional {
			return nil, typebind.Contractf(where, "array element type %s is optional", e.model.TypeString(v.Element))
		}
		if model.IsMap(v) {
			entry := v.Element.(model.Object)
			key, err := e.compile(entry.KeyType(), where+"<key>")
			if err != nil {
				return nil, err
			}
			val, err := e.compile(entry.ValueType(), where+"<value>")
			if err != nil {
				return nil, err
			}
			mc := mapCodec{key: key, value: val}
			if res, err := partial.Of(entry.KeyType()); err == nil && res.Selectable() {
				mc.keySel = partial.Compact(e.res, res.Terminal)
			}
			return mc, nil
		}
		el, err := e.compile(v.Element, where+"[]")
		if err != nil {
			return nil, err
		}
		return arrayCodec{elem: el}, nil
	case model.Object:
		switch v.Kind {
		case model.RequestBody:
			return nil, typebind.Contractf(where, "request body objects never reach the codec")
		case model.Batch:
			el, err := e.compile(v.BatchDataType(), where+"<data>")
			if err != nil {
				return nil, err
			}
			return batchCodec{data: arrayCodec{elem: el}}, nil
		}
		fc := fixedCodec{kind: v.Kind}
		for _, f := range v.Fields {
			mb, err := e.member(f.Name, f.Type, where+"."+f.Name)
			if err != nil {
				return nil, err
			}
			fc.slots = append(fc.slots, mb)
		}
		return fc, nil
	case model.Dto:
		return e.entity(v.ID, where)
	case model.Ref:
		return e.entity(v.ID, where)
	case model.URLParam:
		return e.entity(v.ID, where)
	case model.Enum:
		en, ok := e.model.Enum(v.ID)
		if !ok {
			return nil, typebind.Contractf(where, "unknown enum %q", v.ID)
		}
		return enumCodec{enum: en}, nil
	}
	return nil, typebind.Contractf(where, "unsupported type %T", t)
}

func (e *Engine) entity(id model.EntityID, where string) (codec, error) {
	ec, ok := e.entities[id]
	if !ok {
		return nil, typebind.Contractf(where, "unknown entity %q", id)
	}
	return ec, nil
}

// Codec is a compiled type ready to decode and encode values.
type Codec struct {
	t     model.Type
	c     codec
	model *model.Model
}

// Codec compiles t.
func (e *Engine) Codec(t model.Type) (*Codec, error) {
	c, err := e.compile(t, e.model.TypeString(t))
	if err != nil {
		return nil, err
	}
	return &Codec{t: t, c: c, model: e.model}, nil
}

// EntityCodec compiles a non-null Dto of the named entity.
func (e *Engine) EntityCodec(name string) (*Codec, error) {
	ent, ok := e.model.EntityByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", name)
	}
	return e.Codec(model.Dto{ID: ent.ID})
}

// Type returns the compiled type.
func (c *Codec) Type() model.Type { return c.t }

// Decode converts a tree produced by typebind.ParseJSON. A nil selection
// materializes everything. Failures are typebind.Issues.
func (c *Codec) Decode(tree any, sel *partial.Selection) (any, error) {
	return c.c.decode(rootContext(tree, sel, nil))
}

// DecodeWithMeta is Decode that also records which members were present and null.
func (c *Codec) DecodeWithMeta(tree any, sel *partial.Selection, popt typebind.PresenceOpt) (typebind.Decoded, error) {
	pm := typebind.PresenceMap{}
	v, err := c.c.decode(rootContext(tree, sel, pm))
	popt.Collect = true
	return typebind.Decoded{Value: v, Presence: pm.Filter(popt)}, err
}

// DecodeFrom parses src and decodes it.
func (c *Codec) DecodeFrom(ctx context.Context, src typebind.Source, sel *partial.Selection, opts ...typebind.ParseOpt) (any, error) {
	tree, err := typebind.ParseJSON(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	return c.Decode(tree, sel)
}

// Encode converts v to a JSON tree. present is false when v is an absent Optional.
func (c *Codec) Encode(v any, sel *partial.Selection) (tree any, present bool, err error) {
	return c.c.encode(v, sel, typebind.Root())
}

// Marshal encodes v and renders it as JSON text.
func (c *Codec) Marshal(v any, sel *partial.Selection) ([]byte, error) {
	tree, present, err := c.Encode(v, sel)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, typebind.Contractf("/", "top-level %s value is absent", c.model.TypeString(c.t))
	}
	return typebind.MarshalJSON(tree)
}
