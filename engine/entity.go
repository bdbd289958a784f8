package engine

import (
	"strings"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
	"github.com/reoring/typebind/resolve"
)

// ClassNameMember is the reserved discriminant member of polymorphic objects.
const ClassNameMember = "className"

// entityCodec encodes one entity. Entities with inheritors or implementors,
// and entities that cannot be instantiated, dispatch on className; the rest
// are flat objects.
type entityCodec struct {
	id       model.EntityID
	name     string
	concrete bool
	fields   []member
	subtypes []*entityCodec
	res      *resolve.Result
}

func (e *entityCodec) polymorphic() bool { return len(e.subtypes) > 0 || !e.concrete }

func (e *entityCodec) decode(c *Context) (any, error) {
	if !e.polymorphic() {
		return e.decodeFlat(c)
	}
	obj, err := c.object()
	if err != nil {
		return nil, err
	}
	cc := c.member(obj, ClassNameMember, nil)
	cls, ok := cc.json.(string)
	if cc.present && !ok {
		return nil, cc.mismatch("string")
	}
	target := e.dispatch(cls)
	if target == nil {
		return nil, typebind.Errorf(c.link, typebind.CodeUnsupportedDiscriminant,
			map[string]string{"value": cls}, "known classes: %s", strings.Join(e.classNames(), ", "))
	}
	if target == e {
		return e.decodeFlat(c)
	}
	return target.decode(c)
}

// dispatch finds the codec a className decodes through: an immediate
// subtype by name, then the subtype whose descendants include it, then the
// node itself when concrete.
func (e *entityCodec) dispatch(cls string) *entityCodec {
	for _, ic := range e.subtypes {
		if ic.name == cls {
			return ic
		}
	}
	for _, ic := range e.subtypes {
		if e.res.HasChildClass(ic.id, cls) {
			return ic
		}
	}
	if cls == e.name && e.concrete {
		return e
	}
	return nil
}

func (e *entityCodec) decodeFlat(c *Context) (any, error) {
	obj, err := c.object()
	if err != nil {
		return nil, err
	}
	out := typebind.NewObject(e.name, make(map[string]any, len(e.fields)))
	for _, m := range e.fields {
		v, ok, err := decodeMember(c, obj, m)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Fields[m.name] = v
		}
	}
	return out, nil
}

func (e *entityCodec) encode(v any, sel *partial.Selection, at typebind.PathRef) (any, bool, error) {
	obj, ok := v.(*typebind.Object)
	if !ok || obj == nil {
		return nil, false, typebind.Contractf(at.Pointer(), "%s expects *typebind.Object, got %T", e.name, v)
	}
	if !e.polymorphic() {
		if obj.Class != "" && obj.Class != e.name {
			return nil, false, typebind.Contractf(at.Pointer(), "value of class %q encoded as %s", obj.Class, e.name)
		}
		out, err := e.encodeFlat(obj, sel, at)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}
	leaf := e.variant(obj.Class)
	if leaf == nil {
		return nil, false, typebind.Contractf(at.Pointer(), "class %q is not a variant of %s", obj.Class, e.name)
	}
	out, err := leaf.encodeFlat(obj, sel, at)
	if err != nil {
		return nil, false, err
	}
	out[ClassNameMember] = leaf.name
	return out, true, nil
}

// classNames lists every className this node decodes.
func (e *entityCodec) classNames() []string {
	var out []string
	if e.concrete {
		out = append(out, e.name)
	}
	for _, n := range e.res.ChildClassNames(e.id) {
		if ent, ok := e.res.Model().EntityByName(n); ok && ent.IsConcrete() {
			out = append(out, n)
		}
	}
	return out
}

// variant walks down the hierarchy to the concrete codec named cls.
func (e *entityCodec) variant(cls string) *entityCodec {
	for cur := e; cur != nil; {
		next := cur.dispatch(cls)
		if next == cur {
			return cur
		}
		if next == nil {
			return nil
		}
		if !next.polymorphic() {
			if next.name != cls {
				return nil
			}
			return next
		}
		cur = next
	}
	return nil
}

func (e *entityCodec) encodeFlat(obj *typebind.Object, sel *partial.Selection, at typebind.PathRef) (map[string]any, error) {
	out := make(map[string]any, len(e.fields)+1)
	for _, m := range e.fields {
		v, has := obj.Fields[m.name]
		if err := encodeMember(out, m, v, has, sel, at); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type enumCodec struct{ enum *model.EnumType }

func (en enumCodec) decode(c *Context) (any, error) {
	if !c.present {
		return nil, c.missing()
	}
	s, ok := c.json.(string)
	if !ok {
		return nil, c.mismatch("string")
	}
	if !en.enum.Has(s) {
		return nil, c.fail(typebind.CodeNoMatchingEnumConstant, map[string]string{"value": s, "enum": en.enum.Name})
	}
	return s, nil
}

func (en enumCodec) encode(v any, _ *partial.Selection, at typebind.PathRef) (any, bool, error) {
	s, ok := v.(string)
	if !ok {
		return nil, false, typebind.Contractf(at.Pointer(), "%s expects a string constant, got %T", en.enum.Name, v)
	}
	if !en.enum.Has(s) {
		return nil, false, typebind.Contractf(at.Pointer(), "%q is not a constant of %s", s, en.enum.Name)
	}
	return s, true, nil
}
