package engine

import (
	"github.com/reoring/typebind"
	"github.com/reoring/typebind/partial"
)

// nullableCodec maps JSON null to nil.
type nullableCodec struct{ inner codec }

func (n nullableCodec) decode(c *Context) (any, error) {
	if !c.present {
		return nil, c.missing()
	}
	if c.json == nil {
		return nil, nil
	}
	return n.inner.decode(c)
}

func (n nullableCodec) encode(v any, s *partial.Selection, at typebind.PathRef) (any, bool, error) {
	if v == nil {
		return nil, true, nil
	}
	return n.inner.encode(v, s, at)
}

// optionalCodec maps member absence to typebind.None.
type optionalCodec struct{ inner codec }

func (o optionalCodec) decode(c *Context) (any, error) {
	if !c.present {
		return typebind.None, nil
	}
	v, err := o.inner.decode(c)
	if err != nil {
		return nil, err
	}
	return typebind.Some(v), nil
}

func (o optionalCodec) encode(v any, s *partial.Selection, at typebind.PathRef) (any, bool, error) {
	opt, ok := v.(typebind.Option)
	if !ok {
		return nil, false, typebind.Contractf(at.Pointer(), "Optional expects typebind.Option, got %T", v)
	}
	if !opt.Set {
		return nil, false, nil
	}
	return o.inner.encode(opt.Value, s, at)
}
