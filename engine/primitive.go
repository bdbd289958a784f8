package engine

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
)

type primitiveCodec struct{ kind model.PrimitiveKind }

var intBits = map[model.PrimitiveKind]int{model.Byte: 8, model.Short: 16, model.Int: 32, model.Long: 64}

func (p primitiveCodec) decode(c *Context) (any, error) {
	if !c.present {
		return nil, c.missing()
	}
	switch p.kind {
	case model.Byte, model.Short, model.Int, model.Long:
		n, err := p.decodeInt(c)
		if err != nil {
			return nil, err
		}
		switch p.kind {
		case model.Byte:
			return int8(n), nil
		case model.Short:
			return int16(n), nil
		case model.Int:
			return int32(n), nil
		}
		return n, nil
	case model.Float, model.Double:
		return p.decodeFloat(c)
	case model.Boolean:
		b, ok := c.json.(bool)
		if !ok {
			return nil, c.mismatch("boolean")
		}
		return b, nil
	case model.String:
		s, ok := c.json.(string)
		if !ok {
			return nil, c.mismatch("string")
		}
		return s, nil
	case model.Date:
		obj, err := c.object()
		if err != nil {
			return nil, err
		}
		iso, err := primitiveCodec{model.String}.decode(c.member(obj, "iso", nil))
		if err != nil {
			return nil, err
		}
		return typebind.Date{ISO: iso.(string)}, nil
	case model.DateTime:
		obj, err := c.object()
		if err != nil {
			return nil, err
		}
		ts, err := primitiveCodec{model.Long}.decode(c.member(obj, "timestamp", nil))
		if err != nil {
			return nil, err
		}
		return typebind.DateTime{Timestamp: ts.(int64)}, nil
	}
	return nil, c.mismatch(p.kind.String())
}

func (p primitiveCodec) decodeInt(c *Context) (int64, error) {
	bits := intBits[p.kind]
	overflow := func() error {
		return c.fail(typebind.CodeOverflow, map[string]string{"value": numberText(c.json), "expected": p.kind.String()})
	}
	var n int64
	switch v := c.json.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, overflow()
			}
			return 0, c.mismatch(p.kind.String())
		}
		n = i
	case float64:
		if v != math.Trunc(v) {
			return 0, c.mismatch(p.kind.String())
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, overflow()
		}
		n = int64(v)
	default:
		i, ok, inRange := goInt(c.json)
		if !ok {
			return 0, c.mismatch(p.kind.String())
		}
		if !inRange {
			return 0, overflow()
		}
		n = i
	}
	if bits < 64 {
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if n < lo || n > hi {
			return 0, overflow()
		}
	}
	return n, nil
}

func (p primitiveCodec) decodeFloat(c *Context) (any, error) {
	var f float64
	switch v := c.json.(type) {
	case json.Number:
		x, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, c.fail(typebind.CodeOverflow, map[string]string{"value": string(v), "expected": p.kind.String()})
			}
			return nil, c.mismatch(p.kind.String())
		}
		f = x
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		i, ok, _ := goInt(c.json)
		if !ok {
			return nil, c.mismatch(p.kind.String())
		}
		f = float64(i)
	}
	if p.kind == model.Double {
		return f, nil
	}
	if math.Abs(f) > math.MaxFloat32 {
		return nil, c.fail(typebind.CodeOverflow, map[string]string{"value": numberText(c.json), "expected": p.kind.String()})
	}
	return float32(f), nil
}

// goInt accepts the integer kinds an in-memory tree may carry.
func goInt(v any) (n int64, ok, inRange bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true, true
	case int8:
		return int64(x), true, true
	case int16:
		return int64(x), true, true
	case int32:
		return int64(x), true, true
	case int64:
		return x, true, true
	case uint:
		return int64(x), true, uint64(x) <= math.MaxInt64
	case uint8:
		return int64(x), true, true
	case uint16:
		return int64(x), true, true
	case uint32:
		return int64(x), true, true
	case uint64:
		return int64(x), true, x <= math.MaxInt64
	}
	return 0, false, false
}

func numberText(v any) string {
	if n, ok := v.(json.Number); ok {
		return string(n)
	}
	return strconv.Quote(kindOf(v))
}

func (p primitiveCodec) encode(v any, _ *partial.Selection, at typebind.PathRef) (any, bool, error) {
	switch p.kind {
	case model.Byte, model.Short, model.Int, model.Long:
		n, ok, inRange := goInt(v)
		if !ok {
			return nil, false, typebind.Contractf(at.Pointer(), "%s expects an integer, got %T", p.kind, v)
		}
		bits := intBits[p.kind]
		if bits < 64 && inRange {
			lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
			inRange = n >= lo && n <= hi
		}
		if !inRange {
			return nil, false, typebind.Contractf(at.Pointer(), "%v overflows %s", v, p.kind)
		}
		return n, true, nil
	case model.Float, model.Double:
		var f float64
		switch x := v.(type) {
		case float32:
			f = float64(x)
		case float64:
			f = x
		default:
			return nil, false, typebind.Contractf(at.Pointer(), "%s expects a float, got %T", p.kind, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false, typebind.Contractf(at.Pointer(), "%v is not representable in JSON", f)
		}
		if p.kind == model.Float {
			return float32(f), true, nil
		}
		return f, true, nil
	case model.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, false, typebind.Contractf(at.Pointer(), "Boolean expects bool, got %T", v)
		}
		return b, true, nil
	case model.String:
		s, ok := v.(string)
		if !ok {
			return nil, false, typebind.Contractf(at.Pointer(), "String expects string, got %T", v)
		}
		return s, true, nil
	case model.Date:
		d, ok := v.(typebind.Date)
		if !ok {
			return nil, false, typebind.Contractf(at.Pointer(), "Date expects typebind.Date, got %T", v)
		}
		return map[string]any{"iso": d.ISO}, true, nil
	case model.DateTime:
		d, ok := v.(typebind.DateTime)
		if !ok {
			return nil, false, typebind.Contractf(at.Pointer(), "DateTime expects typebind.DateTime, got %T", v)
		}
		return map[string]any{"timestamp": d.Timestamp}, true, nil
	}
	return nil, false, typebind.Contractf(at.Pointer(), "unknown primitive %s", p.kind)
}
